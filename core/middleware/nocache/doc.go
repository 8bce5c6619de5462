// Package nocache provides a Fiber middleware that stamps every response
// with Cache-Control, Pragma and Expires headers forbidding reuse of a cached
// copy.
package nocache
