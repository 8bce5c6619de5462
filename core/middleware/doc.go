// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - NoCache: Sets Cache-Control, Pragma and Expires on every response,
//     including error responses, so browsers always fetch the file on disk.
//   - RayID: Generates a unique Request ID (RayID) for every incoming request
//     and stores it in the request locals for log correlation.
//
// These middleware components are registered globally by the server package.
package middleware
