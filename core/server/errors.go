package server

import "fmt"

// BindError is returned by Start when the listener cannot be created,
// e.g. the port is already in use or the host cannot be resolved.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("failed to bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}
