package onshape

import "fmt"

// TransportError indicates the upstream service could not be reached at
// all (DNS, connect, TLS, timeout). Surfaced to callers as 502.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("onshape: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError indicates the upstream service answered with a non-success
// status. The body is preserved for diagnostics and passthrough.
type APIError struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("onshape: upstream returned %d", e.StatusCode)
}
