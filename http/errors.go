package http

import (
	"errors"
	"fmt"
)

// Sentinel errors for HTTP operations.
var (
	// ErrRequestFailed indicates the request itself failed (network error).
	ErrRequestFailed = errors.New("http request failed")

	// ErrDomainNotAllowed indicates the URL's host is outside the allowlist.
	ErrDomainNotAllowed = errors.New("domain not allowed")
)

// TransportError indicates a request that never produced a response.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

// Error returns a string representation of the transport error.
func (e *TransportError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("%s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error { return e.Err }
