package sprout

import (
	"errors"
	"fmt"
)

// Sentinel errors for SproutVideo operations.
var (
	// ErrVideoNotFound indicates the requested video ID does not resolve.
	ErrVideoNotFound = errors.New("video not found")
	// ErrTagNotFound indicates a video references a tag ID missing from the account tag set.
	ErrTagNotFound = errors.New("tag not found")
	// ErrInvalidPrivacy indicates a privacy code outside the known range.
	ErrInvalidPrivacy = errors.New("invalid privacy code")
	// ErrInvalidInput indicates the caller supplied an unusable argument.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the API key was rejected (401/403).
	ErrUnauthorized = errors.New("sproutvideo: api key rejected")
	// ErrNotFound indicates the API answered 404.
	ErrNotFound = errors.New("sproutvideo: resource not found")
	// ErrRemote indicates any other non-success answer from the API.
	ErrRemote = errors.New("sproutvideo: request failed")

	// ErrInvalidParams indicates a request parameter was neither a string nor a []string.
	ErrInvalidParams = errors.New("sproutvideo: invalid request parameters")
	// ErrInvalidMethod indicates a method other than GET, POST or PUT.
	ErrInvalidMethod = errors.New("sproutvideo: unsupported method")
)

// RequestError describes a failed API call.
// Use errors.As() to inspect the status code:
//
//	var reqErr *sprout.RequestError
//	if errors.As(err, &reqErr) && reqErr.StatusCode == 429 {
//		...
//	}
type RequestError struct {
	// Method is the HTTP method of the call.
	Method string
	// Endpoint is the path relative to the base URL.
	Endpoint string
	// StatusCode is the HTTP status, or 0 if no response was received.
	StatusCode int
	// Body is the response body of a non-success answer.
	Body []byte
	// Err is ErrUnauthorized, ErrNotFound, ErrRemote or the transport error.
	Err error
}

// Error returns a string representation of the request error.
func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Method, e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Endpoint, e.Err)
}

// Unwrap returns the underlying error.
func (e *RequestError) Unwrap() error { return e.Err }

// UserError is an error caused by the caller's input rather than the remote
// service. Its message is safe to show to an end user.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string { return e.Message }

func (e *UserError) Unwrap() error { return e.Err }

// TagLookupError reports a tag ID that could not be resolved against the tag set.
type TagLookupError struct {
	TagID string
}

func (e *TagLookupError) Error() string {
	return fmt.Sprintf("tag %q: %v", e.TagID, ErrTagNotFound)
}

func (e *TagLookupError) Unwrap() error { return ErrTagNotFound }

// PrivacyError reports a privacy code outside 0-3.
type PrivacyError struct {
	Code int
}

func (e *PrivacyError) Error() string {
	return fmt.Sprintf("%v: %d", ErrInvalidPrivacy, e.Code)
}

func (e *PrivacyError) Unwrap() error { return ErrInvalidPrivacy }

// EnrichError wraps a failure to turn a raw video into a row.
type EnrichError struct {
	VideoID string
	Err     error
}

func (e *EnrichError) Error() string {
	return fmt.Sprintf("enrich video %s: %v", e.VideoID, e.Err)
}

func (e *EnrichError) Unwrap() error { return e.Err }

// IsUserError reports whether err was caused by invalid input or a missing
// target, as opposed to a failure of the remote service.
func IsUserError(err error) bool {
	var userErr *UserError
	return errors.As(err, &userErr)
}
