package sproutsync

import (
	"sproutsync/sprout"
	"sproutsync/storage"
)

// Type aliases for convenient error handling.
type (
	// RequestError describes a failed API call.
	RequestError = sprout.RequestError
	// UserError is an error caused by the caller's input.
	UserError = sprout.UserError
	// TagLookupError reports a tag ID missing from the account tag set.
	TagLookupError = sprout.TagLookupError
	// PrivacyError reports an unknown privacy code.
	PrivacyError = sprout.PrivacyError
	// EnrichError wraps a failure to build a row from a raw video.
	EnrichError = sprout.EnrichError
	// StorageError wraps errors during storage operations.
	StorageError = storage.StorageError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrVideoNotFound indicates the requested video does not exist.
	ErrVideoNotFound = sprout.ErrVideoNotFound
	// ErrTagNotFound indicates a video references an unknown tag ID.
	ErrTagNotFound = sprout.ErrTagNotFound
	// ErrInvalidPrivacy indicates a privacy code outside the known range.
	ErrInvalidPrivacy = sprout.ErrInvalidPrivacy
	// ErrInvalidInput indicates an unusable argument.
	ErrInvalidInput = sprout.ErrInvalidInput
	// ErrUnauthorized indicates the API key was rejected.
	ErrUnauthorized = sprout.ErrUnauthorized

	// Storage errors
	// ErrNotFound indicates an entity was not found in storage.
	ErrNotFound = storage.ErrNotFound
	// ErrStorageCorrupt indicates data corruption was detected.
	ErrStorageCorrupt = storage.ErrStorageCorrupt
	// ErrLockTimeout indicates a timeout acquiring a file lock.
	ErrLockTimeout = storage.ErrLockTimeout
)

// IsUserError reports whether err was caused by invalid input or a missing
// target rather than a failure of the remote service.
func IsUserError(err error) bool {
	return sprout.IsUserError(err)
}
