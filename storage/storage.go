// Package storage persists what the host keeps between sync runs: the rows
// of the Videos table and the sync state carrying the continuation.
package storage

import (
	"context"
	"errors"
	"fmt"

	"sproutsync/sprout"
)

// Sentinel errors for common storage conditions.
var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("storage: not found")
	// ErrInvalidInput indicates invalid or malformed input was provided.
	ErrInvalidInput = errors.New("storage: invalid input")
	// ErrStorageCorrupt indicates data corruption was detected.
	ErrStorageCorrupt = errors.New("storage: data corruption detected")
	// ErrLockTimeout indicates a timeout acquiring a file lock.
	ErrLockTimeout = errors.New("storage: lock acquisition timeout")
)

// StorageError wraps storage errors with operation and entity context.
// Use errors.As() to extract this error type and get operation details:
//
//	var storErr *storage.StorageError
//	if errors.As(err, &storErr) {
//		fmt.Printf("Failed to %s %s %s: %v\n", storErr.Op, storErr.Entity, storErr.ID, storErr.Err)
//	}
type StorageError struct {
	// Op is the operation that failed ("read", "write", "upsert", "lock", ...).
	Op string
	// Entity is the entity type ("video", "sync_state", "store", ...).
	Entity string
	// ID is the entity ID if applicable.
	ID string
	// Err is the underlying error that occurred.
	Err error
}

// Error returns a string representation of the storage error.
func (e *StorageError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("storage: %s %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
	}
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Entity, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *StorageError) Unwrap() error { return e.Err }

// Store is the host's persistence for synced rows and sync state.
// Implementations must be safe for concurrent use.
type Store interface {
	VideoStore
	SyncStateStore

	// Close releases any resources held by the store.
	Close() error
}

// VideoStore holds rows of the Videos table, keyed by VideoID.
type VideoStore interface {
	// UpsertVideos inserts or replaces rows.
	UpsertVideos(ctx context.Context, videos []sprout.Video) error
	// GetVideo retrieves a row by video ID.
	GetVideo(ctx context.Context, videoID string) (*sprout.Video, error)
	// ListVideos returns all rows, newest first by CreatedAt.
	ListVideos(ctx context.Context) ([]sprout.Video, error)
	// CountVideos returns the number of stored rows.
	CountVideos(ctx context.Context) (int, error)
}

// SyncStateStore handles sync state for tracking progress across runs.
type SyncStateStore interface {
	// GetSyncState retrieves the state of a table, or ErrNotFound.
	GetSyncState(ctx context.Context, table string) (*SyncState, error)
	// UpdateSyncState creates or replaces the state of a table.
	UpdateSyncState(ctx context.Context, state *SyncState) error
}
