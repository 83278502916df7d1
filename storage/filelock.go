package storage

import (
	"os"
	"time"
)

const lockPollInterval = 10 * time.Millisecond

// FileLock is an advisory, cross-process lock on a sidecar file next to the
// store (path + ".lock"). Only one process may hold a store open at a time.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock creates a file lock. The lock is not acquired until Lock() is called.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path + ".lock"}
}

// Lock acquires an exclusive lock, polling until timeout.
// Returns ErrLockTimeout if another holder keeps it.
func (l *FileLock) Lock(timeout time.Duration) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return &StorageError{Op: "lock", Entity: "file", ID: l.path, Err: err}
	}

	deadline := time.Now().Add(timeout)
	for {
		if err := lockFile(f); err == nil {
			l.file = f
			return nil
		}
		if !time.Now().Before(deadline) {
			break
		}
		time.Sleep(lockPollInterval)
	}

	f.Close()
	return &StorageError{Op: "lock", Entity: "file", ID: l.path, Err: ErrLockTimeout}
}

// Unlock releases the lock and removes the sidecar file. It is safe to call
// on a lock that is not held.
func (l *FileLock) Unlock() error {
	if l.file == nil {
		return nil
	}
	unlockFile(l.file)
	l.file.Close()
	os.Remove(l.path)
	l.file = nil
	return nil
}
