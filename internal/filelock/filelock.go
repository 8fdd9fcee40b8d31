// Package filelock serializes writes of generated files such as the
// bootstrapped solver configuration, so that concurrent srba-slam runs
// sharing a working directory never interleave or truncate each other.
package filelock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// DefaultRetryDelay is how often a blocked lock is retried.
const DefaultRetryDelay = 50 * time.Millisecond

// ErrLockTimeout is returned when the lock could not be acquired before the
// context ended.
var ErrLockTimeout = errors.New("timed out waiting for file lock")

// FileLock is an advisory lock on a sidecar ".lock" file.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a lock guarding target. The lock file is target + ".lock".
func NewFileLock(target string) *FileLock {
	lockPath := target + ".lock"
	return &FileLock{
		flock: flock.New(lockPath),
		path:  lockPath,
	}
}

// Path returns the lock file path.
func (fl *FileLock) Path() string {
	return fl.path
}

// Lock blocks until the lock is held or ctx is done.
func (fl *FileLock) Lock(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(fl.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", fl.path, err)
	}
	locked, err := fl.flock.TryLockContext(ctx, DefaultRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s", ErrLockTimeout, fl.path)
		}
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrLockTimeout, fl.path)
	}
	return nil
}

// TryLock reports whether the lock was taken without waiting.
func (fl *FileLock) TryLock() (bool, error) {
	acquired, err := fl.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", fl.path, err)
	}
	return acquired, nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	return nil
}

// AtomicWrite replaces path with data through a temp file in the same
// directory followed by a rename. Readers see either the old or the new
// content, never a partial file.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	committed = true
	return nil
}

// LockAndWrite holds the sidecar lock of path while atomically writing data.
func LockAndWrite(ctx context.Context, path string, data []byte) error {
	lock := NewFileLock(path)
	if err := lock.Lock(ctx); err != nil {
		return err
	}
	defer lock.Unlock()

	return AtomicWrite(path, data, 0644)
}
