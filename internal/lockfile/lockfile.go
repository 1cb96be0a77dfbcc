// Package lockfile guards a data directory against concurrent opens by
// a second process, via an advisory flock on a sentinel file.
package lockfile

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"lsmkv/constants"
)

// Acquire creates (or reuses) the lock file at path and takes an
// exclusive, non-blocking flock on it. It is the caller's job to call
// Release when the store closes.
func Acquire(lockFilePath string) (*os.File, error) {
	f, err := os.Create(lockFilePath)
	if err != nil {
		return nil, fmt.Errorf("error creating lockfile (%s): %w", lockFilePath, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %s", constants.ErrLockHeld, lockFilePath)
	}
	return f, nil
}

// Release unlocks and removes the lock file.
func Release(f *os.File) error {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
		return fmt.Errorf("error unlocking lock file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("error closing lock file: %w", err)
	}
	if err := os.Remove(f.Name()); err != nil {
		return fmt.Errorf("error deleting lock file: %w", err)
	}
	return nil
}
