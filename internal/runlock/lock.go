// Package runlock keeps two badge sync runs from writing the same output tree at once.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileName is the lock file created in the output root
const FileName = ".thv-badge-sync.lock"

// ErrHeld is returned when another process holds the lock
var ErrHeld = errors.New("another run holds the lock")

// Lock is an acquired run lock
type Lock struct {
	flock *flock.Flock
}

// Path returns the lock file path for an output root
func Path(baseDir string) string {
	return filepath.Join(baseDir, FileName)
}

// Acquire takes a non-blocking exclusive lock on path, creating its
// directory when needed. It returns ErrHeld when the lock is taken.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrHeld, path)
	}

	return &Lock{flock: fl}, nil
}

// Release unlocks the lock. The lock file is left in place.
func (l *Lock) Release() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", l.flock.Path(), err)
	}
	return nil
}
