package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another run holds the import directory.
var ErrLocked = errors.New("import directory is locked by another run")

const lockFileName = ".graphport.lock"

// DirLock is an exclusive advisory lock on an import directory.
type DirLock struct {
	lock *flock.Flock
}

// LockDir takes the lock on dir without blocking, creating dir if needed.
func LockDir(dir string) (*DirLock, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &IOError{Op: "create directory", Path: dir, Err: err}
	}

	lock := flock.New(filepath.Join(dir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock on %s: %w", dir, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, dir)
	}
	return &DirLock{lock: lock}, nil
}

// Release drops the lock.
func (l *DirLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
