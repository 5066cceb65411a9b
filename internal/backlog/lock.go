package backlog

import (
	"fmt"
	"os"
	"syscall"

	"github.com/felixgeelhaar/taskweave/internal/errors"
)

// Lock is an advisory flock(2) lock serializing read -> compute -> write
// runs against one document. The lock file sits next to the document as
// "<doc>.lock".
type Lock struct {
	path string
	file *os.File
}

// NewLock creates the lock for a document path. Call TryLock or Acquire
// and Release.
func NewLock(docPath string) *Lock {
	return &Lock{path: docPath + ".lock"}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// TryLock attempts to take the lock without blocking.
// It returns false if another process or Lock holds it.
func (l *Lock) TryLock() (bool, error) {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return false, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = f.Close()
		if err == syscall.EWOULDBLOCK {
			return false, nil
		}
		return false, fmt.Errorf("flock: %w", err)
	}

	l.file = f
	return true, nil
}

// Acquire takes the lock or fails with LOCK-001 when it is held elsewhere.
func (l *Lock) Acquire() error {
	ok, err := l.TryLock()
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewLockBusyError(l.path)
	}
	return nil
}

// Release drops the lock. The lock file is left in place.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}

	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		_ = l.file.Close()
		l.file = nil
		return fmt.Errorf("funlock: %w", err)
	}

	err := l.file.Close()
	l.file = nil
	return err
}
