package storage

import (
	"errors"
	"os"
	"sync"
)

// SingleInstanceLock prevents two processes from serving the same map file
// at once. Grounds on the teacher's main.go prepareLock/cleanup, which
// guards RueaES's autosave file the same way via an exclusive-create lock
// file in the platform data directory.
type SingleInstanceLock struct {
	path  string
	file  *os.File
	owned bool
	once  sync.Once
}

// AcquireLock creates the named lock file in the platform data directory
// (storage.DataFile), or, if it already exists, opens it without taking
// ownership. Owned is false in that case; the caller decides whether that's
// fatal.
func AcquireLock(name string) (*SingleInstanceLock, error) {
	path := DataFile(name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	owned := true
	if err != nil {
		if !errors.Is(err, os.ErrExist) {
			return nil, err
		}
		owned = false
		if file, err = os.OpenFile(path, os.O_WRONLY, 0o644); err != nil {
			return nil, err
		}
	}
	return &SingleInstanceLock{path: path, file: file, owned: owned}, nil
}

// Owned reports whether this process is the lock holder.
func (l *SingleInstanceLock) Owned() bool { return l.owned }

// Release closes the lock handle and, if this process owned the lock,
// removes the file so the next process can acquire it cleanly.
func (l *SingleInstanceLock) Release() {
	l.once.Do(func() {
		if l.file != nil {
			_ = l.file.Close()
		}
		if l.owned {
			_ = os.Remove(l.path)
		}
	})
}
