package filesystem

import (
	"io"
	"os"
)

// GacheFs satisfies gache.FileSystem over the swappable backend, so the
// ledger and the version cache follow the same OS/in-memory switch as
// everything else.
type GacheFs struct{}

// OpenFile opens a file on the active backend.
func (GacheFs) OpenFile(name string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	return API().OpenFile(name, flag, perm)
}

// MkdirAll creates a directory tree on the active backend.
func (GacheFs) MkdirAll(path string, perm os.FileMode) error {
	return API().MkdirAll(path, perm)
}
