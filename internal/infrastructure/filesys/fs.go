// Package filesys is the narrow filesystem surface used by the document store.
//
// Production code uses [OS]; tests substitute an implementation that fails a
// chosen call, which is how a crash between the temp write and the rename is
// simulated.
package filesys

import (
	"os"
)

// FS defines the filesystem operations the durable store needs.
type FS interface {
	// ReadFile reads an entire file. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFile creates or truncates path, writes data and syncs it to disk
	// before closing.
	WriteFile(path string, data []byte, perm os.FileMode) error

	// Rename moves oldpath over newpath. Atomic on the same filesystem.
	Rename(oldpath, newpath string) error

	// Remove deletes a file. See [os.Remove].
	Remove(path string) error

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)
}

// OS implements [FS] on the real filesystem.
type OS struct{}

// NewOS returns the real filesystem.
func NewOS() *OS {
	return &OS{}
}

func (OS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (OS) WriteFile(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (OS) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

func (OS) Remove(path string) error {
	return os.Remove(path)
}

func (OS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (OS) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// Compile-time interface check.
var _ FS = (*OS)(nil)
