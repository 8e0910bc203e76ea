// Package storage abstracts the filesystem operations the vault engine
// needs. The engine never touches the os package directly; it works through
// a Provider so the same transform and publish logic runs against the real
// disk in production and an in-memory filesystem in tests.
package storage

import (
	"io"
	"os"

	"filevault/internal/errors"
)

// Provider supplies the file operations needed to read sources, stage and
// publish destinations, and clean up after failures.
type Provider interface {
	// OpenRead opens path for sequential reading.
	OpenRead(path string) (io.ReadCloser, error)

	// OpenWrite opens path for writing, truncating any existing file.
	// With createNew set, the open fails with ErrFileExists if the path
	// already exists.
	OpenWrite(path string, createNew bool) (io.WriteCloser, error)

	// Exists reports whether path names an existing file.
	Exists(path string) bool

	// Size returns the byte size of the file at path.
	Size(path string) (int64, error)

	// Delete removes the file at path.
	Delete(path string) error

	// Rename atomically moves oldpath to newpath, replacing any existing
	// file at newpath.
	Rename(oldpath, newpath string) error
}

// OS is the disk-backed Provider used in production.
type OS struct{}

// NewOS returns a Provider over the host filesystem.
func NewOS() *OS { return &OS{} }

func (*OS) OpenRead(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileError("open", path, errors.ErrFileNotFound)
		}
		return nil, errors.NewFileError("open", path, err)
	}
	return f, nil
}

func (*OS) OpenWrite(path string, createNew bool) (io.WriteCloser, error) {
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if createNew {
		flag = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flag, 0600)
	if err != nil {
		if os.IsExist(err) {
			return nil, errors.NewFileError("create", path, errors.ErrFileExists)
		}
		return nil, errors.NewFileError("create", path, err)
	}
	return f, nil
}

func (*OS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (*OS) Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.NewFileError("stat", path, err)
	}
	return info.Size(), nil
}

func (*OS) Delete(path string) error {
	if err := os.Remove(path); err != nil {
		return errors.NewFileError("delete", path, err)
	}
	return nil
}

func (*OS) Rename(oldpath, newpath string) error {
	if err := os.Rename(oldpath, newpath); err != nil {
		return errors.NewFileError("rename", newpath, err)
	}
	return nil
}
