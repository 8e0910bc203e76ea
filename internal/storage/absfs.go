package storage

import (
	"io"
	"os"

	"github.com/absfs/absfs"

	"filevault/internal/errors"
)

// FS adapts any absfs.FileSystem into a Provider. Tests pair it with
// absfs/memfs to exercise the engine without touching the disk.
type FS struct {
	fs absfs.FileSystem
}

// NewFS wraps an absfs filesystem as a Provider.
func NewFS(fs absfs.FileSystem) *FS {
	return &FS{fs: fs}
}

func (p *FS) OpenRead(path string) (io.ReadCloser, error) {
	f, err := p.fs.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileError("open", path, errors.ErrFileNotFound)
		}
		return nil, errors.NewFileError("open", path, err)
	}
	return f, nil
}

func (p *FS) OpenWrite(path string, createNew bool) (io.WriteCloser, error) {
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if createNew {
		flag = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := p.fs.OpenFile(path, flag, 0600)
	if err != nil {
		if os.IsExist(err) {
			return nil, errors.NewFileError("create", path, errors.ErrFileExists)
		}
		return nil, errors.NewFileError("create", path, err)
	}
	return f, nil
}

func (p *FS) Exists(path string) bool {
	_, err := p.fs.Stat(path)
	return err == nil
}

func (p *FS) Size(path string) (int64, error) {
	info, err := p.fs.Stat(path)
	if err != nil {
		return 0, errors.NewFileError("stat", path, err)
	}
	return info.Size(), nil
}

func (p *FS) Delete(path string) error {
	if err := p.fs.Remove(path); err != nil {
		return errors.NewFileError("delete", path, err)
	}
	return nil
}

func (p *FS) Rename(oldpath, newpath string) error {
	if err := p.fs.Rename(oldpath, newpath); err != nil {
		return errors.NewFileError("rename", newpath, err)
	}
	return nil
}
