package fs

import (
	"io"
)

type File interface {
	io.WriteCloser
	Sync() error
}

type ReadFile interface {
	Size() int
	io.ReadCloser
}

// Stats counts the I/O performed through a Filesys.
type Stats struct {
	ReadOps    int
	ReadBytes  int
	WriteOps   int
	WriteBytes int
}

// Filesys is a storage-specific API for accessing the file system.
//
// Note that an instance of this interface only exposes a single directory
// (there are no directory names in these methods).
//
// Callers are expected to follow some rules when calling this API:
// - Open: fname should exist
// - Create: fname should not exist (fails with os.ErrExist otherwise)
// - Delete: fname should exist
//
// AtomicCreateWith replaces fname in one step: a reader sees either the old
// contents or data, never a mix.
type Filesys interface {
	Open(fname string) (ReadFile, error)
	ReadFile(fname string) ([]byte, error)
	Create(fname string) (File, error)
	Exists(fname string) (bool, error)
	List() ([]string, error)
	Delete(fname string) error
	AtomicCreateWith(fname string, data []byte) error
	GetStats() Stats
}

// DeleteAll removes every file in fs.
func DeleteAll(fs Filesys) error {
	names, err := fs.List()
	if err != nil {
		return err
	}
	for _, n := range names {
		if err := fs.Delete(n); err != nil {
			return err
		}
	}
	return nil
}
