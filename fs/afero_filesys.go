package fs

import (
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"sort"

	"github.com/spf13/afero"
)

func (s *Stats) readOp(bytes int) {
	s.ReadOps++
	s.ReadBytes += bytes
}

func (s *Stats) writeOp(bytes int) {
	s.WriteOps++
	s.WriteBytes += bytes
}

type aferoFs struct {
	fs afero.Afero
	*Stats
}

type readFile struct {
	afero.File
	*Stats
}

func (f readFile) Size() int {
	st, err := f.Stat()
	if err != nil {
		return 0
	}
	return int(st.Size())
}

func (f readFile) Read(buf []byte) (int, error) {
	n, err := f.File.Read(buf)
	f.readOp(n)
	return n, err
}

func abs(fname string) string {
	return fmt.Sprintf("/%s", fname)
}

func (fs aferoFs) Open(fname string) (ReadFile, error) {
	f, err := fs.fs.Open(abs(fname))
	if err != nil {
		return nil, err
	}
	return readFile{f, fs.Stats}, nil
}

func (fs aferoFs) ReadFile(fname string) ([]byte, error) {
	f, err := fs.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ioutil.ReadAll(f)
}

type writeFile struct {
	afero.File
	*Stats
}

func (f writeFile) Write(p []byte) (int, error) {
	n, err := f.File.Write(p)
	f.writeOp(n)
	return n, err
}

func (fs aferoFs) Create(fname string) (File, error) {
	// MemMapFs does not honor O_EXCL
	exists, err := fs.Exists(fname)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &os.PathError{Op: "create", Path: fname, Err: os.ErrExist}
	}
	f, err := fs.fs.OpenFile(abs(fname), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, err
	}
	return writeFile{f, fs.Stats}, nil
}

func (fs aferoFs) Exists(fname string) (bool, error) {
	return fs.fs.Exists(abs(fname))
}

// List returns the base names of all files, sorted.
func (fs aferoFs) List() ([]string, error) {
	matches, err := afero.Glob(fs.fs, abs("*"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, path.Base(m))
	}
	sort.Strings(names)
	return names, nil
}

func (fs aferoFs) Delete(fname string) error {
	return fs.fs.Remove(abs(fname))
}

func (fs aferoFs) AtomicCreateWith(fname string, data []byte) error {
	tmpFile := abs(fmt.Sprintf("%s.tmp", fname))
	if err := fs.fs.WriteFile(tmpFile, data, 0644); err != nil {
		return err
	}
	f, err := fs.fs.Open(tmpFile)
	if err != nil {
		return err
	}
	err = f.Sync()
	f.Close()
	if err != nil {
		return err
	}
	fs.writeOp(len(data))
	return fs.fs.Rename(tmpFile, abs(fname))
}

func (fs aferoFs) GetStats() Stats {
	return *fs.Stats
}

func deleteTmpFiles(fs afero.Fs) error {
	tmpFiles, err := afero.Glob(fs, abs("*.tmp"))
	if err != nil {
		return err
	}
	for _, n := range tmpFiles {
		if err := fs.Remove(n); err != nil {
			return err
		}
	}
	return nil
}

// FromAfero creates an fs.Filesys from any Afero file system.
//
// This implementation will use absolute filenames for all files; use an
// afero.BasePathFs to make sure they are created within a particular
// directory.
//
// Deletes all files named *.tmp, as a file-system recovery for AtomicCreateWith.
func FromAfero(fs afero.Fs) (Filesys, error) {
	if err := deleteTmpFiles(fs); err != nil {
		return nil, fmt.Errorf("failed to clean up temporary files: %w", err)
	}
	return aferoFs{fs: afero.Afero{Fs: fs}, Stats: new(Stats)}, nil
}

// MemFs creates an in-memory Filesys
func MemFs() Filesys {
	fs, err := FromAfero(afero.NewMemMapFs())
	if err != nil {
		// an empty in-memory fs has nothing to clean up
		panic(err)
	}
	return fs
}

// DirFs creates a Filesys backed by the OS, using basedir.
//
// Creates basedir if it does not exist.
func DirFs(basedir string) (Filesys, error) {
	fs := afero.NewOsFs()
	if err := fs.MkdirAll(basedir, 0755); err != nil {
		return nil, fmt.Errorf("could not create data dir %s: %w", basedir, err)
	}
	return FromAfero(afero.NewBasePathFs(fs, basedir))
}
