package ledger

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tchajed/pricedb/fs"
	"github.com/tchajed/pricedb/program"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
	// ErrNotJournaled means the invocation's accounts were persisted but its
	// journal entry could not be written.
	ErrNotJournaled    = errors.New("committed but not journaled")
)

// Store persists whole account buffers by identity.
//
// Put must replace the previous buffer atomically.
type Store interface {
	Get(key program.Identity) ([]byte, error)
	Put(key program.Identity, data []byte) error
	Keys() ([]program.Identity, error)
	Close() error
}

const accountPrefix = "account-"

// FsStore keeps one file per account.
type FsStore struct {
	fs fs.Filesys
}

var _ Store = &FsStore{}

func NewFsStore(filesys fs.Filesys) *FsStore {
	return &FsStore{fs: filesys}
}

func accountFile(key program.Identity) string {
	return accountPrefix + key.String()
}

func (s *FsStore) Get(key program.Identity) ([]byte, error) {
	data, err := s.fs.ReadFile(accountFile(key))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", key, ErrAccountNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("failed reading account %s: %w", key, err)
	}
	return data, nil
}

func (s *FsStore) Put(key program.Identity, data []byte) error {
	if err := s.fs.AtomicCreateWith(accountFile(key), data); err != nil {
		return fmt.Errorf("failed writing account %s: %w", key, err)
	}
	return nil
}

func (s *FsStore) Keys() ([]program.Identity, error) {
	names, err := s.fs.List()
	if err != nil {
		return nil, err
	}
	var keys []program.Identity
	for _, name := range names {
		if !strings.HasPrefix(name, accountPrefix) || strings.HasSuffix(name, ".tmp") {
			continue
		}
		key, err := program.ParseIdentity(strings.TrimPrefix(name, accountPrefix))
		if err != nil {
			return nil, fmt.Errorf("unexpected account file %s: %w", name, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *FsStore) Close() error {
	return nil
}
