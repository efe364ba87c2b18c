package leveldb

import (
	"bytes"
	"fmt"

	"github.com/jmhodges/levigo"
	"github.com/tchajed/pricedb/ledger"
	"github.com/tchajed/pricedb/program"
)

var accountPrefix = []byte("account/")

// Store keeps account buffers in a LevelDB database.
type Store struct {
	db    *levigo.DB
	cache *levigo.Cache
	ro    *levigo.ReadOptions
	wo    *levigo.WriteOptions
}

var _ ledger.Store = &Store{}

func levelDbOpts(cache *levigo.Cache) *levigo.Options {
	opts := levigo.NewOptions()
	opts.SetCreateIfMissing(true)
	opts.SetCompression(levigo.NoCompression)

	// account buffers are small and few
	opts.SetCache(cache)
	opts.SetWriteBufferSize(1024 * 1024)

	return opts
}

// New opens (or creates) a LevelDB account store at path.
func New(path string) (*Store, error) {
	cache := levigo.NewLRUCache(8 * 1024 * 1024)
	opts := levelDbOpts(cache)
	defer opts.Close()
	db, err := levigo.Open(path, opts)
	if err != nil {
		cache.Close()
		return nil, fmt.Errorf("could not open leveldb at %s: %w", path, err)
	}
	wo := levigo.NewWriteOptions()
	// a committed invocation must survive a crash
	wo.SetSync(true)
	return &Store{db: db, cache: cache, ro: levigo.NewReadOptions(), wo: wo}, nil
}

func dbKey(key program.Identity) []byte {
	k := make([]byte, 0, len(accountPrefix)+len(key))
	k = append(k, accountPrefix...)
	return append(k, key[:]...)
}

func (s *Store) Get(key program.Identity) ([]byte, error) {
	data, err := s.db.Get(s.ro, dbKey(key))
	if err != nil {
		return nil, fmt.Errorf("failed reading account %s: %w", key, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%s: %w", key, ledger.ErrAccountNotFound)
	}
	return data, nil
}

func (s *Store) Put(key program.Identity, data []byte) error {
	if err := s.db.Put(s.wo, dbKey(key), data); err != nil {
		return fmt.Errorf("failed writing account %s: %w", key, err)
	}
	return nil
}

func (s *Store) Keys() ([]program.Identity, error) {
	it := s.db.NewIterator(s.ro)
	defer it.Close()
	var keys []program.Identity
	for it.Seek(accountPrefix); it.Valid(); it.Next() {
		k := it.Key()
		if !bytes.HasPrefix(k, accountPrefix) {
			break
		}
		var id program.Identity
		if len(k)-len(accountPrefix) != len(id) {
			return nil, fmt.Errorf("unexpected leveldb key %q", k)
		}
		copy(id[:], k[len(accountPrefix):])
		keys = append(keys, id)
	}
	if err := it.GetError(); err != nil {
		return nil, err
	}
	return keys, nil
}

// Compact runs log and sstable compaction.
func (s *Store) Compact() {
	s.db.CompactRange(levigo.Range{})
}

// Close shuts down the database.
func (s *Store) Close() error {
	s.ro.Close()
	s.wo.Close()
	s.db.Close()
	s.cache.Close()
	return nil
}
