package main

import (
	"fmt"
	"path/filepath"

	"github.com/tchajed/pricedb/config"
	"github.com/tchajed/pricedb/fs"
	"github.com/tchajed/pricedb/ledger"
	"github.com/tchajed/pricedb/leveldb"
)

// node is an opened ledger plus the filesystem its journals live in.
type node struct {
	*ledger.Ledger
	journals fs.Filesys
}

func openStore(cfg *config.Config) (ledger.Store, fs.Filesys, error) {
	switch cfg.Backend {
	case config.BackendMem:
		filesys := fs.MemFs()
		return ledger.NewFsStore(filesys), filesys, nil
	case config.BackendDir:
		filesys, err := fs.DirFs(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return ledger.NewFsStore(filesys), filesys, nil
	case config.BackendLevelDB:
		journals, err := fs.DirFs(filepath.Join(cfg.DataDir, "journal"))
		if err != nil {
			return nil, nil, err
		}
		store, err := leveldb.New(filepath.Join(cfg.DataDir, "accounts.ldb"))
		if err != nil {
			return nil, nil, err
		}
		return store, journals, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %s", cfg.Backend)
}

// open opens the configured store. A journal is started only when record is
// set, so read-only commands leave no empty journal files behind.
func open(cfg *config.Config, record bool) (*node, error) {
	store, journals, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	var opts []ledger.Option
	if record && cfg.Journal {
		w, err := ledger.OpenJournal(journals)
		if err != nil {
			store.Close()
			return nil, err
		}
		opts = append(opts, ledger.WithJournal(w))
	}
	return &node{
		Ledger:   ledger.New(store, opts...),
		journals: journals,
	}, nil
}
