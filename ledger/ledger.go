package ledger

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tchajed/pricedb/journal"
	"github.com/tchajed/pricedb/program"
)

// Program is an on-ledger program such as keeper.Program or mirror.Program.
type Program interface {
	Name() string
	// CommandName names the instruction for logs and metrics.
	CommandName(instruction []byte) string
	Process(accounts []*program.Account, instruction []byte) error
}

// AccountMeta lists one account of an invocation and whether its owner
// authorized the invocation.
type AccountMeta struct {
	Key    program.Identity
	Signer bool
}

func Signer(key program.Identity) AccountMeta {
	return AccountMeta{Key: key, Signer: true}
}

func Readonly(key program.Identity) AccountMeta {
	return AccountMeta{Key: key}
}

// Receipt describes a committed invocation.
type Receipt struct {
	ID      uuid.UUID
	Program string
	Command string
	// Changed lists the accounts whose data was rewritten.
	Changed []program.Identity
}

// Ledger is a local stand-in for the chain: it allocates zero-filled
// accounts, runs one invocation at a time, and persists the accounts a
// program changed only if the program succeeded.
type Ledger struct {
	mu      sync.Mutex
	store   Store
	journal *journal.Writer
	metrics *Metrics
	now     func() time.Time
}

type Option func(*Ledger)

// WithJournal records every committed invocation in w.
func WithJournal(w *journal.Writer) Option {
	return func(l *Ledger) { l.journal = w }
}

func WithMetrics(m *Metrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{store: store, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CreateAccount allocates a zero-filled account of size bytes.
func (l *Ledger) CreateAccount(key program.Identity, size int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.store.Get(key); err == nil {
		return fmt.Errorf("%s: %w", key, ErrAccountExists)
	} else if !errors.Is(err, ErrAccountNotFound) {
		return err
	}
	if err := l.store.Put(key, make([]byte, size)); err != nil {
		return err
	}
	log.WithFields(log.Fields{"account": key.String(), "size": size}).Info("created account")
	return nil
}

// Account returns a copy of the account data.
func (l *Ledger) Account(key program.Identity) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Get(key)
}

func (l *Ledger) Accounts() ([]program.Identity, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Keys()
}

// Invoke runs instruction against p with the listed accounts.
//
// An error wrapping ErrNotJournaled comes with a Receipt whose Changed
// accounts were persisted.
//
// Accounts that do not exist in the store (typically signer wallets) are
// passed with no data. An account listed twice shares one buffer.
func (l *Ledger) Invoke(p Program, instruction []byte, metas ...AccountMeta) (Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	receipt := Receipt{
		ID:      uuid.New(),
		Program: p.Name(),
		Command: p.CommandName(instruction),
	}
	logger := log.WithFields(log.Fields{
		"invocation": receipt.ID,
		"program":    receipt.Program,
		"command":    receipt.Command,
	})

	type loaded struct {
		key      program.Identity
		data     []byte
		original []byte
	}
	var order []*loaded
	byKey := make(map[program.Identity]*loaded)
	accounts := make([]*program.Account, 0, len(metas))
	for _, m := range metas {
		ld, ok := byKey[m.Key]
		if !ok {
			data, err := l.store.Get(m.Key)
			if err != nil && !errors.Is(err, ErrAccountNotFound) {
				l.metrics.observe(receipt.Program, receipt.Command, err)
				return receipt, err
			}
			ld = &loaded{key: m.Key, data: data, original: append([]byte(nil), data...)}
			byKey[m.Key] = ld
			order = append(order, ld)
		}
		accounts = append(accounts, &program.Account{Key: m.Key, IsSigner: m.Signer, Data: ld.data})
	}

	err := p.Process(accounts, instruction)
	if err == nil {
		for _, ld := range order {
			if bytes.Equal(ld.data, ld.original) {
				continue
			}
			if err = l.store.Put(ld.key, ld.data); err != nil {
				break
			}
			l.metrics.wrote(len(ld.data))
			receipt.Changed = append(receipt.Changed, ld.key)
		}
	}
	if err == nil {
		err = l.record(receipt, instruction, metas)
	}
	l.metrics.observe(receipt.Program, receipt.Command, err)
	if err != nil {
		logger.WithField("outcome", Outcome(err)).WithError(err).Info("invocation failed")
		return receipt, err
	}
	logger.WithField("changed", len(receipt.Changed)).Debug("invocation committed")
	return receipt, nil
}

// record journals a committed invocation.
func (l *Ledger) record(receipt Receipt, instruction []byte, metas []AccountMeta) error {
	if l.journal == nil {
		return nil
	}
	entry := Entry{
		ID:          receipt.ID,
		Time:        l.now(),
		Program:     receipt.Program,
		Instruction: instruction,
		Accounts:    metas,
	}
	if err := l.journal.Add(entry.Encode()); err != nil {
		return fmt.Errorf("invocation %s: %w: %v", receipt.ID, ErrNotJournaled, err)
	}
	return nil
}

// Close closes the journal and the store.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.journal != nil {
		if err := l.journal.Close(); err != nil {
			return err
		}
	}
	return l.store.Close()
}
