package ledger

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tchajed/pricedb/bin"
	"github.com/tchajed/pricedb/fs"
	"github.com/tchajed/pricedb/journal"
)

// Entry is the journal record of one committed invocation.
//
// on-disk representation:
// id          [16]byte
// time        uint64 (unix nanoseconds)
// program     uint32 length, bytes
// instruction uint32 length, bytes
// accounts    uint32 count, count × (key [32]byte, signer uint8)
type Entry struct {
	ID          uuid.UUID
	Time        time.Time
	Program     string
	Instruction []byte
	Accounts    []AccountMeta
}

func (e Entry) Encode() []byte {
	var buf bytes.Buffer
	enc := bin.NewEncoder(&buf)
	enc.Bytes(e.ID[:])
	enc.Uint64(uint64(e.Time.UnixNano()))
	enc.SeqLen(len(e.Program))
	enc.Bytes([]byte(e.Program))
	enc.SeqLen(len(e.Instruction))
	enc.Bytes(e.Instruction)
	enc.SeqLen(len(e.Accounts))
	for _, m := range e.Accounts {
		enc.Bytes(m.Key[:])
		if m.Signer {
			enc.Uint8(1)
		} else {
			enc.Uint8(0)
		}
	}
	return buf.Bytes()
}

func DecodeEntry(data []byte) (Entry, error) {
	d := bin.NewDecoder(data)
	var e Entry
	d.Fixed(e.ID[:])
	e.Time = time.Unix(0, int64(d.Uint64()))
	e.Program = string(d.Bytes(d.SeqLen(1)))
	e.Instruction = append([]byte{}, d.Bytes(d.SeqLen(1))...)
	e.Accounts = make([]AccountMeta, d.SeqLen(32+1))
	for i := range e.Accounts {
		d.Fixed(e.Accounts[i].Key[:])
		e.Accounts[i].Signer = d.Uint8() != 0
	}
	if err := d.Finish(); err != nil {
		return Entry{}, fmt.Errorf("failed to decode journal entry: %w", err)
	}
	return e, nil
}

// OpenJournal starts a new journal file in filesys.
func OpenJournal(filesys fs.Filesys) (*journal.Writer, error) {
	f, err := filesys.Create(journal.Name(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("could not create journal: %w", err)
	}
	return journal.New(f), nil
}

// History reads every committed invocation from the journals in filesys,
// oldest first.
func History(filesys fs.Filesys) ([]Entry, error) {
	names, err := filesys.List()
	if err != nil {
		return nil, err
	}
	var entries []Entry
	for _, name := range names {
		if !journal.IsJournal(name) {
			continue
		}
		f, err := filesys.Open(name)
		if err != nil {
			return nil, err
		}
		txns, err := journal.RecoverTxns(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("journal %s: %w", name, err)
		}
		for _, txn := range txns {
			e, err := DecodeEntry(txn)
			if err != nil {
				return nil, fmt.Errorf("journal %s: %w", name, err)
			}
			entries = append(entries, e)
		}
	}
	return entries, nil
}
