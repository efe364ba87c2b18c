package journal

// Atomic storage for committed invocations
//
// Supports appending binary blobs ("transactions") atomically with respect to
// crashes.
//
// API:
// - Add: commits a transaction
// - Recover: returns successfully committed transactions
//
// Each Writer produces one self-contained gob stream, so a journal that is
// reopened must go to a fresh file; see Name.

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

type recordType uint8

const (
	invalidRecord recordType = iota
	dataRecord
	commitRecord
)

type record struct {
	Type recordType
	Data []byte
}

type LogFile interface {
	io.WriteCloser
	Sync() error
}

type Writer struct {
	log LogFile
	enc *gob.Encoder
}

// Prefix starts the name of every journal file.
const Prefix = "journal-"

// Name returns a fresh journal file name. Names sort in creation order.
func Name(now time.Time) string {
	return fmt.Sprintf("%s%020d", Prefix, now.UnixNano())
}

// IsJournal reports whether fname was produced by Name.
func IsJournal(fname string) bool {
	return strings.HasPrefix(fname, Prefix) && !strings.HasSuffix(fname, ".tmp")
}

func New(f LogFile) *Writer {
	return &Writer{f, gob.NewEncoder(f)}
}

// Add durably commits data. A crash before Add returns loses at most this
// transaction.
func (l *Writer) Add(data []byte) error {
	if err := l.enc.Encode(record{dataRecord, data}); err != nil {
		return fmt.Errorf("failed to write journal record: %w", err)
	}
	if err := l.log.Sync(); err != nil {
		return fmt.Errorf("failed to sync journal: %w", err)
	}
	if err := l.enc.Encode(record{commitRecord, nil}); err != nil {
		return fmt.Errorf("failed to write journal commit: %w", err)
	}
	if err := l.log.Sync(); err != nil {
		return fmt.Errorf("failed to sync journal: %w", err)
	}
	return nil
}

func (l *Writer) Close() error {
	return l.log.Close()
}

// ErrCorrupt is returned when a journal has records out of order.
var ErrCorrupt = errors.New("corrupt journal")

// RecoverTxns reads every committed transaction. A trailing partial
// transaction is ignored.
func RecoverTxns(log io.Reader) (txns [][]byte, err error) {
	dec := gob.NewDecoder(log)
	for {
		var data record
		err := dec.Decode(&data)
		if err != nil {
			// interpret this as a partial transaction
			return txns, nil
		}
		if data.Type != dataRecord {
			return txns, fmt.Errorf("expected data record, got %d: %w", data.Type, ErrCorrupt)
		}
		var commit record
		err = dec.Decode(&commit)
		if err != nil {
			// data record was not successfully committed, so ignore it
			return txns, nil
		}
		if commit.Type != commitRecord {
			return txns, fmt.Errorf("expected commit record, got %d: %w", commit.Type, ErrCorrupt)
		}
		txns = append(txns, data.Data)
	}
}
