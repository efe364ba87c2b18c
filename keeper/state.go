package keeper

import (
	"bytes"
	"fmt"

	"github.com/tchajed/pricedb/bin"
	"github.com/tchajed/pricedb/program"
)

// Account data layout:
//
// owner        [32]byte
// current_size uint8
// slots        uint32 count, then count × Price
//
// Price layout:
//
// symbol       [8]byte
// rate         uint64
// last_updated uint64
// request_id   uint64

const (
	priceSize  = 8 + 8 + 8 + 8
	headerSize = 32 + 1 + 4
)

// Price is one slot of the keeper. A zero Symbol marks an empty slot.
type Price struct {
	Symbol      program.Symbol
	Rate        uint64
	LastUpdated uint64
	RequestID   uint64
}

func (p Price) IsEmpty() bool {
	return p.Symbol.IsSentinel()
}

// State is the decoded keeper account.
//
// Prices has the capacity chosen at Init as its length. Prices[:CurrentSize]
// are the live entries; everything after is zero.
type State struct {
	Owner       program.Identity
	CurrentSize uint8
	Prices      []Price
}

// New creates an empty keeper with capacity zeroed slots.
func New(capacity uint8, owner program.Identity) *State {
	return &State{
		Owner:  owner,
		Prices: make([]Price, capacity),
	}
}

// AccountSize is the exact account length for a keeper of this capacity.
func AccountSize(capacity uint8) int {
	return headerSize + int(capacity)*priceSize
}

// Capacity is the fixed number of slots.
func (s *State) Capacity() int {
	return len(s.Prices)
}

// Active returns the live prefix of the slots.
func (s *State) Active() []Price {
	return s.Prices[:s.CurrentSize]
}

// Lookup finds the slot holding sym anywhere in the slot array.
func (s *State) Lookup(sym program.Symbol) (Price, bool) {
	if sym.IsSentinel() {
		return Price{}, false
	}
	for _, p := range s.Prices {
		if p.Symbol == sym {
			return p, true
		}
	}
	return Price{}, false
}

func encodePrice(e *bin.Encoder, p Price) {
	e.Bytes(p.Symbol[:])
	e.Uint64(p.Rate)
	e.Uint64(p.LastUpdated)
	e.Uint64(p.RequestID)
}

func decodePrice(d *bin.Decoder) Price {
	var p Price
	d.Fixed(p.Symbol[:])
	p.Rate = d.Uint64()
	p.LastUpdated = d.Uint64()
	p.RequestID = d.Uint64()
	return p
}

// Encode serializes the state.
func (s *State) Encode() []byte {
	var buf bytes.Buffer
	buf.Grow(headerSize + len(s.Prices)*priceSize)
	e := bin.NewEncoder(&buf)
	e.Bytes(s.Owner[:])
	e.Uint8(s.CurrentSize)
	e.SeqLen(len(s.Prices))
	for _, p := range s.Prices {
		encodePrice(e, p)
	}
	return buf.Bytes()
}

// Decode parses keeper account data, which must be consumed exactly.
func Decode(data []byte) (*State, error) {
	d := bin.NewDecoder(data)
	s := &State{}
	d.Fixed(s.Owner[:])
	s.CurrentSize = d.Uint8()
	n := d.SeqLen(priceSize)
	s.Prices = make([]Price, n)
	for i := range s.Prices {
		s.Prices[i] = decodePrice(d)
	}
	if err := d.Finish(); err != nil {
		return nil, fmt.Errorf("keeper data: %v: %w", err, program.ErrMalformedBuffer)
	}
	if int(s.CurrentSize) > len(s.Prices) {
		return nil, fmt.Errorf("keeper data: size %d exceeds capacity %d: %w",
			s.CurrentSize, len(s.Prices), program.ErrMalformedBuffer)
	}
	return s, nil
}
