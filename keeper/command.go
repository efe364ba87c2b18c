package keeper

import (
	"bytes"
	"fmt"

	"github.com/tchajed/pricedb/bin"
	"github.com/tchajed/pricedb/program"
)

// Command is one keeper instruction. The variant tag is the first byte of
// the encoded instruction.
type Command interface {
	tag() uint8
	// Name identifies the command in logs and metrics.
	Name() string
}

const (
	tagInit uint8 = iota
	tagTransferOwnership
	tagRelay
	tagRemove
)

// Init creates a keeper with Capacity empty slots owned by Owner.
type Init struct {
	Capacity uint8
	Owner    program.Identity
}

// TransferOwnership hands the keeper to NewOwner.
type TransferOwnership struct {
	NewOwner program.Identity
}

// Relay upserts a batch of prices.
type Relay struct {
	Prices []Price
}

// Remove deletes prices by symbol.
type Remove struct {
	Symbols []program.Symbol
}

func (Init) tag() uint8              { return tagInit }
func (TransferOwnership) tag() uint8 { return tagTransferOwnership }
func (Relay) tag() uint8             { return tagRelay }
func (Remove) tag() uint8            { return tagRemove }

func (Init) Name() string              { return "init" }
func (TransferOwnership) Name() string { return "transfer_ownership" }
func (Relay) Name() string             { return "relay" }
func (Remove) Name() string            { return "remove" }

// EncodeCommand serializes cmd as instruction data.
func EncodeCommand(cmd Command) []byte {
	var buf bytes.Buffer
	e := bin.NewEncoder(&buf)
	e.Uint8(cmd.tag())
	switch c := cmd.(type) {
	case Init:
		e.Uint8(c.Capacity)
		e.Bytes(c.Owner[:])
	case TransferOwnership:
		e.Bytes(c.NewOwner[:])
	case Relay:
		e.SeqLen(len(c.Prices))
		for _, p := range c.Prices {
			encodePrice(e, p)
		}
	case Remove:
		e.SeqLen(len(c.Symbols))
		for _, sym := range c.Symbols {
			e.Bytes(sym[:])
		}
	}
	return buf.Bytes()
}

// DecodeCommand parses instruction data.
//
// Symbols inside a command must not be the empty-slot sentinel.
func DecodeCommand(data []byte) (Command, error) {
	d := bin.NewDecoder(data)
	var cmd Command
	switch tag := d.Uint8(); {
	case d.Err() != nil:
	case tag == tagInit:
		c := Init{Capacity: d.Uint8()}
		d.Fixed(c.Owner[:])
		cmd = c
	case tag == tagTransferOwnership:
		c := TransferOwnership{}
		d.Fixed(c.NewOwner[:])
		cmd = c
	case tag == tagRelay:
		c := Relay{Prices: make([]Price, d.SeqLen(priceSize))}
		for i := range c.Prices {
			c.Prices[i] = decodePrice(d)
		}
		cmd = c
	case tag == tagRemove:
		c := Remove{Symbols: make([]program.Symbol, d.SeqLen(len(program.Symbol{})))}
		for i := range c.Symbols {
			d.Fixed(c.Symbols[i][:])
		}
		cmd = c
	default:
		return nil, fmt.Errorf("keeper: unknown command tag %d: %w", tag, program.ErrInvalidCommand)
	}
	if err := d.Finish(); err != nil {
		return nil, fmt.Errorf("keeper: %v: %w", err, program.ErrInvalidCommand)
	}
	if err := validate(cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

func validate(cmd Command) error {
	var symbols []program.Symbol
	switch c := cmd.(type) {
	case Relay:
		for _, p := range c.Prices {
			symbols = append(symbols, p.Symbol)
		}
	case Remove:
		symbols = c.Symbols
	}
	for i, sym := range symbols {
		if sym.IsSentinel() {
			return fmt.Errorf("keeper %s: symbol %d is empty: %w", cmd.Name(), i, program.ErrInvalidCommand)
		}
	}
	return nil
}
