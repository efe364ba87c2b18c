package mirror

import (
	"bytes"
	"fmt"

	"github.com/tchajed/pricedb/bin"
	"github.com/tchajed/pricedb/program"
)

// Command is one mirror instruction.
type Command interface {
	tag() uint8
	Name() string
}

const (
	tagInit uint8 = iota
	tagTransferOwnership
	tagSetPrice
)

type Init struct {
	Owner program.Identity
}

type TransferOwnership struct {
	NewOwner program.Identity
}

// SetPrice copies the keeper's price for Symbol into the mirror.
type SetPrice struct {
	Symbol program.Symbol
}

func (Init) tag() uint8              { return tagInit }
func (TransferOwnership) tag() uint8 { return tagTransferOwnership }
func (SetPrice) tag() uint8          { return tagSetPrice }

func (Init) Name() string              { return "init" }
func (TransferOwnership) Name() string { return "transfer_ownership" }
func (SetPrice) Name() string          { return "set_price" }

func EncodeCommand(cmd Command) []byte {
	var buf bytes.Buffer
	e := bin.NewEncoder(&buf)
	e.Uint8(cmd.tag())
	switch c := cmd.(type) {
	case Init:
		e.Bytes(c.Owner[:])
	case TransferOwnership:
		e.Bytes(c.NewOwner[:])
	case SetPrice:
		e.Bytes(c.Symbol[:])
	}
	return buf.Bytes()
}

func DecodeCommand(data []byte) (Command, error) {
	d := bin.NewDecoder(data)
	var cmd Command
	switch tag := d.Uint8(); {
	case d.Err() != nil:
	case tag == tagInit:
		c := Init{}
		d.Fixed(c.Owner[:])
		cmd = c
	case tag == tagTransferOwnership:
		c := TransferOwnership{}
		d.Fixed(c.NewOwner[:])
		cmd = c
	case tag == tagSetPrice:
		c := SetPrice{}
		d.Fixed(c.Symbol[:])
		cmd = c
	default:
		return nil, fmt.Errorf("mirror: unknown command tag %d: %w", tag, program.ErrInvalidCommand)
	}
	if err := d.Finish(); err != nil {
		return nil, fmt.Errorf("mirror: %v: %w", err, program.ErrInvalidCommand)
	}
	if c, ok := cmd.(SetPrice); ok && c.Symbol.IsSentinel() {
		return nil, fmt.Errorf("mirror set_price: empty symbol: %w", program.ErrInvalidCommand)
	}
	return cmd, nil
}
