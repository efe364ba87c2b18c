package mirror

import (
	"bytes"
	"fmt"

	"github.com/tchajed/pricedb/bin"
	"github.com/tchajed/pricedb/program"
)

// AccountSize is the exact account length of a mirror:
// owner [32]byte, latest_symbol [8]byte, latest_price uint64.
const AccountSize = 32 + 8 + 8

// State is the decoded mirror account. A sentinel LatestSymbol means no
// price has been copied yet.
type State struct {
	Owner        program.Identity
	LatestSymbol program.Symbol
	LatestPrice  uint64
}

func (s *State) Encode() []byte {
	var buf bytes.Buffer
	e := bin.NewEncoder(&buf)
	e.Bytes(s.Owner[:])
	e.Bytes(s.LatestSymbol[:])
	e.Uint64(s.LatestPrice)
	return buf.Bytes()
}

func Decode(data []byte) (*State, error) {
	d := bin.NewDecoder(data)
	s := &State{}
	d.Fixed(s.Owner[:])
	d.Fixed(s.LatestSymbol[:])
	s.LatestPrice = d.Uint64()
	if err := d.Finish(); err != nil {
		return nil, fmt.Errorf("mirror data: %v: %w", err, program.ErrMalformedBuffer)
	}
	return s, nil
}
