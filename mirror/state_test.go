package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tchajed/pricedb/program"
)

func TestStateRoundtrip(t *testing.T) {
	assert := assert.New(t)
	for _, s := range []*State{
		{},
		{Owner: program.Identity{1}},
		{Owner: program.Identity{2}, LatestSymbol: program.MustSymbol("BTC"), LatestPrice: 42},
	} {
		data := s.Encode()
		assert.Equal(AccountSize, len(data))
		decoded, err := Decode(data)
		assert.NoError(err)
		assert.Equal(s, decoded)
	}
}

func TestDecodeWrongSize(t *testing.T) {
	_, err := Decode(make([]byte, AccountSize-1))
	assert.ErrorIs(t, err, program.ErrMalformedBuffer)
}

func TestCommands(t *testing.T) {
	assert := assert.New(t)
	for _, cmd := range []Command{
		Init{Owner: program.Identity{1}},
		TransferOwnership{NewOwner: program.Identity{2}},
		SetPrice{Symbol: program.MustSymbol("ETH")},
	} {
		decoded, err := DecodeCommand(EncodeCommand(cmd))
		assert.NoError(err)
		assert.Equal(cmd, decoded)
	}

	assert.Equal([]byte{2, 'E', 'T', 'H', 0, 0, 0, 0, 0},
		EncodeCommand(SetPrice{Symbol: program.MustSymbol("ETH")}))

	for name, data := range map[string][]byte{
		"empty":        {},
		"unknown tag":  {3},
		"short owner":  {0, 1, 2},
		"empty symbol": EncodeCommand(SetPrice{}),
	} {
		_, err := DecodeCommand(data)
		assert.ErrorIs(err, program.ErrInvalidCommand, name)
	}
}
