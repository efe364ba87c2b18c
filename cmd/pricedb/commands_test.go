package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tchajed/pricedb/config"
	"github.com/tchajed/pricedb/keeper"
	"github.com/tchajed/pricedb/mirror"
	"github.com/tchajed/pricedb/program"
)

func TestParseInlinePrices(t *testing.T) {
	assert := assert.New(t)
	prices, err := parseInlinePrices([]string{"BTC=42000", "ETH=3000"}, 7, 9)
	assert.NoError(err)
	assert.Equal([]keeper.Price{
		{Symbol: program.MustSymbol("BTC"), Rate: 42000, LastUpdated: 7, RequestID: 9},
		{Symbol: program.MustSymbol("ETH"), Rate: 3000, LastUpdated: 7, RequestID: 9},
	}, prices)

	for _, bad := range []string{"BTC", "BTC=-1", "=5", "TOOLONGSYM=1"} {
		_, err := parseInlinePrices([]string{bad}, 0, 0)
		assert.Error(err, bad)
	}
}

func TestDescribe(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("uninitialized (48 bytes)", describe(make([]byte, 48)))

	ks := keeper.New(2, program.Identity{1})
	require.NoError(t, ks.Relay([]keeper.Price{{Symbol: program.MustSymbol("BTC"), Rate: 5}}))
	assert.Contains(describe(ks.Encode()), "size=1/2")
	assert.Contains(describe(ks.Encode()), "BTC")

	ms := &mirror.State{Owner: program.Identity{1}, LatestSymbol: program.MustSymbol("BTC"), LatestPrice: 5}
	assert.Contains(describe(ms.Encode()), "latest=BTC price=5")
}

func TestCommandsOverMemBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = config.BackendMem
	n, err := open(cfg, true)
	require.NoError(t, err)
	defer n.Close()

	owner := program.Identity{'o'}
	k := program.Identity{'k'}
	require.NoError(t, createAccount(n, []string{"-key", k.String(), "-keeper-capacity", "2"}))
	require.NoError(t, keeperInit(n, []string{"-keeper", k.String(), "-owner", owner.String(), "-capacity", "2"}))
	require.NoError(t, keeperRelay(n, []string{"-keeper", k.String(), "-signer", owner.String(), "BTC=10"}))

	err = keeperRelay(n, []string{"-keeper", k.String(), "-signer", owner.String(), "A=1", "B=2"})
	assert.ErrorIs(t, err, program.ErrCapacityExceeded)
	assert.Equal(t, uint32(114), program.Code(err))

	assert.Error(t, keeperRemove(n, []string{"-keeper", k.String(), "BTC"}), "signer is required")
	require.NoError(t, keeperRemove(n, []string{"-keeper", k.String(), "-signer", owner.String(), "BTC"}))

	data, err := n.Account(k)
	require.NoError(t, err)
	s, err := keeper.Decode(data)
	require.NoError(t, err)
	assert.Empty(t, s.Active())
}
