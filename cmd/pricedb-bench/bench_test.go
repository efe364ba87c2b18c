package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tchajed/pricedb/fs"
	"github.com/tchajed/pricedb/ledger"
)

func TestStatsReports(t *testing.T) {
	assert := assert.New(t)
	now := time.Now()
	s := stats{
		Ops:   1000,
		Bytes: 1024 * 1024,
		Start: now.Add(-1 * time.Second),
		End:   &now,
	}
	assert.Equal(1.0, s.seconds())
	assert.Equal(1000.0, s.MicrosPerOp())
	assert.Equal(1.0, s.MegabytesPerSec())
}

func TestGeneratorSymbolsAreDistinct(t *testing.T) {
	g := newGenerator()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		s := g.NextSymbol().String()
		assert.False(t, seen[s], s)
		seen[s] = true
	}
	p := g.Price(g.NextSymbol())
	assert.Equal(t, uint64(1), p.RequestID)
}

func TestGeneratorSymbolsFitPastTenMillion(t *testing.T) {
	assert := assert.New(t)
	g := newGenerator()
	g.symbols = 9999999
	a, b := g.NextSymbol(), g.NextSymbol()
	assert.NotEqual(a, b)
	assert.Equal("S005yc1r", a.String())

	g.symbols = 36*36*36*36*36*36*36 - 1
	assert.Equal("Szzzzzzz", g.NextSymbol().String())
}

func TestWorkloadKeepsMirrorOfKeeper(t *testing.T) {
	w, err := newWorkload(ledger.NewFsStore(fs.MemFs()), nil, 4)
	require.NoError(t, err)
	g := newGenerator()

	for i := 0; i < 4; i++ {
		_, err := w.fill(g)
		require.NoError(t, err)
	}
	assert.Len(t, w.active, 4)
	_, err = w.fill(g)
	require.NoError(t, err)
	assert.Len(t, w.active, 1, "a full keeper is emptied before the next fill")
	_, err = w.update(g)
	require.NoError(t, err)
	assert.Len(t, w.active, 4, "update fills the keeper first")
	_, err = w.update(g)
	require.NoError(t, err)
	_, err = w.remove(g)
	require.NoError(t, err)
	assert.Len(t, w.active, 3)
	_, err = w.setPrice(g)
	require.NoError(t, err)

	active, err := w.keeperSymbols()
	require.NoError(t, err)
	assert.ElementsMatch(t, w.active, active)
	require.NoError(t, w.Close())
}
