package leveldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tchajed/pricedb/ledger"
	"github.com/tchajed/pricedb/program"
)

func TestStore(t *testing.T) {
	assert := assert.New(t)
	path := t.TempDir()
	s, err := New(path)
	require.NoError(t, err)

	a := program.Identity{1}
	b := program.Identity{2}
	_, err = s.Get(a)
	assert.ErrorIs(err, ledger.ErrAccountNotFound)

	require.NoError(t, s.Put(a, []byte{1, 2, 3}))
	require.NoError(t, s.Put(b, make([]byte, 48)))
	require.NoError(t, s.Put(a, []byte{4, 5, 6}))

	data, err := s.Get(a)
	assert.NoError(err)
	assert.Equal([]byte{4, 5, 6}, data)

	keys, err := s.Keys()
	assert.NoError(err)
	assert.Equal([]program.Identity{a, b}, keys)

	s.Compact()
	data, err = s.Get(a)
	assert.NoError(err)
	assert.Equal([]byte{4, 5, 6}, data, "compaction keeps the latest buffer")
	assert.NoError(s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()
	data, err = s.Get(b)
	assert.NoError(err)
	assert.Len(data, 48)
}

func TestLedgerOverLevelDB(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	l := ledger.New(s)
	defer l.Close()

	key := program.Identity{'k'}
	require.NoError(t, l.CreateAccount(key, 10))
	assert.ErrorIs(t, l.CreateAccount(key, 10), ledger.ErrAccountExists)
}
