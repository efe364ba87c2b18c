package program

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsInitialized(t *testing.T) {
	assert := assert.New(t)
	assert.False(IsInitialized(nil), "empty buffer is uninitialized")
	assert.False(IsInitialized(make([]byte, 48)))
	b := make([]byte, 48)
	b[47] = 1
	assert.True(IsInitialized(b), "a single nonzero byte initializes")
	big := make([]byte, 1<<16)
	for i := range big {
		big[i] = 0xff
	}
	assert.True(IsInitialized(big), "sum must not overflow back to zero")
}

func TestRequireOwner(t *testing.T) {
	assert := assert.New(t)
	owner := Identity{1}
	other := Identity{2}

	err := RequireOwner(&Account{Key: owner}, owner)
	assert.ErrorIs(err, ErrMissingAuthorization, "owner still has to sign")

	err = RequireOwner(&Account{Key: other, IsSigner: true}, owner)
	assert.ErrorIs(err, ErrNotOwner)

	assert.NoError(RequireOwner(&Account{Key: owner, IsSigner: true}, owner))
}

func TestInitGates(t *testing.T) {
	assert := assert.New(t)
	fresh := &Account{Data: make([]byte, 8)}
	assert.NoError(RequireUninitialized(fresh))
	assert.ErrorIs(RequireInitialized(fresh), ErrUninitialized)

	used := &Account{Data: []byte{0, 0, 3}}
	assert.ErrorIs(RequireUninitialized(used), ErrAlreadyInitialized)
	assert.NoError(RequireInitialized(used))
}

func TestAccountsNext(t *testing.T) {
	assert := assert.New(t)
	a := &Account{Key: Identity{1}}
	accts := NewAccounts([]*Account{a})
	got, err := accts.Next("keeper")
	assert.NoError(err)
	assert.Same(a, got)
	_, err = accts.Next("sender")
	assert.ErrorIs(err, ErrNotEnoughAccounts)
}

func TestAccountStore(t *testing.T) {
	assert := assert.New(t)
	acct := &Account{Data: []byte{9, 9, 9, 9}}
	assert.NoError(acct.Store([]byte{1, 2}))
	assert.Equal([]byte{1, 2, 9, 9}, acct.Data)
	assert.ErrorIs(acct.Store(make([]byte, 5)), ErrAccountDataTooSmall)
	assert.Equal([]byte{1, 2, 9, 9}, acct.Data, "failed store writes nothing")
}

func TestSymbol(t *testing.T) {
	assert := assert.New(t)
	s, err := NewSymbol("BTC")
	assert.NoError(err)
	assert.Equal(Symbol{'B', 'T', 'C'}, s)
	assert.Equal("BTC", s.String())
	assert.False(s.IsSentinel())

	_, err = NewSymbol("")
	assert.Error(err)
	_, err = NewSymbol("TOOLONGNAME")
	assert.Error(err)
	_, err = NewSymbol("\x00\x00")
	assert.Error(err, "zero bytes would collide with the sentinel")
	assert.True(Sentinel.IsSentinel())
}

func TestIdentityRoundtrip(t *testing.T) {
	assert := assert.New(t)
	var id Identity
	for i := range id {
		id[i] = byte(i * 7)
	}
	parsed, err := ParseIdentity(id.String())
	assert.NoError(err)
	assert.Equal(id, parsed)

	_, err = ParseIdentity("abc")
	assert.Error(err)
	assert.True(Identity{}.IsZero())
}

func TestCode(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(uint32(112), Code(fmt.Errorf("relay: %w", ErrNotOwner)))
	assert.Equal(uint32(113), Code(ErrMalformedBuffer))
	assert.Equal(uint32(114), Code(ErrCapacityExceeded))
	assert.Equal(uint32(115), Code(ErrKeyNotFound))
	assert.Equal(uint32(0), Code(ErrUninitialized))
}
