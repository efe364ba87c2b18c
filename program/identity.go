package program

import (
	"fmt"

	"github.com/btcsuite/btcutil/base58"
)

// Identity is the 32-byte public key of an account or a signer.
type Identity [32]byte

// String gives the base58 form of the identity.
func (id Identity) String() string {
	return base58.Encode(id[:])
}

// IsZero reports whether every byte of the identity is zero.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// ParseIdentity decodes a base58 identity.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	b := base58.Decode(s)
	if len(b) != len(id) {
		return id, fmt.Errorf("identity %q decodes to %d bytes, expected %d", s, len(b), len(id))
	}
	copy(id[:], b)
	return id, nil
}

// Symbol names a price record. The all-zero symbol marks an empty slot.
type Symbol [8]byte

// Sentinel is the empty-slot symbol.
var Sentinel Symbol

// NewSymbol pads name with zero bytes.
func NewSymbol(name string) (Symbol, error) {
	var s Symbol
	if len(name) == 0 {
		return s, fmt.Errorf("symbol must not be empty")
	}
	if len(name) > len(s) {
		return s, fmt.Errorf("symbol %q is longer than %d bytes", name, len(s))
	}
	copy(s[:], name)
	if s.IsSentinel() {
		return s, fmt.Errorf("symbol %q is all zero bytes", name)
	}
	return s, nil
}

// MustSymbol is NewSymbol for constant names.
func MustSymbol(name string) Symbol {
	s, err := NewSymbol(name)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Symbol) IsSentinel() bool {
	return s == Sentinel
}

// String trims the zero padding.
func (s Symbol) String() string {
	n := len(s)
	for n > 0 && s[n-1] == 0 {
		n--
	}
	return string(s[:n])
}
