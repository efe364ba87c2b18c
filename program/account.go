package program

import "fmt"

// Account is one raw buffer handed to a program by the ledger.
//
// IsSigner is asserted by the ledger; programs never verify signatures
// themselves.
type Account struct {
	Key      Identity
	IsSigner bool
	Data     []byte
}

// Accounts walks the account list of an invocation in order.
type Accounts struct {
	list []*Account
	next int
}

func NewAccounts(list []*Account) *Accounts {
	return &Accounts{list: list}
}

// Next returns the next account, named role for error messages.
func (a *Accounts) Next(role string) (*Account, error) {
	if a.next >= len(a.list) {
		return nil, fmt.Errorf("%s account: %w", role, ErrNotEnoughAccounts)
	}
	acct := a.list[a.next]
	a.next++
	return acct, nil
}

// Store replaces the account data with encoded, which must fit.
//
// Bytes past len(encoded) are left as they were.
func (a *Account) Store(encoded []byte) error {
	if len(encoded) > len(a.Data) {
		return fmt.Errorf("need %d bytes, account %s has %d: %w",
			len(encoded), a.Key, len(a.Data), ErrAccountDataTooSmall)
	}
	copy(a.Data, encoded)
	return nil
}
