package program

import "fmt"

// IsInitialized reports whether any byte of data is nonzero.
//
// An owner of all zero bytes with otherwise empty state is indistinguishable
// from a fresh account.
func IsInitialized(data []byte) bool {
	var sum uint64
	for _, b := range data {
		sum += uint64(b)
	}
	return sum > 0
}

// RequireUninitialized guards Init.
func RequireUninitialized(acct *Account) error {
	if IsInitialized(acct.Data) {
		return fmt.Errorf("%s: %w", acct.Key, ErrAlreadyInitialized)
	}
	return nil
}

// RequireInitialized guards every command except Init.
func RequireInitialized(acct *Account) error {
	if !IsInitialized(acct.Data) {
		return fmt.Errorf("%s: %w", acct.Key, ErrUninitialized)
	}
	return nil
}

// RequireOwner checks that sender signed the invocation and is owner.
func RequireOwner(sender *Account, owner Identity) error {
	if !sender.IsSigner {
		return fmt.Errorf("sender %s: %w", sender.Key, ErrMissingAuthorization)
	}
	if sender.Key != owner {
		return fmt.Errorf("sender %s, owner %s: %w", sender.Key, owner, ErrNotOwner)
	}
	return nil
}
