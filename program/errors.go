package program

import "errors"

// Every program failure wraps one of these. None of them are retried; the
// invocation that produced one leaves all account data as it was.
var (
	ErrInvalidCommand       = errors.New("invalid command data")
	ErrNotEnoughAccounts    = errors.New("not enough accounts")
	ErrAlreadyInitialized   = errors.New("account already initialized")
	ErrUninitialized        = errors.New("account not initialized")
	ErrMissingAuthorization = errors.New("missing required signature")
	ErrNotOwner             = errors.New("sender is not the owner")
	ErrMalformedBuffer      = errors.New("malformed account data")
	ErrCapacityExceeded     = errors.New("price capacity exceeded")
	ErrKeyNotFound          = errors.New("price not found")
	ErrAccountDataTooSmall  = errors.New("account data too small")
)

// custom codes reported by the deployed programs
var codes = []struct {
	err  error
	code uint32
}{
	{ErrNotOwner, 112},
	{ErrMalformedBuffer, 113},
	{ErrCapacityExceeded, 114},
	{ErrKeyNotFound, 115},
}

// Code returns the numeric custom error code for err, or 0 if err does not
// carry one.
func Code(err error) uint32 {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return 0
}
