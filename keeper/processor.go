package keeper

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tchajed/pricedb/program"
)

// Program is the keeper entrypoint as seen by a ledger.
type Program struct{}

func (Program) Name() string { return "keeper" }

// CommandName names the instruction for logs, or "invalid".
func (Program) CommandName(instruction []byte) string {
	cmd, err := DecodeCommand(instruction)
	if err != nil {
		return "invalid"
	}
	return cmd.Name()
}

func (Program) Process(accounts []*program.Account, instruction []byte) error {
	return Process(accounts, instruction)
}

// Process runs one keeper instruction.
//
// Accounts are [keeper] for Init and [keeper, sender] otherwise. The keeper
// account data is rewritten only if every check passes.
func Process(accounts []*program.Account, instruction []byte) error {
	cmd, err := DecodeCommand(instruction)
	if err != nil {
		return err
	}
	logger := log.WithFields(log.Fields{"program": "keeper", "command": cmd.Name()})
	logger.Debug("processing")

	if err := process(program.NewAccounts(accounts), cmd); err != nil {
		logger.WithError(err).Info("rejected")
		return fmt.Errorf("keeper %s: %w", cmd.Name(), err)
	}
	return nil
}

func process(accts *program.Accounts, cmd Command) error {
	keeperAcct, err := accts.Next("keeper")
	if err != nil {
		return err
	}

	if c, ok := cmd.(Init); ok {
		if err := program.RequireUninitialized(keeperAcct); err != nil {
			return err
		}
		return keeperAcct.Store(New(c.Capacity, c.Owner).Encode())
	}

	sender, err := accts.Next("sender")
	if err != nil {
		return err
	}
	if err := program.RequireInitialized(keeperAcct); err != nil {
		return err
	}
	s, err := Decode(keeperAcct.Data)
	if err != nil {
		return err
	}
	if err := program.RequireOwner(sender, s.Owner); err != nil {
		return err
	}

	switch c := cmd.(type) {
	case TransferOwnership:
		s.Owner = c.NewOwner
	case Relay:
		if err := s.Relay(c.Prices); err != nil {
			return err
		}
	case Remove:
		s.Remove(c.Symbols)
	}
	return keeperAcct.Store(s.Encode())
}
