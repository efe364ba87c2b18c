package mirror

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/tchajed/pricedb/keeper"
	"github.com/tchajed/pricedb/program"
)

// Program is the mirror entrypoint as seen by a ledger.
type Program struct{}

func (Program) Name() string { return "mirror" }

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

// Process runs one mirror instruction.
//
// Accounts are [mirror] for Init, [mirror, sender] for TransferOwnership and
// [mirror, sender, keeper] for SetPrice. The keeper account is only read.
func Process(accounts []*program.Account, instruction []byte) error {
	cmd, err := DecodeCommand(instruction)
	if err != nil {
		return err
	}
	logger := log.WithFields(log.Fields{"program": "mirror", "command": cmd.Name()})
	logger.Debug("processing")

	if err := process(program.NewAccounts(accounts), cmd); err != nil {
		logger.WithError(err).Info("rejected")
		return fmt.Errorf("mirror %s: %w", cmd.Name(), err)
	}
	return nil
}

func process(accts *program.Accounts, cmd Command) error {
	mirrorAcct, err := accts.Next("mirror")
	if err != nil {
		return err
	}

	if c, ok := cmd.(Init); ok {
		if err := program.RequireUninitialized(mirrorAcct); err != nil {
			return err
		}
		// the layout is fixed, so a zeroed account of the wrong size is
		// rejected before anything is written
		if _, err := Decode(mirrorAcct.Data); err != nil {
			return err
		}
		s := &State{Owner: c.Owner}
		return mirrorAcct.Store(s.Encode())
	}

	sender, err := accts.Next("sender")
	if err != nil {
		return err
	}
	if err := program.RequireInitialized(mirrorAcct); err != nil {
		return err
	}
	s, err := Decode(mirrorAcct.Data)
	if err != nil {
		return err
	}
	if err := program.RequireOwner(sender, s.Owner); err != nil {
		return err
	}

	switch c := cmd.(type) {
	case TransferOwnership:
		s.Owner = c.NewOwner
	case SetPrice:
		keeperAcct, err := accts.Next("keeper")
		if err != nil {
			return err
		}
		rate, err := lookup(keeperAcct.Data, c.Symbol)
		if err != nil {
			return err
		}
		s.LatestSymbol = c.Symbol
		s.LatestPrice = rate
	}
	return mirrorAcct.Store(s.Encode())
}

// lookup reads the rate for sym from keeper account data.
func lookup(data []byte, sym program.Symbol) (uint64, error) {
	ks, err := keeper.Decode(data)
	if err != nil {
		return 0, err
	}
	p, ok := ks.Lookup(sym)
	if !ok {
		return 0, fmt.Errorf("symbol %s: %w", sym, program.ErrKeyNotFound)
	}
	return p.Rate, nil
}
