package main

import (
	"fmt"

	"github.com/tchajed/pricedb/keeper"
	"github.com/tchajed/pricedb/ledger"
	"github.com/tchajed/pricedb/mirror"
	"github.com/tchajed/pricedb/program"
)

var (
	keeperKey = program.Identity{'k', 'e', 'e', 'p', 'e', 'r'}
	mirrorKey = program.Identity{'m', 'i', 'r', 'r', 'o', 'r'}
	ownerKey  = program.Identity{'o', 'w', 'n', 'e', 'r'}
)

// workload drives one keeper and one mirror through a ledger, tracking the
// keeper's live symbols so operations can target existing records.
type workload struct {
	*ledger.Ledger
	capacity int
	active   []program.Symbol
}

func newWorkload(store ledger.Store, opts []ledger.Option, capacity uint8) (*workload, error) {
	w := &workload{Ledger: ledger.New(store, opts...), capacity: int(capacity)}
	if err := w.CreateAccount(keeperKey, keeper.AccountSize(capacity)); err != nil {
		return nil, err
	}
	if err := w.CreateAccount(mirrorKey, mirror.AccountSize); err != nil {
		return nil, err
	}
	cmd := keeper.EncodeCommand(keeper.Init{Capacity: capacity, Owner: ownerKey})
	if _, err := w.Invoke(keeper.Program{}, cmd, ledger.Readonly(keeperKey)); err != nil {
		return nil, err
	}
	cmd = mirror.EncodeCommand(mirror.Init{Owner: ownerKey})
	if _, err := w.Invoke(mirror.Program{}, cmd, ledger.Readonly(mirrorKey)); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *workload) invokeKeeper(cmd keeper.Command) (int, error) {
	instruction := keeper.EncodeCommand(cmd)
	_, err := w.Invoke(keeper.Program{}, instruction, ledger.Readonly(keeperKey), ledger.Signer(ownerKey))
	return len(instruction), err
}

func (w *workload) relayNew(g *generator) (int, error) {
	sym := g.NextSymbol()
	n, err := w.invokeKeeper(keeper.Relay{Prices: []keeper.Price{g.Price(sym)}})
	if err == nil {
		w.active = append(w.active, sym)
	}
	return n, err
}

func (w *workload) removeAll() error {
	if _, err := w.invokeKeeper(keeper.Remove{Symbols: w.active}); err != nil {
		return err
	}
	w.active = nil
	return nil
}

func (w *workload) fillUp(g *generator) error {
	for len(w.active) < w.capacity {
		if _, err := w.relayNew(g); err != nil {
			return err
		}
	}
	return nil
}

// fill relays one new symbol, emptying the keeper first if it is full.
func (w *workload) fill(g *generator) (int, error) {
	if len(w.active) == w.capacity {
		if err := w.removeAll(); err != nil {
			return 0, err
		}
	}
	return w.relayNew(g)
}

// update relays a new rate for an existing symbol.
func (w *workload) update(g *generator) (int, error) {
	if err := w.fillUp(g); err != nil {
		return 0, err
	}
	return w.invokeKeeper(keeper.Relay{Prices: []keeper.Price{g.Price(g.Pick(w.active))}})
}

// remove drops one existing symbol.
func (w *workload) remove(g *generator) (int, error) {
	if len(w.active) == 0 {
		if _, err := w.relayNew(g); err != nil {
			return 0, err
		}
	}
	i := g.Intn(len(w.active))
	n, err := w.invokeKeeper(keeper.Remove{Symbols: []program.Symbol{w.active[i]}})
	if err != nil {
		return 0, err
	}
	w.active = append(w.active[:i], w.active[i+1:]...)
	return n, nil
}

// setPrice copies an existing keeper rate into the mirror.
func (w *workload) setPrice(g *generator) (int, error) {
	if len(w.active) == 0 {
		if _, err := w.relayNew(g); err != nil {
			return 0, err
		}
	}
	instruction := mirror.EncodeCommand(mirror.SetPrice{Symbol: g.Pick(w.active)})
	_, err := w.Invoke(mirror.Program{}, instruction,
		ledger.Readonly(mirrorKey), ledger.Signer(ownerKey), ledger.Readonly(keeperKey))
	return len(instruction), err
}

// keeperSymbols reads the live symbols back from the keeper account.
func (w *workload) keeperSymbols() ([]program.Symbol, error) {
	data, err := w.Account(keeperKey)
	if err != nil {
		return nil, err
	}
	s, err := keeper.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("keeper account: %w", err)
	}
	var syms []program.Symbol
	for _, p := range s.Active() {
		syms = append(syms, p.Symbol)
	}
	return syms, nil
}
