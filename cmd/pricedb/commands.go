package main

import (
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tchajed/pricedb/keeper"
	"github.com/tchajed/pricedb/ledger"
	"github.com/tchajed/pricedb/mirror"
	"github.com/tchajed/pricedb/program"
)

// identityFlag parses a base58 identity.
type identityFlag struct {
	id  program.Identity
	set bool
}

func (f *identityFlag) String() string {
	if !f.set {
		return ""
	}
	return f.id.String()
}

func (f *identityFlag) Set(s string) error {
	id, err := program.ParseIdentity(s)
	if err != nil {
		return err
	}
	f.id, f.set = id, true
	return nil
}

func identity(fs *flag.FlagSet, name, usage string) *identityFlag {
	f := new(identityFlag)
	fs.Var(f, name, usage)
	return f
}

// required checks that every named identity flag was given.
func required(flags map[string]*identityFlag) error {
	for name, f := range flags {
		if !f.set {
			return fmt.Errorf("missing -%s", name)
		}
	}
	return nil
}

func newFlags(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

func report(r ledger.Receipt) {
	changed := make([]string, len(r.Changed))
	for i, k := range r.Changed {
		changed[i] = k.String()
	}
	fmt.Printf("%s %s ok (invocation %s, changed: %s)\n",
		r.Program, r.Command, r.ID, strings.Join(changed, ", "))
}

func invoke(n *node, p ledger.Program, instruction []byte, metas ...ledger.AccountMeta) error {
	r, err := n.Invoke(p, instruction, metas...)
	if err != nil {
		return err
	}
	report(r)
	return nil
}

func createAccount(n *node, args []string) error {
	fs := newFlags("create-account")
	key := identity(fs, "key", "account `identity` (random if unset)")
	size := fs.Int("size", 0, "account size in bytes")
	capacity := fs.Int("keeper-capacity", -1, "size the account for a keeper with this many slots")
	forMirror := fs.Bool("mirror", false, "size the account for a mirror")
	if err := fs.Parse(args); err != nil {
		return err
	}
	switch {
	case *forMirror:
		*size = mirror.AccountSize
	case *capacity >= 0:
		if *capacity > 255 {
			return fmt.Errorf("keeper capacity %d does not fit in a byte", *capacity)
		}
		*size = keeper.AccountSize(uint8(*capacity))
	case *size <= 0:
		return errors.New("account size must be positive")
	}
	if !key.set {
		if _, err := rand.Read(key.id[:]); err != nil {
			return err
		}
	}
	if err := n.CreateAccount(key.id, *size); err != nil {
		return err
	}
	fmt.Printf("%s (%d bytes)\n", key.id, *size)
	return nil
}

func keeperInit(n *node, args []string) error {
	fs := newFlags("keeper-init")
	k := identity(fs, "keeper", "keeper account")
	owner := identity(fs, "owner", "initial owner")
	capacity := fs.Uint("capacity", 0, "number of price slots")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(map[string]*identityFlag{"keeper": k, "owner": owner}); err != nil {
		return err
	}
	if *capacity > 255 {
		return fmt.Errorf("capacity %d does not fit in a byte", *capacity)
	}
	cmd := keeper.Init{Capacity: uint8(*capacity), Owner: owner.id}
	return invoke(n, keeper.Program{}, keeper.EncodeCommand(cmd), ledger.Readonly(k.id))
}

func keeperTransfer(n *node, args []string) error {
	fs := newFlags("keeper-transfer")
	k := identity(fs, "keeper", "keeper account")
	signer := identity(fs, "signer", "current owner")
	newOwner := identity(fs, "new-owner", "new owner")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(map[string]*identityFlag{"keeper": k, "signer": signer, "new-owner": newOwner}); err != nil {
		return err
	}
	cmd := keeper.TransferOwnership{NewOwner: newOwner.id}
	return invoke(n, keeper.Program{}, keeper.EncodeCommand(cmd),
		ledger.Readonly(k.id), ledger.Signer(signer.id))
}

// parseInlinePrices reads SYM=RATE arguments.
func parseInlinePrices(args []string, updated, requestID uint64) ([]keeper.Price, error) {
	var prices []keeper.Price
	for _, arg := range args {
		name, rate, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected SYM=RATE, got %q", arg)
		}
		sym, err := program.NewSymbol(name)
		if err != nil {
			return nil, err
		}
		r, err := strconv.ParseUint(rate, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("rate for %s: %w", name, err)
		}
		prices = append(prices, keeper.Price{Symbol: sym, Rate: r, LastUpdated: updated, RequestID: requestID})
	}
	return prices, nil
}

func keeperRelay(n *node, args []string) error {
	fs := newFlags("keeper-relay")
	k := identity(fs, "keeper", "keeper account")
	signer := identity(fs, "signer", "keeper owner")
	feed := fs.String("feed", "", "relay feed JSON `file`")
	updated := fs.Uint64("time", uint64(time.Now().Unix()), "last-updated time for inline prices")
	requestID := fs.Uint64("request-id", 0, "request id for inline prices")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(map[string]*identityFlag{"keeper": k, "signer": signer}); err != nil {
		return err
	}

	var prices []keeper.Price
	var err error
	if *feed != "" {
		if fs.NArg() > 0 {
			return errors.New("give either -feed or inline prices, not both")
		}
		f, err := os.Open(*feed)
		if err != nil {
			return err
		}
		parsed, err := keeper.ReadFeed(f)
		f.Close()
		if err != nil {
			return err
		}
		if prices, err = parsed.Prices(); err != nil {
			return err
		}
	} else if prices, err = parseInlinePrices(fs.Args(), *updated, *requestID); err != nil {
		return err
	}
	if len(prices) == 0 {
		return errors.New("no prices to relay")
	}
	return invoke(n, keeper.Program{}, keeper.EncodeCommand(keeper.Relay{Prices: prices}),
		ledger.Readonly(k.id), ledger.Signer(signer.id))
}

func keeperRemove(n *node, args []string) error {
	fs := newFlags("keeper-remove")
	k := identity(fs, "keeper", "keeper account")
	signer := identity(fs, "signer", "keeper owner")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(map[string]*identityFlag{"keeper": k, "signer": signer}); err != nil {
		return err
	}
	var symbols []program.Symbol
	for _, name := range fs.Args() {
		sym, err := program.NewSymbol(name)
		if err != nil {
			return err
		}
		symbols = append(symbols, sym)
	}
	return invoke(n, keeper.Program{}, keeper.EncodeCommand(keeper.Remove{Symbols: symbols}),
		ledger.Readonly(k.id), ledger.Signer(signer.id))
}

func mirrorInit(n *node, args []string) error {
	fs := newFlags("mirror-init")
	m := identity(fs, "mirror", "mirror account")
	owner := identity(fs, "owner", "initial owner")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(map[string]*identityFlag{"mirror": m, "owner": owner}); err != nil {
		return err
	}
	return invoke(n, mirror.Program{}, mirror.EncodeCommand(mirror.Init{Owner: owner.id}),
		ledger.Readonly(m.id))
}

func mirrorTransfer(n *node, args []string) error {
	fs := newFlags("mirror-transfer")
	m := identity(fs, "mirror", "mirror account")
	signer := identity(fs, "signer", "current owner")
	newOwner := identity(fs, "new-owner", "new owner")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(map[string]*identityFlag{"mirror": m, "signer": signer, "new-owner": newOwner}); err != nil {
		return err
	}
	cmd := mirror.TransferOwnership{NewOwner: newOwner.id}
	return invoke(n, mirror.Program{}, mirror.EncodeCommand(cmd),
		ledger.Readonly(m.id), ledger.Signer(signer.id))
}

func mirrorSetPrice(n *node, args []string) error {
	fs := newFlags("mirror-set-price")
	m := identity(fs, "mirror", "mirror account")
	signer := identity(fs, "signer", "mirror owner")
	k := identity(fs, "keeper", "keeper account to read")
	symbol := fs.String("symbol", "", "symbol to copy")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(map[string]*identityFlag{"mirror": m, "signer": signer, "keeper": k}); err != nil {
		return err
	}
	sym, err := program.NewSymbol(*symbol)
	if err != nil {
		return err
	}
	return invoke(n, mirror.Program{}, mirror.EncodeCommand(mirror.SetPrice{Symbol: sym}),
		ledger.Readonly(m.id), ledger.Signer(signer.id), ledger.Readonly(k.id))
}

// describe renders account data as a keeper or mirror, whichever decodes.
func describe(data []byte) string {
	if !program.IsInitialized(data) {
		return fmt.Sprintf("uninitialized (%d bytes)", len(data))
	}
	if s, err := keeper.Decode(data); err == nil {
		var b strings.Builder
		fmt.Fprintf(&b, "keeper owner=%s size=%d/%d", s.Owner, s.CurrentSize, s.Capacity())
		for _, p := range s.Active() {
			fmt.Fprintf(&b, "\n  %-8s rate=%d last_updated=%d request_id=%d",
				p.Symbol, p.Rate, p.LastUpdated, p.RequestID)
		}
		return b.String()
	}
	if s, err := mirror.Decode(data); err == nil {
		return fmt.Sprintf("mirror owner=%s latest=%s price=%d", s.Owner, s.LatestSymbol, s.LatestPrice)
	}
	return fmt.Sprintf("unrecognized (%d bytes)", len(data))
}

func show(n *node, args []string) error {
	fs := newFlags("show")
	key := identity(fs, "key", "account to show (all if unset)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	keys := []program.Identity{key.id}
	if !key.set {
		var err error
		if keys, err = n.Accounts(); err != nil {
			return err
		}
	}
	for _, k := range keys {
		data, err := n.Account(k)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", k, describe(data))
	}
	return nil
}

var programs = map[string]ledger.Program{
	keeper.Program{}.Name(): keeper.Program{},
	mirror.Program{}.Name(): mirror.Program{},
}

func history(n *node, args []string) error {
	fs := newFlags("history")
	if err := fs.Parse(args); err != nil {
		return err
	}
	entries, err := ledger.History(n.journals)
	if err != nil {
		return err
	}
	for _, e := range entries {
		command := "unknown"
		if p, ok := programs[e.Program]; ok {
			command = p.CommandName(e.Instruction)
		}
		var accounts []string
		for _, m := range e.Accounts {
			a := m.Key.String()
			if m.Signer {
				a += " (signer)"
			}
			accounts = append(accounts, a)
		}
		fmt.Printf("%s %s %s %s [%s]\n", e.Time.Format(time.RFC3339), e.ID,
			e.Program, command, strings.Join(accounts, ", "))
	}
	return nil
}
