package keeper

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/tchajed/pricedb/program"
)

// Feed is a relay message as produced by the price relayer: parallel arrays,
// one entry per symbol. Rates arrive as decimal strings.
type Feed struct {
	Symbols      []string `json:"symbols"`
	Rates        []string `json:"rates"`
	ResolveTimes []uint64 `json:"resolve_times"`
	RequestIDs   []uint64 `json:"request_ids"`
}

// ReadFeed decodes a JSON feed, accepting either a bare feed or one wrapped
// as {"relay": {...}}.
func ReadFeed(r io.Reader) (Feed, error) {
	var msg struct {
		Feed
		Relay *Feed `json:"relay"`
	}
	if err := json.NewDecoder(r).Decode(&msg); err != nil {
		return Feed{}, fmt.Errorf("failed to decode relay feed: %w", err)
	}
	if msg.Relay != nil {
		return *msg.Relay, nil
	}
	return msg.Feed, nil
}

// Prices converts the feed into a Relay batch.
func (f Feed) Prices() ([]Price, error) {
	n := len(f.Symbols)
	if len(f.Rates) != n || len(f.ResolveTimes) != n || len(f.RequestIDs) != n {
		return nil, fmt.Errorf("feed arrays differ in length: symbols=%d rates=%d resolve_times=%d request_ids=%d",
			n, len(f.Rates), len(f.ResolveTimes), len(f.RequestIDs))
	}
	prices := make([]Price, 0, n)
	for i, name := range f.Symbols {
		sym, err := program.NewSymbol(name)
		if err != nil {
			return nil, err
		}
		rate, err := strconv.ParseUint(f.Rates[i], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("rate for %s: %w", name, err)
		}
		prices = append(prices, Price{
			Symbol:      sym,
			Rate:        rate,
			LastUpdated: f.ResolveTimes[i],
			RequestID:   f.RequestIDs[i],
		})
	}
	return prices, nil
}
