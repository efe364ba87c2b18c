package keeper

import (
	"fmt"
	"math"

	"github.com/tchajed/pricedb/program"
)

// findActive returns the slot index holding sym, scanning the live prefix in
// order and stopping at the first empty slot.
func (s *State) findActive(sym program.Symbol) int {
	for i, p := range s.Active() {
		if p.IsEmpty() {
			break
		}
		if p.Symbol == sym {
			return i
		}
	}
	return -1
}

// Relay upserts prices.
//
// A price whose symbol is already live overwrites that slot in place, so
// existing entries keep their index. The rest are appended in input order
// and are not deduplicated against each other. If the appends would not fit
// the state is left untouched and ErrCapacityExceeded is returned.
func (s *State) Relay(prices []Price) error {
	updates := make([]int, len(prices))
	var added []Price
	for i, p := range prices {
		updates[i] = s.findActive(p.Symbol)
		if updates[i] < 0 {
			added = append(added, p)
		}
	}

	newSize := int(s.CurrentSize) + len(added)
	if newSize > s.Capacity() || newSize > math.MaxUint8 {
		return fmt.Errorf("%d live + %d new prices > capacity %d: %w",
			s.CurrentSize, len(added), s.Capacity(), program.ErrCapacityExceeded)
	}

	for i, p := range prices {
		if j := updates[i]; j >= 0 {
			slot := &s.Prices[j]
			slot.Rate = p.Rate
			slot.LastUpdated = p.LastUpdated
			slot.RequestID = p.RequestID
		}
	}
	copy(s.Prices[s.CurrentSize:newSize], added)
	s.CurrentSize = uint8(newSize)
	return nil
}

// Remove drops every live price whose symbol is in symbols, then compacts the
// survivors to the front in their original order and zeroes the rest.
func (s *State) Remove(symbols []program.Symbol) {
	drop := make(map[program.Symbol]bool, len(symbols))
	for _, sym := range symbols {
		drop[sym] = true
	}

	kept := make([]Price, 0, len(s.Prices))
	for _, p := range s.Prices {
		if !p.IsEmpty() && !drop[p.Symbol] {
			kept = append(kept, p)
		}
	}

	for i := range s.Prices {
		if i < len(kept) {
			s.Prices[i] = kept[i]
		} else {
			s.Prices[i] = Price{}
		}
	}
	s.CurrentSize = uint8(len(kept))
}
