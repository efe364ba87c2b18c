package keeper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tchajed/pricedb/program"
)

func sym(name string) program.Symbol {
	return program.MustSymbol(name)
}

func price(name string, rate, ts, id uint64) Price {
	return Price{Symbol: sym(name), Rate: rate, LastUpdated: ts, RequestID: id}
}

// checkInvariant asserts the live prefix is nonempty and the suffix is zero.
func checkInvariant(assert *assert.Assertions, s *State) {
	for i, p := range s.Prices {
		if i < int(s.CurrentSize) {
			assert.False(p.IsEmpty(), "slot %d should be live", i)
		} else {
			assert.Equal(Price{}, p, "slot %d should be empty", i)
		}
	}
}

func TestRelayAppends(t *testing.T) {
	assert := assert.New(t)
	s := New(3, program.Identity{1})
	assert.NoError(s.Relay([]Price{price("ABC", 100, 1, 1)}))
	assert.Equal(uint8(1), s.CurrentSize)
	assert.Equal(price("ABC", 100, 1, 1), s.Prices[0])
	checkInvariant(assert, s)
}

func TestRelayUpdatesInPlace(t *testing.T) {
	assert := assert.New(t)
	s := New(3, program.Identity{1})
	assert.NoError(s.Relay([]Price{price("ABC", 100, 1, 1)}))
	assert.NoError(s.Relay([]Price{price("ABC", 200, 2, 2), price("XYZ", 50, 3, 3)}))
	assert.Equal(uint8(2), s.CurrentSize)
	assert.Equal(price("ABC", 200, 2, 2), s.Prices[0], "existing entry keeps its slot")
	assert.Equal(price("XYZ", 50, 3, 3), s.Prices[1])
	checkInvariant(assert, s)
}

func TestRelaySameBatchRefresh(t *testing.T) {
	assert := assert.New(t)
	s := New(4, program.Identity{1})
	batch := []Price{price("A", 1, 1, 1), price("B", 2, 1, 1)}
	assert.NoError(s.Relay(batch))

	refreshed := []Price{price("A", 1, 9, 10), price("B", 2, 9, 11)}
	assert.NoError(s.Relay(refreshed))
	assert.Equal(uint8(2), s.CurrentSize, "re-relaying live symbols adds nothing")
	assert.Equal(refreshed, s.Active())
}

func TestRelayCapacityExceededIsAtomic(t *testing.T) {
	assert := assert.New(t)
	s := New(3, program.Identity{1})
	assert.NoError(s.Relay([]Price{price("ABC", 200, 2, 2), price("XYZ", 50, 3, 3)}))
	before := s.Encode()

	err := s.Relay([]Price{price("ABC", 999, 9, 9), price("FOO", 1, 1, 1), price("BAR", 1, 1, 1)})
	assert.ErrorIs(err, program.ErrCapacityExceeded)
	assert.Equal(before, s.Encode(), "matched slots must not be updated on failure")
}

func TestRelayNewDuplicatesNotMerged(t *testing.T) {
	assert := assert.New(t)
	s := New(3, program.Identity{1})
	assert.NoError(s.Relay([]Price{price("DUP", 1, 1, 1), price("DUP", 2, 2, 2)}))
	assert.Equal(uint8(2), s.CurrentSize)
	assert.Equal([]Price{price("DUP", 1, 1, 1), price("DUP", 2, 2, 2)}, s.Active())

	p, ok := s.Lookup(sym("DUP"))
	assert.True(ok)
	assert.Equal(uint64(1), p.Rate, "lookup finds the first slot")
}

func TestRelayFillsExactly(t *testing.T) {
	assert := assert.New(t)
	s := New(2, program.Identity{1})
	assert.NoError(s.Relay([]Price{price("A", 1, 1, 1), price("B", 1, 1, 1)}))
	assert.ErrorIs(s.Relay([]Price{price("C", 1, 1, 1)}), program.ErrCapacityExceeded)
	assert.NoError(s.Relay([]Price{price("B", 5, 5, 5)}), "updates still fit when full")
	assert.Equal(uint64(5), s.Prices[1].Rate)
}

func TestRelayZeroCapacity(t *testing.T) {
	assert := assert.New(t)
	s := New(0, program.Identity{1})
	assert.NoError(s.Relay(nil))
	assert.ErrorIs(s.Relay([]Price{price("A", 1, 1, 1)}), program.ErrCapacityExceeded)
}

func TestRemoveCompacts(t *testing.T) {
	assert := assert.New(t)
	s := New(5, program.Identity{1})
	assert.NoError(s.Relay([]Price{
		price("A", 1, 1, 1),
		price("B", 2, 2, 2),
		price("C", 3, 3, 3),
		price("D", 4, 4, 4),
	}))
	s.Remove([]program.Symbol{sym("B"), sym("D"), sym("NOPE")})
	assert.Equal(uint8(2), s.CurrentSize)
	assert.Equal([]Price{price("A", 1, 1, 1), price("C", 3, 3, 3)}, s.Active(),
		"survivors keep relative order")
	checkInvariant(assert, s)
}

func TestRemoveAll(t *testing.T) {
	assert := assert.New(t)
	s := New(2, program.Identity{1})
	assert.NoError(s.Relay([]Price{price("A", 1, 1, 1), price("B", 2, 2, 2)}))
	s.Remove([]program.Symbol{sym("A"), sym("B")})
	assert.Equal(uint8(0), s.CurrentSize)
	assert.Equal(New(2, program.Identity{1}), s)
}

func TestRemoveDuplicates(t *testing.T) {
	assert := assert.New(t)
	s := New(3, program.Identity{1})
	assert.NoError(s.Relay([]Price{price("X", 1, 1, 1), price("X", 2, 2, 2), price("Y", 3, 3, 3)}))
	s.Remove([]program.Symbol{sym("X")})
	assert.Equal([]Price{price("Y", 3, 3, 3)}, s.Active(), "every copy of a symbol is removed")
	checkInvariant(assert, s)
}

func TestRemoveThenRelayReusesSlots(t *testing.T) {
	assert := assert.New(t)
	s := New(2, program.Identity{1})
	assert.NoError(s.Relay([]Price{price("A", 1, 1, 1), price("B", 2, 2, 2)}))
	s.Remove([]program.Symbol{sym("A")})
	assert.NoError(s.Relay([]Price{price("C", 3, 3, 3)}))
	assert.Equal([]Price{price("B", 2, 2, 2), price("C", 3, 3, 3)}, s.Active())
}

func TestCapacityInvariantUnderRandomOps(t *testing.T) {
	assert := assert.New(t)
	names := []string{"A", "B", "C", "D", "E", "F"}
	s := New(4, program.Identity{1})
	for i := 0; i < 200; i++ {
		a, b := names[i%len(names)], names[(i*7+3)%len(names)]
		if i%3 == 2 {
			s.Remove([]program.Symbol{sym(a)})
		} else {
			before := s.Encode()
			err := s.Relay([]Price{price(a, uint64(i), 1, 1), price(b, uint64(i), 2, 2)})
			if err != nil {
				assert.ErrorIs(err, program.ErrCapacityExceeded)
				assert.Equal(before, s.Encode())
			}
		}
		assert.LessOrEqual(int(s.CurrentSize), s.Capacity())
		checkInvariant(assert, s)
	}
}
