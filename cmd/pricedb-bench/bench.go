package main

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/tchajed/pricedb/keeper"
	"github.com/tchajed/pricedb/program"
)

type generator struct {
	*rand.Rand
	symbols uint64
	request uint64
}

func newGenerator() *generator {
	r := rand.New(rand.NewSource(0))
	return &generator{Rand: r}
}

// NextSymbol returns a symbol never returned before: "S" and a zero-padded
// base-36 counter, which fits 36^7 symbols in 8 bytes.
func (g *generator) NextSymbol() program.Symbol {
	n := strconv.FormatUint(g.symbols, 36)
	g.symbols++
	return program.MustSymbol("S" + strings.Repeat("0", 7-len(n)) + n)
}

// Price makes a fresh price report for sym.
func (g *generator) Price(sym program.Symbol) keeper.Price {
	g.request++
	return keeper.Price{
		Symbol:      sym,
		Rate:        uint64(g.Int63n(1e12)),
		LastUpdated: uint64(time.Now().Unix()),
		RequestID:   g.request,
	}
}

// Pick chooses one of syms at random.
func (g *generator) Pick(syms []program.Symbol) program.Symbol {
	return syms[g.Intn(len(syms))]
}

type stats struct {
	Ops   int
	Bytes int
	Start time.Time
	End   *time.Time
}

func newStats() *stats {
	return &stats{Ops: 0, Bytes: 0, Start: time.Now()}
}

// FinishedSingleOp records finishing an invocation whose instruction was
// bytes long.
func (s *stats) FinishedSingleOp(bytes int) {
	s.Ops++
	s.Bytes += bytes
}

// done marks the benchmark finished.
func (s *stats) done() {
	if s.End != nil {
		panic("stats object marked done multiple times")
	}
	t := time.Now()
	s.End = &t
}

func (s stats) seconds() float64 {
	return s.End.Sub(s.Start).Seconds()
}

func (s stats) MicrosPerOp() float64 {
	return (s.seconds() * 1e6) / float64(s.Ops)
}

func (s stats) MegabytesPerSec() float64 {
	mb := float64(s.Bytes) / (1024 * 1024)
	return mb / s.seconds()
}

func (s stats) formatStats() string {
	if s.Ops == 0 {
		return "no operations"
	}
	if s.Bytes == 0 {
		if s.Ops == 1 {
			return fmt.Sprintf("%7.3f micros", s.MicrosPerOp())
		}
		return fmt.Sprintf("%7.3f micros/op", s.MicrosPerOp())
	}
	return fmt.Sprintf("%7.3f micros/op; %6.1f MB/s",
		s.MicrosPerOp(),
		s.MegabytesPerSec())
}

// BenchState tracks information for a single benchmark.
type BenchState struct {
	name string
	*generator
	*stats
}

func NewBench(name string, g *generator) BenchState {
	return BenchState{name, g, newStats()}
}

// Report finishes the benchmark and prints final statistics.
func (s BenchState) Report() {
	s.stats.done()
	fmt.Printf("%-20s : %s\n", s.name, s.stats.formatStats())
}
