package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/tchajed/pricedb/fs"
	"github.com/tchajed/pricedb/ledger"
	"github.com/tchajed/pricedb/leveldb"
)

const dbPath = "benchmark.db"

func initFs() (fs.Filesys, error) {
	switch *fsType {
	case "dir":
		filesys, err := fs.DirFs(dbPath)
		if err != nil {
			return nil, err
		}
		return filesys, fs.DeleteAll(filesys)
	case "mem":
		return fs.MemFs(), nil
	}
	return nil, fmt.Errorf("unknown filesystem type %s", *fsType)
}

func initStore(filesys fs.Filesys) (ledger.Store, error) {
	switch *storeType {
	case "fs":
		return ledger.NewFsStore(filesys), nil
	case "leveldb":
		os.RemoveAll(dbPath + ".ldb")
		return leveldb.New(dbPath + ".ldb")
	}
	return nil, fmt.Errorf("unknown store type %s", *storeType)
}

// compacter is implemented by stores that can compact on demand.
type compacter interface {
	Compact()
}

func showNum(i int) string {
	if i > 2000 {
		if i%1000 == 0 {
			return fmt.Sprintf("%dK", i/1000)
		}
		return fmt.Sprintf("%.1fK", float64(i)/1000)
	}
	return fmt.Sprintf("%d", i)
}

var benchmarks = flag.String("benchmarks", "fill,update,setprice,remove", "comma-separated list of benchmarks to run")
var storeType = flag.String("store", "fs", "account store to use (fs|leveldb)")
var fsType = flag.String("fs", "mem", "filesystem for the fs store and journal (dir|mem)")
var numOps = flag.Int("ops", 10000, "number of invocations per benchmark")
var capacity = flag.Uint("capacity", 64, "keeper slots (1-255)")
var finalCompact = flag.Bool("final-compact", false, "force a compaction after fill and remove (leveldb store)")
var journal = flag.Bool("journal", false, "journal committed invocations")
var deleteDatabase = flag.Bool("delete-db", false, "delete database directory on completion")
var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
var memprofile = flag.String("memprofile", "", "write memory cpu profile to `file`")
var printStats = flag.Bool("stats", false, "print out filesystem stats")
var printMetrics = flag.Bool("metrics", false, "print out ledger metrics")

func writeMemProfile(fname string) {
	f, err := os.Create(fname)
	if err != nil {
		log.Fatal("could not create memory profile: ", err)
	}
	runtime.GC() // get up-to-date statistics
	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Fatal("could not write memory profile: ", err)
	}
	f.Close()
}

func runBenchmarks(w *workload, store ledger.Store) (time.Time, error) {
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}
	if *memprofile != "" {
		defer writeMemProfile(*memprofile)
	}

	g := newGenerator()
	for _, name := range strings.Split(*benchmarks, ",") {
		var op func(*generator) (int, error)
		switch name {
		case "fill":
			op = w.fill
		case "update":
			op = w.update
		case "remove":
			op = w.remove
		case "setprice":
			op = w.setPrice
		default:
			return time.Time{}, fmt.Errorf("unknown benchmark %s", name)
		}
		s := NewBench(name, g)
		for i := 0; i < *numOps; i++ {
			n, err := op(g)
			if err != nil {
				return time.Time{}, fmt.Errorf("%s: %w", name, err)
			}
			s.FinishedSingleOp(n)
		}
		if c, ok := store.(compacter); ok && *finalCompact && (name == "fill" || name == "remove") {
			c.Compact()
		}
		s.Report()
	}
	return time.Now(), w.Close()
}

// printGathered prints every counter in reg, one line per label set.
func printGathered(reg *prometheus.Registry) error {
	mfs, err := reg.Gather()
	if err != nil {
		return err
	}
	var lines []string
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, l := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %.0f",
				mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue()))
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Printf("[meta] %s\n", l)
	}
	return nil
}

func main() {
	flag.Parse()

	if len(flag.Args()) > 0 {
		fmt.Fprintln(os.Stderr, "extra command line arguments", flag.Args())
		flag.Usage()
		os.Exit(1)
	}
	if *capacity == 0 || *capacity > 255 {
		fmt.Fprintln(os.Stderr, "capacity must be between 1 and 255")
		os.Exit(1)
	}
	// per-invocation logging would dominate the measurements
	log.SetLevel(log.WarnLevel)

	reportedStore := *storeType
	if *storeType == "fs" {
		reportedStore += fmt.Sprintf(" (%s)", *fsType)
	}
	for _, info := range []struct {
		Key   string
		Value string
	}{
		{"store", reportedStore},
		{"ops", showNum(*numOps)},
		{"keeper capacity", fmt.Sprintf("%d", *capacity)},
		{"journal?", fmt.Sprintf("%v", *journal)},
		{"final compaction?", fmt.Sprintf("%v", *finalCompact)},
	} {
		fmt.Printf("%20s %s\n", info.Key+":", info.Value)
	}
	fmt.Println(strings.Repeat("-", 30))

	filesys, err := initFs()
	if err != nil {
		log.Fatal(err)
	}
	store, err := initStore(filesys)
	if err != nil {
		log.Fatal(err)
	}
	reg := prometheus.NewRegistry()
	opts := []ledger.Option{ledger.WithMetrics(ledger.NewMetrics(reg))}
	if *journal {
		j, err := ledger.OpenJournal(filesys)
		if err != nil {
			log.Fatal(err)
		}
		opts = append(opts, ledger.WithJournal(j))
	}
	w, err := newWorkload(store, opts, uint8(*capacity))
	if err != nil {
		log.Fatal(err)
	}

	start := time.Now()
	end, err := runBenchmarks(w, store)
	if err != nil {
		log.Fatal(err)
	}

	if *printStats {
		fsstats := filesys.GetStats()
		writes := stats{fsstats.WriteOps, fsstats.WriteBytes, start, &end}
		reads := stats{fsstats.ReadOps, fsstats.ReadBytes, start, &end}
		fmt.Printf("%-20s : %s [%6d kops]\n", "[meta] fs-writes", writes.formatStats(), writes.Ops/1000)
		fmt.Printf("%-20s : %s [%6d kops]\n", "[meta] fs-reads", reads.formatStats(), reads.Ops/1000)
	}
	if *printMetrics {
		if err := printGathered(reg); err != nil {
			log.Fatal(err)
		}
	}

	if *deleteDatabase {
		os.RemoveAll(dbPath)
		os.RemoveAll(dbPath + ".ldb")
	}
}
