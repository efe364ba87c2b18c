package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/tchajed/pricedb/config"
	"github.com/tchajed/pricedb/program"
)

type command struct {
	usage string
	// record is set for commands that invoke a program
	record bool
	run    func(n *node, args []string) error
}

var commands = map[string]command{
	"create-account":   {"-size N | -keeper-capacity C | -mirror [-key K]", true, createAccount},
	"keeper-init":      {"-keeper K -capacity C -owner O", true, keeperInit},
	"keeper-transfer":  {"-keeper K -signer S -new-owner O", true, keeperTransfer},
	"keeper-relay":     {"-keeper K -signer S (-feed FILE | SYM=RATE...)", true, keeperRelay},
	"keeper-remove":    {"-keeper K -signer S SYM...", true, keeperRemove},
	"mirror-init":      {"-mirror M -owner O", true, mirrorInit},
	"mirror-transfer":  {"-mirror M -signer S -new-owner O", true, mirrorTransfer},
	"mirror-set-price": {"-mirror M -signer S -keeper K -symbol SYM", true, mirrorSetPrice},
	"show":             {"[-key K]", false, show},
	"history":          {"", false, history},
}

var configPath = flag.String("config", "pricedb.toml", "configuration `file`")

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "usage: %s [-config file] <command> [flags]\n\ncommands:\n", os.Args[0])
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-17s %s\n", name, commands[name].usage)
	}
	fmt.Fprintln(out)
	flag.PrintDefaults()
}

func run(cfg *config.Config, cmd command, args []string) error {
	n, err := open(cfg, cmd.record)
	if err != nil {
		return err
	}
	err = cmd.run(n, args)
	if cerr := n.Close(); err == nil {
		err = cerr
	}
	return err
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %s\n", flag.Arg(0))
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.ConfigureLogging(); err != nil {
		log.Fatal(err)
	}

	if err := run(cfg, cmd, flag.Args()[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		if code := program.Code(err); code != 0 {
			fmt.Fprintf(os.Stderr, "error: %v (custom program error: %#x)\n", err, code)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
