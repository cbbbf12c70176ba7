// Command timeless prints Timeless Jewel reports from the command line.
//
//	timeless -list-sockets
//	timeless -socket 2491 -seed 12345 -faction Amanamu
//	timeless -socket 2491 -compare 100,500,1000
//	timeless -socket 2491 -find "Heart of Oak" -at-node 12345
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"timeless-mapper/internal/config"
	"timeless-mapper/internal/engine"
	"timeless-mapper/internal/graph"
	"timeless-mapper/internal/refdata"
)

type options struct {
	listSockets bool
	socket      int
	seed        uint64
	faction     string
	radius      string
	compare     string
	find        string
	atNode      int
	maxResults  int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var opts options
	fs := flag.NewFlagSet("timeless", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.BoolVar(&opts.listSockets, "list-sockets", false, "list all jewel sockets")
	fs.IntVar(&opts.socket, "socket", 0, "jewel socket node id")
	fs.Uint64Var(&opts.seed, "seed", 0, "seed to analyze")
	fs.StringVar(&opts.faction, "faction", "Amanamu", "conqueror (Amanamu, Ulaman, Kurgal, Tacati, Doryani)")
	fs.StringVar(&opts.radius, "radius", "", "radius in tree units or preset name (default from config)")
	fs.StringVar(&opts.compare, "compare", "", "comma-separated seeds to compare")
	fs.StringVar(&opts.find, "find", "", "replacement notable to search for")
	fs.IntVar(&opts.atNode, "at-node", 0, "node that must become the notable given to -find")
	fs.IntVar(&opts.maxResults, "max", cfg.MaxResults, "maximum seeds for -find")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "reference data directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	seedSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedSet = true
		}
	})

	radius := cfg.DefaultRadius
	if opts.radius != "" {
		if radius, err = parseRadius(opts.radius); err != nil {
			return err
		}
	}

	loader := refdata.NewLoader(cfg.DataDir, refdata.Sources{
		TreeFile:    cfg.TreeFile,
		WeightsFile: cfg.WeightsFile,
		TreeURL:     cfg.TreeURL,
		WeightsURL:  cfg.WeightsURL,
	})
	data, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	scanner := engine.NewScanner(data.Mapper, cfg.SearchWorkers)
	r := &reporter{out: out, scanner: scanner, cfg: cfg}

	switch {
	case opts.listSockets:
		r.listSockets()
		return nil
	case opts.socket == 0:
		return fmt.Errorf("-socket is required unless -list-sockets is given")
	case opts.compare != "":
		seeds, err := parseSeeds(opts.compare)
		if err != nil {
			return err
		}
		return r.compareSeeds(ctx, opts.socket, seeds, opts.faction, radius)
	case opts.find != "":
		if opts.atNode == 0 {
			return fmt.Errorf("-find needs -at-node")
		}
		return r.findSeeds(ctx, opts.socket, opts.find, opts.atNode, opts.faction, opts.maxResults)
	case seedSet:
		if opts.seed > 1<<32-1 {
			return fmt.Errorf("seed %d does not fit in 32 bits", opts.seed)
		}
		return r.analyzeSeed(ctx, opts.socket, uint32(opts.seed), opts.faction, radius)
	default:
		return fmt.Errorf("one of -seed, -compare or -find is required")
	}
}

func parseRadius(s string) (float64, error) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	if v, ok := graph.RadiusByName(s); ok {
		return v, nil
	}
	return 0, fmt.Errorf("unknown radius %q", s)
}

func parseSeeds(s string) ([]uint32, error) {
	var seeds []uint32
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid seed %q: %w", part, err)
		}
		seeds = append(seeds, uint32(v))
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("no seeds to compare")
	}
	return seeds, nil
}
