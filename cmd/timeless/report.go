package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"timeless-mapper/internal/config"
	"timeless-mapper/internal/engine"
	"timeless-mapper/internal/jewel"
)

type reporter struct {
	out     io.Writer
	scanner *engine.Scanner
	cfg     *config.Config
}

func (r *reporter) header(text string) {
	rule := strings.Repeat("=", 70)
	fmt.Fprintf(r.out, "\n%s\n %s\n%s\n", rule, text, rule)
}

func (r *reporter) subheader(text string) {
	fmt.Fprintf(r.out, "\n--- %s ---\n", text)
}

func (r *reporter) listSockets() {
	r.header("AVAILABLE JEWEL SOCKETS")
	sockets := r.scanner.Tree().JewelSockets()
	fmt.Fprintf(r.out, "\nFound %s jewel sockets:\n\n", humanize.Comma(int64(len(sockets))))
	fmt.Fprintf(r.out, "%-12s %-12s %-12s\n", "Socket ID", "X Position", "Y Position")
	fmt.Fprintln(r.out, strings.Repeat("-", 36))
	for _, s := range sockets {
		fmt.Fprintf(r.out, "%-12d %-12.1f %-12.1f\n", s.ID, s.X, s.Y)
	}
}

func (r *reporter) analyzeSeed(ctx context.Context, socketID int, seed uint32, faction string, radius float64) error {
	a, err := r.scanner.Analyze(ctx, socketID, seed, faction, radius)
	if err != nil {
		return err
	}

	r.header(fmt.Sprintf("SEED ANALYSIS: %d at Socket %d", seed, socketID))
	fmt.Fprintf(r.out, "\nSocket: %d at (%.1f, %.1f)\n", a.Socket.ID, a.Socket.X, a.Socket.Y)
	fmt.Fprintf(r.out, "Seed: %d\n", a.Seed)
	fmt.Fprintf(r.out, "Tribute to: %s\n", a.Faction)
	fmt.Fprintf(r.out, "Keystone granted: %s\n", a.Keystone)
	fmt.Fprintf(r.out, "Radius: %s (%s)\n", humanize.Ftoa(a.Radius), a.RadiusName)

	r.subheader("Summary Statistics")
	fmt.Fprintf(r.out, "  Total nodes affected: %d\n", len(a.TransformedNodes))
	fmt.Fprintf(r.out, "  Notables transformed: %d\n", a.NotableCount)
	fmt.Fprintf(r.out, "  Small passives: %d\n", a.SmallCount)
	fmt.Fprintf(r.out, "  Total Tribute value: %s\n", humanize.Comma(int64(a.TotalTribute)))
	fmt.Fprintf(r.out, "  Keystone in radius: %s\n", yesNo(a.KeystoneReplaced))

	notables := a.Notables()
	r.subheader("Notable Transformations")
	fmt.Fprintf(r.out, "\n%-30s %-30s\n", "Original Notable", "Becomes")
	fmt.Fprintln(r.out, strings.Repeat("-", 60))
	for _, n := range notables {
		fmt.Fprintf(r.out, "%-30s %-30s\n", n.OriginalName, n.NewName)
	}

	r.subheader("Notable Distribution")
	for _, c := range countNotables(notables) {
		fmt.Fprintf(r.out, "  %-25s %2dx %s\n", c.name, c.count, strings.Repeat("#", c.count))
	}

	if ks := a.Keystones(); len(ks) > 0 {
		r.subheader("Keystone Transformation")
		for _, n := range ks {
			fmt.Fprintf(r.out, "  %s -> %s\n", n.OriginalName, n.NewName)
		}
	}
	return nil
}

func (r *reporter) compareSeeds(ctx context.Context, socketID int, seeds []uint32, faction string, radius float64) error {
	all, err := r.scanner.Compare(ctx, socketID, seeds, faction, radius)
	if err != nil {
		return err
	}

	r.header(fmt.Sprintf("SEED COMPARISON at Socket %d", socketID))
	fmt.Fprintf(r.out, "\nComparing %d seeds: %v\n", len(seeds), seeds)
	fmt.Fprintf(r.out, "Tribute: %s -> Keystone: %s\n", all[0].Faction, all[0].Keystone)

	r.subheader("Comparison Table")
	fmt.Fprintf(r.out, "\n%-10s %-10s %-10s %-25s\n", "Seed", "Notables", "Tribute", "Top Notable")
	fmt.Fprintln(r.out, strings.Repeat("-", 60))
	for _, a := range all {
		top := "N/A"
		if counts := countNotables(a.Notables()); len(counts) > 0 {
			top = fmt.Sprintf("%s (%dx)", counts[0].name, counts[0].count)
		}
		fmt.Fprintf(r.out, "%-10d %-10d %-10d %s\n", a.Seed, a.NotableCount, a.TotalTribute, top)
	}
	return nil
}

func (r *reporter) findSeeds(ctx context.Context, socketID int, notable string, nodeID int, faction string, maxResults int) error {
	r.header(fmt.Sprintf("SEARCHING FOR '%s' AT NODE %d", notable, nodeID))
	search := jewel.SeedSearch{
		SocketID:      socketID,
		TargetNotable: notable,
		TargetNodeID:  nodeID,
		Faction:       faction,
		MinSeed:       r.cfg.SeedMin,
		MaxSeed:       r.cfg.SeedMax,
		MaxResults:    maxResults,
	}
	fmt.Fprintf(r.out, "\nSearching seed range %s-%s...\n",
		humanize.Comma(int64(search.MinSeed)), humanize.Comma(int64(search.MaxSeed)))

	seeds, err := r.scanner.FindSeeds(ctx, search, nil)
	if err != nil {
		return err
	}
	if len(seeds) == 0 {
		fmt.Fprintf(r.out, "\nNo seeds found that give '%s' at node %d\n", notable, nodeID)
		return nil
	}
	fmt.Fprintf(r.out, "\nFound %d seeds that give '%s' at node %d:\n", len(seeds), notable, nodeID)
	for _, s := range seeds {
		fmt.Fprintf(r.out, "  Seed: %d\n", s)
	}
	return nil
}

type notableCount struct {
	name  string
	count int
}

// countNotables tallies replacement names, most frequent first, then by name.
func countNotables(nodes []jewel.TransformedNode) []notableCount {
	byName := make(map[string]int)
	for _, n := range nodes {
		byName[n.NewName]++
	}
	out := make([]notableCount, 0, len(byName))
	for name, c := range byName {
		out = append(out, notableCount{name, c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
