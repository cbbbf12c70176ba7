// Package engine runs seed mapper queries for the HTTP, MCP and CLI front
// ends: parallel seed searches, best socket lookups and traced analyses.
package engine

import (
	"context"
	"fmt"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"timeless-mapper/internal/graph"
	"timeless-mapper/internal/jewel"
	"timeless-mapper/internal/logger"
)

// shardSize is the number of seeds one search task covers.
const shardSize = 2048

const tracerName = "timeless-mapper/engine"

// tracer looks up the global provider on every call so tracing set up after
// start-up is picked up.
func tracer() trace.Tracer { return otel.Tracer(tracerName) }

// EffectiveMaxResults returns the max results limit, using defaultVal if v <= 0.
func EffectiveMaxResults(v int, defaultVal int) int {
	if v <= 0 {
		return defaultVal
	}
	return v
}

// Scanner runs mapper queries. Seed searches are split into contiguous
// shards evaluated by up to Workers goroutines.
type Scanner struct {
	Mapper  *jewel.Mapper
	Workers int
}

// NewScanner creates a Scanner. workers <= 0 uses one worker per CPU.
func NewScanner(m *jewel.Mapper, workers int) *Scanner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Scanner{Mapper: m, Workers: workers}
}

// FindSeeds returns the same seeds as jewel.Mapper.FindSeedsWithNotable,
// ascending and capped at the effective max results, but evaluates the range
// in parallel. Cancelling ctx stops the scan.
func (s *Scanner) FindSeeds(ctx context.Context, search jewel.SeedSearch, progress func(string)) ([]uint32, error) {
	ctx, span := tracer().Start(ctx, "engine.Scanner.FindSeeds",
		trace.WithAttributes(
			attribute.Int("socket_id", search.SocketID),
			attribute.Int("target_node_id", search.TargetNodeID),
			attribute.String("target_notable", search.TargetNotable),
			attribute.Int64("min_seed", int64(search.MinSeed)),
			attribute.Int64("max_seed", int64(search.MaxSeed)),
		),
	)
	defer span.End()

	seeds, err := s.findSeeds(ctx, search, progress)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "seed search failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("matches", len(seeds)))
	return seeds, nil
}

func (s *Scanner) findSeeds(ctx context.Context, search jewel.SeedSearch, progress func(string)) ([]uint32, error) {
	if progress == nil {
		progress = func(string) {}
	}
	if err := s.Mapper.ValidateSearch(search); err != nil {
		return nil, err
	}
	limit := search.EffectiveMaxResults()

	total := uint64(search.MaxSeed) - uint64(search.MinSeed) + 1
	nShards := int((total + shardSize - 1) / shardSize)
	batch := s.Workers * 4
	progress(fmt.Sprintf("Scanning seeds %d-%d in %d shards...", search.MinSeed, search.MaxSeed, nShards))

	// Shards run in batches so the scan can stop once the earliest seeds
	// already fill the limit.
	out := []uint32{}
	scanned := 0
	for first := 0; first < nShards && len(out) < limit; first += batch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		last := min(first+batch, nShards)
		need := limit - len(out)
		results := make([][]uint32, last-first)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.Workers)
		for i := first; i < last; i++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				part := search
				part.MinSeed, part.MaxSeed = shardBounds(search.MinSeed, search.MaxSeed, i)
				part.MaxResults = need
				found, err := s.Mapper.FindSeedsWithNotable(part)
				if err != nil {
					return err
				}
				results[i-first] = found
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		// shards are in seed order, so the concatenation is ascending
		for _, r := range results {
			for _, seed := range r {
				if len(out) == limit {
					break
				}
				out = append(out, seed)
			}
		}
		scanned = last
		progress(fmt.Sprintf("Scanned %d/%d shards, %d matches", scanned, nShards, len(out)))
	}

	logger.Info("SCAN", fmt.Sprintf("FindSeeds: node=%d notable=%q shards=%d/%d matches=%d",
		search.TargetNodeID, search.TargetNotable, scanned, nShards, len(out)))
	progress(fmt.Sprintf("Found %d matching seeds", len(out)))
	return out, nil
}

// shardBounds returns the inclusive seed range of shard i of [lo, hi].
func shardBounds(lo, hi uint32, i int) (uint32, uint32) {
	start := uint64(lo) + uint64(i)*shardSize
	end := start + shardSize - 1
	if end > uint64(hi) {
		end = uint64(hi)
	}
	return uint32(start), uint32(end)
}

// Analyze runs Mapper.AnalyzeWithRadius inside a span.
func (s *Scanner) Analyze(ctx context.Context, socketID int, seed uint32, faction string, radius float64) (*jewel.SeedAnalysis, error) {
	_, span := tracer().Start(ctx, "engine.Scanner.Analyze",
		trace.WithAttributes(
			attribute.Int("socket_id", socketID),
			attribute.Int64("seed", int64(seed)),
			attribute.String("faction", faction),
			attribute.Float64("radius", radius),
		),
	)
	defer span.End()

	a, err := s.Mapper.AnalyzeWithRadius(socketID, seed, faction, radius)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "analyze failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("transformed_nodes", len(a.TransformedNodes)))
	return a, nil
}

// Compare runs Mapper.CompareSeeds inside a span.
func (s *Scanner) Compare(ctx context.Context, socketID int, seeds []uint32, faction string, radius float64) ([]*jewel.SeedAnalysis, error) {
	_, span := tracer().Start(ctx, "engine.Scanner.Compare",
		trace.WithAttributes(
			attribute.Int("socket_id", socketID),
			attribute.Int("seeds", len(seeds)),
		),
	)
	defer span.End()

	out, err := s.Mapper.CompareSeeds(socketID, seeds, faction, radius)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "compare failed")
		return nil, err
	}
	return out, nil
}

// Distribution runs Mapper.NotableDistribution inside a span.
func (s *Scanner) Distribution(ctx context.Context, socketID int, seed uint32, faction string, radius float64) (map[string]int, error) {
	_, span := tracer().Start(ctx, "engine.Scanner.Distribution",
		trace.WithAttributes(
			attribute.Int("socket_id", socketID),
			attribute.Int64("seed", int64(seed)),
		),
	)
	defer span.End()

	dist, err := s.Mapper.NotableDistribution(socketID, seed, faction, radius)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "distribution failed")
		return nil, err
	}
	return dist, nil
}

// Tree returns the passive tree behind the mapper.
func (s *Scanner) Tree() *graph.Tree { return s.Mapper.Tree() }
