package engine

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"

	"timeless-mapper/internal/apperr"
)

// BestSocket finds the jewel socket whose radius covers the most nodes named
// in names (case-insensitive). Ties go to the lowest socket id. NOT_FOUND is
// returned when no socket covers any of them.
func (s *Scanner) BestSocket(ctx context.Context, names []string, radius float64) (*BestSocketResult, error) {
	_, span := tracer().Start(ctx, "engine.Scanner.BestSocket",
		trace.WithAttributes(
			attribute.StringSlice("names", names),
			attribute.Float64("radius", radius),
		),
	)
	defer span.End()

	res, err := s.bestSocket(names, radius)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "best socket failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("socket_id", res.Socket.ID), attribute.Int("matches", len(res.Matches)))
	return res, nil
}

func (s *Scanner) bestSocket(names []string, radius float64) (*BestSocketResult, error) {
	fold := cases.Fold()
	targets := make(map[string]bool, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			targets[fold.String(n)] = true
		}
	}
	if len(targets) == 0 {
		return nil, apperr.InvalidArgumentf("at least one notable name is required")
	}

	all, err := s.Tree().AnalyzeAllSockets(radius)
	if err != nil {
		return nil, err
	}
	var best *BestSocketResult
	for _, a := range all {
		var matches []string
		for _, n := range a.AffectedNodes {
			if n.Name != "" && targets[fold.String(n.Name)] {
				matches = append(matches, n.Name)
			}
		}
		if len(matches) > 0 && (best == nil || len(matches) > len(best.Matches)) {
			best = &BestSocketResult{Socket: a.Socket, Radius: radius, Matches: matches}
		}
	}
	if best == nil {
		return nil, apperr.NotFoundf("no jewel socket within radius %v of the requested notables", radius)
	}
	return best, nil
}
