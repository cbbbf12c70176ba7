package engine

import "timeless-mapper/internal/graph"

// BestSocketResult is the socket whose radius covers the most requested
// notables.
type BestSocketResult struct {
	Socket  *graph.Node `json:"socket"`
	Radius  float64     `json:"radius"`
	Matches []string    `json:"matches"` // matched node names, nearest first
}
