package jewel

import "timeless-mapper/internal/graph"

// DefaultMaxResults caps seed searches that do not set MaxResults.
const DefaultMaxResults = 10

// Undying Hate seed bounds. They are defaults for searches, never enforced.
const (
	MinSeed uint32 = 79
	MaxSeed uint32 = 30977
)

// TransformedNode is a passive node after the jewel rewrote it.
type TransformedNode struct {
	OriginalNodeID int        `json:"original_node_id"`
	OriginalName   string     `json:"original_name"`
	OriginalKind   graph.Kind `json:"original_type"`
	NewName        string     `json:"new_name"`
	NewID          string     `json:"new_id"`
	Distance       float64    `json:"distance"`
	X              float64    `json:"x"`
	Y              float64    `json:"y"`
	Hops           int        `json:"hops"` // edges from the socket, -1 if unreachable
	TributeValue   int        `json:"tribute_value"`
}

// SeedAnalysis is the full result of applying one seed at one socket.
type SeedAnalysis struct {
	Socket           *graph.Node       `json:"socket"`
	Seed             uint32            `json:"seed"`
	Faction          string            `json:"tribute_name"`
	Keystone         string            `json:"keystone"`
	Radius           float64           `json:"radius"`
	RadiusName       string            `json:"radius_name"`
	TransformedNodes []TransformedNode `json:"transformed_nodes"`
	TotalTribute     int               `json:"total_tribute"`
	NotableCount     int               `json:"notable_count"`
	SmallCount       int               `json:"small_count"`
	KeystoneReplaced bool              `json:"keystone_replaced"`
}

// Notables returns the transformed notables in distance order.
func (a *SeedAnalysis) Notables() []TransformedNode {
	return a.ofKind(graph.KindNotable)
}

// Keystones returns the transformed keystones in distance order.
func (a *SeedAnalysis) Keystones() []TransformedNode {
	return a.ofKind(graph.KindKeystone)
}

func (a *SeedAnalysis) ofKind(k graph.Kind) []TransformedNode {
	var out []TransformedNode
	for _, n := range a.TransformedNodes {
		if n.OriginalKind == k {
			out = append(out, n)
		}
	}
	return out
}

// SeedSearch describes a brute-force search for seeds that place
// TargetNotable on TargetNodeID. The seed range is inclusive.
type SeedSearch struct {
	SocketID      int    `json:"socket_id"`
	TargetNotable string `json:"target_notable"`
	TargetNodeID  int    `json:"target_node_id"`
	Faction       string `json:"faction"`
	MinSeed       uint32 `json:"min_seed"`
	MaxSeed       uint32 `json:"max_seed"`
	MaxResults    int    `json:"max_results"`
}

// EffectiveMaxResults returns MaxResults, or DefaultMaxResults if it is <= 0.
func (s SeedSearch) EffectiveMaxResults() int {
	if s.MaxResults <= 0 {
		return DefaultMaxResults
	}
	return s.MaxResults
}
