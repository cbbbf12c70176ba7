package graph

import (
	"math"
	"sort"
	"strings"

	"timeless-mapper/internal/apperr"
)

// Jewel radius presets in tree units (passivejewelradii).
const (
	RadiusSmall     = 800.0
	RadiusMedium    = 1000.0
	RadiusLarge     = 1075.0
	RadiusVeryLarge = 1500.0
)

var radiusPresets = []struct {
	name  string
	value float64
}{
	{"Small", RadiusSmall},
	{"Medium", RadiusMedium},
	{"Large", RadiusLarge},
	{"Very Large", RadiusVeryLarge},
}

// RadiusName returns the preset name within one unit of r, or "Custom".
func RadiusName(r float64) string {
	for _, p := range radiusPresets {
		if math.Abs(r-p.value) < 1 {
			return p.name
		}
	}
	return "Custom"
}

// RadiusByName resolves "small", "medium", "large" or "very large"
// (also "very_large", "verylarge") to a preset value.
func RadiusByName(name string) (float64, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer("_", "", " ", "").Replace(key)
	for _, p := range radiusPresets {
		if strings.ReplaceAll(strings.ToLower(p.name), " ", "") == key {
			return p.value, true
		}
	}
	return 0, false
}

// AffectedNode is a node within a socket's radius.
type AffectedNode struct {
	*Node
	Distance float64 `json:"distance"`
}

// Counts tallies affected nodes by kind.
type Counts struct {
	Keystones int `json:"keystones"`
	Notables  int `json:"notables"`
	Smalls    int `json:"small_passives"`
}

// Distance returns the Euclidean distance between two nodes.
func Distance(a, b *Node) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// JewelSockets returns every jewel socket, ordered by id.
func (t *Tree) JewelSockets() []*Node {
	var out []*Node
	for _, id := range t.ids {
		if n := t.Nodes[id]; n.IsSocket() {
			out = append(out, n)
		}
	}
	return out
}

// NodesInRadius returns the nodes whose distance to socketID is <= radius,
// nearest first. The socket itself, ascendancy nodes and nodes without
// coordinates are excluded. Equal distances are ordered by id.
func (t *Tree) NodesInRadius(socketID int, radius float64) ([]AffectedNode, error) {
	if radius < 0 || math.IsNaN(radius) {
		return nil, apperr.InvalidArgumentf("radius must be non-negative, got %v", radius)
	}
	socket, ok := t.Nodes[socketID]
	if !ok {
		return nil, apperr.NotFoundf("socket %d not found in passive tree", socketID)
	}
	if !socket.HasPosition {
		return nil, apperr.InvalidArgumentf("socket %d has no coordinates", socketID)
	}

	var out []AffectedNode
	for _, id := range t.ids {
		if id == socketID {
			continue
		}
		n := t.Nodes[id]
		if !n.HasPosition || n.IsAscendancy {
			continue
		}
		if d := Distance(socket, n); d <= radius {
			out = append(out, AffectedNode{Node: n, Distance: d})
		}
	}
	// ids are ascending, so a stable sort keeps id order on ties
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out, nil
}

// Classify counts keystones, notables and small passives.
func Classify(nodes []AffectedNode) Counts {
	var c Counts
	for _, n := range nodes {
		switch n.Kind() {
		case KindKeystone:
			c.Keystones++
		case KindNotable:
			c.Notables++
		default:
			c.Smalls++
		}
	}
	return c
}

// RadiusAnalysis summarizes the nodes around one socket.
type RadiusAnalysis struct {
	Socket        *Node          `json:"socket"`
	Radius        float64        `json:"radius"`
	RadiusName    string         `json:"radius_name"`
	AffectedNodes []AffectedNode `json:"affected_nodes"`
	Counts
	NotableNames  []string `json:"notable_names"`
	KeystoneNames []string `json:"keystone_names"`
}

// AnalyzeSocketRadius returns the radius analysis for a single socket.
func (t *Tree) AnalyzeSocketRadius(socketID int, radius float64) (*RadiusAnalysis, error) {
	nodes, err := t.NodesInRadius(socketID, radius)
	if err != nil {
		return nil, err
	}
	a := &RadiusAnalysis{
		Socket:        t.Nodes[socketID],
		Radius:        radius,
		RadiusName:    RadiusName(radius),
		AffectedNodes: nodes,
		Counts:        Classify(nodes),
		NotableNames:  []string{},
		KeystoneNames: []string{},
	}
	for _, n := range nodes {
		if n.Name == "" {
			continue
		}
		switch n.Kind() {
		case KindKeystone:
			a.KeystoneNames = append(a.KeystoneNames, n.Name)
		case KindNotable:
			a.NotableNames = append(a.NotableNames, n.Name)
		}
	}
	return a, nil
}

// AnalyzeAllSockets runs AnalyzeSocketRadius for every jewel socket that has
// coordinates.
func (t *Tree) AnalyzeAllSockets(radius float64) ([]*RadiusAnalysis, error) {
	sockets := t.JewelSockets()
	out := make([]*RadiusAnalysis, 0, len(sockets))
	for _, s := range sockets {
		if !s.HasPosition {
			continue
		}
		a, err := t.AnalyzeSocketRadius(s.ID, radius)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
