package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"timeless-mapper/internal/apperr"
)

// rawNode is the on-disk node format, keyed by node id text.
type rawNode struct {
	X            *float64 `json:"x"`
	Y            *float64 `json:"y"`
	Name         string   `json:"name"`
	IsNotable    bool     `json:"is_notable"`
	IsKeystone   bool     `json:"is_keystone"`
	IsAscendancy bool     `json:"is_ascendancy"`
	Stats        []string `json:"stats"`
	Connections  []int    `json:"connections"`
}

// Load parses a passive tree document: an object keyed by node id whose values
// carry x, y, name, is_notable, is_keystone, is_ascendancy, stats and
// connections. Any malformed entry fails the whole load.
func Load(r io.Reader) (*Tree, error) {
	var raw map[string]rawNode
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidArgument, err, "decode passive tree")
	}
	if len(raw) == 0 {
		return nil, apperr.InvalidArgumentf("passive tree is empty")
	}

	nodes := make([]*Node, 0, len(raw))
	for key, rn := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeInvalidArgument, err, fmt.Sprintf("node key %q is not an integer", key))
		}
		n := &Node{
			ID:           id,
			Name:         rn.Name,
			IsNotable:    rn.IsNotable,
			IsKeystone:   rn.IsKeystone,
			IsAscendancy: rn.IsAscendancy,
			Stats:        rn.Stats,
			Connections:  rn.Connections,
		}
		if rn.X != nil && rn.Y != nil {
			n.X, n.Y, n.HasPosition = *rn.X, *rn.Y, true
		}
		nodes = append(nodes, n)
	}
	return Build(nodes), nil
}

// Build assembles a Tree from nodes, linking each node's connections in both
// directions. Connections to ids that are not present are dropped.
func Build(nodes []*Node) *Tree {
	t := NewTree()
	for _, n := range nodes {
		t.AddNode(n)
	}
	for _, n := range nodes {
		for _, other := range n.Connections {
			if _, ok := t.Nodes[other]; ok {
				t.AddConnection(n.ID, other)
			}
		}
	}
	t.finalize()
	return t
}
