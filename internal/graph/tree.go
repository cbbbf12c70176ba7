package graph

import "sort"

// SocketName is the display name shared by every jewel socket node.
const SocketName = "Jewel Socket"

// Kind classifies a passive node for transformation purposes.
type Kind string

const (
	KindKeystone Kind = "keystone"
	KindNotable  Kind = "notable"
	KindSmall    Kind = "small"
)

// Node is a passive skill tree node.
type Node struct {
	ID           int      `json:"id"`
	X            float64  `json:"x"`
	Y            float64  `json:"y"`
	HasPosition  bool     `json:"-"` // false when the source omitted x or y
	Name         string   `json:"name"`
	IsNotable    bool     `json:"is_notable"`
	IsKeystone   bool     `json:"is_keystone"`
	IsAscendancy bool     `json:"is_ascendancy"`
	Stats        []string `json:"stats"`
	Connections  []int    `json:"connections"`
}

// Kind returns keystone, notable or small. Keystone wins over notable.
func (n *Node) Kind() Kind {
	switch {
	case n.IsKeystone:
		return KindKeystone
	case n.IsNotable:
		return KindNotable
	default:
		return KindSmall
	}
}

// IsSocket reports whether the node is a jewel socket.
func (n *Node) IsSocket() bool {
	return n.Name == SocketName
}

// Tree holds the passive tree nodes plus their adjacency.
// It is built once by Load and never written afterwards, so it can be shared
// between goroutines without locking.
type Tree struct {
	// Nodes maps nodeID -> node
	Nodes map[int]*Node
	// Adj maps nodeID -> neighboring nodeIDs (both directions)
	Adj map[int][]int

	ids []int // ascending, fixes iteration order
}

// NewTree creates an empty Tree with initialized maps.
func NewTree() *Tree {
	return &Tree{
		Nodes: make(map[int]*Node),
		Adj:   make(map[int][]int),
	}
}

// AddNode registers a node. Used while loading only.
func (t *Tree) AddNode(n *Node) {
	if _, exists := t.Nodes[n.ID]; !exists {
		t.ids = append(t.ids, n.ID)
	}
	t.Nodes[n.ID] = n
}

// AddConnection adds an undirected edge. Duplicates are ignored.
func (t *Tree) AddConnection(a, b int) {
	if a == b {
		return
	}
	for _, n := range t.Adj[a] {
		if n == b {
			return
		}
	}
	t.Adj[a] = append(t.Adj[a], b)
	t.Adj[b] = append(t.Adj[b], a)
}

// finalize sorts ids and adjacency lists so every query is deterministic.
func (t *Tree) finalize() {
	sort.Ints(t.ids)
	for id := range t.Adj {
		sort.Ints(t.Adj[id])
	}
}

// Node returns the node with the given id.
func (t *Tree) Node(id int) (*Node, bool) {
	n, ok := t.Nodes[id]
	return n, ok
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.Nodes)
}

// IDs returns all node ids in ascending order.
func (t *Tree) IDs() []int {
	out := make([]int, len(t.ids))
	copy(out, t.ids)
	return out
}
