package jewel

import (
	"fmt"
	"strings"

	"timeless-mapper/internal/apperr"
	"timeless-mapper/internal/graph"
	"timeless-mapper/internal/tinymt"
)

// Tribute granted by a transformed small passive.
const (
	TributeSmall     = 5
	TributeAttribute = 8
)

var attributeWords = []string{"strength", "dexterity", "intelligence"}

// Mapper applies seeds to a passive tree. It only reads the tree and the
// table, so one Mapper may serve any number of goroutines.
type Mapper struct {
	tree  *graph.Tree
	table *SpawnWeightTable
}

// NewMapper creates a Mapper over shared reference data.
func NewMapper(tree *graph.Tree, table *SpawnWeightTable) *Mapper {
	return &Mapper{tree: tree, table: table}
}

// Tree returns the passive tree the mapper reads.
func (m *Mapper) Tree() *graph.Tree { return m.tree }

// Table returns the spawn weight table the mapper reads.
func (m *Mapper) Table() *SpawnWeightTable { return m.table }

// Analyze transforms every node within the Very Large radius of socketID.
func (m *Mapper) Analyze(socketID int, seed uint32, faction string) (*SeedAnalysis, error) {
	return m.AnalyzeWithRadius(socketID, seed, faction, graph.RadiusVeryLarge)
}

// AnalyzeWithRadius transforms every node within radius of socketID.
// Keystones become the faction keystone, notables are rolled against the
// spawn weight table and small passives become Tribute.
func (m *Mapper) AnalyzeWithRadius(socketID int, seed uint32, faction string, radius float64) (*SeedAnalysis, error) {
	leader, err := NormalizeFaction(faction)
	if err != nil {
		return nil, err
	}
	keystone := m.table.Keystone(leader)

	affected, err := m.tree.NodesInRadius(socketID, radius)
	if err != nil {
		return nil, err
	}
	socket, _ := m.tree.Node(socketID)
	hops := m.tree.HopsFrom(socketID, -1)
	small := m.table.SmallPassive()

	a := &SeedAnalysis{
		Socket:           socket,
		Seed:             seed,
		Faction:          leader,
		Keystone:         keystone,
		Radius:           radius,
		RadiusName:       graph.RadiusName(radius),
		TransformedNodes: make([]TransformedNode, 0, len(affected)),
	}

	for _, n := range affected {
		tn := TransformedNode{
			OriginalNodeID: n.ID,
			OriginalName:   n.Name,
			OriginalKind:   n.Kind(),
			Distance:       n.Distance,
			X:              n.X,
			Y:              n.Y,
			Hops:           -1,
		}
		if h, ok := hops[n.ID]; ok {
			tn.Hops = h
		}

		switch tn.OriginalKind {
		case graph.KindKeystone:
			tn.NewName = keystone
			tn.NewID = fmt.Sprintf("abyss_keystone_%d", factionIndex(leader)+1)
			a.KeystoneReplaced = true
		case graph.KindNotable:
			c := m.SelectNotable(n.ID, seed)
			tn.NewName, tn.NewID = c.Name, c.ID
			a.NotableCount++
		default:
			tn.NewName, tn.NewID = small.Name, small.ID
			tn.TributeValue = tributeFor(n.Node)
			a.SmallCount++
		}
		a.TotalTribute += tn.TributeValue
		a.TransformedNodes = append(a.TransformedNodes, tn)
	}
	return a, nil
}

// SelectNotable picks the notable that replaces nodeID under seed. The
// generator is seeded with (nodeID, seed) and drawn exactly once.
func (m *Mapper) SelectNotable(nodeID int, seed uint32) Candidate {
	g := tinymt.New(uint32(nodeID), seed)
	return m.table.Select(g.NextBounded(m.table.TotalWeight()))
}

// ValidateSearch checks that the search names a known faction, socket and
// target node and an ordered seed range.
func (m *Mapper) ValidateSearch(s SeedSearch) error {
	if _, err := NormalizeFaction(s.Faction); err != nil {
		return err
	}
	if _, ok := m.tree.Node(s.SocketID); !ok {
		return apperr.NotFoundf("socket %d not found in passive tree", s.SocketID)
	}
	if _, ok := m.tree.Node(s.TargetNodeID); !ok {
		return apperr.NotFoundf("target node %d not found in passive tree", s.TargetNodeID)
	}
	if s.MinSeed > s.MaxSeed {
		return apperr.InvalidArgumentf("seed range %d-%d is empty", s.MinSeed, s.MaxSeed)
	}
	if strings.TrimSpace(s.TargetNotable) == "" {
		return apperr.InvalidArgumentf("target notable is required")
	}
	return nil
}

// FindSeedsWithNotable walks the seed range in ascending order and returns the
// seeds that place the target notable on the target node, up to the effective
// max results. Names are compared without regard to case.
func (m *Mapper) FindSeedsWithNotable(s SeedSearch) ([]uint32, error) {
	if err := m.ValidateSearch(s); err != nil {
		return nil, err
	}
	target := fold(strings.TrimSpace(s.TargetNotable))
	limit := s.EffectiveMaxResults()

	matches := []uint32{}
	for seed := s.MinSeed; ; seed++ {
		if fold(m.SelectNotable(s.TargetNodeID, seed).Name) == target {
			matches = append(matches, seed)
			if len(matches) >= limit {
				break
			}
		}
		if seed == s.MaxSeed {
			break
		}
	}
	return matches, nil
}

// CompareSeeds analyzes each seed at the same socket, in the given order.
func (m *Mapper) CompareSeeds(socketID int, seeds []uint32, faction string, radius float64) ([]*SeedAnalysis, error) {
	out := make([]*SeedAnalysis, 0, len(seeds))
	for _, seed := range seeds {
		a, err := m.AnalyzeWithRadius(socketID, seed, faction, radius)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// NotableDistribution counts how often each replacement notable appears for
// one seed at one socket.
func (m *Mapper) NotableDistribution(socketID int, seed uint32, faction string, radius float64) (map[string]int, error) {
	a, err := m.AnalyzeWithRadius(socketID, seed, faction, radius)
	if err != nil {
		return nil, err
	}
	dist := make(map[string]int)
	for _, n := range a.Notables() {
		dist[n.NewName]++
	}
	return dist, nil
}

// tributeFor returns the Tribute a small passive grants: more when any stat
// line mentions an attribute.
func tributeFor(n *graph.Node) int {
	for _, stat := range n.Stats {
		s := fold(stat)
		for _, w := range attributeWords {
			if strings.Contains(s, w) {
				return TributeAttribute
			}
		}
	}
	return TributeSmall
}
