package jewel

import (
	"encoding/json"
	"io"
	"math"

	"timeless-mapper/internal/apperr"
)

// Small passive replacement defaults.
const (
	DefaultSmallName   = "Tribute"
	DefaultSmallID     = "abyss_small_tribute"
	DefaultSmallWeight = 100
)

// Candidate is one possible replacement outcome.
type Candidate struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Weight uint32 `json:"spawn_weight"`
}

// SpawnWeightTable holds the eligible notable replacements with their
// cumulative weights, the leader keystones and the small passive outcome.
// It is immutable once built.
type SpawnWeightTable struct {
	notables   []Candidate
	cumulative []uint32
	total      uint32
	keystones  map[string]string
	small      Candidate
}

// NewSpawnWeightTable builds a table. Candidates with a zero weight are not
// eligible. keystones may override the built-in leader keystones and small may
// be nil for the default Tribute outcome.
func NewSpawnWeightTable(notables []Candidate, keystones map[string]string, small *Candidate) (*SpawnWeightTable, error) {
	t := &SpawnWeightTable{
		keystones: make(map[string]string, len(leaderKeystones)),
		small:     Candidate{ID: DefaultSmallID, Name: DefaultSmallName, Weight: DefaultSmallWeight},
	}

	var sum uint64
	for _, c := range notables {
		if c.Weight == 0 {
			continue
		}
		sum += uint64(c.Weight)
		if sum > math.MaxUint32 {
			return nil, apperr.InvalidArgumentf("total spawn weight exceeds %d", uint32(math.MaxUint32))
		}
		t.notables = append(t.notables, c)
		t.cumulative = append(t.cumulative, uint32(sum))
	}
	if sum == 0 {
		return nil, apperr.InvalidArgumentf("spawn weight table has no eligible notables")
	}
	t.total = uint32(sum)

	for l, k := range leaderKeystones {
		t.keystones[l] = k
	}
	for leader, name := range keystones {
		canonical, err := NormalizeFaction(leader)
		if err != nil {
			return nil, err
		}
		if name != "" {
			t.keystones[canonical] = name
		}
	}

	if small != nil {
		if small.Name != "" {
			t.small.Name = small.Name
		}
		if small.ID != "" {
			t.small.ID = small.ID
		}
		if small.Weight != 0 {
			t.small.Weight = small.Weight
		}
	}
	return t, nil
}

type weightsFile struct {
	Notables []struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Weight int64  `json:"spawn_weight"`
	} `json:"notables"`
	Keystones []struct {
		Leader string `json:"leader"`
		Name   string `json:"keystone_name"`
	} `json:"keystones"`
	SmallPassive *struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Weight int64  `json:"spawn_weight"`
	} `json:"small_passive"`
}

// LoadSpawnWeights parses a spawn weight document with notables, keystones and
// small_passive sections. Notables with a weight <= 0 are skipped.
func LoadSpawnWeights(r io.Reader) (*SpawnWeightTable, error) {
	var f weightsFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidArgument, err, "decode spawn weights")
	}

	notables := make([]Candidate, 0, len(f.Notables))
	for _, n := range f.Notables {
		if n.Weight <= 0 {
			continue
		}
		if n.Weight > math.MaxUint32 {
			return nil, apperr.InvalidArgumentf("notable %q spawn weight %d out of range", n.ID, n.Weight)
		}
		notables = append(notables, Candidate{ID: n.ID, Name: n.Name, Weight: uint32(n.Weight)})
	}

	keystones := make(map[string]string, len(f.Keystones))
	for _, k := range f.Keystones {
		keystones[k.Leader] = k.Name
	}

	var small *Candidate
	if f.SmallPassive != nil {
		small = &Candidate{ID: f.SmallPassive.ID, Name: f.SmallPassive.Name}
		if f.SmallPassive.Weight > 0 && f.SmallPassive.Weight <= math.MaxUint32 {
			small.Weight = uint32(f.SmallPassive.Weight)
		}
	}
	return NewSpawnWeightTable(notables, keystones, small)
}

// Select returns the first candidate whose cumulative weight exceeds roll,
// or the last candidate when none does.
func (t *SpawnWeightTable) Select(roll uint32) Candidate {
	for i, cum := range t.cumulative {
		if roll < cum {
			return t.notables[i]
		}
	}
	return t.notables[len(t.notables)-1]
}

// TotalWeight is the sum of all eligible notable weights.
func (t *SpawnWeightTable) TotalWeight() uint32 { return t.total }

// Len is the number of eligible notables.
func (t *SpawnWeightTable) Len() int { return len(t.notables) }

// Notables returns the eligible notables in table order.
func (t *SpawnWeightTable) Notables() []Candidate {
	out := make([]Candidate, len(t.notables))
	copy(out, t.notables)
	return out
}

// Keystone returns the keystone granted by a canonical leader.
func (t *SpawnWeightTable) Keystone(leader string) string { return t.keystones[leader] }

// SmallPassive returns the small passive replacement outcome.
func (t *SpawnWeightTable) SmallPassive() Candidate { return t.small }
