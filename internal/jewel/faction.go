// Package jewel maps Timeless Jewel seeds onto the passive nodes around a
// socket.
package jewel

import (
	"strings"

	"golang.org/x/text/cases"

	"timeless-mapper/internal/apperr"
)

// Faction leaders in canonical order. The order fixes keystone ids.
var leaders = []string{"Amanamu", "Ulaman", "Kurgal", "Tacati", "Doryani"}

var leaderKeystones = map[string]string{
	"Amanamu": "Sacrifice of Flesh",
	"Ulaman":  "Sacrifice of Loyalty",
	"Kurgal":  "Sacrifice of Mind",
	"Tacati":  "Sacrifice of Blood",
	"Doryani": "Sacrifice of Sight",
}

// Spelling variants seen in community data, keyed by folded name.
var leaderAliases = map[string]string{
	"tecrod": "Tacati",
}

// Factions returns the canonical leader names in order.
func Factions() []string {
	out := make([]string, len(leaders))
	copy(out, leaders)
	return out
}

// FactionAliases returns every accepted spelling mapped to its leader.
func FactionAliases() map[string]string {
	out := make(map[string]string, len(leaders)+len(leaderAliases))
	for _, l := range leaders {
		out[fold(l)] = l
	}
	for alias, l := range leaderAliases {
		out[alias] = l
	}
	return out
}

// NormalizeFaction resolves a leader name or alias, ignoring case and
// surrounding space. Unknown names fail with INVALID_ARGUMENT and the list of
// valid leaders attached.
func NormalizeFaction(name string) (string, error) {
	key := fold(strings.TrimSpace(name))
	for _, l := range leaders {
		if fold(l) == key {
			return l, nil
		}
	}
	if l, ok := leaderAliases[key]; ok {
		return l, nil
	}
	return "", apperr.InvalidArgumentf("unknown faction %q", name).WithDetails(leaders...)
}

// factionIndex returns the 0-based position of a canonical leader.
func factionIndex(leader string) int {
	for i, l := range leaders {
		if l == leader {
			return i
		}
	}
	return -1
}

// fold applies Unicode case folding. A Caser is stateful, so one is built per
// call.
func fold(s string) string {
	return cases.Fold().String(s)
}
