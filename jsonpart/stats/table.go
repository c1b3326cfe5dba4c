package stats

import (
	"log/slog"
	"sort"

	"github.com/armon/go-radix"

	internal "github.com/MajidSas/json-parser-spark/jsonpart"
)

// AnchorEntry is the speculation table record for one anchor key.
type AnchorEntry struct {
	Level    int
	DFAState int
	Count    uint64
}

// SpeculationTable maps anchor keys to their known level and projection
// state. Lookups run against a radix tree so the speculation shifter can
// probe every token it reads without allocating.
type SpeculationTable struct {
	tree *radix.Tree
	size int
}

// StateResolver returns the projection-DFA state reached once the given key
// has been matched.
type StateResolver func(key string) int

// BuildTable derives the anchor table from document statistics. Keys seen at
// exactly one level with at least the minimum occurrence qualify directly;
// when fewer than the minimum key count qualify but enough single-level
// candidates exist, the most frequent candidates are taken instead. The
// returned table may be empty, which makes the speculation strategy
// unusable.
func BuildTable(docStats *DocumentStats, resolve StateResolver) *SpeculationTable {
	candidates := docStats.SingleLevelKeys()

	var anchors []Candidate
	for _, c := range candidates {
		if c.Count >= internal.DefaultAnchorMinOccurrence {
			anchors = append(anchors, c)
		}
	}

	if len(anchors) < internal.DefaultAnchorMinKeys && len(candidates) >= internal.DefaultAnchorMinKeys {
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].Count != candidates[j].Count {
				return candidates[i].Count > candidates[j].Count
			}
			return candidates[i].Key < candidates[j].Key
		})
		anchors = candidates[:internal.DefaultAnchorMinKeys]
	}

	tree := radix.New()
	for _, a := range anchors {
		tree.Insert(a.Key, AnchorEntry{
			Level:    a.Level,
			DFAState: resolve(a.Key),
			Count:    a.Count,
		})
	}

	slog.Debug("Speculation table built",
		"candidates", len(candidates),
		"anchors", tree.Len())

	return &SpeculationTable{tree: tree, size: tree.Len()}
}

// Lookup probes the table for an anchor key.
func (t *SpeculationTable) Lookup(key string) (AnchorEntry, bool) {
	v, ok := t.tree.Get(key)
	if !ok {
		return AnchorEntry{}, false
	}
	return v.(AnchorEntry), true
}

// Size returns the number of anchor keys in the table.
func (t *SpeculationTable) Size() int {
	return t.size
}
