package partition

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MajidSas/json-parser-spark/jsonpart/stats"
)

const anchorDoc = `[{"pad":"xx"},{"a":{"marker":42}}]`

// anchorTable builds a speculation table whose only anchor is "marker",
// observed at level 3 with a qualifying occurrence count.
func anchorTable(t *testing.T, resolve stats.StateResolver) *stats.SpeculationTable {
	t.Helper()
	docStats := stats.NewDocumentStats()
	for range 1500 {
		docStats.Observe("marker", 3)
	}
	// Multi-level keys never qualify.
	docStats.Observe("pad", 2)
	docStats.Observe("pad", 3)

	table := stats.BuildTable(docStats, resolve)
	require.Equal(t, 1, table.Size())
	return table
}

func TestShiftToAnchorRollsBackOverKey(t *testing.T) {
	src := newTestSource(t, anchorDoc)
	table := anchorTable(t, func(string) int { return 3 })

	out, err := ShiftToAnchor(src, table, Descriptor{Path: "data.json", Start: 18, End: src.Size()})
	require.NoError(t, err)

	// The start rolls back over the quoted key so the anchor lands inside
	// the partition.
	assert.Equal(t, int64(strings.Index(anchorDoc, `"marker"`)), out.Start)
	assert.Equal(t, 3, out.StartLevel)
	// The anchor is the last matched query component; its value is still
	// unconsumed.
	assert.Equal(t, 2, out.DFAState)
}

func TestShiftToAnchorClimbsExcessLevels(t *testing.T) {
	src := newTestSource(t, anchorDoc)
	table := anchorTable(t, func(string) int { return 1 })

	out, err := ShiftToAnchor(src, table, Descriptor{Path: "data.json", Start: 18, End: src.Size()})
	require.NoError(t, err)

	// The anchor lies two levels deeper than its projection state; the
	// start advances past the two closing brackets.
	assert.Equal(t, int64(33), out.Start)
	assert.Equal(t, 1, out.StartLevel)
	assert.Equal(t, 1, out.DFAState)
}

func TestShiftToAnchorPassesThroughFileHead(t *testing.T) {
	src := newTestSource(t, anchorDoc)
	table := anchorTable(t, func(string) int { return 3 })

	bucket := Descriptor{Path: "data.json", Start: 0, End: 18}
	out, err := ShiftToAnchor(src, table, bucket)
	require.NoError(t, err)

	assert.Equal(t, bucket, out)
}

func TestShiftToAnchorEmptiesBucketWithoutAnchor(t *testing.T) {
	src := newTestSource(t, `[{"pad":"xx"},{"other":1}]`)
	docStats := stats.NewDocumentStats()
	for range 1500 {
		docStats.Observe("marker", 3)
	}
	table := stats.BuildTable(docStats, func(string) int { return 3 })

	out, err := ShiftToAnchor(src, table, Descriptor{Path: "data.json", Start: 5, End: 20})
	require.NoError(t, err)

	assert.Equal(t, src.Size(), out.Start)
	assert.Equal(t, 0, out.StartLevel)
	assert.Equal(t, 0, out.DFAState)
}

func TestSpeculateFailsWithEmptyTable(t *testing.T) {
	fsys := newTestFS(t, map[string]string{"data.json": anchorDoc})

	// Every key appears at multiple levels, so no anchor qualifies.
	docStats := stats.NewDocumentStats()
	docStats.Observe("pad", 1)
	docStats.Observe("pad", 2)
	docStats.Observe("marker", 2)
	docStats.Observe("marker", 3)
	table := stats.BuildTable(docStats, func(string) int { return 1 })
	require.Equal(t, 0, table.Size())

	p := New(fsys, nil, table, Options{Path: "data.json"})
	_, err := p.Speculate(context.Background())
	assert.ErrorIs(t, err, ErrSpeculationImpossible)
}

func TestSpeculateFailsWithNilTable(t *testing.T) {
	fsys := newTestFS(t, map[string]string{"data.json": anchorDoc})

	p := New(fsys, nil, nil, Options{Path: "data.json"})
	_, err := p.Speculate(context.Background())
	assert.ErrorIs(t, err, ErrSpeculationImpossible)
}
