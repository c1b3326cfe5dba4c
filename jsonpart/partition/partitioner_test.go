package partition

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MajidSas/json-parser-spark/jsonpart/dfa"
	"github.com/MajidSas/json-parser-spark/jsonpart/stats"
)

func TestFullPassSingleFile(t *testing.T) {
	fsys := newTestFS(t, map[string]string{"data.json": `{"a":1,"b":2}`})
	proj, err := dfa.ParsePath("$.a")
	require.NoError(t, err)

	p := New(fsys, proj, nil, Options{Path: "data.json"})
	out, err := p.FullPass(context.Background())
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, Descriptor{Path: "data.json", Start: 0, End: 13, StartLevel: 0, DFAState: 0, ID: 0}, out[0])
}

func TestFullPassMultipleBuckets(t *testing.T) {
	fsys := newTestFS(t, map[string]string{"data.json": `[{"name":"alice"},{"name":"bob"}]`})
	proj, err := dfa.ParsePath("$[*]")
	require.NoError(t, err)

	p := New(fsys, proj, nil, Options{
		Path:              "data.json",
		Parallelism:       8,
		MinPartitionBytes: 15,
		MaxPartitionBytes: 15,
	}).WithWorkers(2)

	out, err := p.FullPass(context.Background())
	require.NoError(t, err)

	// Buckets [0,15) [15,30) [30,33) reconcile into three record-aligned
	// partitions.
	require.Len(t, out, 3)

	assert.Equal(t, int64(0), out[0].Start)
	assert.Equal(t, int64(15), out[0].End)
	assert.Equal(t, 0, out[0].StartLevel)

	assert.Equal(t, int64(17), out[1].Start)
	assert.Equal(t, int64(30), out[1].End)
	assert.Equal(t, 1, out[1].StartLevel)
	assert.Equal(t, 1, out[1].DFAState)
	assert.Equal(t, []byte("["), out[1].InitialState)

	assert.Equal(t, int64(32), out[2].Start)
	assert.Equal(t, int64(33), out[2].End)
	assert.Equal(t, 1, out[2].StartLevel)

	for i, d := range out {
		assert.Equal(t, i, d.ID)
	}
}

func TestFullPassEmptyInput(t *testing.T) {
	fsys := newTestFS(t, map[string]string{})
	proj, err := dfa.ParsePath("$.a")
	require.NoError(t, err)

	p := New(fsys, proj, nil, Options{Path: "nothing-here"})
	out, err := p.FullPass(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSpeculateEndToEnd(t *testing.T) {
	fsys := newTestFS(t, map[string]string{"data.json": anchorDoc})
	proj, err := dfa.ParsePath("$[*].a.marker")
	require.NoError(t, err)

	docStats := stats.NewDocumentStats()
	for range 1500 {
		docStats.Observe("marker", 3)
	}
	table := stats.BuildTable(docStats, proj.ResolveKeyState)

	p := New(fsys, proj, table, Options{
		Path:              "data.json",
		Parallelism:       8,
		MinPartitionBytes: 18,
		MaxPartitionBytes: 18,
	}).WithWorkers(2)

	out, err := p.Speculate(context.Background())
	require.NoError(t, err)

	require.Len(t, out, 2)

	// The first partition extends to the second's anchor-shifted start.
	assert.Equal(t, int64(0), out[0].Start)
	assert.Equal(t, int64(20), out[0].End)

	assert.Equal(t, int64(20), out[1].Start)
	assert.Equal(t, int64(34), out[1].End)
	assert.Equal(t, 3, out[1].StartLevel)
	assert.Equal(t, 2, out[1].DFAState)
}
