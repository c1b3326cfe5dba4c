package partition

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketizeSingleSmallFile(t *testing.T) {
	fsys := newTestFS(t, map[string]string{"data.json": `{"a":1,"b":2}`})

	// The default minimum bucket size far exceeds the file; one bucket
	// covers it entirely.
	buckets, err := Bucketize(fsys, Options{Path: "data.json"})
	require.NoError(t, err)

	require.Len(t, buckets, 1)
	assert.Equal(t, Descriptor{Path: "data.json", Start: 0, End: 13}, buckets[0])
	assert.Equal(t, 0, buckets[0].StartLevel)
	assert.Equal(t, 0, buckets[0].DFAState)
}

func TestBucketizeClampsToMinimum(t *testing.T) {
	fsys := newTestFS(t, map[string]string{"data.json": strings.Repeat("x", 33)})

	buckets, err := Bucketize(fsys, Options{
		Path:              "data.json",
		Parallelism:       8,
		MinPartitionBytes: 10,
		MaxPartitionBytes: 1 << 30,
	})
	require.NoError(t, err)

	// ceil(33/8)=5 clamps up to the 10-byte minimum.
	require.Len(t, buckets, 4)
	assert.Equal(t, int64(0), buckets[0].Start)
	assert.Equal(t, int64(10), buckets[0].End)
	assert.Equal(t, int64(30), buckets[3].Start)
	assert.Equal(t, int64(33), buckets[3].End)
}

func TestBucketizeClampsToMaximum(t *testing.T) {
	fsys := newTestFS(t, map[string]string{"data.json": strings.Repeat("x", 40)})

	buckets, err := Bucketize(fsys, Options{
		Path:              "data.json",
		Parallelism:       1,
		MinPartitionBytes: 1,
		MaxPartitionBytes: 16,
	})
	require.NoError(t, err)

	// ceil(40/1)=40 clamps down to the 16-byte maximum.
	require.Len(t, buckets, 3)
	assert.Equal(t, int64(16), buckets[0].End)
	assert.Equal(t, int64(32), buckets[1].End)
	assert.Equal(t, int64(40), buckets[2].End)
}

func TestBucketizeNoFilesReturnsEmpty(t *testing.T) {
	fsys := newTestFS(t, map[string]string{})

	buckets, err := Bucketize(fsys, Options{Path: "missing.json"})
	require.NoError(t, err)
	assert.Empty(t, buckets)
}

func TestBucketizeDirectoryListing(t *testing.T) {
	fsys := newTestFS(t, map[string]string{
		"data/a.json":        `{"k":1}`,
		"data/b.json":        `{"k":2}`,
		"data/nested/c.json": `{"k":3}`,
	})

	flat, err := Bucketize(fsys, Options{Path: "data"})
	require.NoError(t, err)
	assert.Len(t, flat, 2)

	recursive, err := Bucketize(fsys, Options{Path: "data", Recursive: true})
	require.NoError(t, err)
	assert.Len(t, recursive, 3)
}

func TestBucketizeGlobPattern(t *testing.T) {
	fsys := newTestFS(t, map[string]string{
		"data/a.json": `{"k":1}`,
		"data/b.json": `{"k":2}`,
		"data/c.txt":  `not json`,
	})

	buckets, err := Bucketize(fsys, Options{Path: "data/*.json"})
	require.NoError(t, err)
	assert.Len(t, buckets, 2)
}

func TestBucketizePathGlobFilter(t *testing.T) {
	fsys := newTestFS(t, map[string]string{
		"data/a.json": `{"k":1}`,
		"data/b.txt":  `skip me`,
	})

	buckets, err := Bucketize(fsys, Options{
		Path:           "data",
		PathGlobFilter: "*.json",
	})
	require.NoError(t, err)

	require.Len(t, buckets, 1)
	assert.Equal(t, "data/a.json", buckets[0].Path)
}

func TestBucketizeCompressedFileIsWhole(t *testing.T) {
	fsys := newTestFS(t, map[string]string{
		"data/big.json.gz": strings.Repeat("x", 64),
	})

	buckets, err := Bucketize(fsys, Options{
		Path:              "data",
		Parallelism:       1,
		MinPartitionBytes: 1,
		MaxPartitionBytes: 16,
	})
	require.NoError(t, err)

	// Compressed inputs are not splittable; the whole file is one bucket.
	require.Len(t, buckets, 1)
	assert.Equal(t, int64(0), buckets[0].Start)
	assert.Equal(t, int64(64), buckets[0].End)
}

func TestBucketizeSkipsEmptyFiles(t *testing.T) {
	fsys := newTestFS(t, map[string]string{
		"data/empty.json": "",
		"data/full.json":  `{"k":1}`,
	})

	buckets, err := Bucketize(fsys, Options{Path: "data"})
	require.NoError(t, err)

	require.Len(t, buckets, 1)
	assert.Equal(t, "data/full.json", buckets[0].Path)
}
