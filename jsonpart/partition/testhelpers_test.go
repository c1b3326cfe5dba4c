package partition

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/MajidSas/json-parser-spark/jsonpart/fs"
	"github.com/MajidSas/json-parser-spark/jsonpart/stream"
)

// newTestSource writes content into an in-memory filesystem and opens it as
// a partition source.
func newTestSource(t *testing.T, content string) *stream.Source {
	t.Helper()
	fsys, mem := fs.NewMem()
	require.NoError(t, afero.WriteFile(mem, "data.json", []byte(content), 0o644))
	src, err := stream.OpenFile(fsys, "data.json")
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })
	return src
}

// newTestFS builds an in-memory filesystem from a path -> content map.
func newTestFS(t *testing.T, files map[string]string) *fs.AferoFS {
	t.Helper()
	fsys, mem := fs.NewMem()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(mem, path, []byte(content), 0o644))
	}
	return fsys
}

func kinds(stack []StackToken) []TokenKind {
	out := make([]TokenKind, len(stack))
	for i, t := range stack {
		out[i] = t.Kind
	}
	return out
}
