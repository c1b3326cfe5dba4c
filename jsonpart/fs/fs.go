// Package fs provides the byte-stream and file enumeration layer the
// partitioning engine reads documents through. It wraps an afero filesystem so
// production code runs against the OS while tests run against an in-memory tree.
package fs

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"
)

// FileStatus describes a single enumerated file.
type FileStatus struct {
	Path  string
	Size  int64
	IsDir bool
}

// FileSystem is the enumeration and byte-stream provider consumed by the
// bucketizer and the per-partition scanners.
type FileSystem interface {
	ListFiles(root string, recursive bool) ([]FileStatus, error)
	Glob(pattern string) ([]FileStatus, error)
	GetFileStatus(path string) (FileStatus, error)
	Open(path string) (io.ReadSeekCloser, error)
}

// AferoFS implements FileSystem on top of an afero backend.
type AferoFS struct {
	fs afero.Fs
}

// NewOS returns a FileSystem backed by the operating system.
func NewOS() *AferoFS {
	return &AferoFS{fs: afero.NewOsFs()}
}

// NewMem returns a FileSystem backed by an in-memory tree, for tests.
func NewMem() (*AferoFS, afero.Fs) {
	mem := afero.NewMemMapFs()
	return &AferoFS{fs: mem}, mem
}

// New wraps an existing afero filesystem.
func New(backend afero.Fs) *AferoFS {
	return &AferoFS{fs: backend}
}

// ListFiles enumerates regular files under root. With recursive set it walks
// the whole subtree, otherwise only the immediate directory entries.
func (a *AferoFS) ListFiles(root string, recursive bool) ([]FileStatus, error) {
	var files []FileStatus

	if recursive {
		err := afero.Walk(a.fs, root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				slog.Warn("Skipping unreadable entry during listing",
					"path", path,
					"error", err)
				return nil
			}
			if !info.IsDir() {
				files = append(files, FileStatus{Path: path, Size: info.Size()})
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk directory %s: %w", root, err)
		}
		return files, nil
	}

	entries, err := afero.ReadDir(a.fs, root)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", root, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, FileStatus{
			Path: filepath.Join(root, entry.Name()),
			Size: entry.Size(),
		})
	}
	return files, nil
}

// Glob enumerates files matching a shell glob pattern.
func (a *AferoFS) Glob(pattern string) ([]FileStatus, error) {
	matches, err := afero.Glob(a.fs, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to expand glob %s: %w", pattern, err)
	}

	var files []FileStatus
	for _, match := range matches {
		status, err := a.GetFileStatus(match)
		if err != nil {
			slog.Warn("Skipping unreadable glob match",
				"path", match,
				"error", err)
			continue
		}
		if !status.IsDir {
			files = append(files, status)
		}
	}
	return files, nil
}

// GetFileStatus stats a single path.
func (a *AferoFS) GetFileStatus(path string) (FileStatus, error) {
	info, err := a.fs.Stat(path)
	if err != nil {
		return FileStatus{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return FileStatus{Path: path, Size: info.Size(), IsDir: info.IsDir()}, nil
}

// Open returns a seekable byte stream for the file at path.
func (a *AferoFS) Open(path string) (io.ReadSeekCloser, error) {
	f, err := a.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

// PathFilter keeps only files matching a gitignore-style glob expression.
// An empty expression keeps everything.
type PathFilter struct {
	matcher *ignore.GitIgnore
}

// NewPathFilter compiles a pathGlobFilter expression. Multiple patterns may be
// separated by commas.
func NewPathFilter(expr string) *PathFilter {
	if expr == "" {
		return &PathFilter{}
	}
	patterns := strings.Split(expr, ",")
	for i := range patterns {
		patterns[i] = strings.TrimSpace(patterns[i])
	}
	return &PathFilter{matcher: ignore.CompileIgnoreLines(patterns...)}
}

// Keep reports whether the file at path passes the filter.
func (f *PathFilter) Keep(path string) bool {
	if f.matcher == nil {
		return true
	}
	return f.matcher.MatchesPath(path)
}

// HasGlobMeta reports whether a path contains shell glob metacharacters and
// should be expanded with Glob rather than stat'ed directly.
func HasGlobMeta(path string) bool {
	return strings.ContainsAny(path, "*?[")
}
