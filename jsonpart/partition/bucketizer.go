package partition

import (
	"fmt"
	"log/slog"
	"path"

	internal "github.com/MajidSas/json-parser-spark/jsonpart"
	"github.com/MajidSas/json-parser-spark/jsonpart/fs"
	"github.com/MajidSas/json-parser-spark/jsonpart/stream"
)

// Options bundles the partitioning inputs shared by both strategies. It is
// read-only once partitioning begins.
type Options struct {
	Path              string // file, directory, or glob pattern
	Recursive         bool   // recurse into directories during enumeration
	PathGlobFilter    string // gitignore-style filter; empty disables
	HDFSPath          string // remote filesystem prefix; empty disables
	Encoding          string // document encoding
	Parallelism       int    // divisor for the initial bucket size
	MinPartitionBytes int64  // lower bucket size bound
	MaxPartitionBytes int64  // upper bucket size bound
}

// withDefaults fills unset options from the application defaults.
func (o Options) withDefaults() Options {
	if o.Parallelism <= 0 {
		o.Parallelism = internal.DefaultParallelism
	}
	if o.MinPartitionBytes <= 0 {
		o.MinPartitionBytes = internal.DefaultMinPartitionBytes
	}
	if o.MaxPartitionBytes <= 0 {
		o.MaxPartitionBytes = internal.DefaultMaxPartitionBytes
	}
	if o.Encoding == "" {
		o.Encoding = internal.DefaultEncoding
	}
	return o
}

// Bucketize enumerates the input files and cuts each one into equal byte
// buckets sized from the total input size, the parallelism, and the
// min/max bounds. Buckets are raw descriptors at level zero; the strategies
// refine them into parseable partitions.
func Bucketize(fsys fs.FileSystem, opts Options) ([]Descriptor, error) {
	opts = opts.withDefaults()

	files, err := enumerate(fsys, opts)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		slog.Warn("No input files matched",
			"path", opts.Path,
			"recursive", opts.Recursive,
			"pathGlobFilter", opts.PathGlobFilter)
		return nil, nil
	}

	var totalSize int64
	for _, f := range files {
		totalSize += f.Size
	}

	bucketSize := (totalSize + int64(opts.Parallelism) - 1) / int64(opts.Parallelism)
	if bucketSize < opts.MinPartitionBytes {
		bucketSize = opts.MinPartitionBytes
	}
	if bucketSize > opts.MaxPartitionBytes {
		bucketSize = opts.MaxPartitionBytes
	}

	var buckets []Descriptor
	for _, f := range files {
		if f.Size == 0 {
			continue
		}
		if !stream.IsCompressed(f.Path) {
			for start := int64(0); start < f.Size; start += bucketSize {
				end := start + bucketSize
				if end > f.Size {
					end = f.Size
				}
				buckets = append(buckets, Descriptor{Path: f.Path, Start: start, End: end})
			}
			continue
		}
		// Compressed files are not byte-addressable and become a single
		// whole-file bucket.
		buckets = append(buckets, Descriptor{Path: f.Path, Start: 0, End: f.Size})
	}

	slog.Debug("Bucketized input",
		"files", len(files),
		"total_bytes", totalSize,
		"bucket_size", bucketSize,
		"buckets", len(buckets))

	return buckets, nil
}

// enumerate resolves the input path into a flat file listing, applying the
// glob filter when configured.
func enumerate(fsys fs.FileSystem, opts Options) ([]fs.FileStatus, error) {
	root := opts.Path
	if opts.HDFSPath != "" {
		root = path.Join(opts.HDFSPath, root)
	}

	var files []fs.FileStatus
	if fs.HasGlobMeta(root) {
		matches, err := fsys.Glob(root)
		if err != nil {
			return nil, fmt.Errorf("failed to expand input pattern: %w", err)
		}
		files = matches
	} else {
		status, err := fsys.GetFileStatus(root)
		if err != nil {
			// A missing path is a no-match, not a failure.
			slog.Warn("Input path not found", "path", root, "error", err)
			return nil, nil
		}
		if status.IsDir {
			files, err = fsys.ListFiles(root, opts.Recursive)
			if err != nil {
				return nil, fmt.Errorf("failed to list input directory: %w", err)
			}
		} else {
			files = []fs.FileStatus{status}
		}
	}

	if opts.PathGlobFilter == "" {
		return files, nil
	}
	filter := fs.NewPathFilter(opts.PathGlobFilter)
	kept := files[:0]
	for _, f := range files {
		if filter.Keep(f.Path) {
			kept = append(kept, f)
		}
	}
	return kept, nil
}
