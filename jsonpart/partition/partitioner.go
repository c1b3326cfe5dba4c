package partition

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/google/uuid"

	"github.com/MajidSas/json-parser-spark/jsonpart/dfa"
	"github.com/MajidSas/json-parser-spark/jsonpart/exec"
	"github.com/MajidSas/json-parser-spark/jsonpart/fs"
	"github.com/MajidSas/json-parser-spark/jsonpart/stats"
	"github.com/MajidSas/json-parser-spark/jsonpart/stream"
	"github.com/MajidSas/json-parser-spark/jsonpart/token"
)

// RunStats tracks performance metrics for one partitioning run.
type RunStats struct {
	BucketsScanned    int64
	BytesCovered      int64
	PartitionsDropped int64
	StartTime         time.Time
	EndTime           time.Time
}

// Partitioner drives the two partitioning strategies over a shared read-only
// options bundle. Per-bucket work fans out on the map-collect executor; the
// merge, projection, and reconciliation stages run on the caller's
// goroutine.
type Partitioner struct {
	fsys    fs.FileSystem
	proj    *dfa.DFA
	table   *stats.SpeculationTable
	opts    Options
	workers int
	asserts *assert.AssertHandler
}

// New creates a partitioner. The speculation table may be nil when only the
// full pass will be used.
func New(fsys fs.FileSystem, proj *dfa.DFA, table *stats.SpeculationTable, opts Options) *Partitioner {
	return &Partitioner{
		fsys:    fsys,
		proj:    proj,
		table:   table,
		opts:    opts,
		workers: exec.DefaultWorkers(),
		asserts: assert.NewAssertHandler(),
	}
}

// WithWorkers overrides the executor's worker count.
func (p *Partitioner) WithWorkers(n int) *Partitioner {
	if n > 0 {
		p.workers = n
	}
	return p
}

// FullPass runs the exact two-phase strategy: every bucket is scanned once
// for its residual syntactic stack, then neighboring partitions are
// reconciled into correct start boundaries and projection states.
func (p *Partitioner) FullPass(ctx context.Context) ([]Descriptor, error) {
	batchID := uuid.New()
	runStats := &RunStats{StartTime: time.Now()}

	buckets, err := Bucketize(p.fsys, p.opts)
	if err != nil {
		return nil, err
	}
	if len(buckets) == 0 {
		return nil, nil
	}

	splittable := make([]Descriptor, 0, len(buckets))
	var passthrough []Descriptor
	for _, b := range buckets {
		if stream.IsCompressed(b.Path) {
			passthrough = append(passthrough, b)
			continue
		}
		splittable = append(splittable, b)
	}

	results, err := exec.MapCollect(ctx, splittable, p.workers, func(ctx context.Context, bucket Descriptor) (ScannedPartition, error) {
		if err := ctx.Err(); err != nil {
			return ScannedPartition{}, err
		}
		src, _, err := token.GetInputStream(p.fsys, bucket.Path, "")
		if err != nil {
			return ScannedPartition{}, err
		}
		defer src.Close()

		result, err := EndState(src, bucket.Start, bucket.End)
		if err != nil {
			return ScannedPartition{}, fmt.Errorf("scan of %s[%d:%d) failed: %w", bucket.Path, bucket.Start, bucket.End, err)
		}
		atomic.AddInt64(&runStats.BucketsScanned, 1)
		return ScannedPartition{Bucket: bucket, Result: result}, nil
	})
	if err != nil {
		return nil, err
	}

	out := Reconcile(p.proj, results)
	for _, b := range passthrough {
		b.ID = len(out)
		out = append(out, b)
	}
	runStats.PartitionsDropped = int64(len(buckets) - len(out))

	p.checkInvariants(ctx, out)
	p.logRunStats("full_pass", batchID, runStats, out)
	return out, nil
}

// Speculate runs the heuristic strategy: each bucket's start slides forward
// to a rare anchor key whose level and projection state are known from
// document statistics.
func (p *Partitioner) Speculate(ctx context.Context) ([]Descriptor, error) {
	if p.table == nil || p.table.Size() == 0 {
		return nil, ErrSpeculationImpossible
	}

	batchID := uuid.New()
	runStats := &RunStats{StartTime: time.Now()}

	buckets, err := Bucketize(p.fsys, p.opts)
	if err != nil {
		return nil, err
	}
	if len(buckets) == 0 {
		return nil, nil
	}

	shifted, err := exec.MapCollect(ctx, buckets, p.workers, func(ctx context.Context, bucket Descriptor) (Descriptor, error) {
		if err := ctx.Err(); err != nil {
			return Descriptor{}, err
		}
		src, _, err := token.GetInputStream(p.fsys, bucket.Path, "")
		if err != nil {
			return Descriptor{}, err
		}
		defer src.Close()

		desc, err := ShiftToAnchor(src, p.table, bucket)
		if err != nil {
			return Descriptor{}, fmt.Errorf("speculation over %s[%d:%d) failed: %w", bucket.Path, bucket.Start, bucket.End, err)
		}
		atomic.AddInt64(&runStats.BucketsScanned, 1)
		return desc, nil
	})
	if err != nil {
		return nil, err
	}

	out := ReconcileSpeculation(shifted)
	runStats.PartitionsDropped = int64(len(buckets) - len(out))

	p.checkInvariants(ctx, out)
	p.logRunStats("speculation", batchID, runStats, out)
	return out, nil
}

// checkInvariants asserts the reconciler's output is monotonic and
// non-overlapping within each file.
func (p *Partitioner) checkInvariants(ctx context.Context, descs []Descriptor) {
	lastEnd := make(map[string]int64)
	for _, d := range descs {
		p.asserts.Assert(ctx, d.Start < d.End, "partition range must be non-empty")
		if prev, ok := lastEnd[d.Path]; ok {
			p.asserts.Assert(ctx, d.Start >= prev, "partition starts must be non-decreasing within a file")
		}
		lastEnd[d.Path] = d.End
	}
}

func (p *Partitioner) logRunStats(strategy string, batchID uuid.UUID, runStats *RunStats, out []Descriptor) {
	runStats.EndTime = time.Now()
	for _, d := range out {
		runStats.BytesCovered += d.End - d.Start
	}
	slog.Info("Partitioning completed",
		"batch_id", batchID.String(),
		"strategy", strategy,
		"buckets_scanned", atomic.LoadInt64(&runStats.BucketsScanned),
		"partitions", len(out),
		"partitions_dropped", runStats.PartitionsDropped,
		"bytes_covered", runStats.BytesCovered,
		"duration_ms", runStats.EndTime.Sub(runStats.StartTime).Milliseconds())
}
