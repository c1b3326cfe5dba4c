// Package exec provides the generic map-collect facility the partitioning
// strategies fan their per-partition work out on. Workers run under a bounded
// conc pool; results land in an ordinal-indexed slice so collection preserves
// input order regardless of completion order.
package exec

import (
	"context"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// DefaultWorkers picks a worker count for I/O bound partition scans.
func DefaultWorkers() int {
	return min(max(runtime.NumCPU()*2, 4), 32)
}

// MapCollect applies fn to every item concurrently and returns the results in
// input order. The first worker error cancels the remaining work and fails
// the whole batch; no partial result is returned.
func MapCollect[T, R any](ctx context.Context, items []T, workers int, fn func(context.Context, T) (R, error)) ([]R, error) {
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	results := make([]R, len(items))
	p := pool.New().
		WithMaxGoroutines(workers).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()

	for i, item := range items {
		p.Go(func(ctx context.Context) error {
			r, err := fn(ctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
