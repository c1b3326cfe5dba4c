package partition

import (
	"github.com/MajidSas/json-parser-spark/jsonpart/dfa"
)

// ScannedPartition pairs a raw bucket with its scan result.
type ScannedPartition struct {
	Bucket Descriptor
	Result *ScanResult
}

// reconcileEntry caches the per-partition reconciliation state computed on
// the forward pass.
type reconcileEntry struct {
	bucket       Descriptor
	proj         Projection
	initialState []byte
	filtered     []StackToken
}

// Reconcile assembles the final full-pass descriptors from the scanned
// partitions, which must be in document order. The forward pass folds each
// partition's residual stack into the evolving file context and projects the
// context each partition starts in; the reverse pass realizes skip levels by
// consuming dangling closes from subsequent partitions and contracts each
// end to the next partition's start.
func Reconcile(d *dfa.DFA, parts []ScannedPartition) []Descriptor {
	entries := make([]reconcileEntry, len(parts))

	var (
		prev     []StackToken
		prevEnd  int64
		prevPath string
	)
	for i, p := range parts {
		if p.Bucket.Path != prevPath {
			prev = nil
			prevEnd = 0
			prevPath = p.Bucket.Path
		}

		// prev is the ancestor context valid at this partition's start.
		proj := PartitionLevelSkip(d, prev)
		merged, filtered := MergeSyntaxStack(prev, p.Result.Stack, prevEnd)

		entries[i] = reconcileEntry{
			bucket:       p.Bucket,
			proj:         proj,
			initialState: InitialStateOpens(prev, proj.StopIndex),
			filtered:     filtered,
		}
		prev = merged
		prevEnd = p.Result.End
	}

	reversed := make([]Descriptor, 0, len(entries))
	nextStart := make(map[string]int64)

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		shifted := e.bucket.Start

		if e.proj.SkipLevels > 0 {
			remaining := e.proj.SkipLevels
			realized := false
		consume:
			for j := i; j < len(entries); j++ {
				if entries[j].bucket.Path != e.bucket.Path {
					break
				}
				for _, t := range entries[j].filtered {
					if !t.IsClose() {
						continue
					}
					remaining--
					if remaining == 0 {
						shifted = t.Pos
						realized = true
						break consume
					}
				}
			}
			if !realized {
				// The pending levels never close before the file ends; the
				// partition's content is fully absorbed by skipping.
				continue
			}
		}

		end := e.bucket.End
		if next, ok := nextStart[e.bucket.Path]; ok && next < end {
			end = next
		}
		if shifted >= end {
			continue
		}

		reversed = append(reversed, Descriptor{
			Path:         e.bucket.Path,
			Start:        shifted,
			End:          end,
			StartLevel:   e.proj.StartLevel,
			DFAState:     e.proj.DFAState,
			InitialState: e.initialState,
		})
		nextStart[e.bucket.Path] = shifted
	}

	out := make([]Descriptor, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		desc := reversed[i]
		desc.ID = len(out)
		out = append(out, desc)
	}
	return out
}

// ReconcileSpeculation performs the speculation variant of reconciliation:
// no skipping is needed, so each partition's end is rewritten to the next
// same-file partition's shifted start and emptied partitions are dropped.
// Ends grow as well as shrink: records between a bucket boundary and the
// successor's anchor belong to the predecessor's parser.
func ReconcileSpeculation(parts []Descriptor) []Descriptor {
	reversed := make([]Descriptor, 0, len(parts))
	nextBound := make(map[string]int64)

	for i := len(parts) - 1; i >= 0; i-- {
		p := parts[i]
		if next, ok := nextBound[p.Path]; ok {
			p.End = next
		}
		if p.Start >= p.End {
			// Emptied bucket; its range folds into the predecessor.
			if _, ok := nextBound[p.Path]; !ok {
				nextBound[p.Path] = p.End
			}
			continue
		}
		reversed = append(reversed, p)
		nextBound[p.Path] = p.Start
	}

	out := make([]Descriptor, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		desc := reversed[i]
		desc.ID = len(out)
		out = append(out, desc)
	}
	return out
}
