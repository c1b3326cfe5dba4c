package partition

import (
	"fmt"
	"log/slog"

	"github.com/MajidSas/json-parser-spark/jsonpart/stats"
	"github.com/MajidSas/json-parser-spark/jsonpart/stream"
	"github.com/MajidSas/json-parser-spark/jsonpart/token"
)

// ShiftToAnchor slides a bucket's start forward to the first anchor key the
// speculation table recognizes, annotating the bucket with the anchor's
// known level and projection state. A bucket with no anchor before the file
// end is pushed to the file size and later dropped by reconciliation.
//
// Buckets starting at the file head need no anchor and pass through
// unchanged.
func ShiftToAnchor(src *stream.Source, table *stats.SpeculationTable, bucket Descriptor) (Descriptor, error) {
	if bucket.Start == 0 {
		return bucket, nil
	}

	fileSize := src.Size()
	r, err := src.ReaderAt(bucket.Start)
	if err != nil {
		return Descriptor{}, err
	}

	for {
		tok, rel := token.NextToken(r, bucket.Start, fileSize)
		if rel == -1 {
			slog.Debug("No anchor before file end; bucket emptied",
				"path", bucket.Path,
				"bucket_start", bucket.Start)
			bucket.Start = fileSize
			bucket.StartLevel = 0
			bucket.DFAState = 0
			return bucket, nil
		}

		entry, ok := table.Lookup(tok)
		if !ok {
			continue
		}

		skippedLevels := false
		if entry.Level > entry.DFAState {
			// The anchor lies deeper than its projection state consumes;
			// climb out of the excess levels instead of rolling back.
			if _, err := token.SkipLevels(r, entry.Level-entry.DFAState, fileSize); err != nil {
				return Descriptor{}, fmt.Errorf("failed to climb out of anchor levels: %w", err)
			}
			bucket.Start = r.Pos()
			bucket.StartLevel = entry.DFAState
			skippedLevels = true
		} else {
			// Roll back over the quoted key so it lands inside the
			// partition.
			bucket.Start = bucket.Start + rel - token.StringSize(tok) - 2
			bucket.StartLevel = entry.Level
		}

		bucket.DFAState = entry.DFAState
		if bucket.DFAState == bucket.StartLevel && !skippedLevels && bucket.DFAState > 0 {
			// The anchor key is the last matched query component and its
			// value has not been consumed yet.
			bucket.DFAState--
		}
		return bucket, nil
	}
}
