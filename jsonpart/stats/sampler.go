package stats

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/MajidSas/json-parser-spark/jsonpart/stream"
)

// Sampler builds document statistics by scanning a prefix of a file. The
// sample starts at the document root so every observed key carries its true
// nesting level.
type Sampler struct {
	stats *DocumentStats
	limit int64
}

// NewSampler creates a sampler feeding the given accumulator. A limit of
// zero or less samples the entire file.
func NewSampler(stats *DocumentStats, limit int64) *Sampler {
	return &Sampler{stats: stats, limit: limit}
}

// Sample scans the source from offset zero, recording each object key and
// its nesting level until the byte limit or end of file.
func (s *Sampler) Sample(src *stream.Source) error {
	r, err := src.ReaderAt(0)
	if err != nil {
		return fmt.Errorf("failed to position sampler: %w", err)
	}

	limit := s.limit
	if limit <= 0 {
		limit = src.Size()
	}

	var containers []byte
	valueMode := false
	observed := 0

	for r.Pos() < limit {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("sampler read failed: %w", err)
		}
		switch b {
		case '{':
			containers = append(containers, '{')
			valueMode = false
		case '[':
			containers = append(containers, '[')
		case '}', ']':
			if len(containers) > 0 {
				containers = containers[:len(containers)-1]
			}
		case ':':
			valueMode = true
		case ',':
			if len(containers) == 0 || containers[len(containers)-1] != '[' {
				valueMode = false
			}
		case '"':
			key, ok := readSampledString(r)
			if !ok {
				// String truncated by the sample boundary.
				break
			}
			if !valueMode && len(containers) > 0 && containers[len(containers)-1] == '{' {
				s.stats.Observe(key, len(containers))
				observed++
			}
		}
	}

	slog.Debug("Document sample complete",
		"bytes", r.Pos(),
		"keys_observed", observed)
	return nil
}

func readSampledString(r *stream.Reader) (string, bool) {
	var buf []byte
	escaped := false
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", false
		}
		if escaped {
			buf = append(buf, b)
			escaped = false
			continue
		}
		switch b {
		case '\\':
			buf = append(buf, b)
			escaped = true
		case '"':
			return string(buf), true
		default:
			buf = append(buf, b)
		}
	}
}
