// Package token implements the byte-level tokenizer the partitioners use to
// consume quoted strings, locate anchor keys, and skip nesting levels. All
// routines are escape-aware: a quote preceded by an odd run of backslashes is
// string content, not a delimiter. Non-delimiter bytes are treated as opaque,
// so arbitrary UTF-8 content inside strings is safe.
package token

import (
	"errors"
	"fmt"
	"io"
	"path"
	"unicode/utf8"

	"github.com/MajidSas/json-parser-spark/jsonpart/fs"
	"github.com/MajidSas/json-parser-spark/jsonpart/stream"
)

// GetInputStream opens the document at p, optionally resolving it against a
// remote filesystem prefix, and returns the open source plus its size.
func GetInputStream(fsys fs.FileSystem, p, hdfsPath string) (*stream.Source, int64, error) {
	resolved := p
	if hdfsPath != "" {
		resolved = path.Join(hdfsPath, p)
	}
	src, err := stream.OpenFile(fsys, resolved)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open input stream for %s: %w", resolved, err)
	}
	return src, src.Size(), nil
}

// NextToken scans forward from the reader's position for the next quoted
// string between start and end. It returns the string content (quotes
// stripped) and the offset just past the closing quote, relative to start.
// The relative index is -1 when no token remains before end or EOF.
func NextToken(r *stream.Reader, start, end int64) (string, int64) {
	escaped := false
	for r.Pos() < end {
		b, err := r.ReadByte()
		if err != nil {
			return "", -1
		}
		if escaped {
			escaped = false
			continue
		}
		switch b {
		case '\\':
			escaped = true
		case '"':
			content, ok := readStringTail(r)
			if !ok {
				return "", -1
			}
			return content, r.Pos() - start
		}
	}
	return "", -1
}

// readStringTail consumes string content up to and including the closing
// unescaped quote, with the reader positioned just past the opening quote.
func readStringTail(r *stream.Reader) (string, bool) {
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

// Consume reads bytes up to and including the first unescaped occurrence of
// delim, or until end. It returns the consumed text, delimiter included, and
// the new absolute position. Reaching end or EOF without the delimiter
// returns what was read.
func Consume(r *stream.Reader, end int64, delim byte) (string, int64) {
	var buf []byte
	escaped := false
	for r.Pos() < end {
		b, err := r.ReadByte()
		if err != nil {
			break
		}
		buf = append(buf, b)
		if escaped {
			escaped = false
			continue
		}
		if b == '\\' {
			escaped = true
			continue
		}
		if b == delim {
			break
		}
	}
	return string(buf), r.Pos()
}

// IsValidString reports whether raw reads as the remainder of a JSON string:
// it must terminate with an unescaped closing quote and contain no earlier
// unescaped quote and no raw control bytes. The empty remainder (a lone
// closing quote) is valid; the boundary landed immediately before the end of
// a string.
func IsValidString(raw string) bool {
	if len(raw) == 0 || raw[len(raw)-1] != '"' {
		return false
	}
	escaped := false
	for i := 0; i < len(raw)-1; i++ {
		b := raw[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case b == '\\':
			escaped = true
		case b == '"':
			return false
		case b < 0x20:
			return false
		}
	}
	// An escaped final quote means the string has not terminated.
	return !escaped
}

// StringSize returns the encoded byte length of s.
func StringSize(s string) int64 {
	return int64(len(s))
}

// CharSize returns the encoded byte length of a single codepoint.
func CharSize(cp rune) int {
	return utf8.RuneLen(cp)
}

// SkipLevels advances the reader until n enclosing levels have been closed:
// it consumes bytes, tracking strings and any nesting opened along the way,
// until n unmatched closing brackets have been read. It returns the number of
// bytes skipped.
func SkipLevels(r *stream.Reader, n int, fileSize int64) (int64, error) {
	origin := r.Pos()
	depth := 0
	inString := false
	escaped := false
	for n > 0 && r.Pos() < fileSize {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return r.Pos() - origin, fmt.Errorf("failed to skip levels: %w", err)
		}
		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			if depth > 0 {
				depth--
			} else {
				n--
			}
		}
	}
	return r.Pos() - origin, nil
}
