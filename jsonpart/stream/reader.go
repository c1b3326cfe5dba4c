// Package stream provides the byte-cursor primitives the scanners are built
// on: a buffered reader with a one-byte mark/reset and absolute position
// tracking, and a file source that hands out readers positioned at arbitrary
// offsets. Gzip-compressed inputs are decompressed transparently; they are not
// byte-addressable, so callers may only read them from offset zero.
package stream

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/MajidSas/json-parser-spark/jsonpart/fs"
)

// Reader is a pull-based byte cursor over a buffered stream. It tracks the
// absolute offset of the next byte and supports unreading exactly one byte.
type Reader struct {
	br  *bufio.Reader
	pos int64
}

// NewReader wraps r with the cursor positioned at the absolute offset pos.
// The caller is responsible for r already being positioned there.
func NewReader(r io.Reader, pos int64) *Reader {
	return &Reader{br: bufio.NewReader(r), pos: pos}
}

// ReadByte returns the next byte and advances the cursor.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.br.ReadByte()
	if err != nil {
		return 0, err
	}
	r.pos++
	return b, nil
}

// UnreadByte rewinds the cursor by one byte. Only the most recently read byte
// can be unread.
func (r *Reader) UnreadByte() error {
	if err := r.br.UnreadByte(); err != nil {
		return err
	}
	r.pos--
	return nil
}

// Peek returns the next byte without advancing the cursor.
func (r *Reader) Peek() (byte, error) {
	b, err := r.br.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Pos returns the absolute offset of the next byte to be read.
func (r *Reader) Pos() int64 {
	return r.pos
}

// Source is an open file the engine reads partitions from.
type Source struct {
	rsc        io.ReadSeekCloser
	size       int64
	compressed bool
	gz         io.ReadCloser
}

// IsCompressed reports whether path names a gzip-compressed file. Compressed
// files cannot be split at byte offsets and are always consumed whole.
func IsCompressed(path string) bool {
	return strings.HasSuffix(path, ".gz")
}

// OpenFile opens path through the filesystem collaborator. The reported size
// is the on-disk size, which for compressed files is the compressed length.
func OpenFile(fsys fs.FileSystem, path string) (*Source, error) {
	status, err := fsys.GetFileStatus(path)
	if err != nil {
		return nil, err
	}
	rsc, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	return &Source{rsc: rsc, size: status.Size, compressed: IsCompressed(path)}, nil
}

// Size returns the on-disk size of the source in bytes.
func (s *Source) Size() int64 {
	return s.size
}

// Splittable reports whether the source can be read from arbitrary offsets.
func (s *Source) Splittable() bool {
	return !s.compressed
}

// ReaderAt returns a Reader positioned at the absolute offset. Compressed
// sources only support offset zero.
func (s *Source) ReaderAt(offset int64) (*Reader, error) {
	if s.compressed {
		if offset != 0 {
			return nil, fmt.Errorf("compressed source is not seekable: requested offset %d", offset)
		}
		if _, err := s.rsc.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to rewind compressed source: %w", err)
		}
		gz, err := gzip.NewReader(s.rsc)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		s.gz = gz
		return NewReader(gz, 0), nil
	}

	if _, err := s.rsc.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to offset %d: %w", offset, err)
	}
	return NewReader(s.rsc, offset), nil
}

// Close releases the underlying stream.
func (s *Source) Close() error {
	if s.gz != nil {
		if err := s.gz.Close(); err != nil {
			s.rsc.Close()
			return err
		}
		s.gz = nil
	}
	return s.rsc.Close()
}
