package partition

import (
	"errors"
	"io"

	"github.com/MajidSas/json-parser-spark/jsonpart/stream"
)

// Skip advances the reader past one JSON value. The caller has already read
// the value's first byte and passes it as current. Skip tracks any nesting
// opened along the way and stops just before the delimiter that follows the
// value, unreading it so the caller's loop sees it. A value left open at the
// partition end is consumed past end until it closes.
func Skip(r *stream.Reader, end int64, current byte) (int64, error) {
	var stack []byte
	inString := false

	b := current
	for {
		if inString {
			switch b {
			case '\\':
				// The escaped byte is consumed blindly; this collapses any
				// run of backslashes to the right parity.
				if _, err := r.ReadByte(); err != nil {
					return r.Pos(), skipReadErr(err)
				}
			case '"':
				stack = stack[:len(stack)-1]
				inString = false
			}
		} else {
			switch b {
			case '{', '[':
				stack = append(stack, b)
			case '"':
				stack = append(stack, b)
				inString = true
			case '}':
				if len(stack) > 0 && stack[len(stack)-1] == '{' {
					stack = stack[:len(stack)-1]
				} else if len(stack) == 0 {
					if err := r.UnreadByte(); err != nil {
						return r.Pos(), err
					}
					return r.Pos(), nil
				}
			case ']':
				if len(stack) > 0 && stack[len(stack)-1] == '[' {
					stack = stack[:len(stack)-1]
				} else if len(stack) == 0 {
					if err := r.UnreadByte(); err != nil {
						return r.Pos(), err
					}
					return r.Pos(), nil
				}
			case ',', ':':
				if len(stack) == 0 {
					if err := r.UnreadByte(); err != nil {
						return r.Pos(), err
					}
					return r.Pos(), nil
				}
			}
		}

		if len(stack) == 0 && r.Pos() >= end {
			return r.Pos(), nil
		}

		var err error
		b, err = r.ReadByte()
		if err != nil {
			return r.Pos(), skipReadErr(err)
		}
	}
}

func skipReadErr(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
