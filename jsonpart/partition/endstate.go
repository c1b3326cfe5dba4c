package partition

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MajidSas/json-parser-spark/jsonpart/stream"
	"github.com/MajidSas/json-parser-spark/jsonpart/token"
)

// ScanResult is the outcome of scanning one partition: the residual
// syntactic stack left unmatched by the range, the scanner's final position,
// and whether the scanner had to read past the partition end to finish a
// structure.
type ScanResult struct {
	Stack   []StackToken
	End     int64
	PastEnd bool
}

// EndState scans the partition [start, end) byte by byte, maintaining an
// incremental stack of unmatched opens, dangling closes, and the keys
// between them. Dangling closes are retained as explicit tokens so the
// merger can cancel them against the predecessor's opens.
//
// A partition that does not begin at the file start may open inside a string
// literal; the prelude consumes one quoted-string remainder if the bytes
// read as one, and resets otherwise.
func EndState(src *stream.Source, start, end int64) (*ScanResult, error) {
	r, err := src.ReaderAt(start)
	if err != nil {
		return nil, err
	}

	if start > 0 {
		raw, _ := token.Consume(r, src.Size(), '"')
		if !token.IsValidString(raw) {
			if r, err = src.ReaderAt(start); err != nil {
				return nil, err
			}
		}
	}

	// The live stack reuses slots vacated by pops: stackPos is the top,
	// stackPosMax the high-water mark of initialized slots.
	var (
		syntaxStack     []byte
		syntaxPositions []int64
		stackPos        = -1
		stackPosMax     = -1
		valueMode       bool
	)

	push := func(b byte, pos int64) {
		stackPos++
		if stackPos <= stackPosMax {
			syntaxStack[stackPos] = b
			syntaxPositions[stackPos] = pos
			return
		}
		syntaxStack = append(syntaxStack, b)
		syntaxPositions = append(syntaxPositions, pos)
		stackPosMax = stackPos
	}

	for r.Pos() < end {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("partition scan failed at offset %d: %w", r.Pos(), err)
		}
		pos := r.Pos()

		switch b {
		case '{':
			push('{', pos)
			valueMode = false
		case '[':
			push('[', pos)
		case '}':
			if stackPos >= 1 && syntaxStack[stackPos] == '"' {
				stackPos--
			}
			if stackPos >= 0 && syntaxStack[stackPos] == '{' {
				stackPos--
			} else {
				push('}', pos)
			}
		case ']':
			if stackPos >= 0 && syntaxStack[stackPos] == '[' {
				stackPos--
			} else {
				push(']', pos)
			}
		case '"':
			switch {
			case valueMode:
				if _, err := Skip(r, end, b); err != nil {
					return nil, err
				}
			case stackPos >= 0 && syntaxStack[stackPos] == '{':
				push('"', pos)
				if _, err := Skip(r, end, b); err != nil {
					return nil, err
				}
			case stackPos >= 0 && syntaxStack[stackPos] == '"':
				syntaxPositions[stackPos] = pos
				if _, err := Skip(r, end, b); err != nil {
					return nil, err
				}
			default:
				if _, err := Skip(r, end, b); err != nil {
					return nil, err
				}
			}
		case ':':
			valueMode = true
		case ',':
			if stackPos < 0 || syntaxStack[stackPos] != '[' {
				valueMode = false
			}
		}
	}

	finalPos := r.Pos()
	result := &ScanResult{End: finalPos, PastEnd: finalPos > end}

	if stackPos >= 0 {
		result.Stack = make([]StackToken, 0, stackPos+1)
		for i := 0; i <= stackPos; i++ {
			t, err := materialize(src, syntaxStack[i], syntaxPositions[i])
			if err != nil {
				return nil, err
			}
			result.Stack = append(result.Stack, t)
		}
	}
	return result, nil
}

// materialize resolves one live stack slot into a token, re-reading key
// content at its recorded offset.
func materialize(src *stream.Source, b byte, pos int64) (StackToken, error) {
	switch b {
	case '{':
		return StackToken{Kind: OpenBrace, Pos: pos}, nil
	case '[':
		return StackToken{Kind: OpenBracket, Pos: pos}, nil
	case '}':
		return StackToken{Kind: CloseBrace, Pos: pos}, nil
	case ']':
		return StackToken{Kind: CloseBracket, Pos: pos}, nil
	}

	r, err := src.ReaderAt(pos)
	if err != nil {
		return StackToken{}, fmt.Errorf("failed to resolve key at offset %d: %w", pos, err)
	}
	raw, _ := token.Consume(r, src.Size(), '"')
	return StackToken{
		Kind: KeyToken,
		Pos:  pos,
		Key:  strings.TrimSuffix(raw, `"`),
	}, nil
}
