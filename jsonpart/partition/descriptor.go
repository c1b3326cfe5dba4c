// Package partition implements the parallel JSON partitioning engine: it
// divides documents into byte ranges that downstream parsers can consume
// independently, annotating each range with the nesting level, projection
// state, and ancestor opens that make isolated parsing safe.
package partition

import (
	"errors"
	"fmt"
)

// Descriptor is one partition of a file: a half-open byte range [Start, End)
// plus the syntactic metadata required to parse it in isolation.
type Descriptor struct {
	Path       string `json:"path"`
	Start      int64  `json:"start"`
	End        int64  `json:"end"`
	StartLevel int    `json:"startLevel"`
	DFAState   int    `json:"dfaState"`
	// InitialState holds the ancestor opens from the document root down to
	// Start, one byte per level, each '{' or '['. Populated by the full-pass
	// strategy only.
	InitialState []byte `json:"initialState,omitempty"`
	ID           int    `json:"id"`
}

func (d Descriptor) String() string {
	return fmt.Sprintf("partition %d %s[%d:%d) level=%d state=%d", d.ID, d.Path, d.Start, d.End, d.StartLevel, d.DFAState)
}

// TokenKind discriminates syntactic-stack elements.
type TokenKind uint8

const (
	OpenBrace TokenKind = iota
	OpenBracket
	CloseBrace
	CloseBracket
	KeyToken
)

func (k TokenKind) String() string {
	switch k {
	case OpenBrace:
		return "{"
	case OpenBracket:
		return "["
	case CloseBrace:
		return "}"
	case CloseBracket:
		return "]"
	default:
		return "key"
	}
}

// StackToken is one element of a syntactic stack: an unmatched open, a
// dangling close, or an object key, paired with the byte offset just past
// the bracket byte, or for a key just past its opening quote.
type StackToken struct {
	Kind TokenKind
	Pos  int64
	Key  string
}

// IsOpen reports whether the token opens a nesting level.
func (t StackToken) IsOpen() bool {
	return t.Kind == OpenBrace || t.Kind == OpenBracket
}

// IsClose reports whether the token is a dangling close.
func (t StackToken) IsClose() bool {
	return t.Kind == CloseBrace || t.Kind == CloseBracket
}

var (
	// ErrNoFilesFound indicates the input path matched nothing. Diagnostic
	// only; partitioning returns an empty result.
	ErrNoFilesFound = errors.New("no input files found")

	// ErrSpeculationImpossible indicates no anchor keys qualify; the
	// speculation strategy cannot run and the caller should fall back to a
	// full pass.
	ErrSpeculationImpossible = errors.New("speculation impossible: no qualifying anchor keys")
)
