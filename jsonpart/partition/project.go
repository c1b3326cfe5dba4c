package partition

import (
	"github.com/MajidSas/json-parser-spark/jsonpart/dfa"
)

// Projection is the outcome of walking a syntactic-ancestor stack through
// the projection DFA: the nesting level and automaton state at the first
// accept or reject, plus the number of pending levels below that point the
// downstream parser must close before the next record.
type Projection struct {
	StartLevel int
	SkipLevels int
	DFAState   int
	// StopIndex is the stack index where the walk stopped; len(stack) when
	// the automaton neither accepted nor rejected.
	StopIndex int
}

// PartitionLevelSkip walks the stack element by element through the
// automaton. Objects always deepen the level; arrays deepen it only when the
// automaton crosses them or is searching descendants; keys are fed to the
// automaton at their level. The walk stops as soon as the automaton has
// accepted or rejects a key.
func PartitionLevelSkip(d *dfa.DFA, stack []StackToken) Projection {
	d.Reset()
	level := 0
	stop := len(stack)

walk:
	for i, t := range stack {
		if d.Complete() {
			stop = i
			break
		}
		switch t.Kind {
		case OpenBracket:
			if d.ToNextStateIfArray(level) || d.AtDescendant() {
				level++
			}
		case OpenBrace:
			level++
		case KeyToken:
			if d.CheckToken(t.Key, level) == dfa.Reject {
				stop = i
				break walk
			}
		case CloseBrace, CloseBracket:
			// Merged stacks carry no closes (the merger cancels or drops
			// them); a close in a stack passed in directly unwinds a level.
			if level > 0 {
				level--
			}
		}
	}

	skip := 0
	for _, t := range stack[stop:] {
		if t.IsOpen() {
			skip++
		}
	}

	return Projection{
		StartLevel: level,
		SkipLevels: skip,
		DFAState:   d.GetCurrentState(),
		StopIndex:  stop,
	}
}

// InitialStateOpens extracts the ancestor opens from the stack prefix the
// walk traversed, one byte per level.
func InitialStateOpens(stack []StackToken, stopIndex int) []byte {
	var opens []byte
	for _, t := range stack[:stopIndex] {
		switch t.Kind {
		case OpenBrace:
			opens = append(opens, '{')
		case OpenBracket:
			opens = append(opens, '[')
		}
	}
	return opens
}
