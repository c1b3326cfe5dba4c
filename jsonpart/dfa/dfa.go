// Package dfa implements the projection automaton that encodes a
// JSONPath-like query. The partitioners walk syntactic-ancestor stacks
// through it to decide where matched records begin and how many nesting
// levels separate a partition boundary from the next record.
package dfa

import (
	"fmt"
	"strings"
)

// StateType classifies how a state consumes input.
type StateType string

const (
	// StateObject matches a single key at the next nesting level.
	StateObject StateType = "object"
	// StateArray is crossed by entering an array.
	StateArray StateType = "array"
	// StateDescendant matches its key at any depth below the current one.
	StateDescendant StateType = "descendant"
)

// Verdict is the outcome of feeding a key token to the automaton.
type Verdict int

const (
	Continue Verdict = iota
	Accept
	Reject
)

func (v Verdict) String() string {
	switch v {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	default:
		return "continue"
	}
}

// State is one step of the compiled query path.
type State struct {
	Token string
	Type  StateType
}

// DFA is the projection automaton. The cursor is mutable and driver-side
// only; workers never share an instance.
type DFA struct {
	states       []State
	current      int
	matchedLevel int
}

// New builds an automaton from an explicit state sequence.
func New(states []State) *DFA {
	return &DFA{states: states}
}

// ParsePath compiles a restricted JSONPath expression into a DFA. Supported
// steps are `.key`, `..key` (descendant), `.*`, and `[*]`. The expression
// must begin with `$`.
func ParsePath(expr string) (*DFA, error) {
	if !strings.HasPrefix(expr, "$") {
		return nil, fmt.Errorf("query must start with $: %q", expr)
	}
	rest := expr[1:]
	var states []State
	for len(rest) > 0 {
		switch {
		case strings.HasPrefix(rest, "[*]") || strings.HasPrefix(rest, "[]"):
			states = append(states, State{Type: StateArray})
			rest = rest[strings.Index(rest, "]")+1:]
		case strings.HasPrefix(rest, ".."):
			rest = rest[2:]
			key := takeKey(&rest)
			if key == "" {
				return nil, fmt.Errorf("descendant step missing key in %q", expr)
			}
			states = append(states, State{Token: key, Type: StateDescendant})
		case strings.HasPrefix(rest, "."):
			rest = rest[1:]
			key := takeKey(&rest)
			if key == "" {
				return nil, fmt.Errorf("child step missing key in %q", expr)
			}
			states = append(states, State{Token: key, Type: StateObject})
		default:
			return nil, fmt.Errorf("unexpected character %q in query %q", rest[0], expr)
		}
	}
	if len(states) == 0 {
		return nil, fmt.Errorf("query selects the whole document: %q", expr)
	}
	return New(states), nil
}

func takeKey(rest *string) string {
	end := strings.IndexAny(*rest, ".[")
	if end == -1 {
		end = len(*rest)
	}
	key := (*rest)[:end]
	*rest = (*rest)[end:]
	return key
}

// Size returns the number of states.
func (d *DFA) Size() int {
	return len(d.states)
}

// States returns the compiled state sequence.
func (d *DFA) States() []State {
	return d.states
}

// GetCurrentState returns the cursor position: the number of query steps
// consumed so far.
func (d *DFA) GetCurrentState() int {
	return d.current
}

// Reset rewinds the cursor to the initial state.
func (d *DFA) Reset() {
	d.current = 0
	d.matchedLevel = 0
}

// SetState positions the cursor at state with its matched nesting level.
func (d *DFA) SetState(state, level int) {
	d.current = state
	d.matchedLevel = level
}

// Complete reports whether every query step has been consumed.
func (d *DFA) Complete() bool {
	return d.current >= len(d.states)
}

// AtDescendant reports whether the pending state matches at any depth.
func (d *DFA) AtDescendant() bool {
	return !d.Complete() && d.states[d.current].Type == StateDescendant
}

// ToNextStateIfArray advances the cursor when the pending state is crossed by
// entering an array at the given level. It reports whether the transition
// happened.
func (d *DFA) ToNextStateIfArray(level int) bool {
	if d.Complete() || d.states[d.current].Type != StateArray {
		return false
	}
	d.current++
	d.matchedLevel = level + 1
	return true
}

// CheckToken feeds a key seen at the given nesting level to the automaton.
// A matched final step yields Accept on the next call (or via Complete); a
// key that diverges from the query spine yields Reject. Descendant states
// never reject.
func (d *DFA) CheckToken(token string, level int) Verdict {
	if d.Complete() {
		return Accept
	}
	s := d.states[d.current]
	if s.Type == StateDescendant {
		if s.Token == token || s.Token == "*" {
			d.current++
			d.matchedLevel = level
		}
		return Continue
	}
	if s.Type == StateArray {
		return Reject
	}
	if level != d.matchedLevel+1 {
		return Reject
	}
	if s.Token == token || s.Token == "*" {
		d.current++
		d.matchedLevel = level
		return Continue
	}
	return Reject
}

// ResolveKeyState returns the cursor position reached once key has been
// matched as a query step. Keys that are not query steps resolve to the
// final state: they can only occur inside a fully matched subtree.
func (d *DFA) ResolveKeyState(key string) int {
	for i, s := range d.states {
		if s.Token == key && s.Token != "" {
			return i + 1
		}
	}
	return len(d.states)
}
