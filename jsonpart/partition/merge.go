package partition

// MergeSyntaxStack combines a predecessor's residual stack s1 with a
// successor's in-state stack s2, cancelling matched brackets. Successor
// entries at positions at or before prevEnd are dropped first: the
// predecessor's scanner already consumed those bytes when it finished a
// structure past its own end.
//
// The merged stack is the syntactic-ancestor sequence valid at the
// successor's scan end. The filtered successor tokens are returned alongside
// it; the reconciler consumes their dangling closes when realizing skip
// levels.
func MergeSyntaxStack(s1, s2 []StackToken, prevEnd int64) (merged, filtered []StackToken) {
	filtered = make([]StackToken, 0, len(s2))
	for _, t := range s2 {
		if t.Pos > prevEnd {
			filtered = append(filtered, t)
		}
	}

	merged = make([]StackToken, len(s1), len(s1)+len(filtered))
	copy(merged, s1)

	for _, t := range filtered {
		switch t.Kind {
		case CloseBrace:
			if n := len(merged); n > 0 && merged[n-1].Kind == OpenBrace {
				merged = merged[:n-1]
			} else if n >= 2 {
				// Cancels the pending key and its enclosing open together.
				merged = merged[:n-2]
			} else {
				merged = merged[:0]
			}
		case CloseBracket:
			if n := len(merged); n > 0 {
				merged = merged[:n-1]
			}
		default:
			merged = append(merged, t)
		}
	}
	return merged, filtered
}
