package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndStateBalancedObject(t *testing.T) {
	src := newTestSource(t, `{"a":1,"b":2}`)

	res, err := EndState(src, 0, src.Size())
	require.NoError(t, err)

	assert.Empty(t, res.Stack)
	assert.Equal(t, int64(13), res.End)
	assert.False(t, res.PastEnd)
}

func TestEndStateResidualOpens(t *testing.T) {
	// [{"name":"alice"},{"name":"bob"}]
	//  0         1         2         3
	//  0123456789012345678901234567890123
	src := newTestSource(t, `[{"name":"alice"},{"name":"bob"}]`)

	res, err := EndState(src, 0, 15)
	require.NoError(t, err)

	require.Equal(t, []TokenKind{OpenBracket, OpenBrace, KeyToken}, kinds(res.Stack))
	assert.Equal(t, "name", res.Stack[2].Key)
	assert.Equal(t, int64(1), res.Stack[0].Pos)
	assert.Equal(t, int64(2), res.Stack[1].Pos)
	assert.Equal(t, int64(3), res.Stack[2].Pos)

	// The scanner finished the string the partition end fell inside.
	assert.Equal(t, int64(16), res.End)
	assert.True(t, res.PastEnd)
}

func TestEndStateDanglingCloses(t *testing.T) {
	src := newTestSource(t, `[{"name":"alice"},{"name":"bob"}]`)

	res, err := EndState(src, 15, src.Size())
	require.NoError(t, err)

	// The boundary prelude consumes the tail of "alice"; what remains
	// unmatched is the first element's close and the array close.
	require.Equal(t, []TokenKind{CloseBrace, CloseBracket}, kinds(res.Stack))
	assert.Equal(t, int64(17), res.Stack[0].Pos)
	assert.Equal(t, int64(33), res.Stack[1].Pos)
	assert.Equal(t, int64(33), res.End)
	assert.False(t, res.PastEnd)
}

func TestEndStateKeyOverwrite(t *testing.T) {
	src := newTestSource(t, `{"a":1,"b":{`)

	res, err := EndState(src, 0, src.Size())
	require.NoError(t, err)

	// Only the most recent key per object level survives.
	require.Equal(t, []TokenKind{OpenBrace, KeyToken, OpenBrace}, kinds(res.Stack))
	assert.Equal(t, "b", res.Stack[1].Key)
	assert.Equal(t, int64(8), res.Stack[1].Pos)
}

func TestEndStatePreludeReset(t *testing.T) {
	// {"k":1,<LF>"m":2}
	content := "{\"k\":1,\n\"m\":2}"
	src := newTestSource(t, content)

	// The boundary bytes do not read as a string remainder (raw newline),
	// so the scanner resets and starts at the comma.
	res, err := EndState(src, 6, src.Size())
	require.NoError(t, err)

	require.Equal(t, []TokenKind{CloseBrace}, kinds(res.Stack))
	assert.Equal(t, src.Size(), res.Stack[0].Pos)
}

func TestEndStateNestedSpine(t *testing.T) {
	// {"a":{"b":{"c":42}}}
	src := newTestSource(t, `{"a":{"b":{"c":42}}}`)

	res, err := EndState(src, 0, 13)
	require.NoError(t, err)

	require.Equal(t, []TokenKind{OpenBrace, KeyToken, OpenBrace, KeyToken, OpenBrace, KeyToken}, kinds(res.Stack))
	assert.Equal(t, "a", res.Stack[1].Key)
	assert.Equal(t, "b", res.Stack[3].Key)
	assert.Equal(t, "c", res.Stack[5].Key)
	assert.True(t, res.PastEnd)
}

func TestEndStateSecondHalfOfNestedSpine(t *testing.T) {
	src := newTestSource(t, `{"a":{"b":{"c":42}}}`)

	res, err := EndState(src, 13, src.Size())
	require.NoError(t, err)

	require.Equal(t, []TokenKind{CloseBrace, CloseBrace, CloseBrace}, kinds(res.Stack))
	assert.Equal(t, int64(18), res.Stack[0].Pos)
	assert.Equal(t, int64(19), res.Stack[1].Pos)
	assert.Equal(t, int64(20), res.Stack[2].Pos)
}

func TestEndStateArrayValueStrings(t *testing.T) {
	src := newTestSource(t, `["x","y",{"k":`)

	res, err := EndState(src, 0, src.Size())
	require.NoError(t, err)

	require.Equal(t, []TokenKind{OpenBracket, OpenBrace, KeyToken}, kinds(res.Stack))
	assert.Equal(t, "k", res.Stack[2].Key)
}
