package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sneldb/snel/internal/format"
)

var parseCols = []format.Column{
	{Name: "int32col1", Type: format.Int32, Nullable: true},
	{Name: "int64col1", Type: format.Int64, Nullable: true},
}

func TestParse_Empty(t *testing.T) {
	p, err := Parse("   ", parseCols)
	require.NoError(t, err)
	assert.True(t, p.Empty())
}

func TestParse_Comparison(t *testing.T) {
	p, err := Parse("int64col1 > 100", parseCols)
	require.NoError(t, err)
	require.Len(t, p.Terms, 1)
	assert.Equal(t, Comparison{Col: 1, Op: Gt, Operand: 100}, p.Terms[0])
}

func TestParse_Conjunction(t *testing.T) {
	p, err := Parse("int32col1 IS NOT NULL AND int64col1 > 100", parseCols)
	require.NoError(t, err)
	require.Len(t, p.Terms, 2)
	assert.Equal(t, Comparison{Col: 0, Op: IsNotNull}, p.Terms[0])
	assert.Equal(t, Comparison{Col: 1, Op: Gt, Operand: 100}, p.Terms[1])
}

func TestParse_IsNull(t *testing.T) {
	p, err := Parse("int32col1 is null", parseCols)
	require.NoError(t, err)
	require.Len(t, p.Terms, 1)
	assert.Equal(t, Comparison{Col: 0, Op: IsNull}, p.Terms[0])
}

func TestParse_NegativeLiteral(t *testing.T) {
	p, err := Parse("int32col1 <= -5", parseCols)
	require.NoError(t, err)
	assert.Equal(t, Comparison{Col: 0, Op: Le, Operand: -5}, p.Terms[0])
}

func TestParse_Errors(t *testing.T) {
	for _, bad := range []string{
		"nope > 1",                 // unknown column
		"int32col1 > ",             // missing literal
		"int32col1 LIKE 5",         // unsupported operator
		"int32col1 > x",            // bad literal
		"int32col1 IS NULL AND",    // dangling AND
		"int32col1 IS MAYBE NULL",  // bad IS form
		"int32col1 > 1 2",          // trailing token
		"1col > 1",                 // bad identifier
		"int32col1 > 1 OR col > 2", // OR outside grammar
	} {
		_, err := Parse(bad, parseCols)
		require.Error(t, err, "input %q", bad)
	}
}
