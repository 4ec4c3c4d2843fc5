package scan

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sneldb/snel/internal/format"
	"github.com/sneldb/snel/internal/predicate"
)

// openTable opens a single-column nullable int64 table with the given
// values (nil = NULL).
func openTable(t *testing.T, cells []any) *format.Table {
	t.Helper()
	w, err := format.NewWriter([]format.Column{
		{Name: "v", Type: format.Int64, Nullable: true},
	})
	require.NoError(t, err)
	for _, cell := range cells {
		if cell == nil {
			require.NoError(t, w.Append([]int64{0}, []bool{true}))
		} else {
			require.NoError(t, w.Append([]int64{int64(cell.(int))}, []bool{false}))
		}
	}
	path := filepath.Join(t.TempDir(), "t.snel")
	require.NoError(t, w.WriteFile(path))
	tbl, err := format.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tbl.Close() })
	return tbl
}

func collect(t *testing.T, cur *Cursor) (ids []int64, vals []Value) {
	t.Helper()
	for !cur.EOF() {
		id, err := cur.RowID()
		require.NoError(t, err)
		v, err := cur.Column(0)
		require.NoError(t, err)
		ids = append(ids, id)
		vals = append(vals, v)
		cur.Next()
	}
	return ids, vals
}

func TestCursor_FullScan(t *testing.T) {
	tbl := openTable(t, []any{10, nil, 30})
	cur := NewCursor(tbl, NewModeCell())
	require.NoError(t, cur.Open(&predicate.Predicate{}))

	ids, vals := collect(t, cur)
	assert.Equal(t, []int64{0, 1, 2}, ids)
	assert.Equal(t, []Value{{Int: 10}, {Null: true}, {Int: 30}}, vals)
}

func TestCursor_FilteredScan(t *testing.T) {
	tbl := openTable(t, []any{10, nil, 300, 40, 500})
	cur := NewCursor(tbl, NewModeCell())
	pred := (&predicate.Predicate{}).And(predicate.Comparison{Col: 0, Op: predicate.Gt, Operand: 100})
	require.NoError(t, cur.Open(pred))

	ids, vals := collect(t, cur)
	assert.Equal(t, []int64{2, 4}, ids)
	assert.Equal(t, []Value{{Int: 300}, {Int: 500}}, vals)
	assert.Equal(t, int64(2), cur.Scanned())
}

func TestCursor_NoMatchOpensExhausted(t *testing.T) {
	tbl := openTable(t, []any{1, 2, 3})
	cur := NewCursor(tbl, NewModeCell())
	pred := (&predicate.Predicate{}).And(predicate.Comparison{Col: 0, Op: predicate.Gt, Operand: 100})
	require.NoError(t, cur.Open(pred))

	assert.True(t, cur.EOF())
	_, err := cur.RowID()
	require.Error(t, err)
	_, err = cur.Column(0)
	require.Error(t, err)
}

func TestCursor_ExhaustedIsTerminal(t *testing.T) {
	tbl := openTable(t, []any{1})
	cur := NewCursor(tbl, NewModeCell())
	require.NoError(t, cur.Open(&predicate.Predicate{}))

	cur.Next()
	require.True(t, cur.EOF())

	// Further advances are no-ops.
	cur.Next()
	cur.Next()
	assert.True(t, cur.EOF())
}

func TestCursor_EmptyTable(t *testing.T) {
	tbl := openTable(t, nil)
	cur := NewCursor(tbl, NewModeCell())
	require.NoError(t, cur.Open(&predicate.Predicate{}))
	assert.True(t, cur.EOF())
}

func TestCursor_ReopenReplaysIdenticalSequence(t *testing.T) {
	tbl := openTable(t, []any{10, nil, 300, 40, 500})
	pred := (&predicate.Predicate{}).And(predicate.Comparison{Col: 0, Op: predicate.IsNotNull})

	cur := NewCursor(tbl, NewModeCell())
	require.NoError(t, cur.Open(pred))
	ids1, vals1 := collect(t, cur)
	require.NoError(t, cur.Close())

	require.NoError(t, cur.Open(pred))
	ids2, vals2 := collect(t, cur)
	require.NoError(t, cur.Close())

	assert.Equal(t, ids1, ids2)
	assert.Equal(t, vals1, vals2)
}

func TestCursor_DoubleOpenFails(t *testing.T) {
	tbl := openTable(t, []any{1})
	cur := NewCursor(tbl, NewModeCell())
	require.NoError(t, cur.Open(&predicate.Predicate{}))
	require.Error(t, cur.Open(&predicate.Predicate{}))
}

func TestCursor_OpenRejectsBadPredicate(t *testing.T) {
	tbl := openTable(t, []any{1})
	cur := NewCursor(tbl, NewModeCell())
	pred := (&predicate.Predicate{}).And(predicate.Comparison{Col: 5, Op: predicate.Eq})
	require.Error(t, cur.Open(pred))
}

func TestCursor_SuppressSkipsMaterialization(t *testing.T) {
	tbl := openTable(t, []any{10, nil, 300})
	mode := NewModeCell()
	require.NoError(t, mode.Set(0))

	cur := NewCursor(tbl, mode)
	require.NoError(t, cur.Open(&predicate.Predicate{}))

	ids, vals := collect(t, cur)
	// Positions are reached exactly as under Emit; values are zero Values.
	assert.Equal(t, []int64{0, 1, 2}, ids)
	assert.Equal(t, []Value{{}, {}, {}}, vals)
	assert.Equal(t, int64(3), cur.Scanned())
}

func TestCursor_ModeConsultedPerRow(t *testing.T) {
	tbl := openTable(t, []any{10, 20})
	mode := NewModeCell()
	cur := NewCursor(tbl, mode)
	require.NoError(t, cur.Open(&predicate.Predicate{}))

	v, err := cur.Column(0)
	require.NoError(t, err)
	assert.Equal(t, Value{Int: 10}, v)

	// Flipping the mode mid-scan affects subsequent reads only.
	require.NoError(t, mode.Set(0))
	cur.Next()
	v, err = cur.Column(0)
	require.NoError(t, err)
	assert.Equal(t, Value{}, v)
}

func TestCursor_ColumnOutOfRange(t *testing.T) {
	tbl := openTable(t, []any{1})
	cur := NewCursor(tbl, NewModeCell())
	require.NoError(t, cur.Open(&predicate.Predicate{}))
	_, err := cur.Column(3)
	require.Error(t, err)
}
