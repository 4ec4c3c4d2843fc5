package aggregate

import (
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sneldb/snel/internal/format"
	"github.com/sneldb/snel/internal/predicate"
	"github.com/sneldb/snel/internal/scan"
)

// openTable opens a (k int32 nullable, v int64 nullable) table; nil cells
// are NULL.
func openTable(t *testing.T, rows [][2]any) *format.Table {
	t.Helper()
	w, err := format.NewWriter([]format.Column{
		{Name: "k", Type: format.Int32, Nullable: true},
		{Name: "v", Type: format.Int64, Nullable: true},
	})
	require.NoError(t, err)
	for _, r := range rows {
		vals := make([]int64, 2)
		nulls := make([]bool, 2)
		for i, cell := range r {
			if cell == nil {
				nulls[i] = true
			} else {
				vals[i] = int64(cell.(int))
			}
		}
		require.NoError(t, w.Append(vals, nulls))
	}
	path := filepath.Join(t.TempDir(), "t.snel")
	require.NoError(t, w.WriteFile(path))
	tbl, err := format.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tbl.Close() })
	return tbl
}

func notNullGt100() *predicate.Predicate {
	return (&predicate.Predicate{}).
		And(predicate.Comparison{Col: 0, Op: predicate.IsNotNull}).
		And(predicate.Comparison{Col: 1, Op: predicate.Gt, Operand: 100})
}

func TestCount_Filtered(t *testing.T) {
	tbl := openTable(t, [][2]any{
		{1, 200}, {nil, 9000}, {2, 50}, {3, nil}, {4, 101},
	})
	n, err := Count(tbl, notNullGt100(), scan.NewModeCell())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestCount_EmptyTable(t *testing.T) {
	tbl := openTable(t, nil)
	n, err := Count(tbl, &predicate.Predicate{}, scan.NewModeCell())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = CountParallel(tbl, &predicate.Predicate{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCount_SuppressModeSameAnswer(t *testing.T) {
	tbl := openTable(t, [][2]any{{1, 200}, {2, 300}, {nil, 400}})
	mode := scan.NewModeCell()

	require.NoError(t, mode.Set(1))
	emit, err := Count(tbl, notNullGt100(), mode)
	require.NoError(t, err)

	require.NoError(t, mode.Set(0))
	suppress, err := Count(tbl, notNullGt100(), mode)
	require.NoError(t, err)

	assert.Equal(t, emit, suppress)
	assert.Equal(t, int64(2), emit)
}

// Cross-check the three evaluation paths on randomized data: cursor count,
// parallel bulk count, and an independent row-at-a-time tally.
func TestCount_PathsAgree(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	var rows [][2]any
	for i := 0; i < 3000; i++ {
		var r [2]any
		if rng.Float64() > 0.9 {
			r[0] = int(rng.Int32N(100))
		}
		if rng.Float64() > 0.9 {
			r[1] = int(rng.Int64N(10000))
		}
		rows = append(rows, r)
	}
	tbl := openTable(t, rows)
	pred := notNullGt100()

	var want int64
	for i := 0; i < tbl.NumRows(); i++ {
		if pred.Match(tbl, i) {
			want++
		}
	}

	got, err := Count(tbl, pred, scan.NewModeCell())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Odd chunk size so the last chunk is ragged.
	pgot, err := CountParallel(tbl, pred, 257, 4)
	require.NoError(t, err)
	assert.Equal(t, want, pgot)
}

func TestCountParallel_RejectsBadPredicate(t *testing.T) {
	tbl := openTable(t, [][2]any{{1, 2}})
	pred := (&predicate.Predicate{}).And(predicate.Comparison{Col: 9, Op: predicate.Eq})
	_, err := CountParallel(tbl, pred, 0, 0)
	require.Error(t, err)
}

func TestGroupSum_NullInputContributesZero(t *testing.T) {
	tbl := openTable(t, [][2]any{
		{1, 10},
		{1, nil},
		{2, 5},
	})
	groups, err := GroupSum(tbl, &predicate.Predicate{}, 0, 1)
	require.NoError(t, err)

	require.Len(t, groups, 2)
	assert.Equal(t, Group{Key: 1, Sum: 10, Rows: 2}, groups[0])
	assert.Equal(t, Group{Key: 2, Sum: 5, Rows: 1}, groups[1])
}

func TestGroupSum_NullKeyBucket(t *testing.T) {
	tbl := openTable(t, [][2]any{
		{nil, 7},
		{1, 10},
		{nil, 3},
	})
	groups, err := GroupSum(tbl, &predicate.Predicate{}, 0, 1)
	require.NoError(t, err)

	require.Len(t, groups, 2)
	assert.Equal(t, Group{KeyNull: true, Sum: 10, Rows: 2}, groups[0])
	assert.Equal(t, Group{Key: 1, Sum: 10, Rows: 1}, groups[1])
}

func TestGroupSum_FirstSeenOrder(t *testing.T) {
	tbl := openTable(t, [][2]any{
		{9, 1}, {3, 1}, {9, 1}, {7, 1}, {3, 1},
	})
	groups, err := GroupSum(tbl, &predicate.Predicate{}, 0, 1)
	require.NoError(t, err)

	keys := make([]int64, len(groups))
	for i, g := range groups {
		keys[i] = g.Key
	}
	assert.Equal(t, []int64{9, 3, 7}, keys)
}

func TestGroupSum_Filtered(t *testing.T) {
	tbl := openTable(t, [][2]any{
		{1, 200}, {1, 50}, {nil, 300}, {2, 150},
	})
	groups, err := GroupSum(tbl, notNullGt100(), 0, 1)
	require.NoError(t, err)

	require.Len(t, groups, 2)
	assert.Equal(t, Group{Key: 1, Sum: 200, Rows: 1}, groups[0])
	assert.Equal(t, Group{Key: 2, Sum: 150, Rows: 1}, groups[1])
}

func TestGroupSum_EmptyResult(t *testing.T) {
	tbl := openTable(t, nil)
	groups, err := GroupSum(tbl, &predicate.Predicate{}, 0, 1)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestGroupSum_BadOrdinals(t *testing.T) {
	tbl := openTable(t, [][2]any{{1, 2}})
	_, err := GroupSum(tbl, &predicate.Predicate{}, 5, 1)
	require.Error(t, err)
	_, err = GroupSum(tbl, &predicate.Predicate{}, 0, -1)
	require.Error(t, err)
}
