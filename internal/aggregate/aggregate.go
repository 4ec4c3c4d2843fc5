// Package aggregate computes the pushdown shapes the adapter accepts from
// the host: filtered COUNT and single-key GROUP BY with SUM. Both run
// directly over the column buffers instead of materializing every row
// through the host protocol.
package aggregate

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"

	"github.com/sneldb/snel/internal/format"
	"github.com/sneldb/snel/internal/predicate"
	"github.com/sneldb/snel/internal/scan"
)

// DefaultChunkSize is the per-task row range for the parallel count path.
const DefaultChunkSize = 64 * 1024

// Count tallies the rows satisfying pred by driving a cursor to exhaustion.
// No column value is materialized, so the answer is identical under
// Suppress and Emit.
func Count(tbl *format.Table, pred *predicate.Predicate, mode *scan.ModeCell) (int64, error) {
	cur := scan.NewCursor(tbl, mode)
	if err := cur.Open(pred); err != nil {
		return 0, err
	}
	defer cur.Close()

	var n int64
	for !cur.EOF() {
		n++
		cur.Next()
	}
	return n, nil
}

// CountParallel computes the same count as Count by bulk-evaluating the
// predicate over fixed-size row chunks on a bounded worker pool. chunkSize
// and workers fall back to defaults when <= 0. Both paths must agree on
// every predicate; tests cross-check them.
func CountParallel(tbl *format.Table, pred *predicate.Predicate, chunkSize, workers int) (int64, error) {
	if err := pred.Validate(tbl); err != nil {
		return 0, err
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	rows := tbl.NumRows()
	if rows == 0 {
		return 0, nil
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return 0, fmt.Errorf("aggregate: create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		total int64
		wg    sync.WaitGroup
	)
	for start := 0; start < rows; start += chunkSize {
		end := start + chunkSize
		if end > rows {
			end = rows
		}
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			sel := make([]bool, end-start)
			pred.MatchRange(tbl, start, end, sel)
			var n int64
			for _, ok := range sel {
				if ok {
					n++
				}
			}
			atomic.AddInt64(&total, n)
		}); err != nil {
			wg.Done()
			wg.Wait()
			return 0, fmt.Errorf("aggregate: submit chunk: %w", err)
		}
	}
	wg.Wait()
	return atomic.LoadInt64(&total), nil
}

// Group is one GROUP BY output row. KeyNull marks the distinguished NULL
// bucket. Rows counts every row that mapped to the key, including rows
// whose SUM input was NULL.
type Group struct {
	Key     int64
	KeyNull bool
	Sum     int64
	Rows    int64
}

type groupKey struct {
	v    int64
	null bool
}

// GroupSum groups the rows satisfying pred by keyCol and sums sumCol per
// group. A NULL SUM input contributes zero but still creates or keeps its
// group. Output order is first-seen; no sort step is applied.
func GroupSum(tbl *format.Table, pred *predicate.Predicate, keyCol, sumCol int) ([]Group, error) {
	if err := pred.Validate(tbl); err != nil {
		return nil, err
	}
	if keyCol < 0 || keyCol >= tbl.NumCols() {
		return nil, fmt.Errorf("aggregate: group key ordinal %d out of range", keyCol)
	}
	if sumCol < 0 || sumCol >= tbl.NumCols() {
		return nil, fmt.Errorf("aggregate: sum ordinal %d out of range", sumCol)
	}

	kb := tbl.Column(keyCol)
	sb := tbl.Column(sumCol)

	var out []Group
	idx := make(map[groupKey]int)

	rows := tbl.NumRows()
	for i := 0; i < rows; i++ {
		if !pred.Match(tbl, i) {
			continue
		}
		kv, knull := kb.Get(i)
		k := groupKey{v: kv, null: knull}
		if knull {
			k.v = 0
		}
		at, ok := idx[k]
		if !ok {
			at = len(out)
			idx[k] = at
			out = append(out, Group{Key: k.v, KeyNull: knull})
		}
		out[at].Rows++
		if sv, snull := sb.Get(i); !snull {
			out[at].Sum += sv
		}
	}
	return out, nil
}
