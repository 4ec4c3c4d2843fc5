package scan

import (
	"fmt"

	"github.com/sneldb/snel/internal/format"
	"github.com/sneldb/snel/internal/predicate"
)

type cursorState uint8

const (
	unopened cursorState = iota
	positioned
	exhausted
)

// Value is one materialized column value. Under Suppress mode cursors hand
// back the zero Value without touching the buffers; its content is
// undefined by contract in that mode.
type Value struct {
	Int  int64
	Null bool
}

// Cursor iterates a table's rows in forward order, skipping rows its bound
// predicate rejects by linear search (no index is assumed). A cursor is
// private to one scan: never share one across goroutines. The owning table
// outlives every cursor derived from it.
type Cursor struct {
	tbl  *format.Table
	mode *ModeCell

	pred    *predicate.Predicate
	pos     int
	state   cursorState
	scanned int64
}

// NewCursor returns an unopened cursor over tbl consulting mode at each
// row-production point.
func NewCursor(tbl *format.Table, mode *ModeCell) *Cursor {
	return &Cursor{tbl: tbl, mode: mode}
}

// Open binds the predicate and positions the cursor on the first satisfying
// row, or straight to exhaustion when none exists. Opening an already-open
// cursor is an error; Close first.
func (c *Cursor) Open(pred *predicate.Predicate) error {
	if c.state != unopened {
		return fmt.Errorf("cursor: already open")
	}
	if err := pred.Validate(c.tbl); err != nil {
		return err
	}
	c.pred = pred
	c.scanned = 0
	c.advanceFrom(0)
	return nil
}

// advanceFrom moves to the first satisfying row at index >= from.
func (c *Cursor) advanceFrom(from int) {
	n := c.tbl.NumRows()
	for i := from; i < n; i++ {
		if c.pred.Match(c.tbl, i) {
			c.pos = i
			c.state = positioned
			c.scanned++
			return
		}
	}
	c.state = exhausted
}

// Next advances to the next satisfying row. Once exhausted, further calls
// are no-ops.
func (c *Cursor) Next() {
	if c.state != positioned {
		return
	}
	c.advanceFrom(c.pos + 1)
}

// EOF reports whether the cursor has no current row.
func (c *Cursor) EOF() bool { return c.state != positioned }

// RowID returns the current row index.
func (c *Cursor) RowID() (int64, error) {
	if c.state != positioned {
		return 0, fmt.Errorf("cursor: not positioned on a row")
	}
	return int64(c.pos), nil
}

// Column materializes the value at column ordinal i for the current row.
// In Suppress mode the position still counts but the returned Value is the
// zero Value: the mode isolates scan cost from materialization cost and is
// consulted fresh at every call.
func (c *Cursor) Column(i int) (Value, error) {
	if c.state != positioned {
		return Value{}, fmt.Errorf("cursor: not positioned on a row")
	}
	if i < 0 || i >= c.tbl.NumCols() {
		return Value{}, fmt.Errorf("cursor: column ordinal %d out of range", i)
	}
	if c.mode.Mode() == Suppress {
		return Value{}, nil
	}
	v, null := c.tbl.Column(i).Get(c.pos)
	return Value{Int: v, Null: null}, nil
}

// Scanned returns how many satisfying rows the cursor has reached so far,
// mode-independent.
func (c *Cursor) Scanned() int64 { return c.scanned }

// Close releases the scan state. The cursor can be reopened and will then
// replay the identical row sequence over the unchanged table.
func (c *Cursor) Close() error {
	c.pred = nil
	c.pos = 0
	c.scanned = 0
	c.state = unopened
	return nil
}
