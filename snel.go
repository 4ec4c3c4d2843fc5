// Package snel is the top-level facade for the SNEL columnar engine: open
// .snel tables, scan them with pushed-down predicates, run the aggregate
// pushdown shapes, and flip the process-wide output mode.
package snel

import (
	"fmt"
	"strings"

	"github.com/sneldb/snel/internal/aggregate"
	"github.com/sneldb/snel/internal/format"
	"github.com/sneldb/snel/internal/predicate"
	"github.com/sneldb/snel/internal/scan"
	"github.com/sneldb/snel/internal/vtable"
)

const Version = "0.1.0"

// Re-exported data model types.
type (
	Column = format.Column
	Value  = scan.Value
	Group  = aggregate.Group
)

// Column type codes.
const (
	Int32 = format.Int32
	Int64 = format.Int64
)

// processMode is the default output-mode cell every table opened through
// this package shares. It starts in EMIT.
var processMode = scan.NewModeCell()

// SetOutput is the control surface behind SNEL_SET_OUTPUT(mode): 0 selects
// SUPPRESS, 1 selects EMIT, anything else fails with ErrConfig leaving the
// prior mode in effect. The change applies globally to subsequent
// row-production calls of every cursor, with eventual visibility.
func SetOutput(mode int) error {
	return processMode.Set(mode)
}

// OutputMode returns the current process-wide mode as its wire value
// (0 SUPPRESS, 1 EMIT).
func OutputMode() int {
	return int(processMode.Mode())
}

// Module returns the host-facing table provider bound to the process mode
// cell.
func Module() vtable.Module {
	return vtable.NewModule(processMode)
}

// Table is an opened .snel table with string-predicate convenience methods
// on top of the adapter.
type Table struct {
	vt *vtable.SnelTable
}

// Open loads path and surfaces its schema; failures wrap ErrFormat.
func Open(path string) (*Table, error) {
	t, err := Module().Create([]string{path})
	if err != nil {
		return nil, err
	}
	return &Table{vt: t.(*vtable.SnelTable)}, nil
}

// Schema returns the ordered column descriptors.
func (t *Table) Schema() []Column { return t.vt.Schema() }

// NumRows returns the table's row count.
func (t *Table) NumRows() int { return t.vt.Handle().NumRows() }

// Close releases the table's buffers.
func (t *Table) Close() error { return t.vt.Disconnect() }

func (t *Table) parse(where string) (*predicate.Predicate, error) {
	return predicate.Parse(where, t.vt.Schema())
}

// Count runs the COUNT pushdown for the WHERE-text filter (empty means all
// rows).
func (t *Table) Count(where string) (int64, error) {
	pred, err := t.parse(where)
	if err != nil {
		return 0, err
	}
	return t.vt.Count(pred)
}

// CountParallel is Count over the chunked bulk path; zero chunkSize or
// workers pick defaults.
func (t *Table) CountParallel(where string, chunkSize, workers int) (int64, error) {
	pred, err := t.parse(where)
	if err != nil {
		return 0, err
	}
	return t.vt.CountParallel(pred, chunkSize, workers)
}

// GroupSum runs the GROUP BY keyCol / SUM(sumCol) pushdown for the filter,
// with columns named rather than ordinal.
func (t *Table) GroupSum(where, keyCol, sumCol string) ([]Group, error) {
	pred, err := t.parse(where)
	if err != nil {
		return nil, err
	}
	h := t.vt.Handle()
	ki := h.Lookup(keyCol)
	if ki < 0 {
		return nil, fmt.Errorf("snel: unknown column %q", keyCol)
	}
	si := h.Lookup(sumCol)
	if si < 0 {
		return nil, fmt.Errorf("snel: unknown column %q", sumCol)
	}
	return t.vt.GroupSum(pred, ki, si)
}

// Scan iterates the rows satisfying the filter in row order, invoking fn
// with the row index and one Value per column. Under SUPPRESS mode the
// values are the zero Value; the visited positions are unchanged.
func (t *Table) Scan(where string, fn func(rowid int64, row []Value) error) error {
	pred, err := t.parse(where)
	if err != nil {
		return err
	}
	c, err := t.vt.Open()
	if err != nil {
		return err
	}
	defer c.Close()

	// Reuse Filter's decoding path so the convenience scan exercises the
	// same protocol the host drives.
	idxStr, args := encodeForFilter(pred)
	if err := c.Filter(0, idxStr, args); err != nil {
		return err
	}

	ncols := len(t.vt.Schema())
	row := make([]Value, ncols)
	for !c.EOF() {
		id, err := c.RowID()
		if err != nil {
			return err
		}
		for i := 0; i < ncols; i++ {
			v, err := c.Column(i)
			if err != nil {
				return err
			}
			row[i] = v
		}
		if err := fn(id, row); err != nil {
			return err
		}
		if err := c.Next(); err != nil {
			return err
		}
	}
	return nil
}

// encodeForFilter renders a predicate in the idxStr/args form BestIndex
// would have negotiated.
func encodeForFilter(p *predicate.Predicate) (string, []int64) {
	if p.Empty() {
		return "", nil
	}
	var (
		terms []string
		args  []int64
	)
	for _, c := range p.Terms {
		terms = append(terms, vtable.EncodeTerm(c))
		if c.Op.HasOperand() {
			args = append(args, c.Operand)
		}
	}
	return strings.Join(terms, ","), args
}
