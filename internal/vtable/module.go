// Package vtable defines the narrow contract the host SQL engine drives and
// the adapter that satisfies it over .snel tables. The host sees only these
// interfaces: creation with a file path, constraint negotiation with cost
// estimates, and the pull-based open / next / column / rowid / close row
// protocol. Everything behind them is engine-internal.
package vtable

import (
	"errors"

	"github.com/sneldb/snel/internal/format"
	"github.com/sneldb/snel/internal/scan"
)

// ErrUnsupportedPredicate classifies a constraint outside the comparison
// grammar. It is not fatal: BestIndex reports the constraint as rejected
// and the host re-filters those rows itself.
var ErrUnsupportedPredicate = errors.New("snel: unsupported predicate")

// Module is the factory the host calls to create or reconnect a virtual
// table instance.
type Module interface {
	// Create opens the backing file; args[0] is the .snel file path.
	Create(args []string) (Table, error)
	// Connect attaches to an existing backing file; same argument contract
	// as Create (the engine keeps no shadow state, so they coincide).
	Connect(args []string) (Table, error)
}

// Table is one virtual-table instance over one opened file. The host holds
// it open across any number of scans and closes it with Disconnect.
type Table interface {
	// BestIndex negotiates a scan: the host fills Constraints, the table
	// marks which it will enforce and reports row/cost estimates.
	BestIndex(info *IndexInfo) error
	// Open starts a scan; the cursor is positioned by a following Filter
	// call.
	Open() (Cursor, error)
	// Schema returns the ordered (name, type, nullable) column list
	// surfaced at creation.
	Schema() []format.Column
	// Disconnect releases the table and its buffers.
	Disconnect() error
	// Destroy drops the virtual table. The backing file is not removed.
	Destroy() error
}

// Cursor is the host-facing row iterator: Filter once, then Next / Column /
// RowID until EOF, then Close. Synchronous, single-owner.
type Cursor interface {
	Filter(idxNum int, idxStr string, args []int64) error
	Next() error
	Column(i int) (scan.Value, error)
	RowID() (int64, error)
	EOF() bool
	Close() error
}

// ConstraintOp is the host planner's operator vocabulary. It is wider than
// the engine's grammar; BestIndex rejects what it cannot translate.
type ConstraintOp uint8

const (
	OpEq ConstraintOp = iota
	OpLt
	OpLe
	OpGt
	OpGe
	OpIsNull
	OpIsNotNull
	OpMatch // e.g. LIKE/GLOB family; never accepted
)

// IndexConstraint is one candidate WHERE term offered by the host.
type IndexConstraint struct {
	Column int
	Op     ConstraintOp
	// Usable is false when the host cannot supply the operand for this
	// scan (e.g. it comes from an outer join level).
	Usable bool
}

// IndexInfo carries one BestIndex negotiation. The table fills the output
// fields; for every constraint i it accepts, it sets ArgvIndex[i] to the
// 1-based position of that constraint's operand in the args slice later
// passed to Filter, and Omit[i] true so the host does not re-check the
// term.
type IndexInfo struct {
	Constraints []IndexConstraint

	IdxNum        int
	IdxStr        string
	ArgvIndex     []int
	Omit          []bool
	EstimatedRows int64
	EstimatedCost float64
}
