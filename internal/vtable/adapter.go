package vtable

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sneldb/snel/internal/aggregate"
	"github.com/sneldb/snel/internal/format"
	"github.com/sneldb/snel/internal/predicate"
	"github.com/sneldb/snel/internal/scan"
)

// openCost approximates the fixed cost of starting a scan, in the host
// planner's abstract units.
const openCost = 10.0

// SnelModule creates SnelTable instances. All tables made by one module
// share its output-mode cell.
type SnelModule struct {
	mode *scan.ModeCell
}

// NewModule returns a module whose tables consult mode at row production.
func NewModule(mode *scan.ModeCell) *SnelModule {
	return &SnelModule{mode: mode}
}

// Create opens args[0] as a .snel file. Format problems surface to the host
// as a creation failure wrapping format.ErrFormat.
func (m *SnelModule) Create(args []string) (Table, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: table takes exactly one argument (file path), got %d",
			format.ErrFormat, len(args))
	}
	tbl, err := format.Open(args[0])
	if err != nil {
		return nil, err
	}
	slog.Debug("vtable: opened table",
		"path", args[0], "rows", tbl.NumRows(), "cols", tbl.NumCols())
	return &SnelTable{tbl: tbl, mode: m.mode}, nil
}

// Connect is identical to Create: the engine keeps no state outside the
// file itself.
func (m *SnelModule) Connect(args []string) (Table, error) {
	return m.Create(args)
}

// SnelTable adapts one opened .snel file to the host's Table contract and
// additionally offers the two aggregate pushdown shapes.
type SnelTable struct {
	tbl  *format.Table
	mode *scan.ModeCell
}

var _ Table = (*SnelTable)(nil)

// Handle exposes the underlying table to in-process callers (the aggregate
// shapes and the shell).
func (t *SnelTable) Handle() *format.Table { return t.tbl }

// Schema returns the column list read from the file header.
func (t *SnelTable) Schema() []format.Column { return t.tbl.Schema() }

// BestIndex accepts every usable constraint expressible in the comparison
// grammar and rejects the rest; the host must re-filter rejected terms.
// Estimates are heuristic: with no histogram, each accepted equality
// divides the full row count by 10 and every other accepted term by 2,
// floored at one row.
func (t *SnelTable) BestIndex(info *IndexInfo) error {
	info.ArgvIndex = make([]int, len(info.Constraints))
	info.Omit = make([]bool, len(info.Constraints))

	var (
		terms []string
		argc  int
	)
	est := int64(t.tbl.NumRows())
	for i, c := range info.Constraints {
		if !c.Usable {
			continue
		}
		op, err := translateOp(c.Op)
		if err != nil {
			// Outside the grammar: reported as rejected, never fatal.
			continue
		}
		if c.Column < 0 || c.Column >= t.tbl.NumCols() {
			continue
		}
		terms = append(terms, EncodeTerm(predicate.Comparison{Col: c.Column, Op: op}))
		if op.HasOperand() {
			argc++
			info.ArgvIndex[i] = argc
		}
		info.Omit[i] = true

		if op == predicate.Eq {
			est /= 10
		} else {
			est /= 2
		}
	}
	if est < 1 {
		est = 1
	}

	info.IdxNum = len(terms)
	info.IdxStr = strings.Join(terms, ",")
	info.EstimatedRows = est
	info.EstimatedCost = openCost + float64(est)
	return nil
}

// Open returns an unfiltered cursor; the host must call Filter before
// iterating.
func (t *SnelTable) Open() (Cursor, error) {
	return &SnelCursor{cur: scan.NewCursor(t.tbl, t.mode)}, nil
}

// Count is the COUNT pushdown shape: tally rows satisfying pred without
// materializing any value. Compatible with Suppress mode.
func (t *SnelTable) Count(pred *predicate.Predicate) (int64, error) {
	return aggregate.Count(t.tbl, pred, t.mode)
}

// CountParallel is Count over the chunked bulk-evaluation path.
func (t *SnelTable) CountParallel(pred *predicate.Predicate, chunkSize, workers int) (int64, error) {
	return aggregate.CountParallel(t.tbl, pred, chunkSize, workers)
}

// GroupSum is the GROUP BY key / SUM(value) pushdown shape.
func (t *SnelTable) GroupSum(pred *predicate.Predicate, keyCol, sumCol int) ([]aggregate.Group, error) {
	return aggregate.GroupSum(t.tbl, pred, keyCol, sumCol)
}

// Disconnect releases the table's buffers.
func (t *SnelTable) Disconnect() error {
	return t.tbl.Close()
}

// Destroy drops the virtual table; the .snel file stays on disk.
func (t *SnelTable) Destroy() error {
	return t.Disconnect()
}

// translateOp maps a host constraint operator into the grammar, or reports
// it unsupported.
func translateOp(op ConstraintOp) (predicate.Op, error) {
	switch op {
	case OpEq:
		return predicate.Eq, nil
	case OpLt:
		return predicate.Lt, nil
	case OpLe:
		return predicate.Le, nil
	case OpGt:
		return predicate.Gt, nil
	case OpGe:
		return predicate.Ge, nil
	case OpIsNull:
		return predicate.IsNull, nil
	case OpIsNotNull:
		return predicate.IsNotNull, nil
	default:
		return 0, fmt.Errorf("%w: constraint op %d", ErrUnsupportedPredicate, op)
	}
}

// EncodeTerm renders one comparison as an idxStr term ("col:op"); the
// operand, when the op takes one, travels separately in Filter's args.
func EncodeTerm(c predicate.Comparison) string {
	return strconv.Itoa(c.Col) + ":" + opToken(c.Op)
}

func opToken(op predicate.Op) string {
	switch op {
	case predicate.Eq:
		return "eq"
	case predicate.Lt:
		return "lt"
	case predicate.Le:
		return "le"
	case predicate.Gt:
		return "gt"
	case predicate.Ge:
		return "ge"
	case predicate.IsNull:
		return "isnull"
	default:
		return "notnull"
	}
}

func tokenOp(tok string) (predicate.Op, error) {
	switch tok {
	case "eq":
		return predicate.Eq, nil
	case "lt":
		return predicate.Lt, nil
	case "le":
		return predicate.Le, nil
	case "gt":
		return predicate.Gt, nil
	case "ge":
		return predicate.Ge, nil
	case "isnull":
		return predicate.IsNull, nil
	case "notnull":
		return predicate.IsNotNull, nil
	default:
		return 0, fmt.Errorf("%w: index token %q", ErrUnsupportedPredicate, tok)
	}
}

// SnelCursor adapts the scan cursor to the host protocol. Filter decodes
// the idxStr written by BestIndex, pairing each value-carrying term with
// the next operand in args.
type SnelCursor struct {
	cur *scan.Cursor
}

var _ Cursor = (*SnelCursor)(nil)

// Filter binds the negotiated predicate and positions the cursor on its
// first satisfying row.
func (c *SnelCursor) Filter(idxNum int, idxStr string, args []int64) error {
	pred, err := decodeIndex(idxStr, args)
	if err != nil {
		return err
	}
	return c.cur.Open(pred)
}

func decodeIndex(idxStr string, args []int64) (*predicate.Predicate, error) {
	pred := &predicate.Predicate{}
	if idxStr == "" {
		if len(args) != 0 {
			return nil, fmt.Errorf("vtable: %d args for empty index", len(args))
		}
		return pred, nil
	}
	next := 0
	for _, term := range strings.Split(idxStr, ",") {
		col, tok, ok := strings.Cut(term, ":")
		if !ok {
			return nil, fmt.Errorf("vtable: malformed index term %q", term)
		}
		ord, err := strconv.Atoi(col)
		if err != nil {
			return nil, fmt.Errorf("vtable: malformed index term %q", term)
		}
		op, err := tokenOp(tok)
		if err != nil {
			return nil, err
		}
		cmp := predicate.Comparison{Col: ord, Op: op}
		if op.HasOperand() {
			if next >= len(args) {
				return nil, fmt.Errorf("vtable: missing operand for term %q", term)
			}
			cmp.Operand = args[next]
			next++
		}
		pred.And(cmp)
	}
	if next != len(args) {
		return nil, fmt.Errorf("vtable: %d operands supplied, %d consumed", len(args), next)
	}
	return pred, nil
}

// Next advances to the next satisfying row; a no-op past the end.
func (c *SnelCursor) Next() error {
	c.cur.Next()
	return nil
}

// Column returns the value at ordinal i for the current row, NULL-aware.
func (c *SnelCursor) Column(i int) (scan.Value, error) {
	return c.cur.Column(i)
}

// RowID returns the current row index.
func (c *SnelCursor) RowID() (int64, error) {
	return c.cur.RowID()
}

// EOF reports exhaustion.
func (c *SnelCursor) EOF() bool { return c.cur.EOF() }

// Close releases the scan state.
func (c *SnelCursor) Close() error { return c.cur.Close() }
