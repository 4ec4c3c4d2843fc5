// Package predicate implements the closed comparison grammar the engine can
// enforce internally: a conjunction of per-column comparisons against int64
// literals, plus IS NULL / IS NOT NULL. The grammar is a closed tagged
// variant so pushdown acceptance is an exhaustive switch, not dispatch over
// an open expression tree.
package predicate

import (
	"fmt"
	"strings"

	"github.com/sneldb/snel/internal/format"
)

// Op enumerates the supported comparison operators.
type Op uint8

const (
	IsNull Op = iota
	IsNotNull
	Lt
	Le
	Eq
	Gt
	Ge
)

// HasOperand reports whether the operator compares against a literal.
func (op Op) HasOperand() bool { return op != IsNull && op != IsNotNull }

func (op Op) String() string {
	switch op {
	case IsNull:
		return "IS NULL"
	case IsNotNull:
		return "IS NOT NULL"
	case Lt:
		return "<"
	case Le:
		return "<="
	case Eq:
		return "="
	case Gt:
		return ">"
	case Ge:
		return ">="
	default:
		return fmt.Sprintf("Op(%d)", uint8(op))
	}
}

// Comparison is one term: column <op> operand. Operand is unused for the
// null checks.
type Comparison struct {
	Col     int
	Op      Op
	Operand int64
}

// Predicate is a conjunction of comparisons. The zero value (no terms)
// matches every row.
type Predicate struct {
	Terms []Comparison
}

// And appends a term and returns the predicate for chaining.
func (p *Predicate) And(c Comparison) *Predicate {
	p.Terms = append(p.Terms, c)
	return p
}

// Empty reports whether the predicate has no terms.
func (p *Predicate) Empty() bool { return p == nil || len(p.Terms) == 0 }

func (p *Predicate) String() string {
	if p.Empty() {
		return "TRUE"
	}
	parts := make([]string, len(p.Terms))
	for i, c := range p.Terms {
		if c.Op.HasOperand() {
			parts[i] = fmt.Sprintf("col%d %s %d", c.Col, c.Op, c.Operand)
		} else {
			parts[i] = fmt.Sprintf("col%d %s", c.Col, c.Op)
		}
	}
	return strings.Join(parts, " AND ")
}

// Validate checks every term against the table schema.
func (p *Predicate) Validate(tbl *format.Table) error {
	if p.Empty() {
		return nil
	}
	for _, c := range p.Terms {
		if c.Col < 0 || c.Col >= tbl.NumCols() {
			return fmt.Errorf("predicate: column ordinal %d out of range (table has %d columns)",
				c.Col, tbl.NumCols())
		}
		switch c.Op {
		case IsNull, IsNotNull, Lt, Le, Eq, Gt, Ge:
		default:
			return fmt.Errorf("predicate: unknown operator %d", uint8(c.Op))
		}
	}
	return nil
}

// matchTerm evaluates one comparison at one row. A NULL operand collapses
// every ordering/equality comparison to false; only the null checks see
// NULL as a first-class answer.
func matchTerm(buf *format.ColumnBuffer, c Comparison, row int) bool {
	null := buf.IsNull(row)
	switch c.Op {
	case IsNull:
		return null
	case IsNotNull:
		return !null
	}
	if null {
		return false
	}
	v := buf.Raw(row)
	switch c.Op {
	case Lt:
		return v < c.Operand
	case Le:
		return v <= c.Operand
	case Eq:
		return v == c.Operand
	case Gt:
		return v > c.Operand
	case Ge:
		return v >= c.Operand
	default:
		return false
	}
}

// Match evaluates the conjunction at a single row.
func (p *Predicate) Match(tbl *format.Table, row int) bool {
	if p.Empty() {
		return true
	}
	for _, c := range p.Terms {
		if !matchTerm(tbl.Column(c.Col), c, row) {
			return false
		}
	}
	return true
}

// MatchRange evaluates rows [start, end) into sel, one bool per row
// (sel[i] corresponds to row start+i). It runs term-by-term over the
// contiguous run so each pass touches one column buffer; the result agrees
// with Match on every row.
func (p *Predicate) MatchRange(tbl *format.Table, start, end int, sel []bool) {
	n := end - start
	for i := 0; i < n; i++ {
		sel[i] = true
	}
	if p.Empty() {
		return
	}
	for _, c := range p.Terms {
		buf := tbl.Column(c.Col)
		for i := 0; i < n; i++ {
			if sel[i] && !matchTerm(buf, c, start+i) {
				sel[i] = false
			}
		}
	}
}
