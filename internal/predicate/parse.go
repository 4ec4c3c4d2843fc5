package predicate

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/sneldb/snel/internal/format"
)

// Parse builds a predicate from a WHERE-like text expression against the
// given schema, e.g.
//
//	int32col1 IS NOT NULL AND int64col1 > 100
//
// Grammar: term {AND term}; term is `ident <op> integer` or
// `ident IS [NOT] NULL`. Keywords are case-insensitive, identifiers are not.
func Parse(input string, cols []format.Column) (*Predicate, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return &Predicate{}, nil
	}

	p := &Predicate{}
	for _, part := range splitAnd(s) {
		term, err := parseTerm(part, cols)
		if err != nil {
			return nil, err
		}
		p.And(term)
	}
	return p, nil
}

// splitAnd splits on the AND keyword at the top level (the grammar has no
// parentheses, so every AND is top level).
func splitAnd(s string) []string {
	fields := strings.Fields(s)
	var parts []string
	var cur []string
	for _, f := range fields {
		if strings.EqualFold(f, "AND") {
			parts = append(parts, strings.Join(cur, " "))
			cur = cur[:0]
			continue
		}
		cur = append(cur, f)
	}
	return append(parts, strings.Join(cur, " "))
}

func parseTerm(s string, cols []format.Column) (Comparison, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return Comparison{}, fmt.Errorf("predicate: incomplete term %q", s)
	}

	name := fields[0]
	if err := checkIdent(name); err != nil {
		return Comparison{}, err
	}
	col := -1
	for i := range cols {
		if cols[i].Name == name {
			col = i
			break
		}
	}
	if col < 0 {
		return Comparison{}, fmt.Errorf("predicate: unknown column %q", name)
	}

	// IS NULL / IS NOT NULL
	if strings.EqualFold(fields[1], "IS") {
		rest := fields[2:]
		switch {
		case len(rest) == 1 && strings.EqualFold(rest[0], "NULL"):
			return Comparison{Col: col, Op: IsNull}, nil
		case len(rest) == 2 && strings.EqualFold(rest[0], "NOT") && strings.EqualFold(rest[1], "NULL"):
			return Comparison{Col: col, Op: IsNotNull}, nil
		default:
			return Comparison{}, fmt.Errorf("predicate: bad IS term %q", s)
		}
	}

	if len(fields) != 3 {
		return Comparison{}, fmt.Errorf("predicate: bad term %q", s)
	}
	var op Op
	switch fields[1] {
	case "<":
		op = Lt
	case "<=":
		op = Le
	case "=", "==":
		op = Eq
	case ">":
		op = Gt
	case ">=":
		op = Ge
	default:
		return Comparison{}, fmt.Errorf("predicate: unsupported operator %q", fields[1])
	}
	lit, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return Comparison{}, fmt.Errorf("predicate: bad literal %q", fields[2])
	}
	return Comparison{Col: col, Op: op, Operand: lit}, nil
}

// checkIdent validates a column identifier: first rune letter or '_',
// rest letter/digit/'_'.
func checkIdent(id string) error {
	for i, r := range id {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return fmt.Errorf("predicate: invalid identifier %q", id)
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return fmt.Errorf("predicate: invalid identifier %q", id)
		}
	}
	return nil
}
