package snel

import (
	"github.com/sneldb/snel/internal/format"
	"github.com/sneldb/snel/internal/scan"
	"github.com/sneldb/snel/internal/vtable"
)

// The engine's error taxonomy. Every failure surfaces synchronously to the
// caller that triggered it and nothing retries automatically.
var (
	// ErrFormat: malformed, truncated, missing or inconsistent .snel file.
	// Fatal to table creation.
	ErrFormat = format.ErrFormat

	// ErrConfig: invalid control-function argument. Fatal to that call
	// only; prior state is unchanged.
	ErrConfig = scan.ErrConfig

	// ErrUnsupportedPredicate: a pushdown request outside the comparison
	// grammar. Not fatal; the constraint is reported back as rejected and
	// the host re-filters.
	ErrUnsupportedPredicate = vtable.ErrUnsupportedPredicate
)
