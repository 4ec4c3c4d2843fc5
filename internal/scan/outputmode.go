// Package scan drives row iteration over a columnar table: the cursor state
// machine and the process-wide output mode it consults at row production.
package scan

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// OutputMode controls whether cursors materialize column values (Emit) or
// only advance and count (Suppress). Suppress exists to isolate scan and
// filter cost from value materialization cost; it never changes which rows
// a cursor reaches, so COUNT-style answers are identical in both modes.
type OutputMode int32

const (
	Suppress OutputMode = 0
	Emit     OutputMode = 1
)

func (m OutputMode) String() string {
	switch m {
	case Suppress:
		return "SUPPRESS"
	case Emit:
		return "EMIT"
	default:
		return fmt.Sprintf("OutputMode(%d)", int32(m))
	}
}

// ErrConfig is the sentinel for an invalid control value. The failing call
// leaves prior state unchanged.
var ErrConfig = errors.New("snel: invalid configuration value")

// ModeCell is a shared, thread-safe output mode holder. It is an explicit
// injectable cell rather than package state: every cursor holds a reference
// to the one cell its table was registered with (the root package owns the
// process default). Mutations are atomically visible; in-flight scans may
// observe the new mode at any row boundary after Set returns.
type ModeCell struct {
	v atomic.Int32
}

// NewModeCell returns a cell in Emit mode, the process-start default.
func NewModeCell() *ModeCell {
	c := &ModeCell{}
	c.v.Store(int32(Emit))
	return c
}

// Set accepts exactly 0 (Suppress) or 1 (Emit); anything else fails with
// ErrConfig and the prior mode stays in effect.
func (c *ModeCell) Set(mode int) error {
	switch OutputMode(mode) {
	case Suppress, Emit:
		c.v.Store(int32(mode))
		return nil
	default:
		return fmt.Errorf("%w: output mode must be 0 or 1, got %d", ErrConfig, mode)
	}
}

// Mode returns the current mode.
func (c *ModeCell) Mode() OutputMode {
	return OutputMode(c.v.Load())
}
