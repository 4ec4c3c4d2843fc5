// Package format reads and writes .snel files: a columnar layout with a
// self-describing header, one contiguous fixed-width data section per column,
// and one null bitmap section per nullable column.
//
// File layout (all integers little-endian):
//
//	magic    uint32  "SNEL"
//	version  uint16
//	colCount uint16
//	rowCount uint64
//	per column:
//	    nameLen  uint16
//	    name     nameLen bytes (UTF-8)
//	    type     uint8
//	    nullable uint8 (0 or 1)
//	per column, in ordinal order:
//	    data section, rowCount * type width bytes
//	per nullable column, in ordinal order:
//	    null bitmap, (rowCount+7)/8 bytes, bit i set => row i is NULL
//
// The bitmap is authoritative: whatever bit pattern sits in a NULL slot of
// the data section is never interpreted.
package format

import (
	"errors"
	"fmt"
)

// Magic and Version identify a v1 .snel file.
const (
	Magic   uint32 = 0x4C454E53 // "SNEL"
	Version uint16 = 1
)

// ErrFormat is the sentinel for any malformed, truncated, missing or
// internally inconsistent .snel file. Table creation fails with it and is
// never retried.
var ErrFormat = errors.New("snel: bad file format")

// ColumnType is the declared storage type of a column.
type ColumnType uint8

const (
	Int32 ColumnType = iota + 1
	Int64
)

// Width returns the fixed byte width of one value.
func (t ColumnType) Width() int {
	switch t {
	case Int32:
		return 4
	case Int64:
		return 8
	default:
		return 0
	}
}

func (t ColumnType) String() string {
	switch t {
	case Int32:
		return "INT32"
	case Int64:
		return "INT64"
	default:
		return fmt.Sprintf("ColumnType(%d)", uint8(t))
	}
}

// Column describes one column of a .snel table. Immutable after open; the
// ordinal position is the index into Table.Schema().
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// bitmapLen is the byte length of a null bitmap for n rows.
func bitmapLen(n int) int {
	return (n + 7) / 8
}
