package format

import (
	"encoding/binary"
	"fmt"
	"os"
	"unicode/utf8"
)

// Table owns the column buffers of one opened .snel file. All buffers share
// one row count: a row index valid for one buffer is valid for all of them.
// A Table is immutable and safe for concurrent readers; it lives until the
// host closes the virtual table that opened it.
type Table struct {
	path string
	cols []Column
	bufs []*ColumnBuffer
	rows int
}

// Open loads a .snel file fully into memory and validates every declared
// section length against the header before returning. Any mismatch fails
// with ErrFormat rather than silently truncating.
func Open(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrFormat, path, err)
	}
	return decode(path, raw)
}

func decode(path string, raw []byte) (*Table, error) {
	fail := func(what string) (*Table, error) {
		return nil, fmt.Errorf("%w: %s: %s", ErrFormat, path, what)
	}

	if len(raw) < 16 {
		return fail("file shorter than header")
	}
	if binary.LittleEndian.Uint32(raw[0:]) != Magic {
		return fail("bad magic")
	}
	if v := binary.LittleEndian.Uint16(raw[4:]); v != Version {
		return fail(fmt.Sprintf("unsupported version %d", v))
	}
	colCount := int(binary.LittleEndian.Uint16(raw[6:]))
	if colCount == 0 {
		return fail("zero columns")
	}
	rows64 := binary.LittleEndian.Uint64(raw[8:])
	if rows64 > uint64(int(^uint(0)>>1))/8 {
		return fail("row count out of range")
	}
	rows := int(rows64)

	// Column descriptors.
	cols := make([]Column, 0, colCount)
	off := 16
	for i := 0; i < colCount; i++ {
		if off+2 > len(raw) {
			return fail("truncated column descriptor")
		}
		nameLen := int(binary.LittleEndian.Uint16(raw[off:]))
		off += 2
		if off+nameLen+2 > len(raw) {
			return fail("truncated column descriptor")
		}
		name := string(raw[off : off+nameLen])
		off += nameLen
		if name == "" || !utf8.ValidString(name) {
			return fail(fmt.Sprintf("invalid name for column %d", i))
		}
		typ := ColumnType(raw[off])
		if typ.Width() == 0 {
			return fail(fmt.Sprintf("unknown type %d for column %q", raw[off], name))
		}
		nullable := raw[off+1]
		if nullable > 1 {
			return fail(fmt.Sprintf("invalid nullable flag for column %q", name))
		}
		off += 2
		cols = append(cols, Column{Name: name, Type: typ, Nullable: nullable == 1})
	}

	// Section lengths must reconcile exactly with the declared row count.
	// Checked column by column against the bytes actually left so a crafted
	// header cannot wrap the total past the file length.
	avail := uint64(len(raw) - off)
	var want uint64
	for _, c := range cols {
		n := uint64(rows) * uint64(c.Type.Width())
		if c.Nullable {
			n += uint64(bitmapLen(rows))
		}
		if n > avail-want {
			return fail(fmt.Sprintf("data length %d does not match declared %d rows (column %q alone needs %d bytes)",
				avail, rows, c.Name, n))
		}
		want += n
	}
	if want != avail {
		return fail(fmt.Sprintf("data length %d does not match declared %d rows (want %d bytes)",
			avail, rows, want))
	}

	// Slice out the sections; buffers alias raw, which stays referenced for
	// the Table's lifetime.
	bufs := make([]*ColumnBuffer, len(cols))
	for i, c := range cols {
		n := rows * c.Type.Width()
		bufs[i] = &ColumnBuffer{col: c, rows: rows, data: raw[off : off+n : off+n]}
		off += n
	}
	for i, c := range cols {
		if !c.Nullable {
			continue
		}
		n := bitmapLen(rows)
		bufs[i].nulls = raw[off : off+n : off+n]
		off += n
	}

	return &Table{path: path, cols: cols, bufs: bufs, rows: rows}, nil
}

// Path returns the file the table was opened from.
func (t *Table) Path() string { return t.path }

// NumRows returns the shared row count.
func (t *Table) NumRows() int { return t.rows }

// Schema returns the ordered column descriptors.
func (t *Table) Schema() []Column { return t.cols }

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.cols) }

// Column returns the buffer at ordinal i.
func (t *Table) Column(i int) *ColumnBuffer { return t.bufs[i] }

// Lookup resolves a column name to its ordinal, -1 if absent.
func (t *Table) Lookup(name string) int {
	for i := range t.cols {
		if t.cols[i].Name == name {
			return i
		}
	}
	return -1
}

// Close releases the buffers. The Table must not be used afterwards.
func (t *Table) Close() error {
	t.bufs = nil
	t.cols = nil
	t.rows = 0
	return nil
}
