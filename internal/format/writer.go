package format

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// Writer accumulates rows for a fixed schema and writes a complete .snel
// file in one shot. It exists for the data generator and for tests; the
// engine itself never writes.
type Writer struct {
	cols  []Column
	rows  int
	data  [][]byte
	nulls [][]byte
}

// NewWriter creates a writer for the given schema.
func NewWriter(cols []Column) (*Writer, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("writer: schema has no columns")
	}
	if len(cols) > math.MaxUint16 {
		return nil, fmt.Errorf("writer: too many columns (%d)", len(cols))
	}
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if c.Name == "" {
			return nil, fmt.Errorf("writer: empty column name")
		}
		if c.Type.Width() == 0 {
			return nil, fmt.Errorf("writer: column %q has unknown type", c.Name)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("writer: duplicate column name %q", c.Name)
		}
		seen[c.Name] = true
	}
	return &Writer{
		cols:  cols,
		data:  make([][]byte, len(cols)),
		nulls: make([][]byte, len(cols)),
	}, nil
}

// Append adds one row. vals[i] is ignored for positions where null[i] is
// true, except that its bits are still stored (callers may choose a
// sentinel pattern); the bitmap alone marks the slot NULL on read.
func (w *Writer) Append(vals []int64, null []bool) error {
	if len(vals) != len(w.cols) || len(null) != len(w.cols) {
		return fmt.Errorf("writer: row arity %d/%d != schema %d", len(vals), len(null), len(w.cols))
	}
	for i, c := range w.cols {
		if null[i] && !c.Nullable {
			return fmt.Errorf("writer: column %q is NOT NULL", c.Name)
		}
		if c.Type == Int32 && (vals[i] < math.MinInt32 || vals[i] > math.MaxInt32) {
			return fmt.Errorf("writer: column %q value %d out of range for %s", c.Name, vals[i], c.Type)
		}
	}
	for i, c := range w.cols {
		switch c.Type {
		case Int32:
			w.data[i] = binary.LittleEndian.AppendUint32(w.data[i], uint32(int32(vals[i])))
		default:
			w.data[i] = binary.LittleEndian.AppendUint64(w.data[i], uint64(vals[i]))
		}
		if c.Nullable {
			if w.rows%8 == 0 {
				w.nulls[i] = append(w.nulls[i], 0)
			}
			if null[i] {
				w.nulls[i][w.rows>>3] |= 1 << (uint(w.rows) & 7)
			}
		}
	}
	w.rows++
	return nil
}

// Rows returns the number of appended rows.
func (w *Writer) Rows() int { return w.rows }

// WriteFile writes header, data sections and bitmaps to path, replacing any
// existing file.
func (w *Writer) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writer: create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)

	var hdr []byte
	hdr = binary.LittleEndian.AppendUint32(hdr, Magic)
	hdr = binary.LittleEndian.AppendUint16(hdr, Version)
	hdr = binary.LittleEndian.AppendUint16(hdr, uint16(len(w.cols)))
	hdr = binary.LittleEndian.AppendUint64(hdr, uint64(w.rows))
	for _, c := range w.cols {
		hdr = binary.LittleEndian.AppendUint16(hdr, uint16(len(c.Name)))
		hdr = append(hdr, c.Name...)
		hdr = append(hdr, byte(c.Type))
		if c.Nullable {
			hdr = append(hdr, 1)
		} else {
			hdr = append(hdr, 0)
		}
	}
	if _, err := bw.Write(hdr); err != nil {
		f.Close()
		return fmt.Errorf("writer: write header: %w", err)
	}
	for i := range w.cols {
		if _, err := bw.Write(w.data[i]); err != nil {
			f.Close()
			return fmt.Errorf("writer: write column %q: %w", w.cols[i].Name, err)
		}
	}
	for i, c := range w.cols {
		if !c.Nullable {
			continue
		}
		// Pad the final bitmap byte range for a 0-row table.
		bm := w.nulls[i]
		if len(bm) < bitmapLen(w.rows) {
			bm = append(bm, make([]byte, bitmapLen(w.rows)-len(bm))...)
		}
		if _, err := bw.Write(bm); err != nil {
			f.Close()
			return fmt.Errorf("writer: write bitmap %q: %w", c.Name, err)
		}
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writer: flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writer: close %s: %w", path, err)
	}
	return nil
}
