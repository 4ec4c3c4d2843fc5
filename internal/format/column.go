package format

import "encoding/binary"

// ColumnBuffer holds one column's values as a contiguous fixed-width run
// plus, for nullable columns, a parallel one-bit-per-row null bitmap.
// Buffers are read-only after open and share the file's backing array, so
// concurrent readers need no locking.
type ColumnBuffer struct {
	col   Column
	rows  int
	data  []byte // rows * col.Type.Width() bytes
	nulls []byte // bitmapLen(rows) bytes, nil for NOT NULL columns
}

// Descriptor returns the column metadata.
func (b *ColumnBuffer) Descriptor() Column { return b.col }

// Rows returns the row count shared by every buffer of the owning table.
func (b *ColumnBuffer) Rows() int { return b.rows }

// IsNull reports whether row i is NULL. The bitmap decides; the stored
// value bits are irrelevant.
func (b *ColumnBuffer) IsNull(i int) bool {
	if b.nulls == nil {
		return false
	}
	return b.nulls[i>>3]&(1<<(uint(i)&7)) != 0
}

// Raw returns the stored value at row i without consulting the bitmap.
// Callers that care about NULL use Get.
func (b *ColumnBuffer) Raw(i int) int64 {
	switch b.col.Type {
	case Int32:
		return int64(int32(binary.LittleEndian.Uint32(b.data[i*4:])))
	default:
		return int64(binary.LittleEndian.Uint64(b.data[i*8:]))
	}
}

// Get returns the value at row i and whether it is NULL. The value is
// undefined when null is true.
func (b *ColumnBuffer) Get(i int) (v int64, null bool) {
	if b.IsNull(i) {
		return 0, true
	}
	return b.Raw(i), false
}
