package table

import (
	"fmt"

	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/array"
	"github.com/apache/arrow/go/v10/arrow/memory"
)

// ExportMode selects how Export hands a table to an outside consumer.
type ExportMode int

const (
	// ExportShare returns a zero-copy record sharing buffers with the table.
	// Later in-place writes through a MutableInfo are visible to the consumer.
	ExportShare ExportMode = iota

	// ExportCopy returns a record backed by freshly allocated buffers.
	ExportCopy
)

// String returns the mode name.
func (m ExportMode) String() string {
	switch m {
	case ExportShare:
		return "share"
	case ExportCopy:
		return "copy"
	default:
		return fmt.Sprintf("ExportMode(%d)", int(m))
	}
}

// Export returns the rows and columns visible through m as a record with the
// index as its first column and the index description in its schema
// metadata. The caller owns the result and must Release it.
//
// mem is used by ExportCopy; nil selects the table's allocator.
func Export(m Meta, mode ExportMode, mem memory.Allocator) (arrow.Record, error) {
	info, err := m.Info()
	if err != nil {
		return nil, err
	}
	defer info.Release()

	rec := info.Record()
	switch mode {
	case ExportShare:
		rec.Retain()
		return rec, nil
	case ExportCopy:
		if mem == nil {
			mem = m.shared().mem
		}
		return deepCopy(rec, mem)
	default:
		return nil, fmt.Errorf("table: unknown export mode %v", mode)
	}
}

func deepCopy(rec arrow.Record, mem memory.Allocator) (arrow.Record, error) {
	cols := make([]arrow.Array, 0, rec.NumCols())
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()

	for _, c := range rec.Columns() {
		cp, err := array.Concatenate([]arrow.Array{c}, mem)
		if err != nil {
			return nil, fmt.Errorf("table: copy column: %w", err)
		}
		cols = append(cols, cp)
	}
	return array.NewRecord(rec.Schema(), cols, rec.NumRows()), nil
}
