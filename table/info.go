package table

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/array"
	"github.com/apache/arrow/go/v10/arrow/memory"
)

// Info is a read-only projection of a table window.
//
// The projection shares buffers with the table. In-place writes made later
// through a MutableInfo are visible through it; column replacements are not.
type Info struct {
	rec        arrow.Record // index first, then the visible columns
	indexField string
	indexName  string
	start      int64
	stop       int64
	mem        memory.Allocator
}

func newInfo(t *table, m Meta) (*Info, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.rec == nil {
		return nil, ErrReleased
	}
	s, e, cols := m.window(t.rec.NumRows())
	return project(t.rec, t.indexField, t.indexName, s, e, cols, t.mem)
}

// project slices rows [s, e) and the given columns (nil for all) out of rec.
func project(rec arrow.Record, indexField, indexName string, s, e int64, cols []string, mem memory.Allocator) (*Info, error) {
	schema := rec.Schema()
	if cols == nil {
		cols = visibleNames(schema, indexField)
	}

	fields := make([]arrow.Field, 0, len(cols)+1)
	arrs := make([]arrow.Array, 0, len(cols)+1)
	defer func() {
		for _, a := range arrs {
			a.Release()
		}
	}()

	for _, name := range append([]string{indexField}, cols...) {
		i := fieldIndex(schema, name)
		if i < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		fields = append(fields, schema.Field(i))
		arrs = append(arrs, array.NewSlice(rec.Column(i), s, e))
	}

	md := schema.Metadata()
	out := array.NewRecord(arrow.NewSchema(fields, &md), arrs, e-s)

	return &Info{
		rec:        out,
		indexField: indexField,
		indexName:  indexName,
		start:      s,
		stop:       e,
		mem:        mem,
	}, nil
}

// NumRows returns the number of rows in the projection.
func (i *Info) NumRows() int64 { return i.rec.NumRows() }

// NumCols returns the number of visible columns, excluding the index.
func (i *Info) NumCols() int { return int(i.rec.NumCols()) - 1 }

// Bounds returns the window over the root table this projection was taken from.
func (i *Info) Bounds() (int64, int64) { return i.start, i.stop }

// ColumnNames returns the visible column names in projection order.
func (i *Info) ColumnNames() []string {
	return visibleNames(i.rec.Schema(), i.indexField)
}

// Column returns the named column. The array is owned by the Info and valid
// until Release; call Retain to keep it longer.
func (i *Info) Column(name string) (arrow.Array, error) {
	if name == i.indexField {
		return nil, fmt.Errorf("%w: %q is the row index", ErrUnknownColumn, name)
	}
	idx := fieldIndex(i.rec.Schema(), name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return i.rec.Column(idx), nil
}

// Index returns the index column of the projection.
func (i *Info) Index() arrow.Array { return i.rec.Column(0) }

// IndexName returns the logical index name; ok is false for an unnamed index.
func (i *Info) IndexName() (name string, ok bool) { return i.indexName, i.indexName != "" }

// Record returns the projection with the index as its first column. The
// record is owned by the Info; call Retain to keep it past Release.
func (i *Info) Record() arrow.Record { return i.rec }

// Take gathers the rows selected by mask, positions relative to this Info,
// into a new Info. Contiguous runs are sliced and concatenated, so this is
// the copy path used when an index is not sliceable.
func (i *Info) Take(mask *roaring.Bitmap) (*Info, error) {
	rows := i.rec.NumRows()
	if !mask.IsEmpty() && int64(mask.Maximum()) >= rows {
		return nil, &RangeError{Start: int64(mask.Minimum()), Stop: int64(mask.Maximum()) + 1, Rows: rows}
	}

	runs := maskRuns(mask)

	cols := make([]arrow.Array, 0, i.rec.NumCols())
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()

	for c := 0; c < int(i.rec.NumCols()); c++ {
		col, err := gather(i.rec.Column(c), runs, i.mem)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}

	out := array.NewRecord(i.rec.Schema(), cols, int64(mask.GetCardinality()))
	return &Info{
		rec:        out,
		indexField: i.indexField,
		indexName:  i.indexName,
		start:      i.start,
		stop:       i.stop,
		mem:        i.mem,
	}, nil
}

// Release frees the projection.
func (i *Info) Release() {
	if i.rec != nil {
		i.rec.Release()
		i.rec = nil
	}
}

type run struct{ start, stop int64 }

func maskRuns(mask *roaring.Bitmap) []run {
	var runs []run
	it := mask.Iterator()
	for it.HasNext() {
		p := int64(it.Next())
		if n := len(runs); n > 0 && runs[n-1].stop == p {
			runs[n-1].stop++
			continue
		}
		runs = append(runs, run{start: p, stop: p + 1})
	}
	return runs
}

func gather(col arrow.Array, runs []run, mem memory.Allocator) (arrow.Array, error) {
	switch len(runs) {
	case 0:
		return array.NewSlice(col, 0, 0), nil
	case 1:
		return array.NewSlice(col, runs[0].start, runs[0].stop), nil
	}

	parts := make([]arrow.Array, 0, len(runs))
	defer func() {
		for _, p := range parts {
			p.Release()
		}
	}()
	for _, r := range runs {
		parts = append(parts, array.NewSlice(col, r.start, r.stop))
	}
	return array.Concatenate(parts, mem)
}
