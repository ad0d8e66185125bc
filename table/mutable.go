package table

import (
	"fmt"
	"slices"

	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/array"
	"github.com/apache/arrow/go/v10/arrow/memory"
)

// MutableInfo grants write access to a window of a shared table while its
// Guard is active. Every method re-checks the Guard.
type MutableInfo struct {
	t *table
	g *Guard
	m Meta
}

func newMutableInfo(t *table, g *Guard, m Meta) (*MutableInfo, error) {
	if !g.activeFor(t) {
		return nil, ErrAccessDenied
	}
	return &MutableInfo{t: t, g: g, m: m}, nil
}

func (mi *MutableInfo) check() error {
	if !mi.g.activeFor(mi.t) {
		return ErrAccessDenied
	}
	return nil
}

// Count returns the number of rows in the window.
func (mi *MutableInfo) Count() int64 { return mi.m.Count() }

// Columns returns the writable column names.
func (mi *MutableInfo) Columns() []string { return mi.m.Columns() }

// Info returns a read-only projection of the window.
func (mi *MutableInfo) Info() (*Info, error) {
	if err := mi.check(); err != nil {
		return nil, err
	}
	return newInfo(mi.t, mi.m)
}

// SetColumn writes arr into the window rows of column name.
//
// Fixed-width columns without nulls are written in place into the shared
// buffers unless the table was created WithReadOnlyBuffers. Every other write rebuilds the column. A column that does not
// exist yet is added and is null outside the window; that is only allowed
// when the window does not restrict columns.
func (mi *MutableInfo) SetColumn(name string, arr arrow.Array) error {
	if err := mi.check(); err != nil {
		return err
	}

	t := mi.t
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rec == nil {
		return ErrReleased
	}
	rec := t.rec
	n := rec.NumRows()
	s, e, cols := mi.m.window(n)

	if int64(arr.Len()) != e-s {
		return fmt.Errorf("%w: column %q has %d rows, window has %d", ErrInvalidRange, name, arr.Len(), e-s)
	}
	if name == t.indexField {
		return fmt.Errorf("%w: %q is the row index", ErrUnknownColumn, name)
	}
	if cols != nil && !slices.Contains(cols, name) {
		return fmt.Errorf("%w: %q is outside the view", ErrUnknownColumn, name)
	}

	schema := rec.Schema()
	pos := fieldIndex(schema, name)

	var (
		col arrow.Array
		err error
	)
	switch {
	case pos < 0:
		col, err = spliceNew(t.mem, arr, s, e, n)
	case !arrow.TypeEqual(rec.Column(pos).DataType(), arr.DataType()):
		if s != 0 || e != n {
			return fmt.Errorf("%w: %q is %s, got %s", ErrTypeMismatch, name, rec.Column(pos).DataType(), arr.DataType())
		}
		arr.Retain()
		col = arr
	case !t.readOnly && writeInPlace(rec.Column(pos), arr, s):
		t.observer.OnMutation(name, e-s, true)
		if t.logger != nil {
			t.logger.Debug("column written in place", "column", name, "start", s, "stop", e)
		}
		return nil
	default:
		col, err = spliceExisting(t.mem, rec.Column(pos), arr, s, e, n)
	}
	if err != nil {
		return fmt.Errorf("table: set column %q: %w", name, err)
	}
	defer col.Release()

	fields := slices.Clone(schema.Fields())
	arrs := slices.Clone(rec.Columns())
	field := arrow.Field{Name: name, Type: arr.DataType(), Nullable: true}
	if pos < 0 {
		fields = append(fields, field)
		arrs = append(arrs, col)
	} else {
		field.Metadata = fields[pos].Metadata
		fields[pos] = field
		arrs[pos] = col
	}

	out := array.NewRecord(schemaWithIndex(schema.Metadata(), fields, t.indexField, t.indexName), arrs, n)
	t.swapLocked(out, t.indexField, t.indexName)

	t.observer.OnMutation(name, e-s, false)
	if t.logger != nil {
		t.logger.Debug("column rebuilt", "column", name, "start", s, "stop", e)
	}
	return nil
}

// Replace swaps the whole table for rec. The window must cover the entire
// table. The index described by rec's schema metadata is kept; otherwise a
// range index is generated.
func (mi *MutableInfo) Replace(rec arrow.Record) error {
	if err := mi.check(); err != nil {
		return err
	}

	t := mi.t
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rec == nil {
		return ErrReleased
	}
	n := t.rec.NumRows()
	if s, e, cols := mi.m.window(n); s != 0 || e != n || cols != nil {
		return fmt.Errorf("%w: replace needs the full table, window is [%d, %d)", ErrInvalidRange, s, e)
	}

	out, field, name, err := normalize(rec, 0, t.mem)
	if err != nil {
		return err
	}
	t.swapLocked(out, field, name)

	if t.logger != nil {
		t.logger.Debug("table replaced", "rows", out.NumRows(), "previous_rows", n)
	}
	return nil
}

// EnsureSliceableIndex repairs the index inside the window without taking
// the Guard again.
func (mi *MutableInfo) EnsureSliceableIndex() (string, bool, error) {
	if err := mi.check(); err != nil {
		return "", false, err
	}

	mi.t.mu.Lock()
	defer mi.t.mu.Unlock()

	return repairIndexLocked(mi.t, mi.m)
}

// writeInPlace copies src into dst's data buffer at row offset at. It only
// handles byte-aligned fixed-width types where neither side has nulls.
func writeInPlace(dst, src arrow.Array, at int64) bool {
	if id := dst.DataType().ID(); id == arrow.DICTIONARY || id == arrow.EXTENSION {
		return false
	}
	fw, ok := dst.DataType().(arrow.FixedWidthDataType)
	if !ok || fw.BitWidth() <= 0 || fw.BitWidth()%8 != 0 {
		return false
	}
	if dst.NullN() != 0 || src.NullN() != 0 {
		return false
	}

	db, sb := dst.Data().Buffers(), src.Data().Buffers()
	if len(db) < 2 || len(sb) < 2 || db[1] == nil || sb[1] == nil {
		return false
	}

	w := fw.BitWidth() / 8
	n := src.Len() * w
	dOff := (dst.Data().Offset() + int(at)) * w
	sOff := src.Data().Offset() * w

	dbytes, sbytes := db[1].Bytes(), sb[1].Bytes()
	if dOff+n > len(dbytes) || sOff+n > len(sbytes) {
		return false
	}
	copy(dbytes[dOff:dOff+n], sbytes[sOff:sOff+n])
	return true
}

// spliceExisting returns col with rows [s, e) replaced by arr.
func spliceExisting(mem memory.Allocator, col, arr arrow.Array, s, e, n int64) (arrow.Array, error) {
	if s == 0 && e == n {
		arr.Retain()
		return arr, nil
	}

	parts := make([]arrow.Array, 0, 3)
	defer func() {
		for _, p := range parts {
			p.Release()
		}
	}()
	if s > 0 {
		parts = append(parts, array.NewSlice(col, 0, s))
	}
	arr.Retain()
	parts = append(parts, arr)
	if e < n {
		parts = append(parts, array.NewSlice(col, e, n))
	}
	return array.Concatenate(parts, mem)
}

// spliceNew returns a column of n rows holding arr at [s, e) and nulls elsewhere.
func spliceNew(mem memory.Allocator, arr arrow.Array, s, e, n int64) (arrow.Array, error) {
	if s == 0 && e == n {
		arr.Retain()
		return arr, nil
	}

	parts := make([]arrow.Array, 0, 3)
	defer func() {
		for _, p := range parts {
			p.Release()
		}
	}()
	if s > 0 {
		parts = append(parts, nulls(mem, arr.DataType(), s))
	}
	arr.Retain()
	parts = append(parts, arr)
	if e < n {
		parts = append(parts, nulls(mem, arr.DataType(), n-e))
	}
	return array.Concatenate(parts, mem)
}

func nulls(mem memory.Allocator, dt arrow.DataType, n int64) arrow.Array {
	b := array.NewBuilder(mem, dt)
	defer b.Release()

	b.Reserve(int(n))
	for i := int64(0); i < n; i++ {
		b.AppendNull()
	}
	return b.NewArray()
}
