package table

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/array"
	"github.com/apache/arrow/go/v10/arrow/memory"
)

type ordered interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 | ~string
}

// scanOrdered marks every position that is null or not strictly greater than
// the previous non-null value. With firstOnly it stops at the first mark.
func scanOrdered[T ordered](n int, isNull func(int) bool, value func(int) T, firstOnly bool, out *roaring.Bitmap) {
	var prev T
	havePrev := false
	for i := 0; i < n; i++ {
		if isNull(i) {
			out.Add(uint32(i))
			if firstOnly {
				return
			}
			continue
		}
		v := value(i)
		if havePrev && !(prev < v) {
			out.Add(uint32(i))
			if firstOnly {
				return
			}
		}
		prev, havePrev = v, true
	}
}

// scanIndex returns the positions that break sliceability of idx.
func scanIndex(idx arrow.Array, firstOnly bool) (*roaring.Bitmap, error) {
	out := roaring.New()
	switch a := idx.(type) {
	case *array.Int64:
		scanOrdered(a.Len(), a.IsNull, a.Value, firstOnly, out)
	case *array.Int32:
		scanOrdered(a.Len(), a.IsNull, a.Value, firstOnly, out)
	case *array.Int16:
		scanOrdered(a.Len(), a.IsNull, a.Value, firstOnly, out)
	case *array.Int8:
		scanOrdered(a.Len(), a.IsNull, a.Value, firstOnly, out)
	case *array.Uint64:
		scanOrdered(a.Len(), a.IsNull, a.Value, firstOnly, out)
	case *array.Uint32:
		scanOrdered(a.Len(), a.IsNull, a.Value, firstOnly, out)
	case *array.Uint16:
		scanOrdered(a.Len(), a.IsNull, a.Value, firstOnly, out)
	case *array.Uint8:
		scanOrdered(a.Len(), a.IsNull, a.Value, firstOnly, out)
	case *array.Float64:
		scanOrdered(a.Len(), a.IsNull, a.Value, firstOnly, out)
	case *array.Float32:
		scanOrdered(a.Len(), a.IsNull, a.Value, firstOnly, out)
	case *array.String:
		scanOrdered(a.Len(), a.IsNull, a.Value, firstOnly, out)
	default:
		return nil, fmt.Errorf("%w: unsupported index type %s", ErrInvalidIndex, idx.DataType())
	}
	return out, nil
}

// windowIndex slices the index column to m's window. Callers must hold t.mu.
func windowIndex(t *table, m Meta) (arrow.Array, error) {
	if t.rec == nil {
		return nil, ErrReleased
	}
	s, e, _ := m.window(t.rec.NumRows())
	i := fieldIndex(t.rec.Schema(), t.indexField)
	if i < 0 {
		return nil, fmt.Errorf("%w: index column %q missing", ErrInvalidIndex, t.indexField)
	}
	return array.NewSlice(t.rec.Column(i), s, e), nil
}

func hasSliceableIndex(t *table, m Meta) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	idx, err := windowIndex(t, m)
	if err != nil {
		return false
	}
	defer idx.Release()

	bad, err := scanIndex(idx, true)
	return err == nil && bad.IsEmpty()
}

// Mask returns the positions, relative to m's window, whose index value is
// null or breaks strict monotonicity. An empty mask means the window is
// sliceable.
func Mask(m Meta) (*roaring.Bitmap, error) {
	t := m.shared()
	t.mu.RLock()
	defer t.mu.RUnlock()

	idx, err := windowIndex(t, m)
	if err != nil {
		return nil, err
	}
	defer idx.Release()

	return scanIndex(idx, false)
}

func ensureSliceableIndex(ctx context.Context, m Meta) (string, bool, error) {
	g, err := m.Acquire(ctx)
	if err != nil {
		return "", false, err
	}
	defer g.Release()

	mi, err := m.MutableInfo(g)
	if err != nil {
		return "", false, err
	}
	return mi.EnsureSliceableIndex()
}

// repairIndexLocked replaces the index inside m's window. Callers must hold
// t.mu for writing and the Guard.
//
// A full-window repair installs an unnamed range index [0, n). A partial
// repair rewrites only the window rows with the view-relative sequence
// [0, stop-start) and requires an int64 index. In both cases the previous
// values are kept in the derived column unless an earlier repair created it,
// in which case it already holds them. Any other column under the derived
// name is an error.
func repairIndexLocked(t *table, m Meta) (string, bool, error) {
	idx, err := windowIndex(t, m)
	if err != nil {
		return "", false, err
	}
	bad, err := scanIndex(idx, true)
	idx.Release()
	if err != nil {
		return "", false, err
	}
	if bad.IsEmpty() {
		return "", false, nil
	}

	rec := t.rec
	schema := rec.Schema()
	n := rec.NumRows()
	s, e, _ := m.window(n)
	partial := s != 0 || e != n

	pos := fieldIndex(schema, t.indexField)
	old := rec.Column(pos)
	derived := DerivedIndexName(t.indexName)

	preserve := true
	if i := fieldIndex(schema, derived); i >= 0 {
		if !isDerivedIndex(schema.Field(i)) {
			return "", false, fmt.Errorf("%w: column %q would hold the replaced index", ErrInvalidIndex, derived)
		}
		preserve = false
	}

	newField, newName := UnnamedIndexField, ""
	var fresh arrow.Array
	if partial {
		if old.DataType().ID() != arrow.INT64 {
			return "", false, fmt.Errorf("%w: partial repair needs an int64 index, have %s", ErrInvalidIndex, old.DataType())
		}
		newField, newName = t.indexField, t.indexName
		fresh = spliceSequence(t.mem, old.(*array.Int64), s, e)
	} else {
		fresh = rangeIndex(t.mem, n)
	}
	defer fresh.Release()

	fields := make([]arrow.Field, 0, len(schema.Fields())+1)
	cols := make([]arrow.Array, 0, len(schema.Fields())+1)
	fields = append(fields, arrow.Field{Name: newField, Type: arrow.PrimitiveTypes.Int64, Nullable: partial})
	cols = append(cols, fresh)

	if preserve {
		f := markDerived(schema.Field(pos))
		f.Name = derived
		f.Nullable = true
		fields = append(fields, f)
		cols = append(cols, old)
	}
	for i, f := range schema.Fields() {
		if i == pos {
			continue
		}
		fields = append(fields, f)
		cols = append(cols, rec.Column(i))
	}

	out := array.NewRecord(schemaWithIndex(schema.Metadata(), fields, newField, newName), cols, n)
	t.swapLocked(out, newField, newName)

	if t.logger != nil {
		t.logger.Info("index replaced", "derived", derived, "start", s, "stop", e, "partial", partial)
	}
	t.observer.OnIndexRepair(derived, e-s, partial)

	return derived, true, nil
}

// spliceSequence copies old, replacing rows [s, e) with [0, e-s).
func spliceSequence(mem memory.Allocator, old *array.Int64, s, e int64) arrow.Array {
	b := array.NewInt64Builder(mem)
	defer b.Release()

	n := int64(old.Len())
	b.Reserve(int(n))
	for i := int64(0); i < n; i++ {
		switch {
		case i >= s && i < e:
			b.Append(i - s)
		case old.IsNull(int(i)):
			b.AppendNull()
		default:
			b.Append(old.Value(int(i)))
		}
	}
	return b.NewArray()
}
