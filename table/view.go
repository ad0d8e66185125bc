package table

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"
)

// View is a windowed Meta over a Handle or another View.
//
// start and stop are relative to the parent's window and are fixed at
// construction; the effective bounds are resolved lazily, so a View over a
// table whose row count changes reflects the new bound.
type View struct {
	parent  Meta
	start   int64
	stop    int64 // ToEnd for "to the end of the parent"
	columns []string

	t *table
	// refs counts this View's own references; the View holds one reference
	// on t until refs drops to zero.
	refs atomic.Int64
}

// NewView creates a View over rows [start, stop) of parent restricted to
// columns. stop may be ToEnd and an empty column list selects all visible
// columns.
func NewView(parent Meta, start, stop int64, columns ...string) (*View, error) {
	if parent == nil {
		return nil, fmt.Errorf("%w: nil parent", ErrInvalidRange)
	}
	t := parent.shared()
	if t.released() {
		return nil, ErrReleased
	}

	rows := parent.Count()
	if start < 0 || start > rows {
		return nil, &RangeError{Start: start, Stop: stop, Rows: rows}
	}
	if stop >= 0 && (stop < start || stop > rows) {
		return nil, &RangeError{Start: start, Stop: stop, Rows: rows}
	}
	if stop < 0 {
		stop = ToEnd
	}

	var cols []string
	if len(columns) > 0 {
		visible := parent.Columns()
		for _, c := range columns {
			if !slices.Contains(visible, c) {
				return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, c)
			}
		}
		cols = slices.Clone(columns)
	}

	t.retain()
	v := &View{
		parent:  parent,
		start:   start,
		stop:    stop,
		columns: cols,
		t:       t,
	}
	v.refs.Store(1)
	t.observer.OnView(v.Count())
	return v, nil
}

// Count returns stop - start resolved against the parent's current row count.
func (v *View) Count() int64 {
	s, e, _ := v.window(v.t.numRows())
	return e - s
}

// Columns returns the visible column names.
func (v *View) Columns() []string {
	if v.columns != nil {
		return slices.Clone(v.columns)
	}
	return v.parent.Columns()
}

// Bounds returns the effective window over the root table.
func (v *View) Bounds() (int64, int64) {
	s, e, _ := v.window(v.t.numRows())
	return s, e
}

// Info returns a read-only projection of the window.
func (v *View) Info() (*Info, error) { return newInfo(v.t, v) }

// MutableInfo returns write access limited to the window.
func (v *View) MutableInfo(g *Guard) (*MutableInfo, error) { return newMutableInfo(v.t, g, v) }

// HasSliceableIndex checks only the rows inside the window.
func (v *View) HasSliceableIndex() bool { return hasSliceableIndex(v.t, v) }

// EnsureSliceableIndex repairs the index inside the window only. Rows outside
// the window keep their index values.
func (v *View) EnsureSliceableIndex(ctx context.Context) (string, bool, error) {
	return ensureSliceableIndex(ctx, v)
}

// Acquire blocks until the Guard of the underlying table is available.
func (v *View) Acquire(ctx context.Context) (*Guard, error) { return v.t.acquire(ctx) }

// TryAcquire returns the Guard of the underlying table if it is free.
func (v *View) TryAcquire() (*Guard, bool) { return v.t.tryAcquire() }

// Retain increases the reference count of the View.
func (v *View) Retain() { v.refs.Add(1) }

// Release decreases the reference count of the View and drops its reference
// on the underlying table when the count reaches zero. Releasing more often
// than retaining is a no-op.
func (v *View) Release() {
	for {
		n := v.refs.Load()
		if n <= 0 {
			return
		}
		if v.refs.CompareAndSwap(n, n-1) {
			if n == 1 {
				v.t.release()
			}
			return
		}
	}
}

func (v *View) shared() *table { return v.t }

func (v *View) window(rows int64) (int64, int64, []string) {
	ps, pe, pcols := v.parent.window(rows)

	s := min(ps+v.start, pe)
	e := pe
	if v.stop >= 0 {
		e = min(ps+v.stop, pe)
	}
	if e < s {
		e = s
	}

	cols := pcols
	if v.columns != nil {
		cols = v.columns
	}
	return s, e, cols
}
