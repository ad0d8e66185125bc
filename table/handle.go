package table

import (
	"context"

	"github.com/apache/arrow/go/v10/arrow"
)

// Handle is the owning Meta over one arrow.Record.
//
// A Handle and every View built over it share the record; it is released once
// the last of them is released.
type Handle struct {
	t *table
}

// FromTableWithMetadata creates a Handle from an already parsed record whose
// first indexColCount columns form the row index.
//
// indexColCount 0 keeps an index described by the schema metadata or generates
// a range index. indexColCount 1 folds the first column into the index; a
// column named "" or "Unnamed: 0" becomes an unnamed index.
//
// The Handle retains the record's columns; the caller keeps its own reference.
func FromTableWithMetadata(rec arrow.Record, indexColCount int, opts ...Option) (*Handle, error) {
	o := applyOptions(opts)

	out, field, name, err := normalize(rec, indexColCount, o.mem)
	if err != nil {
		return nil, err
	}

	if o.logger != nil {
		o.logger.Debug("table created", "rows", out.NumRows(), "cols", out.NumCols()-1, "index", field)
	}

	return &Handle{t: newTable(out, field, name, o)}, nil
}

// Adopt creates a Handle over an externally supplied record without copying.
func Adopt(rec arrow.Record, opts ...Option) (*Handle, error) {
	return FromTableWithMetadata(rec, 0, opts...)
}

// Count returns the number of rows.
func (h *Handle) Count() int64 { return h.t.numRows() }

// Columns returns the column names in schema order, excluding the index.
func (h *Handle) Columns() []string { return h.t.columns() }

// Bounds returns [0, Count()).
func (h *Handle) Bounds() (int64, int64) { return 0, h.Count() }

// IndexName returns the logical name of the index; ok is false when it is unnamed.
func (h *Handle) IndexName() (name string, ok bool) {
	_, name = h.t.index()
	return name, name != ""
}

// Info returns a read-only projection of the entire table.
func (h *Handle) Info() (*Info, error) { return newInfo(h.t, h) }

// MutableInfo returns write access to the entire table.
func (h *Handle) MutableInfo(g *Guard) (*MutableInfo, error) { return newMutableInfo(h.t, g, h) }

// HasSliceableIndex reports whether the index is unique and strictly increasing.
func (h *Handle) HasSliceableIndex() bool { return hasSliceableIndex(h.t, h) }

// EnsureSliceableIndex replaces a non-sliceable index with the sequence
// [0, Count()) and keeps the old values in column "_index_<name>".
func (h *Handle) EnsureSliceableIndex(ctx context.Context) (string, bool, error) {
	return ensureSliceableIndex(ctx, h)
}

// Acquire blocks until the Guard is available or ctx is done.
func (h *Handle) Acquire(ctx context.Context) (*Guard, error) { return h.t.acquire(ctx) }

// TryAcquire returns the Guard if it is free.
func (h *Handle) TryAcquire() (*Guard, bool) { return h.t.tryAcquire() }

// Retain increases the reference count.
func (h *Handle) Retain() { h.t.retain() }

// Release decreases the reference count and frees the record when it reaches zero.
func (h *Handle) Release() { h.t.release() }

func (h *Handle) shared() *table { return h.t }

func (h *Handle) window(rows int64) (int64, int64, []string) { return 0, rows, nil }
