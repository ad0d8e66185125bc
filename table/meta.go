package table

import "context"

// ToEnd is the stop sentinel meaning "to the end of the parent".
const ToEnd int64 = -1

// Meta is the capability set shared by the owning Handle and the windowed View.
//
// Implementations are sealed to this package.
type Meta interface {
	// Count returns the number of rows visible through this Meta, resolved
	// against the current row count of the underlying table.
	Count() int64

	// Columns returns the visible column names. The index is not included.
	Columns() []string

	// Bounds returns the effective [start, stop) window over the root table.
	Bounds() (start, stop int64)

	// Info returns a read-only, zero-copy projection of the visible rows and columns.
	Info() (*Info, error)

	// MutableInfo returns write access to the visible rows and columns.
	// It fails with ErrAccessDenied unless g is the active Guard of the underlying table.
	MutableInfo(g *Guard) (*MutableInfo, error)

	// HasSliceableIndex reports whether the visible part of the index is unique
	// and strictly increasing.
	HasSliceableIndex() bool

	// EnsureSliceableIndex replaces a non-sliceable index and returns the name
	// of the column preserving the old values. replaced is false when the
	// index was already sliceable. It acquires the Guard for the duration of
	// the repair.
	EnsureSliceableIndex(ctx context.Context) (derived string, replaced bool, err error)

	// Acquire blocks until the single-writer Guard of the underlying table is
	// available or ctx is done.
	Acquire(ctx context.Context) (*Guard, error)

	// TryAcquire returns the Guard if it is free without blocking.
	TryAcquire() (*Guard, bool)

	// Retain increases the reference count of the underlying table.
	Retain()

	// Release decreases the reference count of the underlying table.
	Release()

	shared() *table

	// window resolves the effective root window given the root row count.
	// A nil column list means all visible columns.
	window(rows int64) (start, stop int64, columns []string)
}

// Mutate runs fn with write access to m's window while holding the Guard.
// The Guard is released when fn returns or panics.
func Mutate(ctx context.Context, m Meta, fn func(*MutableInfo) error) error {
	g, err := m.Acquire(ctx)
	if err != nil {
		return err
	}
	defer g.Release()

	mi, err := m.MutableInfo(g)
	if err != nil {
		return err
	}
	return fn(mi)
}
