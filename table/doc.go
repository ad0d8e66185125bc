// Package table provides zero-copy ownership and windowing over Arrow records.
//
// A Handle owns one arrow.Record and is shared by reference counting. A View is
// a row/column window over a Handle or over another View; nested views compose
// their offsets against the parent's window and never copy data.
//
//	h, _ := table.FromTableWithMetadata(rec, 1)
//	defer h.Release()
//
//	if _, replaced, err := h.EnsureSliceableIndex(ctx); err != nil { ... }
//
//	v, _ := table.NewView(h, 20, 30, "score")
//	defer v.Release()
//
//	info, _ := v.Info()
//	defer info.Release()
//
// # Row index
//
// Every table carries a row index stored as an Arrow column and described by
// schema metadata. The index is not a visible column; it travels with every
// view. An index is sliceable when it is unique and strictly increasing.
//
// # Mutation
//
// Writes go through a single-writer Guard:
//
//	err := table.Mutate(ctx, v, func(m *table.MutableInfo) error {
//	    return m.SetColumn("score", scores)
//	})
//
// Readers running concurrently with an active Guard may observe the table in a
// transitional state. Callers that need isolation must serialize through the
// Guard themselves.
package table
