// Package framego provides zero-copy table metadata, windowed views and
// tensor messages for Go pipelines built on Apache Arrow.
//
// A table is an Arrow record with a row index. Handles own a table, views
// select a contiguous row window and a column subset of a handle or another
// view without copying, and tensor messages pair a window of table rows with
// a window of named tensors. Writes go through a per-table mutation guard.
//
// # Quick Start
//
// In memory:
//
//	rt, _ := framego.New()
//	h, _ := rt.FromRecord(rec, 1)  // first column becomes the index
//	defer h.Release()
//
//	v, _ := rt.NewView(h, 100, 200, "score")
//	defer v.Release()
//
// Stored tables:
//
//	rt, _ := framego.New(framego.Local("./data"), framego.WithCompression(codec.ZSTD))
//	man, _ := rt.Store(ctx, "events.arrows", h, ingest.FormatIPCStream)
//	h2, _ := rt.Load(ctx, "events.arrows", ingest.FormatAuto)
//
// Cloud storage:
//
//	st, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("tables/"))
//	rt, _ := framego.New(framego.Remote(st))
//
// # Sliceable Index
//
// Windowing by position is only meaningful when the index is unique and
// strictly increasing. EnsureSliceableIndex moves a broken index into a
// derived column named "_index_<name>" and installs a fresh 0..n-1 index:
//
//	derived, replaced, err := rt.EnsureSliceableIndex(ctx, h)
//
// # Mutation
//
//	err := rt.Mutate(ctx, v, func(mi *table.MutableInfo) error {
//	    return mi.SetColumn("score", scores)
//	})
//
// Fixed-width columns without nulls are written in place and become visible
// to every view sharing the buffers; everything else is rebuilt.
//
// # Messages
//
//	mem, _ := tensor.NewMemory(n, map[string]*tensor.Tensor{"input__0": in, "seq_ids": ids})
//	msg, _ := rt.NewInference(message.FIL, h, 0, message.Rest, mem, 0, message.Rest)
//	defer msg.Release()
//	x, _ := msg.Primary()
package framego
