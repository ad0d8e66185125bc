// Package ingest moves tables between a blobstore.BlobStore and in-memory
// table handles.
//
// A Loader decodes Arrow IPC files and streams, Parquet and CSV into a
// table.Handle, honoring an index column count the same way
// table.FromTableWithMetadata does. Payloads may be wrapped in a codec
// compression frame; Load detects that transparently.
//
//	l := ingest.NewLoader(store, ingest.WithController(rc))
//	h, err := l.Load(ctx, "events.arrow", ingest.FormatAuto)
//	defer h.Release()
//
// Store writes a table back together with a JSON manifest describing it.
package ingest
