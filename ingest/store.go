package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/array"
	"github.com/apache/arrow/go/v10/arrow/csv"
	"github.com/apache/arrow/go/v10/arrow/ipc"
	"github.com/apache/arrow/go/v10/arrow/memory"
	"github.com/apache/arrow/go/v10/parquet"
	"github.com/apache/arrow/go/v10/parquet/pqarrow"

	"github.com/hupe1980/framego/codec"
	"github.com/hupe1980/framego/resource"
	"github.com/hupe1980/framego/table"
)

// Store writes the rows and columns visible through m to blob name and a
// manifest to name+ManifestSuffix. FormatAuto writes an Arrow IPC stream.
// Any compression other than codec.None wraps the payload in a codec frame.
//
// The index travels as the first column with its description in the schema
// metadata, so loading with zero index columns restores it for the Arrow
// formats and Parquet. CSV has no metadata; load it with WithIndexColumns(1).
func (l *Loader) Store(ctx context.Context, name string, m table.Meta, f Format, c codec.Compression) (*Manifest, error) {
	if f == FormatAuto {
		f = FormatIPCStream
	}

	rec, err := table.Export(m, table.ExportShare, nil)
	if err != nil {
		return nil, fmt.Errorf("ingest: export %q: %w", name, err)
	}
	defer rec.Release()

	raw, err := encode(ctx, l.opts.mem, f, l.opts.csvComma, rec)
	if err != nil {
		return nil, fmt.Errorf("ingest: encode %q as %s: %w", name, f, err)
	}

	payload, used := raw, codec.None
	if c != codec.None {
		if payload, err = codec.Compress(raw, c); err != nil {
			return nil, fmt.Errorf("ingest: compress %q: %w", name, err)
		}
		used, _ = codec.FrameCompression(payload)
	}

	if err := l.write(ctx, name, payload); err != nil {
		return nil, fmt.Errorf("ingest: write %q: %w", name, err)
	}

	field, index := indexOf(rec.Schema())
	man := &Manifest{
		Name:        name,
		Format:      f.String(),
		Compression: used.String(),
		Rows:        rec.NumRows(),
		Columns:     m.Columns(),
		IndexField:  field,
		IndexName:   index,
		Bytes:       int64(len(payload)),
		RawBytes:    int64(len(raw)),
		Codec:       l.opts.manifest.Name(),
		CreatedAt:   time.Now().UTC(),
	}
	data, err := l.opts.manifest.Marshal(man)
	if err != nil {
		return nil, fmt.Errorf("ingest: encode manifest for %q: %w", name, err)
	}
	if err := l.opts.rc.AcquireIO(ctx, len(data)); err != nil {
		return nil, err
	}
	if err := l.store.Put(ctx, name+ManifestSuffix, data); err != nil {
		return nil, fmt.Errorf("ingest: write manifest for %q: %w", name, err)
	}

	if l.opts.logger != nil {
		l.opts.logger.Debug("table stored",
			"name", name, "format", f.String(), "compression", used.String(),
			"rows", man.Rows, "bytes", man.Bytes, "raw_bytes", man.RawBytes)
	}
	return man, nil
}

func (l *Loader) write(ctx context.Context, name string, payload []byte) error {
	w, err := l.store.Create(ctx, name)
	if err != nil {
		return err
	}
	if _, err := resource.NewRateLimitedWriter(ctx, w, l.opts.rc).Write(payload); err != nil {
		if a, ok := w.(interface{ Abort() error }); ok {
			_ = a.Abort()
		} else {
			_ = w.Close()
		}
		return err
	}
	return w.Close()
}

func encode(ctx context.Context, mem memory.Allocator, f Format, comma rune, rec arrow.Record) ([]byte, error) {
	buf := newSeekBuffer(sizeHint(rec))

	switch f {
	case FormatIPCStream:
		w := ipc.NewWriter(buf, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))
		if err := w.Write(rec); err != nil {
			_ = w.Close()
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case FormatIPCFile:
		w, err := ipc.NewFileWriter(buf, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))
		if err != nil {
			return nil, err
		}
		if err := w.Write(rec); err != nil {
			_ = w.Close()
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case FormatParquet:
		tbl := array.NewTableFromRecords(rec.Schema(), []arrow.Record{rec})
		defer tbl.Release()

		props := parquet.NewWriterProperties(parquet.WithAllocator(mem))
		arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())
		if err := pqarrow.WriteTable(tbl, buf, max(rec.NumRows(), 1), props, arrowProps); err != nil {
			return nil, err
		}
	case FormatCSV:
		w := csv.NewWriter(buf, rec.Schema(), csv.WithComma(comma), csv.WithHeader(true))
		if err := w.Write(rec); err != nil {
			return nil, err
		}
		if err := w.Flush(); err != nil {
			return nil, err
		}
		if err := w.Error(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sizeHint is the byte size of rec's top-level buffers plus room for
// framing metadata.
func sizeHint(rec arrow.Record) int {
	n := 4 << 10
	for _, col := range rec.Columns() {
		for _, b := range col.Data().Buffers() {
			if b != nil {
				n += b.Len()
			}
		}
	}
	return n
}

func indexOf(schema *arrow.Schema) (field, name string) {
	md := schema.Metadata()
	if i := md.FindKey(table.MetadataIndexField); i >= 0 {
		field = md.Values()[i]
	}
	if i := md.FindKey(table.MetadataIndexName); i >= 0 {
		name = md.Values()[i]
	}
	return field, name
}
