package ingest

import (
	"bytes"
	"context"
	"fmt"

	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/array"
	"github.com/apache/arrow/go/v10/arrow/csv"
	"github.com/apache/arrow/go/v10/arrow/ipc"
	"github.com/apache/arrow/go/v10/arrow/memory"
	"github.com/apache/arrow/go/v10/parquet/file"
	"github.com/apache/arrow/go/v10/parquet/pqarrow"
)

// decode turns a payload into a single record owned by the caller.
func (l *Loader) decode(ctx context.Context, f Format, data []byte) (arrow.Record, error) {
	switch f {
	case FormatIPCFile:
		return decodeIPCFile(l.opts.mem, data)
	case FormatIPCStream:
		return decodeIPCStream(l.opts.mem, data)
	case FormatParquet:
		return decodeParquet(ctx, l.opts.mem, data)
	case FormatCSV:
		if l.opts.csvSchema == nil {
			return nil, ErrSchemaRequired
		}
		return decodeCSV(l.opts.mem, l.opts.csvSchema, l.opts.csvComma, data)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
}

func decodeIPCFile(mem memory.Allocator, data []byte) (arrow.Record, error) {
	r, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(mem))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	recs := make([]arrow.Record, 0, r.NumRecords())
	defer func() { releaseAll(recs) }()
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.Record(i)
		if err != nil {
			return nil, err
		}
		// The reader releases its current record on the next call.
		rec.Retain()
		recs = append(recs, rec)
	}
	return combine(mem, r.Schema(), recs)
}

func decodeIPCStream(mem memory.Allocator, data []byte) (arrow.Record, error) {
	r, err := ipc.NewReader(bytes.NewReader(data), ipc.WithAllocator(mem))
	if err != nil {
		return nil, err
	}
	defer r.Release()

	var recs []arrow.Record
	defer func() { releaseAll(recs) }()
	for r.Next() {
		rec := r.Record()
		rec.Retain()
		recs = append(recs, rec)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return combine(mem, r.Schema(), recs)
}

func decodeParquet(ctx context.Context, mem memory.Allocator, data []byte) (arrow.Record, error) {
	pf, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer pf.Close()

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, err
	}
	tbl, err := fr.ReadTable(ctx)
	if err != nil {
		return nil, err
	}
	defer tbl.Release()

	cols := make([]arrow.Array, 0, tbl.NumCols())
	defer func() { releaseArrays(cols) }()
	for i := 0; i < int(tbl.NumCols()); i++ {
		col, err := concatChunks(mem, tbl.Schema().Field(i).Type, tbl.Column(i).Data().Chunks())
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return array.NewRecord(tbl.Schema(), cols, tbl.NumRows()), nil
}

func decodeCSV(mem memory.Allocator, schema *arrow.Schema, comma rune, data []byte) (arrow.Record, error) {
	r := csv.NewReader(bytes.NewReader(data), schema,
		csv.WithAllocator(mem),
		csv.WithHeader(true),
		csv.WithComma(comma),
		csv.WithChunk(-1),
	)
	defer r.Release()

	var recs []arrow.Record
	defer func() { releaseAll(recs) }()
	for r.Next() {
		rec := r.Record()
		rec.Retain()
		recs = append(recs, rec)
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return combine(mem, schema, recs)
}

// combine concatenates record batches into one record. A single batch is
// returned as is.
func combine(mem memory.Allocator, schema *arrow.Schema, recs []arrow.Record) (arrow.Record, error) {
	switch len(recs) {
	case 0:
		b := array.NewRecordBuilder(mem, schema)
		defer b.Release()
		return b.NewRecord(), nil
	case 1:
		recs[0].Retain()
		return recs[0], nil
	}

	var rows int64
	for _, rec := range recs {
		rows += rec.NumRows()
	}

	cols := make([]arrow.Array, 0, len(schema.Fields()))
	defer func() { releaseArrays(cols) }()
	for i, f := range schema.Fields() {
		chunks := make([]arrow.Array, len(recs))
		for j, rec := range recs {
			chunks[j] = rec.Column(i)
		}
		col, err := concatChunks(mem, f.Type, chunks)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return array.NewRecord(schema, cols, rows), nil
}

func concatChunks(mem memory.Allocator, dt arrow.DataType, chunks []arrow.Array) (arrow.Array, error) {
	switch len(chunks) {
	case 0:
		b := array.NewBuilder(mem, dt)
		defer b.Release()
		return b.NewArray(), nil
	case 1:
		chunks[0].Retain()
		return chunks[0], nil
	}
	col, err := array.Concatenate(chunks, mem)
	if err != nil {
		return nil, fmt.Errorf("concatenate %s chunks: %w", dt, err)
	}
	return col, nil
}

func releaseAll(recs []arrow.Record) {
	for _, r := range recs {
		r.Release()
	}
}

func releaseArrays(arrs []arrow.Array) {
	for _, a := range arrs {
		a.Release()
	}
}
