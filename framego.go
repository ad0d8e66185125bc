package framego

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/memory"

	"github.com/hupe1980/framego/blobstore"
	"github.com/hupe1980/framego/codec"
	"github.com/hupe1980/framego/ingest"
	"github.com/hupe1980/framego/message"
	"github.com/hupe1980/framego/resource"
	"github.com/hupe1980/framego/table"
	"github.com/hupe1980/framego/tensor"
)

// Runtime ties tables, messages and storage to one allocator, one set of
// resource limits, one logger and one metrics collector.
//
// A Runtime is safe for concurrent use. Tables and messages it hands out
// are owned by the caller and must be released.
type Runtime struct {
	mem     memory.Allocator
	rc      *resource.Controller
	store   blobstore.BlobStore
	loader  *ingest.Loader
	metrics MetricsCollector
	logger  *Logger
	opts    options
	closed  atomic.Bool
}

// New creates a Runtime. Without Local or Remote the storage operations
// return ErrNoStore.
func New(optFns ...Option) (*Runtime, error) {
	opts := applyOptions(optFns)

	if opts.indexCols < 0 || opts.indexCols > 1 {
		return nil, fmt.Errorf("%w: %d index columns", ErrInvalidIndex, opts.indexCols)
	}
	if _, err := codec.ParseCompression(opts.compression.String()); err != nil {
		return nil, translateError(err)
	}

	rt := &Runtime{
		mem:     opts.mem,
		store:   opts.store,
		metrics: opts.metricsCollector,
		logger:  opts.logger,
		opts:    opts,
	}
	if opts.resources != nil {
		rt.rc = resource.NewController(*opts.resources)
		rt.mem = resource.NewAllocator(opts.mem, rt.rc)
	}

	if rt.store != nil {
		loaderOpts := []ingest.Option{
			// The loader wraps the base allocator itself when it has a controller.
			ingest.WithAllocator(opts.mem),
			ingest.WithController(rt.rc),
			ingest.WithLogger(rt.logger.Logger),
			ingest.WithIndexColumns(opts.indexCols),
			ingest.WithCSVComma(opts.csvComma),
			ingest.WithManifestCodec(opts.manifestCodec),
			ingest.WithMaxWorkers(opts.maxWorkers),
			ingest.WithTableOptions(table.WithObserver(observer{mc: rt.metrics})),
		}
		if opts.csvSchema != nil {
			loaderOpts = append(loaderOpts, ingest.WithCSVSchema(opts.csvSchema))
		}
		rt.loader = ingest.NewLoader(rt.store, loaderOpts...)
	}

	return rt, nil
}

func (rt *Runtime) check() error {
	if rt == nil || rt.closed.Load() {
		return ErrClosed
	}
	return nil
}

func (rt *Runtime) checkStore() error {
	if err := rt.check(); err != nil {
		return err
	}
	if rt.loader == nil {
		return ErrNoStore
	}
	return nil
}

func (rt *Runtime) tableOptions(extra ...table.Option) []table.Option {
	opts := []table.Option{
		table.WithAllocator(rt.mem),
		table.WithLogger(rt.logger.Logger),
		table.WithObserver(observer{mc: rt.metrics}),
	}
	return append(opts, extra...)
}

// Allocator returns the allocator tables and tensors are placed in.
func (rt *Runtime) Allocator() memory.Allocator { return rt.mem }

// Controller returns the resource controller, or nil without WithResourceLimits.
func (rt *Runtime) Controller() *resource.Controller { return rt.rc }

// Logger returns the runtime's logger.
func (rt *Runtime) Logger() *Logger { return rt.logger }

// Adopt wraps an externally produced record without copying it. Index
// metadata in the schema is honored; without it a range index is generated.
// The caller keeps its own reference to rec.
func (rt *Runtime) Adopt(rec arrow.Record, opts ...table.Option) (*table.Handle, error) {
	if err := rt.check(); err != nil {
		return nil, err
	}
	h, err := table.Adopt(rec, rt.tableOptions(opts...)...)
	return h, translateError(err)
}

// FromRecord builds a table from rec, promoting indexColCount leading
// columns to the row index; see table.FromTableWithMetadata.
func (rt *Runtime) FromRecord(rec arrow.Record, indexColCount int, opts ...table.Option) (*table.Handle, error) {
	if err := rt.check(); err != nil {
		return nil, err
	}
	h, err := table.FromTableWithMetadata(rec, indexColCount, rt.tableOptions(opts...)...)
	return h, translateError(err)
}

// NewView returns the rows [start, stop) and the named columns of parent.
// A stop of table.ToEnd selects every row from start.
func (rt *Runtime) NewView(parent table.Meta, start, stop int64, columns ...string) (*table.View, error) {
	if err := rt.check(); err != nil {
		return nil, err
	}
	v, err := table.NewView(parent, start, stop, columns...)
	return v, translateError(err)
}

// Mutate runs fn with write access to m while holding its table's guard.
func (rt *Runtime) Mutate(ctx context.Context, m table.Meta, fn func(*table.MutableInfo) error) error {
	if err := rt.check(); err != nil {
		return err
	}
	err := translateError(table.Mutate(ctx, m, fn))
	rt.logger.LogMutation(ctx, m.Count(), err)
	return err
}

// EnsureSliceableIndex repairs a non-sliceable index of m and returns the
// column that keeps the previous values.
func (rt *Runtime) EnsureSliceableIndex(ctx context.Context, m table.Meta) (string, bool, error) {
	if err := rt.check(); err != nil {
		return "", false, err
	}
	derived, replaced, err := m.EnsureSliceableIndex(ctx)
	err = translateError(err)
	rt.logger.LogIndexRepair(ctx, derived, replaced, err)
	return derived, replaced, err
}

// Export hands the rows and columns of m to an outside consumer. ExportCopy
// detaches the result from later in-place writes.
func (rt *Runtime) Export(m table.Meta, mode table.ExportMode) (arrow.Record, error) {
	if err := rt.check(); err != nil {
		return nil, err
	}
	rec, err := table.Export(m, mode, rt.mem)
	return rec, translateError(err)
}

// Load reads the table stored as name. FormatAuto detects the format from
// the payload.
func (rt *Runtime) Load(ctx context.Context, name string, f ingest.Format) (*table.Handle, error) {
	if err := rt.checkStore(); err != nil {
		return nil, err
	}
	start := time.Now()
	size := rt.blobSize(ctx, name)

	h, err := rt.loader.Load(ctx, name, f)
	err = translateError(err)

	var rows int64
	if h != nil {
		rows = h.Count()
	}
	duration := time.Since(start)
	rt.metrics.RecordLoad(size, duration, err)
	rt.logger.LogLoad(ctx, name, rows, duration, err)
	return h, err
}

// LoadAll loads names concurrently. On error nothing is returned and every
// handle loaded so far is released.
func (rt *Runtime) LoadAll(ctx context.Context, names []string, f ingest.Format) ([]*table.Handle, error) {
	if err := rt.checkStore(); err != nil {
		return nil, err
	}
	start := time.Now()

	hs, err := rt.loader.LoadAll(ctx, names, f)
	err = translateError(err)

	duration := time.Since(start)
	if err != nil {
		rt.metrics.RecordLoad(0, duration, err)
		rt.logger.LogLoad(ctx, strings.Join(names, ","), 0, duration, err)
		return nil, err
	}
	for i, name := range names {
		rt.metrics.RecordLoad(rt.blobSize(ctx, name), duration, nil)
		rt.logger.LogLoad(ctx, name, hs[i].Count(), duration, nil)
	}
	return hs, nil
}

// blobSize is best effort; metrics must not fail a load.
func (rt *Runtime) blobSize(ctx context.Context, name string) int64 {
	b, err := rt.store.Open(ctx, name)
	if err != nil {
		return 0
	}
	defer b.Close()
	return b.Size()
}

// Store writes the rows and columns of m as name, compressed as configured
// by WithCompression, together with a manifest.
func (rt *Runtime) Store(ctx context.Context, name string, m table.Meta, f ingest.Format) (*ingest.Manifest, error) {
	if err := rt.checkStore(); err != nil {
		return nil, err
	}
	start := time.Now()

	man, err := rt.loader.Store(ctx, name, m, f, rt.opts.compression)
	err = translateError(err)

	var n int64
	if man != nil {
		n = man.Bytes
	}
	rt.metrics.RecordStore(n, time.Since(start), err)
	rt.logger.LogStore(ctx, name, n, err)
	return man, err
}

// Manifest returns the manifest stored next to name.
func (rt *Runtime) Manifest(ctx context.Context, name string) (*ingest.Manifest, error) {
	if err := rt.checkStore(); err != nil {
		return nil, err
	}
	man, err := rt.loader.LoadManifest(ctx, name)
	return man, translateError(err)
}

// List returns the stored table names below prefix, manifests excluded.
func (rt *Runtime) List(ctx context.Context, prefix string) ([]string, error) {
	if err := rt.checkStore(); err != nil {
		return nil, err
	}
	names, err := rt.store.List(ctx, prefix)
	if err != nil {
		return nil, translateError(err)
	}
	out := names[:0]
	for _, n := range names {
		if !isManifest(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

func isManifest(name string) bool {
	return strings.HasSuffix(name, ingest.ManifestSuffix)
}

// Delete removes the stored table name and its manifest.
func (rt *Runtime) Delete(ctx context.Context, name string) error {
	if err := rt.checkStore(); err != nil {
		return err
	}
	return translateError(errors.Join(
		rt.store.Delete(ctx, name),
		rt.store.Delete(ctx, name+ingest.ManifestSuffix),
	))
}

// NewTensor allocates a zeroed tensor in the runtime's allocator.
func (rt *Runtime) NewTensor(dt arrow.DataType, shape ...int64) (*tensor.Tensor, error) {
	if err := rt.check(); err != nil {
		return nil, err
	}
	t, err := tensor.Zeros(rt.mem, dt, shape...)
	return t, translateError(err)
}

// NewMessage pairs the message rows [messOffset, messOffset+messCount) of
// meta with the tensor rows [offset, offset+count) of mem. A count of
// message.Rest extends a window to the end of its backing store.
func (rt *Runtime) NewMessage(meta table.Meta, messOffset, messCount int64, mem *tensor.Memory, offset, count int64, idTensorName string) (*message.TensorMessage, error) {
	if err := rt.check(); err != nil {
		return nil, err
	}
	m, err := message.New(meta, messOffset, messCount, mem, offset, count, idTensorName)
	return m, translateError(err)
}

// NewInference is NewMessage for a model family.
func (rt *Runtime) NewInference(f message.Family, meta table.Meta, messOffset, messCount int64, mem *tensor.Memory, offset, count int64) (*message.Inference, error) {
	if err := rt.check(); err != nil {
		return nil, err
	}
	m, err := message.NewInference(f, meta, messOffset, messCount, mem, offset, count)
	return m, translateError(err)
}

// SetTensor writes src into the window of the named tensor of msg.
func (rt *Runtime) SetTensor(ctx context.Context, msg *message.TensorMessage, name string, src *tensor.Tensor) error {
	if err := rt.check(); err != nil {
		return err
	}
	err := translateError(msg.SetTensor(name, src))
	rt.metrics.RecordTensorWrite(msg.Count(), err)
	rt.logger.LogTensorWrite(ctx, name, msg.Count(), err)
	return err
}

// Close marks the runtime closed and closes its blob store if it holds
// resources. Tables and messages handed out stay valid until released.
func (rt *Runtime) Close() error {
	if rt == nil || !rt.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c, ok := rt.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
