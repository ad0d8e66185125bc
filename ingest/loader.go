package ingest

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/framego/blobstore"
	"github.com/hupe1980/framego/resource"
	"github.com/hupe1980/framego/table"
)

// Loader reads and writes tables in a BlobStore. It is safe for concurrent use.
type Loader struct {
	store blobstore.BlobStore
	opts  options
}

// NewLoader returns a Loader over store. Without options it decodes into
// memory.DefaultAllocator with no resource limits.
func NewLoader(store blobstore.BlobStore, opts ...Option) *Loader {
	return &Loader{store: store, opts: applyOptions(opts)}
}

// Load reads blob name and returns a handle over its table. The caller owns
// the handle.
func (l *Loader) Load(ctx context.Context, name string, f Format) (*table.Handle, error) {
	rc := l.opts.rc
	if err := rc.AcquireLoad(ctx); err != nil {
		return nil, err
	}
	defer rc.ReleaseLoad()

	blob, err := l.store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %q: %w", name, err)
	}
	defer blob.Close()

	size := blob.Size()
	if err := rc.AcquireMemory(ctx, size); err != nil {
		return nil, fmt.Errorf("ingest: reserve %d bytes for %q: %w", size, name, err)
	}
	defer rc.ReleaseMemory(size)

	data, err := l.read(ctx, blob)
	if err != nil {
		return nil, fmt.Errorf("ingest: read %q: %w", name, err)
	}

	payload, comp, err := unframe(data)
	if err != nil {
		return nil, fmt.Errorf("ingest: %q: %w", name, err)
	}
	if f == FormatAuto {
		f = detect(name, payload)
	}

	rec, err := l.decode(ctx, f, payload)
	if err != nil {
		return nil, fmt.Errorf("ingest: decode %q as %s: %w", name, f, err)
	}
	defer rec.Release()

	h, err := table.FromTableWithMetadata(rec, l.opts.indexCols, l.tableOptions()...)
	if err != nil {
		return nil, fmt.Errorf("ingest: %q: %w", name, err)
	}

	if l.opts.logger != nil {
		l.opts.logger.Debug("table loaded",
			"name", name, "format", f.String(), "compression", comp.String(),
			"bytes", size, "rows", h.Count())
	}
	return h, nil
}

func (l *Loader) tableOptions() []table.Option {
	opts := []table.Option{table.WithAllocator(l.opts.mem)}
	if l.opts.logger != nil {
		opts = append(opts, table.WithLogger(l.opts.logger))
	}
	return append(opts, l.opts.tableOpts...)
}

// read returns the blob's bytes, charging them to the IO limiter. Mappable
// blobs are returned without a copy and are only valid until blob is closed;
// decoding copies everything it keeps into the Loader's allocator.
func (l *Loader) read(ctx context.Context, blob blobstore.Blob) ([]byte, error) {
	if _, ok := blob.(blobstore.Mappable); ok {
		if err := l.opts.rc.AcquireIO(ctx, int(blob.Size())); err != nil {
			return nil, err
		}
		return blobstore.ReadAll(ctx, blob)
	}

	r := resource.NewRateLimitedReaderAt(ctx, blobstore.ReaderAt(ctx, blob), l.opts.rc)
	buf := make([]byte, blob.Size())
	if _, err := io.ReadFull(io.NewSectionReader(r, 0, blob.Size()), buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// LoadAll loads names concurrently. On error every handle loaded so far is
// released and the first error is returned.
func (l *Loader) LoadAll(ctx context.Context, names []string, f Format) ([]*table.Handle, error) {
	out := make([]*table.Handle, len(names))

	g, gctx := errgroup.WithContext(ctx)
	if l.opts.maxWorkers > 0 {
		g.SetLimit(l.opts.maxWorkers)
	}
	for i, name := range names {
		g.Go(func() error {
			h, err := l.Load(gctx, name, f)
			if err != nil {
				return err
			}
			out[i] = h
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, h := range out {
			if h != nil {
				h.Release()
			}
		}
		return nil, err
	}
	return out, nil
}
