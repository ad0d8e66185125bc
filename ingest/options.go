package ingest

import (
	"log/slog"

	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/memory"

	"github.com/hupe1980/framego/codec"
	"github.com/hupe1980/framego/resource"
	"github.com/hupe1980/framego/table"
)

type options struct {
	mem        memory.Allocator
	rc         *resource.Controller
	logger     *slog.Logger
	indexCols  int
	csvSchema  *arrow.Schema
	csvComma   rune
	manifest   codec.Codec
	tableOpts  []table.Option
	maxWorkers int
}

// Option configures a Loader.
type Option func(*options)

// WithAllocator sets the allocator decoded columns are placed in.
func WithAllocator(mem memory.Allocator) Option {
	return func(o *options) {
		if mem != nil {
			o.mem = mem
		}
	}
}

// WithController bounds loads by rc: concurrent loads, the memory reserved
// for raw payloads and the IO rate. Decoded buffers are accounted on rc too.
func WithController(rc *resource.Controller) Option {
	return func(o *options) { o.rc = rc }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithIndexColumns sets how many leading columns form the row index; see
// table.FromTableWithMetadata.
func WithIndexColumns(n int) Option {
	return func(o *options) { o.indexCols = n }
}

// WithCSVSchema sets the column types for CSV payloads. The first line is
// treated as a header.
func WithCSVSchema(schema *arrow.Schema) Option {
	return func(o *options) { o.csvSchema = schema }
}

func WithCSVComma(r rune) Option {
	return func(o *options) { o.csvComma = r }
}

// WithManifestCodec sets the codec manifests are written with.
// Defaults to codec.Default.
func WithManifestCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.manifest = c
		}
	}
}

// WithTableOptions are passed to every handle the Loader creates.
func WithTableOptions(opts ...table.Option) Option {
	return func(o *options) { o.tableOpts = append(o.tableOpts, opts...) }
}

// WithMaxWorkers bounds LoadAll's parallelism. 0 means one goroutine per name.
func WithMaxWorkers(n int) Option {
	return func(o *options) { o.maxWorkers = n }
}

func applyOptions(opts []Option) options {
	o := options{
		mem:      memory.DefaultAllocator,
		csvComma: ',',
		manifest: codec.Default,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rc != nil {
		o.mem = resource.NewAllocator(o.mem, o.rc)
	}
	return o
}
