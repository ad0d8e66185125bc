package framego

import (
	"log/slog"

	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/memory"

	"github.com/hupe1980/framego/blobstore"
	"github.com/hupe1980/framego/codec"
	"github.com/hupe1980/framego/resource"
)

type options struct {
	mem              memory.Allocator
	resources        *resource.Config
	store            blobstore.BlobStore
	metricsCollector MetricsCollector
	logger           *Logger
	indexCols        int
	csvSchema        *arrow.Schema
	csvComma         rune
	manifestCodec    codec.Codec
	maxWorkers       int
	compression      codec.Compression
}

// Option configures a Runtime.
//
// Breaking changes are expected while framego is pre-release.
type Option func(*options)

// Local stores tables as files below dir. Loads read through read-only
// memory mappings.
func Local(dir string) Option {
	return func(o *options) {
		o.store = blobstore.NewLocalStore(dir)
	}
}

// Remote stores tables in store, e.g. an s3.Store or a minio.Store.
//
// Example:
//
//	st, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("tables/"))
//	rt, _ := framego.New(framego.Remote(st))
func Remote(store blobstore.BlobStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithAllocator sets the Arrow allocator for decoded columns, generated
// indexes and tensors. Defaults to memory.DefaultAllocator.
func WithAllocator(mem memory.Allocator) Option {
	return func(o *options) {
		if mem != nil {
			o.mem = mem
		}
	}
}

// WithResourceLimits bounds memory, concurrent loads and IO throughput.
// Every allocation the Runtime makes is accounted against the limits.
//
// Example:
//
//	rt, _ := framego.New(framego.Local("./data"), framego.WithResourceLimits(resource.Config{
//	    MemoryLimitBytes:   4 << 30,
//	    MaxConcurrentLoads: 4,
//	    IOLimitBytesPerSec: 200 << 20,
//	}))
func WithResourceLimits(cfg resource.Config) Option {
	return func(o *options) {
		o.resources = &cfg
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &framego.BasicMetricsCollector{}
//	rt, _ := framego.New(framego.WithMetricsCollector(metrics))
//	// ... use rt ...
//	stats := metrics.GetStats()
//	fmt.Printf("Views: %d, in-place writes: %d\n", stats.ViewCount, stats.InPlaceMutations)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := framego.NewJSONLogger(slog.LevelInfo)
//	rt, _ := framego.New(framego.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithIndexColumns sets how many leading columns of a loaded table form its
// row index: 0 generates a range index unless the table carries index
// metadata, 1 promotes the first column. Other values are rejected on load.
func WithIndexColumns(n int) Option {
	return func(o *options) {
		o.indexCols = n
	}
}

// WithCSVSchema sets the column types for CSV tables and the field separator.
// A zero comma keeps ','.
func WithCSVSchema(schema *arrow.Schema, comma rune) Option {
	return func(o *options) {
		o.csvSchema = schema
		if comma != 0 {
			o.csvComma = comma
		}
	}
}

// WithManifestCodec configures the codec table manifests are written with.
//
// If nil is passed, codec.Default is used.
func WithManifestCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.manifestCodec = c
	}
}

// WithCompression sets the frame compression Store wraps payloads in.
// Defaults to codec.None.
func WithCompression(c codec.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithMaxWorkers bounds the parallelism of LoadAll. 0 means one goroutine per table.
func WithMaxWorkers(n int) Option {
	return func(o *options) {
		o.maxWorkers = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		mem:              memory.DefaultAllocator,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		csvComma:         ',',
		manifestCodec:    codec.Default,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
