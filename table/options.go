package table

import (
	"log/slog"

	"github.com/apache/arrow/go/v10/arrow/memory"
)

// Observer receives table lifecycle events. Implementations must be safe for concurrent use.
type Observer interface {
	// OnView is called after a View is constructed.
	OnView(rows int64)

	// OnMutation is called after a column write. inPlace reports whether the
	// write went straight into the shared buffers.
	OnMutation(column string, rows int64, inPlace bool)

	// OnIndexRepair is called after a non-sliceable index was replaced.
	OnIndexRepair(derived string, rows int64, partial bool)
}

// NoopObserver discards all events.
type NoopObserver struct{}

func (NoopObserver) OnView(int64)                      {}
func (NoopObserver) OnMutation(string, int64, bool)    {}
func (NoopObserver) OnIndexRepair(string, int64, bool) {}

type options struct {
	mem      memory.Allocator
	logger   *slog.Logger
	observer Observer
	readOnly bool
}

// Option configures a Handle.
type Option func(*options)

// WithAllocator sets the allocator used for generated index and rebuilt columns.
// Defaults to memory.DefaultAllocator.
func WithAllocator(mem memory.Allocator) Option {
	return func(o *options) {
		if mem != nil {
			o.mem = mem
		}
	}
}

// WithLogger sets the logger for the table.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithObserver sets the observer for the table.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithReadOnlyBuffers marks the record's buffers as not writable, e.g. when
// they point into a read-only file mapping. Column writes then always rebuild.
func WithReadOnlyBuffers() Option {
	return func(o *options) {
		o.readOnly = true
	}
}

func applyOptions(opts []Option) options {
	o := options{
		mem:      memory.DefaultAllocator,
		observer: NoopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
