package table

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/memory"
	"golang.org/x/sync/semaphore"
)

// table is the shared state behind a Handle and every View built over it.
type table struct {
	refs atomic.Int64

	mu         sync.RWMutex // guards rec and the index description
	rec        arrow.Record
	indexField string
	indexName  string

	token  *semaphore.Weighted // single-writer token
	active atomic.Pointer[Guard]

	mem      memory.Allocator
	logger   *slog.Logger
	observer Observer
	readOnly bool
}

// newTable takes ownership of rec.
func newTable(rec arrow.Record, indexField, indexName string, o options) *table {
	t := &table{
		rec:        rec,
		indexField: indexField,
		indexName:  indexName,
		token:      semaphore.NewWeighted(1),
		mem:        o.mem,
		logger:     o.logger,
		observer:   o.observer,
		readOnly:   o.readOnly,
	}
	t.refs.Store(1)
	return t
}

func (t *table) retain() {
	t.refs.Add(1)
}

func (t *table) release() {
	if t.refs.Add(-1) != 0 {
		return
	}

	t.mu.Lock()
	rows := int64(0)
	if t.rec != nil {
		rows = t.rec.NumRows()
		t.rec.Release()
		t.rec = nil
	}
	t.mu.Unlock()

	if t.logger != nil {
		t.logger.Debug("table released", "rows", rows)
	}
}

func (t *table) released() bool {
	return t.refs.Load() <= 0
}

func (t *table) numRows() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.rec == nil {
		return 0
	}
	return t.rec.NumRows()
}

func (t *table) columns() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.rec == nil {
		return nil
	}
	return visibleNames(t.rec.Schema(), t.indexField)
}

func (t *table) index() (field, name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.indexField, t.indexName
}

// swapLocked installs rec, taking ownership, and releases the previous record.
// Callers must hold t.mu for writing.
func (t *table) swapLocked(rec arrow.Record, indexField, indexName string) {
	old := t.rec
	t.rec = rec
	t.indexField = indexField
	t.indexName = indexName
	if old != nil {
		old.Release()
	}
}

func (t *table) acquire(ctx context.Context) (*Guard, error) {
	if err := t.token.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return t.installGuard(), nil
}

func (t *table) tryAcquire() (*Guard, bool) {
	if !t.token.TryAcquire(1) {
		return nil, false
	}
	return t.installGuard(), true
}

func (t *table) installGuard() *Guard {
	g := &Guard{t: t}
	t.active.Store(g)
	return g
}
