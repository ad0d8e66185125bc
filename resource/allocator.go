package resource

import (
	"sync/atomic"

	"github.com/apache/arrow/go/v10/arrow/memory"
)

// Allocator is a memory.Allocator that reports the bytes it holds to a
// Controller. It never fails an allocation; limits are enforced by
// reserving memory before a load starts.
type Allocator struct {
	mem  memory.Allocator
	c    *Controller
	live atomic.Int64
}

// NewAllocator wraps mem. A nil mem selects memory.DefaultAllocator.
func NewAllocator(mem memory.Allocator, c *Controller) *Allocator {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	return &Allocator{mem: mem, c: c}
}

// Allocate allocates size bytes.
func (a *Allocator) Allocate(size int) []byte {
	b := a.mem.Allocate(size)
	a.account(int64(len(b)))
	return b
}

// Reallocate resizes b to size bytes.
func (a *Allocator) Reallocate(size int, b []byte) []byte {
	old := len(b)
	nb := a.mem.Reallocate(size, b)
	a.account(int64(len(nb) - old))
	return nb
}

// Free releases b.
func (a *Allocator) Free(b []byte) {
	a.account(-int64(len(b)))
	a.mem.Free(b)
}

// Live returns the bytes currently held.
func (a *Allocator) Live() int64 { return a.live.Load() }

func (a *Allocator) account(delta int64) {
	a.live.Add(delta)
	a.c.track(delta)
}

var _ memory.Allocator = (*Allocator)(nil)
