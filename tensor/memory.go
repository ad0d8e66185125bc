package tensor

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
)

// Memory holds named tensors that all have the same number of rows.
//
// Memory is safe for concurrent use. The tensors it returns alias its
// buffers; callers writing into them must coordinate externally.
type Memory struct {
	refs atomic.Int64

	mu      sync.RWMutex
	count   int64
	tensors map[string]*Tensor
}

// NewMemory creates a Memory with count rows and takes ownership of tensors.
// On error the tensors are left untouched.
func NewMemory(count int64, tensors map[string]*Tensor) (*Memory, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative row count %d", ErrOutOfRange, count)
	}
	for name, t := range tensors {
		if t.Rows() != count {
			return nil, &ShapeError{Name: name, Want: []int64{count}, Got: t.Shape()}
		}
	}

	m := &Memory{count: count, tensors: make(map[string]*Tensor, len(tensors))}
	maps.Copy(m.tensors, tensors)
	m.refs.Store(1)
	return m, nil
}

// Count returns the number of rows every tensor has.
func (m *Memory) Count() int64 { return m.count }

// Has reports whether a tensor is registered under name.
func (m *Memory) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.tensors[name]
	return ok
}

// Get returns the tensor registered under name. The tensor is owned by m;
// Retain it to keep it past m's release.
func (m *Memory) Get(name string) (*Tensor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tensors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingTensor, name)
	}
	return t, nil
}

// Set registers t under name, taking ownership and releasing any tensor it
// replaces. t must have Count rows.
func (m *Memory) Set(name string, t *Tensor) error {
	if t.Rows() != m.count {
		return &ShapeError{Name: name, Want: []int64{m.count}, Got: t.Shape()}
	}

	m.mu.Lock()
	old := m.tensors[name]
	m.tensors[name] = t
	m.mu.Unlock()

	if old != nil && old != t {
		old.Release()
	}
	return nil
}

// Names returns the registered tensor names in sorted order.
func (m *Memory) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.tensors))
}

// Retain increases the reference count.
func (m *Memory) Retain() { m.refs.Add(1) }

// Release decreases the reference count and releases every tensor when it
// reaches zero.
func (m *Memory) Release() {
	if m.refs.Add(-1) != 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for name, t := range m.tensors {
		t.Release()
		delete(m.tensors, name)
	}
}
