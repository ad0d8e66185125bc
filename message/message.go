package message

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/apache/arrow/go/v10/arrow"

	"github.com/hupe1980/framego/table"
	"github.com/hupe1980/framego/tensor"
)

// DefaultIDTensor is the id tensor name used when none is given.
const DefaultIDTensor = "seq_ids"

// Rest as a count selects every row from the offset to the end.
const Rest int64 = -1

// TensorMessage is a message-row window over a table.Meta paired with a
// tensor-row window over a tensor.Memory.
//
// A TensorMessage holds a reference to both; Release drops them.
type TensorMessage struct {
	meta       table.Meta
	messOffset int64
	messCount  int64

	memory *tensor.Memory
	offset int64
	count  int64

	idTensor string

	released atomic.Bool
}

// New validates both windows and returns a message over them. A count of
// Rest extends the window to the end of its backing store. The id tensor
// must be registered in mem.
func New(meta table.Meta, messOffset, messCount int64, mem *tensor.Memory, offset, count int64, idTensorName string) (*TensorMessage, error) {
	if meta == nil || mem == nil {
		return nil, errors.New("message: meta and memory are required")
	}
	if idTensorName == "" {
		idTensorName = DefaultIDTensor
	}

	messCount, err := resolve("message", messOffset, messCount, meta.Count())
	if err != nil {
		return nil, err
	}
	count, err = resolve("tensor", offset, count, mem.Count())
	if err != nil {
		return nil, err
	}
	if !mem.Has(idTensorName) {
		return nil, fmt.Errorf("%w: id tensor %q", ErrMissingTensor, idTensorName)
	}

	meta.Retain()
	mem.Retain()
	return &TensorMessage{
		meta:       meta,
		messOffset: messOffset,
		messCount:  messCount,
		memory:     mem,
		offset:     offset,
		count:      count,
		idTensor:   idTensorName,
	}, nil
}

func resolve(kind string, offset, count, size int64) (int64, error) {
	if count == Rest && offset >= 0 && offset <= size {
		count = size - offset
	}
	if offset < 0 || count < 0 || offset+count > size {
		return 0, &WindowError{Kind: kind, Offset: offset, Count: count, Size: size}
	}
	return count, nil
}

// Meta returns the table the message rows refer to.
func (m *TensorMessage) Meta() table.Meta { return m.meta }

// MessOffset returns the first message row.
func (m *TensorMessage) MessOffset() int64 { return m.messOffset }

// MessCount returns the number of message rows.
func (m *TensorMessage) MessCount() int64 { return m.messCount }

// Memory returns the tensor buffer.
func (m *TensorMessage) Memory() *tensor.Memory { return m.memory }

// Offset returns the first tensor row.
func (m *TensorMessage) Offset() int64 { return m.offset }

// Count returns the number of tensor rows.
func (m *TensorMessage) Count() int64 { return m.count }

// IDTensorName returns the name of the id tensor.
func (m *TensorMessage) IDTensorName() string { return m.idTensor }

// Tensor returns the windowed rows of the named tensor without copying.
// The caller must release the result.
func (m *TensorMessage) Tensor(name string) (*tensor.Tensor, error) {
	t, err := m.memory.Get(name)
	if err != nil {
		return nil, err
	}
	return t.Slice(m.offset, m.offset+m.count)
}

// SetTensor copies src into the window of the named tensor. src must have
// Count rows and the same trailing dimensions and dtype as the existing
// tensor.
func (m *TensorMessage) SetTensor(name string, src *tensor.Tensor) error {
	t, err := m.memory.Get(name)
	if err != nil {
		return err
	}

	want := t.Shape()
	want[0] = m.count
	if !slices.Equal(want, src.Shape()) {
		return &tensor.ShapeError{Name: name, Want: want, Got: src.Shape()}
	}

	w, err := t.Slice(m.offset, m.offset+m.count)
	if err != nil {
		return err
	}
	defer w.Release()

	return w.CopyFrom(src)
}

// View returns a table view over the message rows. The caller must release it.
func (m *TensorMessage) View(columns ...string) (*table.View, error) {
	return table.NewView(m.meta, m.messOffset, m.messOffset+m.messCount, columns...)
}

// Info returns a read-only projection of the message rows.
func (m *TensorMessage) Info(columns ...string) (*table.Info, error) {
	v, err := m.View(columns...)
	if err != nil {
		return nil, err
	}
	defer v.Release()
	return v.Info()
}

// SetMeta writes arr into column of the message rows while holding the
// table's Guard.
func (m *TensorMessage) SetMeta(ctx context.Context, column string, arr arrow.Array) error {
	v, err := m.View()
	if err != nil {
		return err
	}
	defer v.Release()

	return table.Mutate(ctx, v, func(mi *table.MutableInfo) error {
		return mi.SetColumn(column, arr)
	})
}

// Slice returns the message over tensor rows [start, stop) of this window.
// The message rows are taken from column 0 of the id tensor: from the value
// at start through the value at stop-1.
func (m *TensorMessage) Slice(start, stop int64) (*TensorMessage, error) {
	if start < 0 || start > stop || stop > m.count {
		return nil, &WindowError{Kind: "tensor", Offset: start, Count: stop - start, Size: m.count}
	}

	messStart, messStop := m.messOffset, m.messOffset
	if start < stop {
		ids, err := m.Tensor(m.idTensor)
		if err != nil {
			return nil, err
		}
		defer ids.Release()

		if messStart, err = ids.Int64At(start, 0); err != nil {
			return nil, err
		}
		last, err := ids.Int64At(stop-1, 0)
		if err != nil {
			return nil, err
		}
		messStop = last + 1
	}

	return New(m.meta, messStart, messStop-messStart, m.memory, m.offset+start, stop-start, m.idTensor)
}

// Release drops the references to the table and the tensor buffer. Only
// the first call has an effect.
func (m *TensorMessage) Release() {
	if !m.released.CompareAndSwap(false, true) {
		return
	}
	m.meta.Release()
	m.memory.Release()
}
