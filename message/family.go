package message

import (
	"fmt"
	"maps"
	"slices"

	"github.com/hupe1980/framego/table"
	"github.com/hupe1980/framego/tensor"
)

// Family describes the tensors one model family exchanges.
type Family struct {
	Name string

	// Primary is the accessor of the main model input.
	Primary string

	// Keys maps accessor names to tensor names in the Memory.
	Keys map[string]string
}

// Accessors returns the accessor names in sorted order.
func (f Family) Accessors() []string {
	return slices.Sorted(maps.Keys(f.Keys))
}

var (
	// FIL is the forest inference family: one feature matrix per row.
	FIL = Family{
		Name:    "fil",
		Primary: "input__0",
		Keys:    map[string]string{"input__0": "input__0", "seq_ids": "seq_ids"},
	}

	// NLP is the tokenized text family.
	NLP = Family{
		Name:    "nlp",
		Primary: "input_ids",
		Keys:    map[string]string{"input_ids": "input_ids", "input_mask": "input_mask", "seq_ids": "seq_ids"},
	}

	// AE is the autoencoder family.
	AE = Family{
		Name:    "ae",
		Primary: "input",
		Keys:    map[string]string{"input": "input", "seq_ids": "seq_ids"},
	}
)

// Inference is a TensorMessage whose tensors are addressed through a Family.
type Inference struct {
	*TensorMessage
	family Family
}

// NewInference creates an Inference message. Every tensor the family names
// must exist in mem; the family's "seq_ids" tensor is the id tensor.
func NewInference(f Family, meta table.Meta, messOffset, messCount int64, mem *tensor.Memory, offset, count int64) (*Inference, error) {
	if mem != nil {
		for _, a := range f.Accessors() {
			if key := f.Keys[a]; !mem.Has(key) {
				return nil, fmt.Errorf("%w: %s tensor %q", ErrMissingTensor, f.Name, key)
			}
		}
	}

	id := f.Keys["seq_ids"]
	tm, err := New(meta, messOffset, messCount, mem, offset, count, id)
	if err != nil {
		return nil, err
	}
	return &Inference{TensorMessage: tm, family: f}, nil
}

// Family returns the model family.
func (m *Inference) Family() Family { return m.family }

func (m *Inference) key(accessor string) (string, error) {
	key, ok := m.family.Keys[accessor]
	if !ok {
		return "", fmt.Errorf("%w: %s has no accessor %q", ErrMissingTensor, m.family.Name, accessor)
	}
	return key, nil
}

// Input returns the windowed tensor behind accessor. The caller must release it.
func (m *Inference) Input(accessor string) (*tensor.Tensor, error) {
	key, err := m.key(accessor)
	if err != nil {
		return nil, err
	}
	return m.Tensor(key)
}

// SetInput writes t into the window of the tensor behind accessor.
func (m *Inference) SetInput(accessor string, t *tensor.Tensor) error {
	key, err := m.key(accessor)
	if err != nil {
		return err
	}
	return m.SetTensor(key, t)
}

// Primary returns the family's primary input.
func (m *Inference) Primary() (*tensor.Tensor, error) { return m.Input(m.family.Primary) }

// SetPrimary writes the family's primary input.
func (m *Inference) SetPrimary(t *tensor.Tensor) error { return m.SetInput(m.family.Primary, t) }

// SeqIDs returns the sequence-id tensor.
func (m *Inference) SeqIDs() (*tensor.Tensor, error) { return m.Input("seq_ids") }

// SetSeqIDs writes the sequence-id tensor.
func (m *Inference) SetSeqIDs(t *tensor.Tensor) error { return m.SetInput("seq_ids", t) }

// Slice returns the message over tensor rows [start, stop) of this window.
func (m *Inference) Slice(start, stop int64) (*Inference, error) {
	tm, err := m.TensorMessage.Slice(start, stop)
	if err != nil {
		return nil, err
	}
	return &Inference{TensorMessage: tm, family: m.family}, nil
}
