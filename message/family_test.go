package message

import (
	"testing"

	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/framego/tensor"
)

func TestFamilies(t *testing.T) {
	assert.Equal(t, []string{"input__0", "seq_ids"}, FIL.Accessors())
	assert.Equal(t, []string{"input_ids", "input_mask", "seq_ids"}, NLP.Accessors())
	assert.Equal(t, []string{"input", "seq_ids"}, AE.Accessors())
}

func TestInference_FIL(t *testing.T) {
	h, m := fixture(t, 50, 50)

	msg, err := NewInference(FIL, h, 10, 20, m, 10, 20)
	require.NoError(t, err)
	defer msg.Release()

	assert.Equal(t, "fil", msg.Family().Name)

	seq, err := msg.SeqIDs()
	require.NoError(t, err)
	defer seq.Release()
	assert.Equal(t, int64(20), seq.Rows())

	in, err := msg.Primary()
	require.NoError(t, err)
	defer in.Release()
	assert.Equal(t, []int64{20, 4}, in.Shape())

	data := make([]float32, 20*4)
	for i := range data {
		data[i] = float32(i)
	}
	src, err := tensor.FromFloat32s(data, 20, 4)
	require.NoError(t, err)
	require.NoError(t, msg.SetPrimary(src))

	got, err := in.Float32s()
	require.NoError(t, err)
	assert.Equal(t, data, got)

	short, err := tensor.FromInt32s(make([]int32, 15*3), 15, 3)
	require.NoError(t, err)
	assert.ErrorIs(t, msg.SetSeqIDs(short), ErrShapeMismatch)

	_, err = msg.Input("input_mask")
	assert.ErrorIs(t, err, ErrMissingTensor)

	sub, err := msg.Slice(0, 5)
	require.NoError(t, err)
	defer sub.Release()
	assert.Equal(t, FIL.Name, sub.Family().Name)
	assert.Equal(t, int64(10), sub.MessOffset())
	assert.Equal(t, int64(5), sub.MessCount())
}

func TestNewInference_MissingFamilyTensor(t *testing.T) {
	h, m := fixture(t, 10, 10)

	_, err := NewInference(NLP, h, 0, Rest, m, 0, Rest)
	assert.ErrorIs(t, err, ErrMissingTensor)
}

func TestInference_NLP(t *testing.T) {
	h, _ := fixture(t, 4, 4)
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	tensors := map[string]*tensor.Tensor{}
	for _, name := range []string{"input_ids", "input_mask"} {
		tn, err := tensor.Zeros(mem, arrow.PrimitiveTypes.Int32, 4, 8)
		require.NoError(t, err)
		tensors[name] = tn
	}
	seq, err := tensor.FromInt32s([]int32{0, 0, 8, 1, 0, 8, 2, 0, 8, 3, 0, 8}, 4, 3)
	require.NoError(t, err)
	tensors["seq_ids"] = seq

	m, err := tensor.NewMemory(4, tensors)
	require.NoError(t, err)
	defer m.Release()

	msg, err := NewInference(NLP, h, 0, Rest, m, 0, Rest)
	require.NoError(t, err)
	defer msg.Release()

	mask, err := msg.Input("input_mask")
	require.NoError(t, err)
	defer mask.Release()
	assert.Equal(t, []int64{4, 8}, mask.Shape())

	primary, err := msg.Primary()
	require.NoError(t, err)
	defer primary.Release()
	assert.Equal(t, []int64{4, 8}, primary.Shape())
}
