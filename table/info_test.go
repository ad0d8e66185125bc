package table

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/framego/testutil"
)

func TestInfo_Take(t *testing.T) {
	mem := checkedAllocator(t)
	h := newHandle(t, mem, testutil.Sequence(0, 10))
	i := info(t, newView(t, h, 2, 9))

	tests := []struct {
		name string
		rows []uint32
		want []int64
	}{
		{"empty", nil, []int64{}},
		{"single run", []uint32{1, 2, 3}, []int64{3, 4, 5}},
		{"several runs", []uint32{0, 2, 3, 6}, []int64{2, 4, 5, 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := i.Take(roaring.BitmapOf(tt.rows...))
			require.NoError(t, err)
			defer got.Release()

			assert.Equal(t, tt.want, testutil.Int64s(got.Index()))
			vals := testutil.Float64s(column(t, got, "value"))
			for k, id := range tt.want {
				assert.Equal(t, float64(id), vals[k])
			}
		})
	}

	t.Run("out of range", func(t *testing.T) {
		_, err := i.Take(roaring.BitmapOf(7))
		assert.ErrorIs(t, err, ErrInvalidRange)
	})
}

func TestInfo_Column(t *testing.T) {
	mem := checkedAllocator(t)
	h := newHandle(t, mem, testutil.Sequence(0, 3))
	i := info(t, h)

	_, err := i.Column("id")
	assert.ErrorIs(t, err, ErrUnknownColumn)
	_, err = i.Column("missing")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	name, ok := i.IndexName()
	assert.True(t, ok)
	assert.Equal(t, "id", name)

	s, e := i.Bounds()
	assert.Equal(t, int64(0), s)
	assert.Equal(t, int64(3), e)
}

func TestInfo_TakeRepairsSelection(t *testing.T) {
	mem := checkedAllocator(t)
	h := newHandle(t, mem, []int64{0, 1, 1, 2, 3})

	mask, err := Mask(h)
	require.NoError(t, err)

	i := info(t, h)
	keep := roaring.Flip(mask, 0, uint64(i.NumRows()))
	got, err := i.Take(keep)
	require.NoError(t, err)
	defer got.Release()

	assert.Equal(t, []int64{0, 1, 2, 3}, testutil.Int64s(got.Index()))
}
