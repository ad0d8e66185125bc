package framego

import (
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/framego/codec"
	"github.com/hupe1980/framego/ingest"
	"github.com/hupe1980/framego/message"
	"github.com/hupe1980/framego/resource"
	"github.com/hupe1980/framego/table"
	"github.com/hupe1980/framego/tensor"
)

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unknown column", fmt.Errorf("wrap: %w", table.ErrUnknownColumn), ErrUnknownColumn},
		{"access denied", table.ErrAccessDenied, ErrAccessDenied},
		{"released", table.ErrReleased, ErrReleased},
		{"invalid index", table.ErrInvalidIndex, ErrInvalidIndex},
		{"column type", table.ErrTypeMismatch, ErrTypeMismatch},
		{"dtype", tensor.ErrDTypeMismatch, ErrTypeMismatch},
		{"missing tensor", message.ErrMissingTensor, ErrMissingTensor},
		{"plain shape", tensor.ErrShapeMismatch, ErrShapeMismatch},
		{"plain range", table.ErrInvalidRange, ErrInvalidRange},
		{"plain window", tensor.ErrOutOfRange, ErrOutOfRange},
		{"not found", fmt.Errorf("ingest: open: %w", os.ErrNotExist), ErrNotFound},
		{"format", ingest.ErrUnknownFormat, ErrUnsupported},
		{"csv schema", ingest.ErrSchemaRequired, ErrUnsupported},
		{"compression", codec.ErrUnknownCompression, ErrUnsupported},
		{"corrupt", codec.ErrCorruptFrame, ErrCorrupt},
		{"memory limit", resource.ErrExceedsLimit, ErrMemoryLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	t.Run("passthrough", func(t *testing.T) {
		assert.Same(t, io.ErrUnexpectedEOF, translateError(io.ErrUnexpectedEOF))
	})
}

func TestTranslateError_Typed(t *testing.T) {
	t.Run("table range", func(t *testing.T) {
		cause := fmt.Errorf("view: %w", &table.RangeError{Start: 5, Stop: 2, Rows: 10})
		err := translateError(cause)

		var we *ErrWindow
		require.True(t, errors.As(err, &we))
		assert.Equal(t, ErrWindow{Kind: "table", Start: 5, Stop: 2, Size: 10, cause: cause, kind: ErrInvalidRange}, *we)
		assert.ErrorIs(t, err, ErrInvalidRange)
		assert.ErrorIs(t, err, table.ErrInvalidRange)
		assert.NotErrorIs(t, err, ErrOutOfRange)
		assert.Equal(t, "table window [5, 2) exceeds 10 rows", err.Error())
	})

	t.Run("message window", func(t *testing.T) {
		err := translateError(&message.WindowError{Kind: "message", Offset: 3, Count: 4, Size: 5})

		var we *ErrWindow
		require.True(t, errors.As(err, &we))
		assert.Equal(t, int64(7), we.Stop)
		assert.ErrorIs(t, err, ErrOutOfRange)
		assert.ErrorIs(t, err, message.ErrOutOfRange)
	})

	t.Run("tensor shape", func(t *testing.T) {
		err := translateError(&tensor.ShapeError{Name: "input", Want: []int64{4, 2}, Got: []int64{3, 2}})

		var se *ErrTensorShape
		require.True(t, errors.As(err, &se))
		assert.Equal(t, "input", se.Name)
		assert.ErrorIs(t, err, ErrShapeMismatch)
		assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
		assert.Equal(t, `tensor "input" shape mismatch: want [4 2], got [3 2]`, err.Error())

		anon := &ErrTensorShape{Want: []int64{1}, Got: []int64{2}}
		assert.Equal(t, "tensor shape mismatch: want [1], got [2]", anon.Error())
	})
}
