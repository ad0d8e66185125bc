package tensor

import (
	"fmt"
	"slices"

	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/memory"
)

// Tensor is a dense row-major tensor whose first dimension is the row axis.
//
// The element data lives in a refcounted Arrow buffer. Slice shares that
// buffer; writes through one Tensor are visible through every other Tensor
// over the same rows.
type Tensor struct {
	dtype  arrow.FixedWidthDataType
	shape  []int64
	buf    *memory.Buffer
	offset int // bytes
}

// New wraps buf as a tensor of the given dtype and shape. buf is retained.
func New(buf *memory.Buffer, dt arrow.DataType, shape ...int64) (*Tensor, error) {
	dtype, err := checkShape(dt, shape)
	if err != nil {
		return nil, err
	}
	if need := byteSize(dtype, shape); int64(buf.Len()) < need {
		return nil, fmt.Errorf("%w: buffer holds %d bytes, shape %v needs %d", ErrShapeMismatch, buf.Len(), shape, need)
	}
	buf.Retain()
	return &Tensor{dtype: dtype, shape: slices.Clone(shape), buf: buf}, nil
}

// Zeros allocates a zero-filled tensor from mem.
func Zeros(mem memory.Allocator, dt arrow.DataType, shape ...int64) (*Tensor, error) {
	dtype, err := checkShape(dt, shape)
	if err != nil {
		return nil, err
	}
	buf := memory.NewResizableBuffer(mem)
	buf.Resize(int(byteSize(dtype, shape)))
	memory.Set(buf.Bytes(), 0)

	return &Tensor{dtype: dtype, shape: slices.Clone(shape), buf: buf}, nil
}

// FromFloat32s wraps data without copying.
func FromFloat32s(data []float32, shape ...int64) (*Tensor, error) {
	return fromBytes(arrow.Float32Traits.CastToBytes(data), len(data), arrow.PrimitiveTypes.Float32, shape)
}

// FromFloat64s wraps data without copying.
func FromFloat64s(data []float64, shape ...int64) (*Tensor, error) {
	return fromBytes(arrow.Float64Traits.CastToBytes(data), len(data), arrow.PrimitiveTypes.Float64, shape)
}

// FromInt32s wraps data without copying.
func FromInt32s(data []int32, shape ...int64) (*Tensor, error) {
	return fromBytes(arrow.Int32Traits.CastToBytes(data), len(data), arrow.PrimitiveTypes.Int32, shape)
}

// FromInt64s wraps data without copying.
func FromInt64s(data []int64, shape ...int64) (*Tensor, error) {
	return fromBytes(arrow.Int64Traits.CastToBytes(data), len(data), arrow.PrimitiveTypes.Int64, shape)
}

func fromBytes(b []byte, n int, dt arrow.DataType, shape []int64) (*Tensor, error) {
	if len(shape) == 0 {
		shape = []int64{int64(n)}
	}
	dtype, err := checkShape(dt, shape)
	if err != nil {
		return nil, err
	}
	if numElements(shape) != int64(n) {
		return nil, &ShapeError{Want: shape, Got: []int64{int64(n)}}
	}
	return &Tensor{dtype: dtype, shape: slices.Clone(shape), buf: memory.NewBufferBytes(b)}, nil
}

// DType returns the element type.
func (t *Tensor) DType() arrow.DataType { return t.dtype }

// Shape returns a copy of the shape.
func (t *Tensor) Shape() []int64 { return slices.Clone(t.shape) }

// Rows returns the size of the first dimension.
func (t *Tensor) Rows() int64 { return t.shape[0] }

// RowWidth returns the number of elements per row.
func (t *Tensor) RowWidth() int64 { return numElements(t.shape[1:]) }

// Slice returns rows [start, stop) sharing this tensor's buffer.
// The result must be released separately.
func (t *Tensor) Slice(start, stop int64) (*Tensor, error) {
	if start < 0 || start > stop || stop > t.Rows() {
		return nil, fmt.Errorf("%w: rows [%d, %d) of %d", ErrOutOfRange, start, stop, t.Rows())
	}
	shape := slices.Clone(t.shape)
	shape[0] = stop - start

	t.buf.Retain()
	return &Tensor{
		dtype:  t.dtype,
		shape:  shape,
		buf:    t.buf,
		offset: t.offset + int(start*t.rowBytes()),
	}, nil
}

// Bytes returns the raw element bytes of this tensor's rows.
func (t *Tensor) Bytes() []byte {
	n := int(t.Rows() * t.rowBytes())
	return t.buf.Bytes()[t.offset : t.offset+n]
}

// Float32s returns the elements as a float32 slice aliasing the buffer.
func (t *Tensor) Float32s() ([]float32, error) {
	if err := t.expect(arrow.FLOAT32); err != nil {
		return nil, err
	}
	return arrow.Float32Traits.CastFromBytes(t.Bytes()), nil
}

// Float64s returns the elements as a float64 slice aliasing the buffer.
func (t *Tensor) Float64s() ([]float64, error) {
	if err := t.expect(arrow.FLOAT64); err != nil {
		return nil, err
	}
	return arrow.Float64Traits.CastFromBytes(t.Bytes()), nil
}

// Int32s returns the elements as an int32 slice aliasing the buffer.
func (t *Tensor) Int32s() ([]int32, error) {
	if err := t.expect(arrow.INT32); err != nil {
		return nil, err
	}
	return arrow.Int32Traits.CastFromBytes(t.Bytes()), nil
}

// Int64s returns the elements as an int64 slice aliasing the buffer.
func (t *Tensor) Int64s() ([]int64, error) {
	if err := t.expect(arrow.INT64); err != nil {
		return nil, err
	}
	return arrow.Int64Traits.CastFromBytes(t.Bytes()), nil
}

// Int64At reads element col of row as int64. Integer dtypes only.
func (t *Tensor) Int64At(row, col int64) (int64, error) {
	w := t.RowWidth()
	if row < 0 || row >= t.Rows() || col < 0 || col >= w {
		return 0, fmt.Errorf("%w: element (%d, %d) of %v", ErrOutOfRange, row, col, t.shape)
	}
	i := row*w + col
	b := t.Bytes()
	switch t.dtype.ID() {
	case arrow.INT32:
		return int64(arrow.Int32Traits.CastFromBytes(b)[i]), nil
	case arrow.INT64:
		return arrow.Int64Traits.CastFromBytes(b)[i], nil
	case arrow.UINT32:
		return int64(arrow.Uint32Traits.CastFromBytes(b)[i]), nil
	case arrow.UINT64:
		return int64(arrow.Uint64Traits.CastFromBytes(b)[i]), nil
	default:
		return 0, fmt.Errorf("%w: %s is not an integer type", ErrDTypeMismatch, t.dtype)
	}
}

// CopyFrom overwrites this tensor's rows with src. Shape and dtype must match.
func (t *Tensor) CopyFrom(src *Tensor) error {
	if !arrow.TypeEqual(t.dtype, src.dtype) {
		return fmt.Errorf("%w: want %s, got %s", ErrDTypeMismatch, t.dtype, src.dtype)
	}
	if !slices.Equal(t.shape, src.shape) {
		return &ShapeError{Want: t.Shape(), Got: src.Shape()}
	}
	copy(t.Bytes(), src.Bytes())
	return nil
}

// Clone returns a copy of this tensor's rows in a new buffer from mem.
func (t *Tensor) Clone(mem memory.Allocator) *Tensor {
	buf := memory.NewResizableBuffer(mem)
	buf.Resize(len(t.Bytes()))
	copy(buf.Bytes(), t.Bytes())
	return &Tensor{dtype: t.dtype, shape: t.Shape(), buf: buf}
}

// Retain increases the reference count of the underlying buffer.
func (t *Tensor) Retain() { t.buf.Retain() }

// Release decreases the reference count of the underlying buffer.
func (t *Tensor) Release() { t.buf.Release() }

func (t *Tensor) rowBytes() int64 {
	return t.RowWidth() * int64(t.dtype.BitWidth()/8)
}

func (t *Tensor) expect(id arrow.Type) error {
	if t.dtype.ID() != id {
		return fmt.Errorf("%w: tensor is %s, want %s", ErrDTypeMismatch, t.dtype, id)
	}
	return nil
}

func checkShape(dt arrow.DataType, shape []int64) (arrow.FixedWidthDataType, error) {
	if len(shape) == 0 {
		return nil, fmt.Errorf("%w: empty shape", ErrShapeMismatch)
	}
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("%w: negative dimension in %v", ErrShapeMismatch, shape)
		}
	}
	dtype, ok := dt.(arrow.FixedWidthDataType)
	if !ok || dtype.BitWidth() <= 0 || dtype.BitWidth()%8 != 0 {
		return nil, fmt.Errorf("%w: %s is not a byte-aligned fixed-width type", ErrDTypeMismatch, dt)
	}
	return dtype, nil
}

func numElements(shape []int64) int64 {
	n := int64(1)
	for _, d := range shape {
		n *= d
	}
	return n
}

func byteSize(dtype arrow.FixedWidthDataType, shape []int64) int64 {
	return numElements(shape) * int64(dtype.BitWidth()/8)
}
