package testutil

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/array"
	"github.com/apache/arrow/go/v10/arrow/memory"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float32 in a loop).
func (r *RNG) FillUniform(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float32()
	}
}

// UniformRows generates num rows of width values in range [0, 1),
// flattened row-major into a single slice.
func (r *RNG) UniformRows(num, width int) []float32 {
	data := make([]float32, num*width)
	r.FillUniform(data)
	return data
}

// DuplicateIndex generates n index values that are non-decreasing but repeat
// the previous value with probability dupRate. At least one duplicate is
// always present when n > 1.
func (r *RNG) DuplicateIndex(n int, dupRate float64) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int64, n)
	for i := 1; i < n; i++ {
		if r.rand.Float64() < dupRate {
			out[i] = out[i-1]
			continue
		}
		out[i] = out[i-1] + 1
	}
	if n > 1 {
		out[n-1] = out[n-2]
	}
	return out
}

// Sequence returns [start, start+n).
func Sequence(start int64, n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = start + int64(i)
	}
	return out
}

// Column describes one record column. Values must be one of []int64,
// []int32, []float64, []float32 or []string.
type Column struct {
	Name  string
	Values any
}

// Record builds a record from cols. It panics on unsupported value types or
// mismatched lengths.
func Record(mem memory.Allocator, cols ...Column) arrow.Record {
	fields := make([]arrow.Field, 0, len(cols))
	arrs := make([]arrow.Array, 0, len(cols))
	defer func() {
		for _, a := range arrs {
			a.Release()
		}
	}()

	rows := -1
	for _, c := range cols {
		arr := Array(mem, c.Values)
		if rows >= 0 && arr.Len() != rows {
			arr.Release()
			panic(fmt.Sprintf("testutil: column %q has %d rows, want %d", c.Name, arr.Len(), rows))
		}
		rows = arr.Len()
		fields = append(fields, arrow.Field{Name: c.Name, Type: arr.DataType(), Nullable: true})
		arrs = append(arrs, arr)
	}
	if rows < 0 {
		rows = 0
	}
	return array.NewRecord(arrow.NewSchema(fields, nil), arrs, int64(rows))
}

// Array builds an Arrow array from a Go slice.
func Array(mem memory.Allocator, values any) arrow.Array {
	switch v := values.(type) {
	case []int64:
		b := array.NewInt64Builder(mem)
		defer b.Release()
		b.AppendValues(v, nil)
		return b.NewArray()
	case []int32:
		b := array.NewInt32Builder(mem)
		defer b.Release()
		b.AppendValues(v, nil)
		return b.NewArray()
	case []float64:
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		b.AppendValues(v, nil)
		return b.NewArray()
	case []float32:
		b := array.NewFloat32Builder(mem)
		defer b.Release()
		b.AppendValues(v, nil)
		return b.NewArray()
	case []string:
		b := array.NewStringBuilder(mem)
		defer b.Release()
		b.AppendValues(v, nil)
		return b.NewArray()
	default:
		panic(fmt.Sprintf("testutil: unsupported column type %T", values))
	}
}

// Int64s copies the values of an int64 array. Nulls read as zero.
func Int64s(arr arrow.Array) []int64 {
	a := arr.(*array.Int64)
	out := make([]int64, a.Len())
	for i := range out {
		if a.IsValid(i) {
			out[i] = a.Value(i)
		}
	}
	return out
}

// Float64s copies the values of a float64 array. Nulls read as zero.
func Float64s(arr arrow.Array) []float64 {
	a := arr.(*array.Float64)
	out := make([]float64, a.Len())
	for i := range out {
		if a.IsValid(i) {
			out[i] = a.Value(i)
		}
	}
	return out
}

// Strings copies the values of a string array. Nulls read as "".
func Strings(arr arrow.Array) []string {
	a := arr.(*array.String)
	out := make([]string, a.Len())
	for i := range out {
		if a.IsValid(i) {
			out[i] = a.Value(i)
		}
	}
	return out
}
