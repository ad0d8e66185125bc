package framego_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/apache/arrow/go/v10/arrow/memory"

	"github.com/hupe1980/framego"
	"github.com/hupe1980/framego/codec"
	"github.com/hupe1980/framego/ingest"
	"github.com/hupe1980/framego/message"
	"github.com/hupe1980/framego/table"
	"github.com/hupe1980/framego/tensor"
	"github.com/hupe1980/framego/testutil"
)

// Example_view demonstrates windowing a table without copying it.
func Example_view() {
	rt, err := framego.New()
	if err != nil {
		log.Fatal(err)
	}
	defer rt.Close()

	rec := testutil.Record(memory.DefaultAllocator,
		testutil.Column{Name: "id", Values: []int64{10, 20, 30, 40}},
		testutil.Column{Name: "score", Values: []float64{0.1, 0.2, 0.3, 0.4}},
	)
	defer rec.Release()

	h, err := rt.FromRecord(rec, 1) // "id" becomes the index
	if err != nil {
		log.Fatal(err)
	}
	defer h.Release()

	v, err := rt.NewView(h, 1, 3)
	if err != nil {
		log.Fatal(err)
	}
	defer v.Release()

	info, err := v.Info()
	if err != nil {
		log.Fatal(err)
	}
	defer info.Release()

	fmt.Println(v.Count(), testutil.Int64s(info.Index()))
	// Output: 2 [20 30]
}

// Example_ensureSliceableIndex demonstrates repairing a duplicated index.
func Example_ensureSliceableIndex() {
	rt, _ := framego.New()

	rec := testutil.Record(memory.DefaultAllocator,
		testutil.Column{Name: "id", Values: []int64{7, 7, 3}},
		testutil.Column{Name: "score", Values: []float64{1, 2, 3}},
	)
	defer rec.Release()

	h, _ := rt.FromRecord(rec, 1)
	defer h.Release()

	derived, replaced, err := rt.EnsureSliceableIndex(context.Background(), h)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(derived, replaced, h.Columns())
	// Output: _index_id true [_index_id score]
}

// Example_mutate demonstrates a guarded in-place write through a view.
func Example_mutate() {
	rt, _ := framego.New()

	rec := testutil.Record(memory.DefaultAllocator,
		testutil.Column{Name: "score", Values: []float64{0, 0, 0}},
	)
	defer rec.Release()

	h, _ := rt.FromRecord(rec, 0)
	defer h.Release()

	v, _ := rt.NewView(h, 2, table.ToEnd)
	defer v.Release()

	scores := testutil.Array(memory.DefaultAllocator, []float64{9})
	defer scores.Release()

	err := rt.Mutate(context.Background(), v, func(mi *table.MutableInfo) error {
		return mi.SetColumn("score", scores)
	})
	if err != nil {
		log.Fatal(err)
	}

	info, _ := h.Info()
	defer info.Release()
	col, _ := info.Column("score")
	fmt.Println(testutil.Float64s(col))
	// Output: [0 0 9]
}

// Example_inference demonstrates named tensor access for a model family.
func Example_inference() {
	rt, _ := framego.New()

	rec := testutil.Record(memory.DefaultAllocator,
		testutil.Column{Name: "feature", Values: []float32{1, 2}},
	)
	defer rec.Release()

	h, _ := rt.FromRecord(rec, 0)
	defer h.Release()

	input, _ := tensor.FromFloat32s([]float32{1, 2, 3, 4}, 2, 2)
	ids, _ := tensor.FromInt64s([]int64{0, 0, 1, 1, 0, 1}, 2, 3)
	mem, err := tensor.NewMemory(2, map[string]*tensor.Tensor{"input__0": input, "seq_ids": ids})
	if err != nil {
		log.Fatal(err)
	}
	defer mem.Release()

	msg, err := rt.NewInference(message.FIL, h, 0, message.Rest, mem, 1, message.Rest)
	if err != nil {
		log.Fatal(err)
	}
	defer msg.Release()

	x, _ := msg.Primary()
	defer x.Release()
	values, _ := x.Float32s()

	fmt.Println(x.Shape(), values)
	// Output: [1 2] [3 4]
}

// Example_store demonstrates writing a table to a local directory and
// loading it back.
func Example_store() {
	dir, err := os.MkdirTemp("", "framego-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	rt, err := framego.New(framego.Local(dir), framego.WithCompression(codec.LZ4))
	if err != nil {
		log.Fatal(err)
	}
	defer rt.Close()

	rec := testutil.Record(memory.DefaultAllocator,
		testutil.Column{Name: "id", Values: []int64{1, 2, 3}},
		testutil.Column{Name: "label", Values: []string{"a", "b", "c"}},
	)
	defer rec.Release()

	h, _ := rt.FromRecord(rec, 1)
	defer h.Release()

	ctx := context.Background()
	man, err := rt.Store(ctx, "labels.arrows", h, ingest.FormatIPCStream)
	if err != nil {
		log.Fatal(err)
	}

	loaded, err := rt.Load(ctx, "labels.arrows", ingest.FormatAuto)
	if err != nil {
		log.Fatal(err)
	}
	defer loaded.Release()

	name, _ := loaded.IndexName()
	fmt.Println(man.Rows, man.Format, loaded.Columns(), name)
	// Output: 3 arrow-stream [label] id
}
