// Package tensor provides row-major tensors over refcounted Arrow buffers and
// Memory, a set of named tensors that share one row count.
//
// A Tensor never copies on Slice: the row window shares the underlying
// buffer, which stays alive until the last Tensor referencing it is released.
//
//	ids, _ := tensor.FromInt32s([]int32{0, 0, 5, 1, 0, 5}, 2, 3)
//	in, _ := tensor.Zeros(mem, arrow.PrimitiveTypes.Float32, 2, 4)
//	m, _ := tensor.NewMemory(2, map[string]*tensor.Tensor{"seq_ids": ids, "input__0": in})
//	defer m.Release()
package tensor
