// Package testutil provides testing utilities for framego.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random source and helpers for building Arrow records.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	rows := rng.UniformRows(50, 4)         // 50 x 4 in [0, 1)
//	idx := rng.DuplicateIndex(100, 0.1)    // non-unique, mostly increasing
//
// # Records
//
//	rec := testutil.Record(mem,
//	    testutil.Column{Name: "id", Values: []int64{1, 2, 3}},
//	    testutil.Column{Name: "label", Values: []string{"a", "b", "c"}},
//	)
//	defer rec.Release()
package testutil
