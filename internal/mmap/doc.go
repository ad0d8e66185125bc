// Package mmap maps files read-only into memory so Arrow IPC payloads can be
// decoded without copying them onto the Go heap.
//
//	m, err := mmap.Open("frame.arrow")
//	if err != nil { ... }
//	defer m.Close()
//
//	r, _ := m.Region(off, n) // view of a single message body
//	m.Advise(mmap.AccessSequential)
//
// On Unix the mapping uses mmap(2) and madvise(2). On Windows it uses
// CreateFileMapping/MapViewOfFile and Advise is a no-op.
//
// Bytes returned by a Mapping or Region are valid until Close. Close is
// idempotent; callers must stop touching the bytes before calling it.
package mmap
