package mmap

import "errors"

// AccessPattern is a kernel hint describing how mapped pages are read.
type AccessPattern int

const (
	AccessDefault AccessPattern = iota
	// AccessSequential suits whole-table IPC decoding.
	AccessSequential
	// AccessRandom suits column-at-a-time reads.
	AccessRandom
)

var (
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned for files whose size does not fit an int.
	ErrInvalidSize   = errors.New("mmap: invalid file size")
	ErrOutOfBounds   = errors.New("mmap: out of bounds")
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)
