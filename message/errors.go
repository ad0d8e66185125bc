package message

import (
	"fmt"

	"github.com/hupe1980/framego/tensor"
)

var (
	// ErrOutOfRange is returned when a message or tensor window exceeds its backing store.
	ErrOutOfRange = tensor.ErrOutOfRange

	// ErrMissingTensor is returned when a named tensor is absent.
	ErrMissingTensor = tensor.ErrMissingTensor

	// ErrShapeMismatch is returned when a tensor write disagrees with the window.
	ErrShapeMismatch = tensor.ErrShapeMismatch
)

// WindowError describes a rejected offset/count pair.
//
// It matches ErrOutOfRange via errors.Is.
type WindowError struct {
	Kind   string // "message" or "tensor"
	Offset int64
	Count  int64
	Size   int64
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("%s window [%d, %d+%d) exceeds %d rows", e.Kind, e.Offset, e.Offset, e.Count, e.Size)
}

func (e *WindowError) Unwrap() error { return ErrOutOfRange }
