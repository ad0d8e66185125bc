package tensor

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingTensor is returned when a named tensor is absent from a Memory.
	ErrMissingTensor = errors.New("missing tensor")

	// ErrShapeMismatch is returned when a tensor's shape disagrees with its destination.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrDTypeMismatch is returned when a tensor's element type disagrees with the requested one.
	ErrDTypeMismatch = errors.New("dtype mismatch")

	// ErrOutOfRange is returned when a row window exceeds the tensor.
	ErrOutOfRange = errors.New("out of range")
)

// ShapeError describes a rejected tensor shape.
//
// It matches ErrShapeMismatch via errors.Is.
type ShapeError struct {
	Name string
	Want []int64
	Got  []int64
}

func (e *ShapeError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("shape mismatch: want %v, got %v", e.Want, e.Got)
	}
	return fmt.Sprintf("shape mismatch for %q: want %v, got %v", e.Name, e.Want, e.Got)
}

func (e *ShapeError) Unwrap() error { return ErrShapeMismatch }
