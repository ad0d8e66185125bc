package table

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange is returned when slice bounds are out of order or exceed the parent.
	ErrInvalidRange = errors.New("invalid range")

	// ErrUnknownColumn is returned when a column is not visible in the parent.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrAccessDenied is returned when mutable access is requested without an active Guard.
	ErrAccessDenied = errors.New("access denied: no active mutation guard")

	// ErrReleased is returned when the underlying table has already been released.
	ErrReleased = errors.New("table released")

	// ErrInvalidIndex is returned when an index cannot be built or repaired.
	ErrInvalidIndex = errors.New("invalid index")

	// ErrTypeMismatch is returned when a column write disagrees with the existing column type.
	ErrTypeMismatch = errors.New("column type mismatch")
)

// RangeError describes a rejected window.
//
// It matches ErrInvalidRange via errors.Is.
type RangeError struct {
	Start int64
	Stop  int64
	Rows  int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid range: [%d, %d) over %d rows", e.Start, e.Stop, e.Rows)
}

func (e *RangeError) Unwrap() error { return ErrInvalidRange }
