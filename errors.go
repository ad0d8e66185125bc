package framego

import (
	"errors"
	"fmt"

	"github.com/hupe1980/framego/blobstore"
	"github.com/hupe1980/framego/codec"
	"github.com/hupe1980/framego/ingest"
	"github.com/hupe1980/framego/message"
	"github.com/hupe1980/framego/resource"
	"github.com/hupe1980/framego/table"
	"github.com/hupe1980/framego/tensor"
)

var (
	// ErrInvalidRange is returned for a view window that is out of order or exceeds its parent.
	ErrInvalidRange = errors.New("invalid range")

	// ErrUnknownColumn is returned when a view names a column its parent does not expose.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrAccessDenied is returned when write access is requested without the table's guard.
	ErrAccessDenied = errors.New("access denied")

	// ErrReleased is returned when a table was used after its last reference was dropped.
	ErrReleased = errors.New("table released")

	// ErrInvalidIndex is returned when an index cannot be built or repaired.
	ErrInvalidIndex = errors.New("invalid index")

	// ErrTypeMismatch is returned when a column write disagrees with the column type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrMissingTensor is returned when a message names a tensor its memory does not hold.
	ErrMissingTensor = errors.New("missing tensor")

	// ErrShapeMismatch is returned when a tensor write disagrees with the destination shape.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrOutOfRange is returned when a message or tensor window exceeds its backing store.
	ErrOutOfRange = errors.New("out of range")

	// ErrNotFound is returned when a blob does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnsupported is returned for a format or compression framego cannot handle.
	ErrUnsupported = errors.New("unsupported")

	// ErrCorrupt is returned when a stored payload cannot be decoded.
	ErrCorrupt = errors.New("corrupt payload")

	// ErrMemoryLimit is returned when a load can never fit into the configured memory limit.
	ErrMemoryLimit = errors.New("memory limit exceeded")

	// ErrNoStore is returned by storage operations on a Runtime without a blob store.
	ErrNoStore = errors.New("no blob store configured")

	// ErrClosed is returned by operations on a closed Runtime.
	ErrClosed = errors.New("runtime closed")
)

// ErrWindow indicates a rejected row window over a table, a message or a tensor memory.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrWindow struct {
	Kind  string
	Start int64
	Stop  int64
	Size  int64
	cause error
	kind  error
}

func (e *ErrWindow) Error() string {
	return fmt.Sprintf("%s window [%d, %d) exceeds %d rows", e.Kind, e.Start, e.Stop, e.Size)
}

func (e *ErrWindow) Unwrap() []error { return []error{e.kind, e.cause} }

// ErrTensorShape indicates a tensor whose shape disagrees with its destination.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrTensorShape struct {
	Name  string
	Want  []int64
	Got   []int64
	cause error
}

func (e *ErrTensorShape) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("tensor shape mismatch: want %v, got %v", e.Want, e.Got)
	}
	return fmt.Sprintf("tensor %q shape mismatch: want %v, got %v", e.Name, e.Want, e.Got)
}

func (e *ErrTensorShape) Unwrap() []error { return []error{ErrShapeMismatch, e.cause} }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Typed windows and shapes first, they carry the details callers inspect.
	var re *table.RangeError
	if errors.As(err, &re) {
		return &ErrWindow{Kind: "table", Start: re.Start, Stop: re.Stop, Size: re.Rows, cause: err, kind: ErrInvalidRange}
	}
	var we *message.WindowError
	if errors.As(err, &we) {
		return &ErrWindow{Kind: we.Kind, Start: we.Offset, Stop: we.Offset + we.Count, Size: we.Size, cause: err, kind: ErrOutOfRange}
	}
	var se *tensor.ShapeError
	if errors.As(err, &se) {
		return &ErrTensorShape{Name: se.Name, Want: se.Want, Got: se.Got, cause: err}
	}

	for _, m := range sentinels {
		if errors.Is(err, m.from) {
			return fmt.Errorf("%w: %w", m.to, err)
		}
	}
	return err
}

var sentinels = []struct{ from, to error }{
	{table.ErrInvalidRange, ErrInvalidRange},
	{table.ErrUnknownColumn, ErrUnknownColumn},
	{table.ErrAccessDenied, ErrAccessDenied},
	{table.ErrReleased, ErrReleased},
	{table.ErrInvalidIndex, ErrInvalidIndex},
	{table.ErrTypeMismatch, ErrTypeMismatch},
	{tensor.ErrDTypeMismatch, ErrTypeMismatch},
	{tensor.ErrMissingTensor, ErrMissingTensor},
	{tensor.ErrShapeMismatch, ErrShapeMismatch},
	{tensor.ErrOutOfRange, ErrOutOfRange},
	{blobstore.ErrNotFound, ErrNotFound},
	{ingest.ErrUnknownFormat, ErrUnsupported},
	{ingest.ErrSchemaRequired, ErrUnsupported},
	{codec.ErrUnknownCompression, ErrUnsupported},
	{codec.ErrCorruptFrame, ErrCorrupt},
	{resource.ErrExceedsLimit, ErrMemoryLimit},
}
