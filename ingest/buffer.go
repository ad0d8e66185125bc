package ingest

import (
	"errors"
	"io"
)

var errNegativePosition = errors.New("ingest: negative seek position")

// seekBuffer is an in-memory io.WriteSeeker. The Arrow file writer seeks to
// patch its footer, which a bytes.Buffer cannot do.
type seekBuffer struct {
	buf []byte
	pos int64
}

func newSeekBuffer(capacity int) *seekBuffer {
	return &seekBuffer{buf: make([]byte, 0, capacity)}
}

// Write overwrites or extends the buffer at the current position. A position
// past the end is zero filled.
func (b *seekBuffer) Write(p []byte) (int, error) {
	end := int(b.pos) + len(p)
	if end > cap(b.buf) {
		grown := make([]byte, len(b.buf), max(2*cap(b.buf), end))
		copy(grown, b.buf)
		b.buf = grown
	}
	if end > len(b.buf) {
		clear(b.buf[len(b.buf):end])
		b.buf = b.buf[:end]
	}
	n := copy(b.buf[b.pos:], p)
	b.pos += int64(n)
	return n, nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = b.pos + offset
	case io.SeekEnd:
		pos = int64(len(b.buf)) + offset
	default:
		return b.pos, errors.New("ingest: invalid whence")
	}
	if pos < 0 {
		return b.pos, errNegativePosition
	}
	b.pos = pos
	return pos, nil
}

func (b *seekBuffer) Bytes() []byte { return b.buf }

func (b *seekBuffer) Len() int { return len(b.buf) }
