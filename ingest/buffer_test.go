package ingest

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeekBuffer(t *testing.T) {
	b := newSeekBuffer(2)

	n, err := b.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	pos, err := b.Seek(1, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pos)

	_, err = b.Write([]byte("EL"))
	require.NoError(t, err)
	assert.Equal(t, "hELlo", string(b.Bytes()))

	pos, err = b.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pos)

	pos, err = b.Seek(2, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(7), pos)

	_, err = b.Write([]byte("!"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hELlo\x00\x00!"), b.Bytes())
	assert.Equal(t, 8, b.Len())

	_, err = b.Seek(-1, io.SeekStart)
	assert.ErrorIs(t, err, errNegativePosition)

	_, err = b.Seek(0, 42)
	assert.Error(t, err)
}
