package minio

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Keys(t *testing.T) {
	s := &Store{bucket: "b", prefix: "tables/"}

	assert.Equal(t, "tables/a.arrow", s.key("a.arrow"))
	assert.Equal(t, "tables", s.key(""))
	assert.Equal(t, "a.arrow", s.relative("tables/a.arrow"))
	assert.Equal(t, "x/a.arrow", s.relative("tables/x/a.arrow"))

	bare := &Store{bucket: "b"}
	assert.Equal(t, "a.arrow", bare.key("a.arrow"))
	assert.Equal(t, "a.arrow", bare.relative("a.arrow"))
}

func TestNew(t *testing.T) {
	s, err := New(Config{
		Endpoint:  "localhost:9000",
		AccessKey: "k",
		SecretKey: "s",
		Bucket:    "frames",
		Prefix:    "p/",
	})
	require.NoError(t, err)
	assert.Equal(t, "frames", s.bucket)
	assert.Equal(t, "p/a", s.key("a"))
}

func TestBlob_Bounds(t *testing.T) {
	ctx := context.Background()
	b := &blob{size: 4}

	n, err := b.ReadAt(ctx, make([]byte, 2), 4)
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, io.EOF)

	n, err = b.ReadAt(ctx, nil, 0)
	assert.Equal(t, 0, n)
	assert.NoError(t, err)

	_, err = b.ReadRange(ctx, 9, 1)
	assert.ErrorIs(t, err, io.EOF)

	_, err = b.ReadRange(ctx, 0, -1)
	assert.Error(t, err)

	rc, err := b.ReadRange(ctx, 1, 0)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Empty(t, data)
}
