package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/framego/testutil"
)

func TestCompress_RoundTrip(t *testing.T) {
	compressible := bytes.Repeat([]byte("framego table payload "), 512)

	rng := testutil.NewRNG(4711)
	random := make([]byte, 4096)
	for i := range random {
		random[i] = byte(rng.Intn(256))
	}

	tests := []struct {
		name     string
		data     []byte
		c        Compression
		wantUsed Compression
	}{
		{"none", compressible, None, None},
		{"lz4", compressible, LZ4, LZ4},
		{"zstd", compressible, ZSTD, ZSTD},
		{"lz4 incompressible", random, LZ4, None},
		{"zstd incompressible", random, ZSTD, None},
		{"empty", nil, ZSTD, None},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := Compress(tt.data, tt.c)
			require.NoError(t, err)
			assert.True(t, IsFramed(frame))
			if tt.wantUsed != None {
				assert.Less(t, len(frame), len(tt.data))
			}

			header, ok := FrameCompression(frame)
			require.True(t, ok)
			assert.Equal(t, tt.wantUsed, header)

			out, used, err := Decompress(frame)
			require.NoError(t, err)
			assert.Equal(t, tt.wantUsed, used)
			assert.Equal(t, len(tt.data), len(out))
			assert.True(t, bytes.Equal(tt.data, out))
		})
	}
}

func TestDecompress_Corrupt(t *testing.T) {
	_, ok := FrameCompression([]byte("FG"))
	assert.False(t, ok)

	_, _, err := Decompress([]byte("not a frame"))
	assert.ErrorIs(t, err, ErrCorruptFrame)

	frame, err := Compress(bytes.Repeat([]byte{1, 2, 3, 4}, 256), ZSTD)
	require.NoError(t, err)

	_, _, err = Decompress(frame[:len(frame)-4])
	assert.ErrorIs(t, err, ErrCorruptFrame)

	frame[4] = 9
	_, _, err = Decompress(frame)
	assert.ErrorIs(t, err, ErrUnknownCompression)

	_, err = Compress([]byte{1}, Compression(7))
	assert.ErrorIs(t, err, ErrUnknownCompression)
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{None, LZ4, ZSTD} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseCompression("snappy")
	assert.ErrorIs(t, err, ErrUnknownCompression)
	assert.Equal(t, "Compression(9)", Compression(9).String())
}

func TestCodecs(t *testing.T) {
	type manifest struct {
		Name string   `json:"name"`
		Rows int64    `json:"rows"`
		Cols []string `json:"cols"`
	}
	in := manifest{Name: "events", Rows: 42, Cols: []string{"a", "b"}}

	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())

		var out manifest
		require.NoError(t, c.Unmarshal(MustMarshal(c, in), &out))
		assert.Equal(t, in, out)
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}
