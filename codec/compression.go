package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the algorithm of a frame.
type Compression uint8

const (
	// None stores the payload as is.
	None Compression = 0
	// LZ4 uses LZ4 block compression (fast, good for hot data).
	LZ4 Compression = 1
	// ZSTD uses ZSTD (better ratio, good for cold data).
	ZSTD Compression = 2
)

var (
	// ErrCorruptFrame is returned when a frame header or payload is malformed.
	ErrCorruptFrame = errors.New("codec: corrupt frame")

	// ErrUnknownCompression is returned for an unsupported compression id or name.
	ErrUnknownCompression = errors.New("codec: unknown compression")
)

// String returns the compression name.
func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression parses a compression name as returned by String.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return ZSTD, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrUnknownCompression, s)
	}
}

// Frame format: [magic 4B][compression 1B][uncompressed size 8B][payload...]
var frameMagic = [4]byte{'F', 'G', 'Z', 1}

const frameHeaderSize = 13

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// IsFramed reports whether b starts with a frame header.
func IsFramed(b []byte) bool {
	return len(b) >= frameHeaderSize && [4]byte(b[:4]) == frameMagic
}

// FrameCompression returns the compression recorded in a frame header.
func FrameCompression(frame []byte) (Compression, bool) {
	if !IsFramed(frame) {
		return None, false
	}
	return Compression(frame[4]), true
}

// Compress wraps data in a frame compressed with c.
// If compression doesn't help (ratio > 0.9), the frame stores data uncompressed.
func Compress(data []byte, c Compression) ([]byte, error) {
	var payload []byte
	switch c {
	case None:
	case LZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, dst, nil)
		if err != nil {
			return nil, fmt.Errorf("codec: lz4: %w", err)
		}
		payload = dst[:n] // n == 0 means incompressible
	case ZSTD:
		enc := getZstdEncoder()
		payload = enc.EncodeAll(data, nil)
		putZstdEncoder(enc)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(c))
	}

	if c == None || len(payload) == 0 || float64(len(payload)) > float64(len(data))*0.9 {
		c, payload = None, data
	}

	out := make([]byte, frameHeaderSize+len(payload))
	copy(out, frameMagic[:])
	out[4] = byte(c)
	binary.LittleEndian.PutUint64(out[5:], uint64(len(data)))
	copy(out[frameHeaderSize:], payload)
	return out, nil
}

// Decompress returns the payload of a frame and the compression it used.
// For None the result aliases frame.
func Decompress(frame []byte) ([]byte, Compression, error) {
	if !IsFramed(frame) {
		return nil, None, fmt.Errorf("%w: missing header", ErrCorruptFrame)
	}
	c := Compression(frame[4])
	size := binary.LittleEndian.Uint64(frame[5:])
	payload := frame[frameHeaderSize:]

	switch c {
	case None:
		if uint64(len(payload)) != size {
			return nil, c, fmt.Errorf("%w: payload has %d bytes, header says %d", ErrCorruptFrame, len(payload), size)
		}
		return payload, c, nil
	case LZ4:
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, c, fmt.Errorf("%w: lz4: %v", ErrCorruptFrame, err)
		}
		if uint64(n) != size {
			return nil, c, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptFrame)
		}
		return out, c, nil
	case ZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		out, err := dec.DecodeAll(payload, make([]byte, 0, size))
		if err != nil {
			return nil, c, fmt.Errorf("%w: zstd: %v", ErrCorruptFrame, err)
		}
		if uint64(len(out)) != size {
			return nil, c, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptFrame)
		}
		return out, c, nil
	default:
		return nil, c, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(c))
	}
}
