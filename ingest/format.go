package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hupe1980/framego/codec"
)

// Format identifies a table serialization.
type Format int

const (
	// FormatAuto sniffs the payload: Arrow file and Parquet by their magic
	// bytes, CSV by a ".csv" name suffix, Arrow stream otherwise.
	FormatAuto Format = iota
	FormatIPCFile
	FormatIPCStream
	FormatParquet
	FormatCSV
)

var formatNames = [...]string{
	FormatAuto:      "auto",
	FormatIPCFile:   "arrow-file",
	FormatIPCStream: "arrow-stream",
	FormatParquet:   "parquet",
	FormatCSV:       "csv",
}

func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat is the inverse of Format.String.
func ParseFormat(s string) (Format, error) {
	for f, name := range formatNames {
		if strings.EqualFold(s, name) {
			return Format(f), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

var (
	arrowMagic   = []byte("ARROW1")
	parquetMagic = []byte("PAR1")
)

// detect resolves FormatAuto for an unframed payload.
func detect(name string, data []byte) Format {
	switch {
	case bytes.HasPrefix(data, arrowMagic):
		return FormatIPCFile
	case bytes.HasPrefix(data, parquetMagic):
		return FormatParquet
	case strings.HasSuffix(strings.ToLower(strings.TrimSuffix(name, ".zst")), ".csv"):
		return FormatCSV
	default:
		return FormatIPCStream
	}
}

// unframe strips a codec frame if present.
func unframe(data []byte) ([]byte, codec.Compression, error) {
	if !codec.IsFramed(data) {
		return data, codec.None, nil
	}
	return codec.Decompress(data)
}
