package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/framego/blobstore"
)

// ManifestSuffix is appended to a table's blob name to name its manifest.
const ManifestSuffix = ".manifest.json"

// Manifest describes a stored table.
type Manifest struct {
	Name        string    `json:"name"`
	Format      string    `json:"format"`
	Compression string    `json:"compression"`
	Rows        int64     `json:"rows"`
	Columns     []string  `json:"columns"`
	IndexField  string    `json:"index_field"`
	IndexName   string    `json:"index_name,omitempty"`
	Bytes       int64     `json:"bytes"`
	RawBytes    int64     `json:"raw_bytes"`
	Codec       string    `json:"codec"`
	CreatedAt   time.Time `json:"created_at"`
}

// ParsedFormat returns the manifest's format, or FormatAuto if it is not recognized.
func (m *Manifest) ParsedFormat() Format {
	f, err := ParseFormat(m.Format)
	if err != nil {
		return FormatAuto
	}
	return f
}

// LoadManifest reads the manifest written next to blob name.
func (l *Loader) LoadManifest(ctx context.Context, name string) (*Manifest, error) {
	blob, err := l.store.Open(ctx, name+ManifestSuffix)
	if err != nil {
		return nil, fmt.Errorf("ingest: open manifest for %q: %w", name, err)
	}
	defer blob.Close()

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return nil, fmt.Errorf("ingest: read manifest for %q: %w", name, err)
	}

	var m Manifest
	if err := l.opts.manifest.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("ingest: decode manifest for %q: %w", name, err)
	}
	return &m, nil
}
