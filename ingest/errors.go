package ingest

import "errors"

var (
	// ErrUnknownFormat is returned for a Format value Load or Store cannot handle.
	ErrUnknownFormat = errors.New("ingest: unknown format")

	// ErrSchemaRequired is returned when CSV is loaded without WithCSVSchema.
	ErrSchemaRequired = errors.New("ingest: csv needs a schema")
)
