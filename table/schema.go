package table

import (
	"fmt"
	"strings"

	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/array"
	"github.com/apache/arrow/go/v10/arrow/memory"
)

const (
	// MetadataIndexField is the schema metadata key naming the index column's field.
	MetadataIndexField = "framego.index"

	// MetadataIndexName is the schema metadata key holding the index's logical name.
	// An empty value means the index is unnamed.
	MetadataIndexName = "framego.index_name"

	// UnnamedIndexField is the field name used for an unnamed index.
	UnnamedIndexField = "__index_level_0__"

	// DerivedIndexPrefix prefixes the column that preserves a replaced index.
	DerivedIndexPrefix = "_index_"

	// MetadataDerivedIndex is the field metadata key marking a column created
	// by an index repair.
	MetadataDerivedIndex = "framego.derived_index"
)

// DerivedIndexName returns the column name a replaced index is preserved under.
func DerivedIndexName(indexName string) string {
	return DerivedIndexPrefix + indexName
}

func isDerivedIndex(f arrow.Field) bool {
	return f.Metadata.FindKey(MetadataDerivedIndex) >= 0
}

// markDerived returns f with MetadataDerivedIndex added to its metadata.
func markDerived(f arrow.Field) arrow.Field {
	if isDerivedIndex(f) {
		return f
	}
	keys := append(append([]string(nil), f.Metadata.Keys()...), MetadataDerivedIndex)
	vals := append(append([]string(nil), f.Metadata.Values()...), "true")
	f.Metadata = arrow.NewMetadata(keys, vals)
	return f
}

// indexFromSchema reads the index description from schema metadata.
func indexFromSchema(schema *arrow.Schema) (field, name string, ok bool) {
	md := schema.Metadata()
	i := md.FindKey(MetadataIndexField)
	if i < 0 {
		return "", "", false
	}
	field = md.Values()[i]
	if !schema.HasField(field) {
		return "", "", false
	}
	if j := md.FindKey(MetadataIndexName); j >= 0 {
		name = md.Values()[j]
	}
	return field, name, true
}

// schemaWithIndex returns a schema over fields carrying the base metadata with
// the index keys replaced.
func schemaWithIndex(base arrow.Metadata, fields []arrow.Field, indexField, indexName string) *arrow.Schema {
	keys := make([]string, 0, base.Len()+2)
	vals := make([]string, 0, base.Len()+2)
	for i, k := range base.Keys() {
		if k == MetadataIndexField || k == MetadataIndexName {
			continue
		}
		keys = append(keys, k)
		vals = append(vals, base.Values()[i])
	}
	keys = append(keys, MetadataIndexField, MetadataIndexName)
	vals = append(vals, indexField, indexName)
	md := arrow.NewMetadata(keys, vals)
	return arrow.NewSchema(fields, &md)
}

func fieldIndex(schema *arrow.Schema, name string) int {
	idx := schema.FieldIndices(name)
	if len(idx) == 0 {
		return -1
	}
	return idx[0]
}

func visibleNames(schema *arrow.Schema, indexField string) []string {
	names := make([]string, 0, len(schema.Fields()))
	for _, f := range schema.Fields() {
		if f.Name == indexField {
			continue
		}
		names = append(names, f.Name)
	}
	return names
}

func isUnnamed(name string) bool {
	return name == "" || name == UnnamedIndexField || strings.HasPrefix(name, "Unnamed: 0")
}

// rangeIndex builds the int64 sequence [0, n).
func rangeIndex(mem memory.Allocator, n int64) arrow.Array {
	b := array.NewInt64Builder(mem)
	defer b.Release()

	b.Reserve(int(n))
	for i := int64(0); i < n; i++ {
		b.UnsafeAppend(i)
	}
	return b.NewArray()
}

// normalize returns a record whose schema carries index metadata. The input
// record is not consumed.
//
// indexColCount 0 keeps an index already described by the schema metadata,
// adopts a pandas-style __index_level_0__ column, or generates a range index.
// indexColCount 1 folds the first column into the index.
func normalize(rec arrow.Record, indexColCount int, mem memory.Allocator) (arrow.Record, string, string, error) {
	schema := rec.Schema()

	switch indexColCount {
	case 0:
		if field, name, ok := indexFromSchema(schema); ok {
			rec.Retain()
			return rec, field, name, nil
		}
		if i := fieldIndex(schema, UnnamedIndexField); i >= 0 {
			return withIndexAt(rec, i, UnnamedIndexField, "")
		}

		idx := rangeIndex(mem, rec.NumRows())
		defer idx.Release()

		fields := make([]arrow.Field, 0, len(schema.Fields())+1)
		cols := make([]arrow.Array, 0, len(schema.Fields())+1)
		fields = append(fields, arrow.Field{Name: UnnamedIndexField, Type: arrow.PrimitiveTypes.Int64})
		cols = append(cols, idx)
		fields = append(fields, schema.Fields()...)
		cols = append(cols, rec.Columns()...)

		out := array.NewRecord(schemaWithIndex(schema.Metadata(), fields, UnnamedIndexField, ""), cols, rec.NumRows())
		return out, UnnamedIndexField, "", nil
	case 1:
		if len(schema.Fields()) == 0 {
			return nil, "", "", fmt.Errorf("%w: no column to fold into the index", ErrInvalidIndex)
		}
		name := schema.Field(0).Name
		if isUnnamed(name) {
			return withIndexAt(rec, 0, UnnamedIndexField, "")
		}
		return withIndexAt(rec, 0, name, name)
	default:
		return nil, "", "", fmt.Errorf("%w: index_col_count %d not supported", ErrInvalidIndex, indexColCount)
	}
}

// withIndexAt moves column i to the front as the index under field name.
func withIndexAt(rec arrow.Record, i int, field, name string) (arrow.Record, string, string, error) {
	schema := rec.Schema()

	fields := make([]arrow.Field, 0, len(schema.Fields()))
	cols := make([]arrow.Array, 0, len(schema.Fields()))

	f := schema.Field(i)
	f.Name = field
	fields = append(fields, f)
	cols = append(cols, rec.Column(i))
	for j, other := range schema.Fields() {
		if j == i {
			continue
		}
		if other.Name == field {
			return nil, "", "", fmt.Errorf("%w: column %q collides with the index", ErrInvalidIndex, field)
		}
		fields = append(fields, other)
		cols = append(cols, rec.Column(j))
	}

	out := array.NewRecord(schemaWithIndex(schema.Metadata(), fields, field, name), cols, rec.NumRows())
	return out, field, name, nil
}
