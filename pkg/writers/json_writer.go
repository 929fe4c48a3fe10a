package writers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/goccy/go-json"

	"github.com/TFMV/vectorgen/pkg/core"
)

// JSONWriter writes record batches as JSON Lines: one compact JSON object
// per row. Arrow values are coerced to plain Go values before encoding, so
// no Arrow container forms appear in the output.
type JSONWriter struct {
	file *os.File
	buf  *bufio.Writer
}

// NewJSONWriter creates a new JSON Lines writer.
func NewJSONWriter(config core.WriterConfig) (core.DatasetWriter, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for JSON writer")
	}

	file, err := os.Create(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create JSON file: %w", err)
	}

	return &JSONWriter{
		file: file,
		buf:  bufio.NewWriterSize(file, 1<<20),
	}, nil
}

// Write writes every row of the record as one JSON line.
func (w *JSONWriter) Write(ctx context.Context, record arrow.Record) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	schema := record.Schema()
	numRows := int(record.NumRows())
	numCols := int(record.NumCols())

	enc := json.NewEncoder(w.buf)
	for i := 0; i < numRows; i++ {
		row := make(map[string]any, numCols)
		for j := 0; j < numCols; j++ {
			field := schema.Field(j)
			value, err := cellValue(record.Column(j), field, i)
			if err != nil {
				return fmt.Errorf("column %q row %d: %w", field.Name, i, err)
			}
			row[field.Name] = value
		}
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("failed to encode row: %w", err)
		}
	}

	return nil
}

// Close flushes buffered lines and closes the file.
func (w *JSONWriter) Close() error {
	if w.file == nil {
		return nil
	}
	err := w.buf.Flush()
	if closeErr := w.file.Close(); err == nil {
		err = closeErr
	}
	w.file = nil
	return err
}

// cellValue extracts one row's value as a plain Go value. String columns
// whose field metadata marks them as JSON or sparse-vector text are
// embedded as raw JSON objects instead of quoted strings.
func cellValue(col arrow.Array, field arrow.Field, row int) (any, error) {
	if col.IsNull(row) {
		return nil, nil
	}

	switch col := col.(type) {
	case *array.Boolean:
		return col.Value(row), nil
	case *array.Int8:
		return col.Value(row), nil
	case *array.Int16:
		return col.Value(row), nil
	case *array.Int32:
		return col.Value(row), nil
	case *array.Int64:
		return col.Value(row), nil
	case *array.Uint8:
		return col.Value(row), nil
	case *array.Float32:
		return col.Value(row), nil
	case *array.Float64:
		return col.Value(row), nil
	case *array.String:
		if embedAsJSON(field) {
			return json.RawMessage(col.Value(row)), nil
		}
		return col.Value(row), nil
	case *array.List:
		start, end := col.ValueOffsets(row)
		values := col.ListValues()
		out := make([]any, 0, end-start)
		for k := start; k < end; k++ {
			v, err := cellValue(values, arrow.Field{}, int(k))
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported Arrow column type %s", col.DataType())
	}
}

// embedAsJSON reports whether the column's text already is JSON and should
// be inlined rather than quoted.
func embedAsJSON(field arrow.Field) bool {
	if v, ok := field.Metadata.GetValue(core.FieldTypeMetadataKey); ok {
		return v == "JSON" || v == "SPARSE_FLOAT_VECTOR"
	}
	return false
}
