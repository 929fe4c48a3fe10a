// Package core provides the shared types and interfaces for the vectorgen
// dataset generation tool.
package core

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
)

// FieldTypeMetadataKey carries the collection type of each column in the
// Arrow field metadata, so writers and readers can recover semantics the
// Arrow type alone cannot express (JSON text vs plain text, byte-packed
// vector layouts).
const FieldTypeMetadataKey = "vectorgen:type"

// Output formats the engine can write.
const (
	FormatParquet = "parquet"
	FormatJSON    = "json"
)

// Extension returns the file extension for a supported format, without the
// leading dot. Unsupported formats return an empty string; callers are
// expected to have validated the format already.
func Extension(format string) string {
	switch format {
	case FormatParquet:
		return "parquet"
	case FormatJSON:
		return "json"
	default:
		return ""
	}
}

// DatasetWriter defines an interface for writing record batches to a
// destination file.
type DatasetWriter interface {
	// Write writes a record to the destination.
	Write(ctx context.Context, record arrow.Record) error

	// Close closes the writer and flushes any pending data.
	Close() error
}

// DatasetReader defines an interface for reading record batches back from
// a generated file.
type DatasetReader interface {
	// Read returns the next record batch. Returns io.EOF when there are
	// no more batches.
	Read(ctx context.Context) (arrow.Record, error)

	// Schema returns the schema of the dataset.
	Schema() *arrow.Schema

	// Close closes the reader and releases resources.
	Close() error
}

// WriterConfig provides configuration for creating a writer.
type WriterConfig struct {
	// Format is the output format ("parquet" or "json").
	Format string

	// Path is the destination file path.
	Path string

	// RowGroupSize caps the rows per Parquet row group. Zero selects the
	// writer default.
	RowGroupSize int64
}

// ReaderConfig provides configuration for creating a reader.
type ReaderConfig struct {
	// Path is the file to read.
	Path string

	// BatchSize is the number of rows per batch for readers that batch.
	BatchSize int64
}
