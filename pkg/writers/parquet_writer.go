package writers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/TFMV/vectorgen/pkg/core"
)

// MaxRowGroupSize caps the rows per Parquet row group. Batches smaller
// than this become a single row group.
const MaxRowGroupSize = 50000

// ParquetWriter writes record batches to one Parquet file, tuned for
// write speed: Snappy compression, dictionary encoding on, statistics
// collection off.
type ParquetWriter struct {
	writer       *pqarrow.FileWriter
	file         *os.File
	schema       *arrow.Schema
	rowGroupSize int64
}

// NewParquetWriter creates a new Parquet writer.
func NewParquetWriter(config core.WriterConfig) (core.DatasetWriter, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for Parquet writer")
	}

	file, err := os.Create(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create Parquet file: %w", err)
	}

	rowGroupSize := config.RowGroupSize
	if rowGroupSize <= 0 || rowGroupSize > MaxRowGroupSize {
		rowGroupSize = MaxRowGroupSize
	}

	// The writer itself is created on the first record because it needs
	// the schema.
	return &ParquetWriter{
		file:         file,
		rowGroupSize: rowGroupSize,
	}, nil
}

// Write writes a record to the file.
func (w *ParquetWriter) Write(ctx context.Context, record arrow.Record) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if w.writer == nil {
		schema := record.Schema()

		rowGroup := w.rowGroupSize
		if record.NumRows() < rowGroup {
			rowGroup = record.NumRows()
		}

		writeProps := parquet.NewWriterProperties(
			parquet.WithCompression(compress.Codecs.Snappy),
			parquet.WithDictionaryDefault(true),
			parquet.WithStats(false),
			parquet.WithMaxRowGroupLength(rowGroup),
		)

		writer, err := pqarrow.NewFileWriter(
			schema,
			w.file,
			writeProps,
			pqarrow.NewArrowWriterProperties(),
		)
		if err != nil {
			return fmt.Errorf("failed to create Parquet writer: %w", err)
		}

		w.writer = writer
		w.schema = schema
	}

	if err := w.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	return nil
}

// Close closes the writer and flushes any pending data.
func (w *ParquetWriter) Close() error {
	var err error

	if w.writer != nil {
		// The pqarrow writer closes the underlying file.
		if closeErr := w.writer.Close(); closeErr != nil {
			err = closeErr
		}
		w.writer = nil
		w.file = nil
		return err
	}

	if w.file != nil {
		err = w.file.Close()
		w.file = nil
	}

	return err
}
