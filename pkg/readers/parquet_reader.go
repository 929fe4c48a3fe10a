// Package readers provides readers for generated data files, both as
// Arrow record batches and as generic row maps.
package readers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/TFMV/vectorgen/pkg/core"
)

// ParquetReader reads a generated Parquet file as record batches.
type ParquetReader struct {
	schema      *arrow.Schema
	fileReader  *file.Reader
	arrowReader *pqarrow.FileReader
	recReader   array.RecordReader
	batchSize   int64
	osFile      *os.File
}

// NewParquetReader opens a Parquet file for batch reading.
func NewParquetReader(config core.ReaderConfig) (core.DatasetReader, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for Parquet reader")
	}

	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = 10000
	}

	f, err := os.Open(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Parquet file: %w", err)
	}

	parquetReader, err := file.NewParquetReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create Parquet file reader: %w", err)
	}

	arrowReader, err := pqarrow.NewFileReader(parquetReader,
		pqarrow.ArrowReadProperties{BatchSize: batchSize},
		memory.NewGoAllocator())
	if err != nil {
		parquetReader.Close()
		f.Close()
		return nil, fmt.Errorf("failed to create Arrow reader: %w", err)
	}

	schema, err := arrowReader.Schema()
	if err != nil {
		parquetReader.Close()
		f.Close()
		return nil, fmt.Errorf("failed to get schema: %w", err)
	}

	return &ParquetReader{
		schema:      schema,
		fileReader:  parquetReader,
		arrowReader: arrowReader,
		batchSize:   batchSize,
		osFile:      f,
	}, nil
}

// Read returns the next batch. The returned record is retained for the
// caller, who must Release it.
func (r *ParquetReader) Read(ctx context.Context) (arrow.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if r.recReader == nil {
		rr, err := r.arrowReader.GetRecordReader(ctx, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create record reader: %w", err)
		}
		r.recReader = rr
	}

	if !r.recReader.Next() {
		if err := r.recReader.Err(); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return nil, io.EOF
	}

	rec := r.recReader.Record()
	rec.Retain()
	return rec, nil
}

// Schema returns the file's Arrow schema.
func (r *ParquetReader) Schema() *arrow.Schema {
	return r.schema
}

// Close releases the readers and the underlying file.
func (r *ParquetReader) Close() error {
	if r.recReader != nil {
		r.recReader.Release()
		r.recReader = nil
	}
	var err error
	if r.fileReader != nil {
		err = r.fileReader.Close()
		r.fileReader = nil
	}
	if r.osFile != nil {
		if closeErr := r.osFile.Close(); err == nil {
			err = closeErr
		}
		r.osFile = nil
	}
	return err
}
