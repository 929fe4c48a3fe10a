package readers

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/TFMV/vectorgen/pkg/core"
	"github.com/TFMV/vectorgen/utils"
)

// Row is one data row keyed by field name.
type Row map[string]any

// RowReader iterates a data file row by row regardless of its on-disk
// format. Next returns io.EOF after the last row.
type RowReader interface {
	Next() (Row, error)
	Close() error
}

// OpenRows opens a data file for row iteration, selecting the reader by
// file extension.
func OpenRows(path string) (RowReader, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".parquet":
		return newParquetRowReader(path)
	case ".json":
		return NewJSONLRowReader(path)
	default:
		return nil, fmt.Errorf("unsupported data file extension %q", ext)
	}
}

// parquetRowReader adapts the batch-oriented ParquetReader to row
// iteration.
type parquetRowReader struct {
	reader core.DatasetReader
	rec    arrow.Record
	row    int
}

func newParquetRowReader(path string) (RowReader, error) {
	r, err := NewParquetReader(core.ReaderConfig{Path: path})
	if err != nil {
		return nil, err
	}
	return &parquetRowReader{reader: r}, nil
}

func (r *parquetRowReader) Next() (Row, error) {
	for r.rec == nil || r.row >= int(r.rec.NumRows()) {
		if r.rec != nil {
			r.rec.Release()
			r.rec = nil
		}
		rec, err := r.reader.Read(context.Background())
		if err != nil {
			return nil, err
		}
		r.rec = rec
		r.row = 0
	}

	schema := r.rec.Schema()
	row := make(Row, int(r.rec.NumCols()))
	for j := 0; j < int(r.rec.NumCols()); j++ {
		row[schema.Field(j).Name] = utils.CellValue(r.rec.Column(j), r.row)
	}
	r.row++
	return row, nil
}

func (r *parquetRowReader) Close() error {
	if r.rec != nil {
		r.rec.Release()
		r.rec = nil
	}
	return r.reader.Close()
}

// CountRows iterates a file and returns its row count.
func CountRows(path string) (int64, error) {
	r, err := OpenRows(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	var n int64
	for {
		if _, err := r.Next(); err != nil {
			if err == io.EOF {
				return n, nil
			}
			return 0, err
		}
		n++
	}
}
