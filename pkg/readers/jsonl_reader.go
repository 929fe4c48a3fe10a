package readers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
)

// JSONLRowReader reads a JSON Lines data file one row per line. Numbers
// are decoded as json.Number so 64-bit primary keys survive without
// float rounding.
type JSONLRowReader struct {
	file    *os.File
	scanner *bufio.Scanner
	line    int
}

// NewJSONLRowReader opens a JSON Lines file for row iteration.
func NewJSONLRowReader(path string) (*JSONLRowReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open JSON file: %w", err)
	}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<26)
	return &JSONLRowReader{file: f, scanner: scanner}, nil
}

// Next returns the next row, or io.EOF after the last line.
func (r *JSONLRowReader) Next() (Row, error) {
	for r.scanner.Scan() {
		r.line++
		text := strings.TrimSpace(r.scanner.Text())
		if text == "" {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text))
		dec.UseNumber()
		var row Row
		if err := dec.Decode(&row); err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		return row, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Close closes the underlying file.
func (r *JSONLRowReader) Close() error {
	return r.file.Close()
}
