// Package utils provides helpers for turning Arrow record batches into
// display rows for CLI preview output.
package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// maxCellWidth truncates long cell values (JSON documents, big vectors) so
// preview tables stay readable.
const maxCellWidth = 40

// RecordRows extracts up to limit rows of a record as generic row maps.
// Values are plain Go values; list columns become []any slices.
func RecordRows(rec arrow.Record, limit int) []map[string]any {
	n := int(rec.NumRows())
	if limit > 0 && n > limit {
		n = limit
	}
	schema := rec.Schema()
	rows := make([]map[string]any, n)
	for i := 0; i < n; i++ {
		row := make(map[string]any, int(rec.NumCols()))
		for j := 0; j < int(rec.NumCols()); j++ {
			row[schema.Field(j).Name] = CellValue(rec.Column(j), i)
		}
		rows[i] = row
	}
	return rows
}

// CellValue extracts one array element as a plain Go value.
func CellValue(col arrow.Array, row int) any {
	if col.IsNull(row) {
		return nil
	}
	switch col := col.(type) {
	case *array.Boolean:
		return col.Value(row)
	case *array.Int8:
		return int64(col.Value(row))
	case *array.Int16:
		return int64(col.Value(row))
	case *array.Int32:
		return int64(col.Value(row))
	case *array.Int64:
		return col.Value(row)
	case *array.Uint8:
		return int64(col.Value(row))
	case *array.Float32:
		return float64(col.Value(row))
	case *array.Float64:
		return col.Value(row)
	case *array.String:
		return col.Value(row)
	case *array.List:
		start, end := col.ValueOffsets(row)
		values := col.ListValues()
		out := make([]any, 0, end-start)
		for k := start; k < end; k++ {
			out = append(out, CellValue(values, int(k)))
		}
		return out
	default:
		return fmt.Sprintf("<%s>", col.DataType())
	}
}

// FormatCell renders one value for table display, truncating long text.
func FormatCell(v any) string {
	var s string
	switch v := v.(type) {
	case nil:
		s = "null"
	case string:
		s = v
	case bool:
		s = strconv.FormatBool(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	case float64:
		s = strconv.FormatFloat(v, 'g', 6, 64)
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = FormatCell(e)
		}
		s = "[" + strings.Join(parts, ", ") + "]"
	default:
		s = fmt.Sprintf("%v", v)
	}
	if len(s) > maxCellWidth {
		s = s[:maxCellWidth-3] + "..."
	}
	return s
}

// FormatTable renders rows as an aligned text table with the given column
// order.
func FormatTable(columns []string, rows []map[string]any) string {
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len(c)
	}
	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = make([]string, len(columns))
		for i, c := range columns {
			s := FormatCell(row[c])
			cells[r][i] = s
			if len(s) > widths[i] {
				widths[i] = len(s)
			}
		}
	}

	var sb strings.Builder
	writeRow := func(vals []string) {
		for i, v := range vals {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(v)
			sb.WriteString(strings.Repeat(" ", widths[i]-len(v)))
		}
		sb.WriteByte('\n')
	}

	writeRow(columns)
	sep := make([]string, len(columns))
	for i := range columns {
		sep[i] = strings.Repeat("-", widths[i])
	}
	writeRow(sep)
	for _, row := range cells {
		writeRow(row)
	}
	return sb.String()
}
