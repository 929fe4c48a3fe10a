package utils

import (
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(t *testing.T) arrow.Record {
	t.Helper()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "score", Type: arrow.PrimitiveTypes.Float32},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "tags", Type: arrow.ListOf(arrow.PrimitiveTypes.Int32)},
	}, nil)

	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()

	ids := b.Field(0).(*array.Int64Builder)
	scores := b.Field(1).(*array.Float32Builder)
	names := b.Field(2).(*array.StringBuilder)
	tags := b.Field(3).(*array.ListBuilder)
	tagVals := tags.ValueBuilder().(*array.Int32Builder)

	ids.AppendValues([]int64{1, 2}, nil)
	scores.AppendValues([]float32{0.5, 1.5}, nil)
	names.Append("first")
	names.AppendNull()
	tags.Append(true)
	tagVals.AppendValues([]int32{10, 20}, nil)
	tags.Append(true)

	return b.NewRecord()
}

func TestRecordRows(t *testing.T) {
	rec := testRecord(t)
	defer rec.Release()

	rows := RecordRows(rec, 10)
	require.Len(t, rows, 2)

	assert.Equal(t, int64(1), rows[0]["id"])
	assert.Equal(t, 0.5, rows[0]["score"])
	assert.Equal(t, "first", rows[0]["name"])
	assert.Equal(t, []any{int64(10), int64(20)}, rows[0]["tags"])

	assert.Nil(t, rows[1]["name"])
	assert.Equal(t, []any{}, rows[1]["tags"])

	// The limit truncates.
	assert.Len(t, RecordRows(rec, 1), 1)
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "null", FormatCell(nil))
	assert.Equal(t, "true", FormatCell(true))
	assert.Equal(t, "42", FormatCell(int64(42)))
	assert.Equal(t, "hello", FormatCell("hello"))
	assert.Equal(t, "[1, 2]", FormatCell([]any{int64(1), int64(2)}))

	long := strings.Repeat("x", 100)
	out := FormatCell(long)
	assert.Len(t, out, maxCellWidth)
	assert.True(t, strings.HasSuffix(out, "..."))
}

func TestFormatTable(t *testing.T) {
	table := FormatTable(
		[]string{"id", "name"},
		[]map[string]any{
			{"id": int64(1), "name": "alpha"},
			{"id": int64(22), "name": "b"},
		},
	)

	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "id")
	assert.Contains(t, lines[0], "name")
	assert.Contains(t, lines[1], "--")
	assert.Contains(t, lines[2], "alpha")
	assert.Contains(t, lines[3], "22")

	// Columns are aligned: every rendered line has the same width.
	for _, line := range lines[1:] {
		assert.Equal(t, len(lines[2]), len(line))
	}
}
