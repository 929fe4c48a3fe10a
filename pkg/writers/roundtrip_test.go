package writers

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/vectorgen/pkg/core"
	"github.com/TFMV/vectorgen/pkg/readers"
)

// buildRecord assembles a small record with a plain string column, a
// JSON-tagged string column, and a float list column.
func buildRecord(t *testing.T) arrow.Record {
	t.Helper()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "name", Type: arrow.BinaryTypes.String},
		{Name: "doc", Type: arrow.BinaryTypes.String,
			Metadata: arrow.NewMetadata([]string{core.FieldTypeMetadataKey}, []string{"JSON"})},
		{Name: "vec", Type: arrow.ListOf(arrow.PrimitiveTypes.Float32)},
	}, nil)

	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()

	ids := b.Field(0).(*array.Int64Builder)
	names := b.Field(1).(*array.StringBuilder)
	docs := b.Field(2).(*array.StringBuilder)
	vecs := b.Field(3).(*array.ListBuilder)
	vecVals := vecs.ValueBuilder().(*array.Float32Builder)

	for i := 0; i < 3; i++ {
		ids.Append(int64(100 + i))
		names.Append("row")
		docs.Append(`{"k":1}`)
		vecs.Append(true)
		vecVals.Append(float32(i))
		vecVals.Append(float32(i) + 0.5)
	}

	return b.NewRecord()
}

func TestParquetWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.parquet")

	rec := buildRecord(t)
	defer rec.Release()

	w, err := DefaultFactory.Create(core.WriterConfig{
		Format: core.FormatParquet,
		Path:   path,
	})
	require.NoError(t, err)
	require.NoError(t, w.Write(context.Background(), rec))
	require.NoError(t, w.Close())

	r, err := readers.OpenRows(path)
	require.NoError(t, err)
	defer r.Close()

	row, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(100), row["id"])
	assert.Equal(t, "row", row["name"])

	n, err := readers.CountRows(path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestJSONWriterEmbedsTaggedColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	rec := buildRecord(t)
	defer rec.Release()

	w, err := DefaultFactory.Create(core.WriterConfig{
		Format: core.FormatJSON,
		Path:   path,
	})
	require.NoError(t, err)
	require.NoError(t, w.Write(context.Background(), rec))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	sc := bufio.NewScanner(f)
	lines := 0
	for sc.Scan() {
		var row map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &row))

		// The tagged column lands as a nested object, not a quoted string.
		doc, ok := row["doc"].(map[string]any)
		require.True(t, ok, "doc should be an embedded object, got %T", row["doc"])
		assert.Equal(t, float64(1), doc["k"])

		// The untagged column stays a plain string.
		_, ok = row["name"].(string)
		assert.True(t, ok)

		vec, ok := row["vec"].([]any)
		require.True(t, ok)
		assert.Len(t, vec, 2)
		lines++
	}
	require.NoError(t, sc.Err())
	assert.Equal(t, 3, lines)
}

func TestJSONWriterCancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	rec := buildRecord(t)
	defer rec.Release()

	w, err := NewJSONWriter(core.WriterConfig{Format: core.FormatJSON, Path: path})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Write(ctx, rec), context.Canceled)
}
