package integration

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/vectorgen/metrics"
	"github.com/TFMV/vectorgen/pkg/generator"
	"github.com/TFMV/vectorgen/pkg/readers"
	"github.com/TFMV/vectorgen/pkg/schema"
	"github.com/TFMV/vectorgen/validation"
)

// TestGenerateVerifyPipeline runs the full path a user would: load a
// schema document, generate a partitioned dataset, read it back, and
// verify it against its manifest.
func TestGenerateVerifyPipeline(t *testing.T) {
	schemaDoc := `{
		"collection_name": "articles",
		"fields": [
			{"name": "article_id", "type": "INT64", "is_primary": true},
			{"name": "headline", "type": "VARCHAR", "max_length": 120},
			{"name": "summary", "type": "VARCHAR", "max_length": 10},
			{"name": "topics", "type": "ARRAY", "element_type": "VARCHAR", "max_capacity": 4, "max_length": 16},
			{"name": "relevance", "type": "DOUBLE", "min": 0.0, "max": 1.0},
			{"name": "metadata", "type": "JSON", "nullable": true},
			{"name": "embedding", "type": "FLOAT_VECTOR", "dim": 32},
			{"name": "keywords", "type": "SPARSE_FLOAT_VECTOR", "dim": 500}
		]
	}`
	schemaPath := filepath.Join(t.TempDir(), "articles.json")
	require.NoError(t, os.WriteFile(schemaPath, []byte(schemaDoc), 0644))

	s, err := schema.Load(schemaPath)
	require.NoError(t, err)

	dir := t.TempDir()
	seed := int64(2024)
	opts := generator.DefaultRunOptions()
	opts.TotalRows = 25
	opts.MaxRowsPerFile = 10
	opts.OutputDir = dir
	opts.Format = "json"
	opts.Seed = &seed

	engine, err := generator.NewEngine(s, opts, nil)
	require.NoError(t, err)
	manifest, err := engine.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 3, manifest.GenerationInfo.FileCount)
	require.Equal(t, []string{
		"data-00001-of-00003.json",
		"data-00002-of-00003.json",
		"data-00003-of-00003.json",
	}, manifest.GenerationInfo.DataFiles)

	// Primary keys run contiguously across the three files, and every
	// declared cap holds in the data actually written.
	expected := (seed * 1000) << 18
	for _, name := range manifest.GenerationInfo.DataFiles {
		r, err := readers.OpenRows(filepath.Join(dir, name))
		require.NoError(t, err)
		for {
			row, err := r.Next()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)

			id, err := row["article_id"].(json.Number).Int64()
			require.NoError(t, err)
			assert.Equal(t, expected, id)
			expected++

			if summary, ok := row["summary"].(string); ok {
				assert.LessOrEqual(t, len(summary), 10)
			}
			if topics, ok := row["topics"].([]any); ok {
				assert.LessOrEqual(t, len(topics), 4)
			}
			if rel, ok := row["relevance"].(json.Number); ok {
				v, err := rel.Float64()
				require.NoError(t, err)
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
			}
			if kw, ok := row["keywords"].(map[string]any); ok {
				assert.NotEmpty(t, kw)
			}
		}
		require.NoError(t, r.Close())
	}

	report, err := validation.NewVerifier(nil).Verify(dir)
	require.NoError(t, err)
	assert.True(t, report.Passed, "verification checks: %+v", report.Checks)
}

// TestParquetAndJSONAgreeOnKeys generates the same seeded run in both
// formats and checks that the key columns match, so format choice never
// changes the data identity.
func TestParquetAndJSONAgreeOnKeys(t *testing.T) {
	s := &schema.CollectionSchema{
		CollectionName: "dual",
		Fields: []schema.FieldSpec{
			{Name: "id", Type: schema.FieldTypeInt64, IsPrimary: true},
			{Name: "vec", Type: schema.FieldTypeFloatVector, Dim: 8},
		},
	}
	seed := int64(555)

	generate := func(format string) string {
		dir := t.TempDir()
		opts := generator.DefaultRunOptions()
		opts.TotalRows = 30
		opts.OutputDir = dir
		opts.Format = format
		opts.Seed = &seed
		e, err := generator.NewEngine(s, opts, nil)
		require.NoError(t, err)
		_, err = e.Run(context.Background())
		require.NoError(t, err)
		return dir
	}

	readKeys := func(path string) []int64 {
		r, err := readers.OpenRows(path)
		require.NoError(t, err)
		defer r.Close()
		var keys []int64
		for {
			row, err := r.Next()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			switch v := row["id"].(type) {
			case int64:
				keys = append(keys, v)
			case json.Number:
				k, err := v.Int64()
				require.NoError(t, err)
				keys = append(keys, k)
			default:
				t.Fatalf("unexpected id type %T", row["id"])
			}
		}
		return keys
	}

	parquetDir := generate("parquet")
	jsonDir := generate("json")

	parquetKeys := readKeys(filepath.Join(parquetDir, "data.parquet"))
	jsonKeys := readKeys(filepath.Join(jsonDir, "data.json"))
	require.Len(t, parquetKeys, 30)
	assert.Equal(t, parquetKeys, jsonKeys)
}

// TestManifestDescribesRun checks that meta.json alone is enough to
// reproduce and audit a run: schema, seed, partitioning, and timing all
// survive persistence.
func TestManifestDescribesRun(t *testing.T) {
	s := &schema.CollectionSchema{
		CollectionName: "audited",
		Fields: []schema.FieldSpec{
			{Name: "id", Type: schema.FieldTypeVarChar, IsPrimary: true, MaxLength: 64},
			{Name: "tags", Type: schema.FieldTypeArray, ElementType: schema.FieldTypeInt32, MaxCapacity: 6},
		},
	}
	dir := t.TempDir()
	seed := int64(99)
	opts := generator.DefaultRunOptions()
	opts.TotalRows = 12
	opts.MaxRowsPerFile = 5
	opts.OutputDir = dir
	opts.Seed = &seed

	e, err := generator.NewEngine(s, opts, nil)
	require.NoError(t, err)
	_, err = e.Run(context.Background())
	require.NoError(t, err)

	m, err := metrics.LoadManifest(dir)
	require.NoError(t, err)

	assert.Equal(t, "audited", m.Schema.CollectionName)
	require.Len(t, m.Schema.Fields, 2)
	assert.Equal(t, schema.FieldTypeVarChar, m.Schema.Fields[0].Type)
	assert.True(t, m.Schema.Fields[0].IsPrimary)
	assert.Equal(t, schema.FieldTypeArray, m.Schema.Fields[1].Type)
	assert.Equal(t, schema.FieldTypeInt32, m.Schema.Fields[1].ElementType)

	info := m.GenerationInfo
	assert.Equal(t, int64(12), info.TotalRows)
	require.NotNil(t, info.Seed)
	assert.Equal(t, seed, *info.Seed)
	assert.Equal(t, 3, info.FileCount)
	assert.GreaterOrEqual(t, info.TotalTime, 0.0)

	// A VarChar key still orders correctly when parsed back.
	var last int64 = -1
	for _, name := range info.DataFiles {
		r, err := readers.OpenRows(filepath.Join(dir, name))
		require.NoError(t, err)
		for {
			row, err := r.Next()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			key, ok := row["id"].(string)
			require.True(t, ok, "id should be a string, got %T", row["id"])
			parsed, serr := strconv.ParseInt(key, 10, 64)
			require.NoError(t, serr)
			assert.Greater(t, parsed, last)
			last = parsed
		}
		require.NoError(t, r.Close())
	}
}
