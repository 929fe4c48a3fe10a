package validation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/vectorgen/metrics"
	"github.com/TFMV/vectorgen/pkg/generator"
	"github.com/TFMV/vectorgen/pkg/schema"
)

func generateDataset(t *testing.T, format string, rows, maxRowsPerFile int64) string {
	t.Helper()
	dir := t.TempDir()
	s := &schema.CollectionSchema{
		CollectionName: "verify_me",
		Fields: []schema.FieldSpec{
			{Name: "id", Type: schema.FieldTypeInt64, IsPrimary: true},
			{Name: "title", Type: schema.FieldTypeVarChar, MaxLength: 32},
			{Name: "score", Type: schema.FieldTypeDouble, Min: ptr(0.0), Max: ptr(100.0)},
			{Name: "vec", Type: schema.FieldTypeFloatVector, Dim: 16},
		},
	}
	seed := int64(314)
	opts := generator.DefaultRunOptions()
	opts.TotalRows = rows
	opts.MaxRowsPerFile = maxRowsPerFile
	opts.OutputDir = dir
	opts.Format = format
	opts.Seed = &seed

	e, err := generator.NewEngine(s, opts, nil)
	require.NoError(t, err)
	_, err = e.Run(context.Background())
	require.NoError(t, err)
	return dir
}

func ptr(v float64) *float64 { return &v }

func checkByName(t *testing.T, r *metrics.VerificationReport, name string) metrics.CheckResult {
	t.Helper()
	for _, c := range r.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no check named %q in %+v", name, r.Checks)
	return metrics.CheckResult{}
}

func TestVerifyCleanParquetDataset(t *testing.T) {
	dir := generateDataset(t, "parquet", 100, 1000000)

	report, err := NewVerifier(nil).Verify(dir)
	require.NoError(t, err)
	assert.True(t, report.Passed)
	assert.Equal(t, "verify_me", report.Collection)

	assert.True(t, checkByName(t, report, "data files present").Passed)
	assert.True(t, checkByName(t, report, "row conservation").Passed)
	assert.True(t, checkByName(t, report, "primary key order").Passed)
	assert.True(t, checkByName(t, report, "vector norms: vec").Passed)
	assert.True(t, checkByName(t, report, "value bounds").Passed)
}

func TestVerifyCleanMultiFileJSONDataset(t *testing.T) {
	dir := generateDataset(t, "json", 25, 10)

	report, err := NewVerifier(nil).Verify(dir)
	require.NoError(t, err)
	assert.True(t, report.Passed, "checks: %+v", report.Checks)

	c := checkByName(t, report, "row conservation")
	assert.Contains(t, c.Details, "read 25 rows across 3 files")
}

func TestVerifyDetectsMissingDataFile(t *testing.T) {
	dir := generateDataset(t, "json", 25, 10)
	require.NoError(t, os.Remove(filepath.Join(dir, "data-00002-of-00003.json")))

	report, err := NewVerifier(nil).Verify(dir)
	require.NoError(t, err)
	assert.False(t, report.Passed)
	assert.False(t, checkByName(t, report, "data files present").Passed)
}

func TestVerifyDetectsRowLoss(t *testing.T) {
	dir := generateDataset(t, "json", 20, 1000000)

	// Drop the last line of the data file; the manifest still declares 20.
	path := filepath.Join(dir, "data.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := splitLines(data)
	require.Len(t, lines, 20)
	require.NoError(t, os.WriteFile(path, joinLines(lines[:19]), 0644))

	report, err := NewVerifier(nil).Verify(dir)
	require.NoError(t, err)
	assert.False(t, report.Passed)
	assert.False(t, checkByName(t, report, "row conservation").Passed)
}

func TestVerifyDetectsKeyDisorder(t *testing.T) {
	dir := generateDataset(t, "json", 10, 1000000)

	path := filepath.Join(dir, "data.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := splitLines(data)
	require.Len(t, lines, 10)

	// Swapping two rows breaks strict ordering without changing the count.
	lines[2], lines[7] = lines[7], lines[2]
	require.NoError(t, os.WriteFile(path, joinLines(lines), 0644))

	report, err := NewVerifier(nil).Verify(dir)
	require.NoError(t, err)
	assert.False(t, report.Passed)
	assert.False(t, checkByName(t, report, "primary key order").Passed)
	assert.True(t, checkByName(t, report, "row conservation").Passed)
}

func TestVerifyDetectsBoundsViolation(t *testing.T) {
	dir := generateDataset(t, "json", 5, 1000000)

	path := filepath.Join(dir, "data.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := splitLines(data)

	// Push one score far outside its declared [0, 100] range.
	var row map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &row))
	id := row["id"]
	row["score"] = 100000.0
	row["id"] = id
	fixed, err := json.Marshal(row)
	require.NoError(t, err)
	lines[0] = fixed
	require.NoError(t, os.WriteFile(path, joinLines(lines), 0644))

	report, err := NewVerifier(nil).Verify(dir)
	require.NoError(t, err)
	assert.False(t, report.Passed)
	c := checkByName(t, report, "value bounds")
	assert.False(t, c.Passed)
	assert.Contains(t, c.Details, "score")
}

func TestVerifyMissingManifest(t *testing.T) {
	_, err := NewVerifier(nil).Verify(t.TempDir())
	assert.Error(t, err)
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				line := make([]byte, i-start)
				copy(line, data[start:i])
				lines = append(lines, line)
			}
			start = i + 1
		}
	}
	if start < len(data) {
		line := make([]byte, len(data)-start)
		copy(line, data[start:])
		lines = append(lines, line)
	}
	return lines
}

func joinLines(lines [][]byte) []byte {
	var out []byte
	for _, l := range lines {
		out = append(out, l...)
		out = append(out, '\n')
	}
	return out
}
