// Package metrics accumulates generation statistics and persists the run
// manifest written alongside the data files.
package metrics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/TFMV/vectorgen/pkg/schema"
)

// ManifestFileName is the manifest file written next to the data files,
// regardless of the chosen output format.
const ManifestFileName = "meta.json"

// -----------------------------
// Manifest Types
// -----------------------------

// GenerationInfo summarizes one generation run. Durations are float
// seconds.
type GenerationInfo struct {
	TotalRows      int64    `json:"total_rows"`
	Format         string   `json:"format"`
	Seed           *int64   `json:"seed"`
	DataFiles      []string `json:"data_files"`
	FileCount      int      `json:"file_count"`
	MaxRowsPerFile int64    `json:"max_rows_per_file"`
	MaxFileSizeMB  int64    `json:"max_file_size_mb"`
	GenerationTime float64  `json:"generation_time"`
	WriteTime      float64  `json:"write_time"`
	TotalTime      float64  `json:"total_time"`
	RowsPerSecond  float64  `json:"rows_per_second"`
}

// Manifest is the persisted run summary: the schema that produced the data
// plus the generation statistics.
type Manifest struct {
	Schema         schema.CollectionSchema `json:"schema"`
	GenerationInfo GenerationInfo          `json:"generation_info"`
}

// -----------------------------
// Recorder
// -----------------------------

// Recorder accumulates per-file timing and file statistics while a run is
// in flight, and finalizes them into a Manifest.
type Recorder struct {
	schema         schema.CollectionSchema
	format         string
	seed           *int64
	maxRowsPerFile int64
	maxFileSizeMB  int64

	dataFiles      []string
	totalRows      int64
	generationTime time.Duration
	writeTime      time.Duration
}

// NewRecorder starts recording a run with the given fixed parameters.
func NewRecorder(s schema.CollectionSchema, format string, seed *int64, maxRowsPerFile, maxFileSizeMB int64) *Recorder {
	return &Recorder{
		schema:         s,
		format:         format,
		seed:           seed,
		maxRowsPerFile: maxRowsPerFile,
		maxFileSizeMB:  maxFileSizeMB,
	}
}

// RecordFile adds one written file's name, row count, and durations.
func (r *Recorder) RecordFile(name string, rows int64, genTime, writeTime time.Duration) {
	r.dataFiles = append(r.dataFiles, name)
	r.totalRows += rows
	r.generationTime += genTime
	r.writeTime += writeTime
}

// Finalize derives the totals and returns the completed manifest.
func (r *Recorder) Finalize() Manifest {
	total := r.generationTime + r.writeTime
	info := GenerationInfo{
		TotalRows:      r.totalRows,
		Format:         r.format,
		Seed:           r.seed,
		DataFiles:      r.dataFiles,
		FileCount:      len(r.dataFiles),
		MaxRowsPerFile: r.maxRowsPerFile,
		MaxFileSizeMB:  r.maxFileSizeMB,
		GenerationTime: r.generationTime.Seconds(),
		WriteTime:      r.writeTime.Seconds(),
		TotalTime:      total.Seconds(),
	}
	if total > 0 {
		info.RowsPerSecond = float64(r.totalRows) / total.Seconds()
	}
	return Manifest{
		Schema:         r.schema,
		GenerationInfo: info,
	}
}

// -----------------------------
// Manifest Storage
// -----------------------------

// ManifestStore abstracts manifest persistence.
type ManifestStore interface {
	Save(m Manifest) error
	SaveWithContext(ctx context.Context, m Manifest) error
}

// JSONManifestStore stores the manifest as indented JSON in an output
// directory.
type JSONManifestStore struct {
	Dir string
}

func (j *JSONManifestStore) Save(m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	path := filepath.Join(j.Dir, ManifestFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

func (j *JSONManifestStore) SaveWithContext(ctx context.Context, m Manifest) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return j.Save(m)
	}
}

// -----------------------------
// Verification Result Types
// -----------------------------

// CheckResult is one verification check's outcome.
type CheckResult struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Details string `json:"details,omitempty"`
}

// VerificationReport collects the results of re-reading a generated
// output directory and checking it against its manifest.
type VerificationReport struct {
	Dir        string        `json:"dir"`
	Collection string        `json:"collection"`
	Passed     bool          `json:"passed"`
	Checks     []CheckResult `json:"checks"`
}

// AddCheck appends one check result and folds it into the overall status.
func (r *VerificationReport) AddCheck(name string, passed bool, format string, a ...any) {
	r.Checks = append(r.Checks, CheckResult{
		Name:    name,
		Passed:  passed,
		Details: fmt.Sprintf(format, a...),
	})
	if !passed {
		r.Passed = false
	}
}

// LoadManifest reads the manifest from a generated output directory.
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &m, nil
}
