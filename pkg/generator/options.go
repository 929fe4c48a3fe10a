package generator

import "fmt"

// Default run parameters, matching the documented CLI defaults.
const (
	DefaultRows           = 1000
	DefaultBatchSize      = 50000
	DefaultMaxRowsPerFile = 1000000
	DefaultMaxFileSizeMB  = 256
)

// RunOptions captures one generation invocation. Values are fixed before
// the run starts and never change while it is in flight.
type RunOptions struct {
	TotalRows      int64
	BatchSize      int64
	MaxRowsPerFile int64
	MaxFileSizeMB  int64
	Format         string
	OutputDir      string

	// Seed enables reproducible output when set. A nil seed draws the
	// random source and primary-key base from the wall clock.
	Seed *int64
}

// DefaultRunOptions returns options with every knob at its default.
func DefaultRunOptions() RunOptions {
	return RunOptions{
		TotalRows:      DefaultRows,
		BatchSize:      DefaultBatchSize,
		MaxRowsPerFile: DefaultMaxRowsPerFile,
		MaxFileSizeMB:  DefaultMaxFileSizeMB,
		Format:         "parquet",
		OutputDir:      ".",
	}
}

// Validate checks the run invariants.
func (o *RunOptions) Validate() error {
	if o.TotalRows <= 0 {
		return fmt.Errorf("total rows must be positive, got %d", o.TotalRows)
	}
	if o.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", o.BatchSize)
	}
	if o.MaxRowsPerFile <= 0 {
		return fmt.Errorf("max rows per file must be positive, got %d", o.MaxRowsPerFile)
	}
	return nil
}

// FilePartition describes one physical output file of a run.
type FilePartition struct {
	Index      int
	TotalFiles int
	RowCount   int64
	Path       string
}
