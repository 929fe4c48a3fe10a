// Package generator implements the generation-and-partitioning engine:
// per-type column generators, primary-key sequencing, batch planning, and
// the sequential run loop that writes partitioned files plus a manifest.
package generator

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"

	"github.com/TFMV/vectorgen/metrics"
	"github.com/TFMV/vectorgen/pkg/core"
	"github.com/TFMV/vectorgen/pkg/schema"
	"github.com/TFMV/vectorgen/pkg/writers"
)

// Progress is invoked after every written file, for CLI progress display.
type Progress func(fileIndex, totalFiles int, rowsDone, totalRows int64)

// Engine drives one generation run: plan the partitioning, then loop
// assemble-and-write until all rows are produced. The loop is sequential;
// only the primary-key offset and the remaining-row counter carry state
// between iterations.
type Engine struct {
	schema  *schema.CollectionSchema
	opts    RunOptions
	logger  *zap.Logger
	factory *writers.Factory

	// OnProgress, when set, is called after each file is written.
	OnProgress Progress
}

// NewEngine validates the run options against the schema and returns an
// engine ready to run. An unsupported output format is rejected here,
// before any file is created.
func NewEngine(s *schema.CollectionSchema, opts RunOptions, logger *zap.Logger) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := schema.Validate(s); err != nil {
		return nil, err
	}
	if !writers.DefaultFactory.Supported(opts.Format) {
		return nil, &writers.UnsupportedFormatError{Format: opts.Format}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		schema:  s,
		opts:    opts,
		logger:  logger,
		factory: writers.DefaultFactory,
	}, nil
}

// Run generates all rows and returns the finalized manifest, which has
// also been written to the output directory as meta.json.
func (e *Engine) Run(ctx context.Context) (*metrics.Manifest, error) {
	if err := os.MkdirAll(e.opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var rngSeed int64
	if e.opts.Seed != nil {
		rngSeed = *e.opts.Seed
	} else {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))

	seq := NewPrimaryKeySequencer(e.opts.Seed)
	assembler, err := NewColumnAssembler(e.schema, rng, seq, memory.NewGoAllocator())
	if err != nil {
		return nil, err
	}

	plan := PlanBatches(e.opts.TotalRows, e.opts.BatchSize, e.opts.MaxRowsPerFile)
	recorder := metrics.NewRecorder(*e.schema, e.opts.Format,
		e.opts.Seed, e.opts.MaxRowsPerFile, e.opts.MaxFileSizeMB)

	e.logger.Info("starting generation",
		zap.String("collection", e.schema.CollectionName),
		zap.Int64("rows", plan.TotalRows),
		zap.Int("files", plan.TotalFiles),
		zap.String("format", e.opts.Format))

	ext := core.Extension(e.opts.Format)
	remaining := plan.TotalRows
	var rowOffset int64

	for fileIdx := 1; remaining > 0; fileIdx++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		current := plan.NextRows(remaining)
		name := plan.FileName(fileIdx, ext)
		path := filepath.Join(e.opts.OutputDir, name)

		genStart := time.Now()
		rec, err := assembler.AssembleBatch(rowOffset, current)
		if err != nil {
			return nil, err
		}
		genTime := time.Since(genStart)

		writeStart := time.Now()
		err = e.writeFile(ctx, path, rec)
		rec.Release()
		if err != nil {
			return nil, fmt.Errorf("writing %s: %w", name, err)
		}
		writeTime := time.Since(writeStart)

		recorder.RecordFile(name, current, genTime, writeTime)
		rowOffset += current
		remaining -= current

		e.logger.Debug("wrote file",
			zap.String("file", name),
			zap.Int64("rows", current),
			zap.Duration("generate", genTime),
			zap.Duration("write", writeTime))

		if e.OnProgress != nil {
			e.OnProgress(fileIdx, plan.TotalFiles, rowOffset, plan.TotalRows)
		}
	}

	manifest := recorder.Finalize()
	store := &metrics.JSONManifestStore{Dir: e.opts.OutputDir}
	if err := store.SaveWithContext(ctx, manifest); err != nil {
		return nil, err
	}

	e.logger.Info("generation complete",
		zap.Int64("rows", manifest.GenerationInfo.TotalRows),
		zap.Int("files", manifest.GenerationInfo.FileCount),
		zap.Float64("rows_per_second", manifest.GenerationInfo.RowsPerSecond))

	return &manifest, nil
}

// writeFile serializes one record batch as one output file.
func (e *Engine) writeFile(ctx context.Context, path string, rec arrow.Record) error {
	w, err := e.factory.Create(core.WriterConfig{
		Format:       e.opts.Format,
		Path:         path,
		RowGroupSize: rec.NumRows(),
	})
	if err != nil {
		return err
	}
	if err := w.Write(ctx, rec); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
