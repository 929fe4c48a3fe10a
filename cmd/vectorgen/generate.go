package main

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/TFMV/vectorgen/logger"
	"github.com/TFMV/vectorgen/pkg/generator"
	"github.com/TFMV/vectorgen/pkg/schema"
	"github.com/TFMV/vectorgen/utils"
)

// GenerateOptions holds the generate command's flag values.
type GenerateOptions struct {
	SchemaPath   string
	BuiltinID    string
	Rows         int64
	BatchSize    int64
	MaxRows      int64
	MaxSizeMB    int64
	Seed         int64
	Format       string
	OutputDir    string
	ValidateOnly bool
	Preview      bool
	NoProgress   bool
}

const previewRows = 5

func newGenerateCommand() *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic dataset from a schema",
		Long: `Generate a synthetic dataset from a schema file (--schema) or a named
catalog schema (--builtin). Output is one or more partitioned data files
plus a meta.json manifest.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.SchemaPath, "schema", "s", "", "schema file (json or yaml)")
	cmd.Flags().StringVarP(&opts.BuiltinID, "builtin", "b", "", "built-in or catalog schema id")
	cmd.Flags().Int64VarP(&opts.Rows, "rows", "r", 0, "total rows to generate")
	cmd.Flags().Int64Var(&opts.BatchSize, "batch-size", 0, "batch size hint")
	cmd.Flags().Int64Var(&opts.MaxRows, "max-rows-per-file", 0, "max rows per output file")
	cmd.Flags().Int64Var(&opts.MaxSizeMB, "max-file-size", 0, "recorded max file size in MB")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed for reproducible output")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "output format (parquet or json)")
	cmd.Flags().StringVarP(&opts.OutputDir, "out", "o", "", "output directory")
	cmd.Flags().BoolVar(&opts.ValidateOnly, "validate-only", false, "validate the schema and exit")
	cmd.Flags().BoolVar(&opts.Preview, "preview", false, "print sample rows instead of writing files")
	cmd.Flags().BoolVar(&opts.NoProgress, "no-progress", false, "disable the progress spinner")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *GenerateOptions) error {
	s, err := resolveSchema(opts.SchemaPath, opts.BuiltinID)
	if err != nil {
		var vErr *schema.ValidationError
		if errors.As(err, &vErr) {
			fmt.Println("Schema validation failed:")
			for _, iss := range vErr.Issues {
				fmt.Printf("  %s: %s\n", iss.Path, iss.Reason)
			}
		}
		return err
	}

	if opts.ValidateOnly {
		fmt.Printf("Schema %q is valid (%d fields).\n", s.CollectionName, len(s.Fields))
		return nil
	}

	runOpts := buildRunOptions(cmd, opts)

	if opts.Preview {
		return printPreview(s, runOpts)
	}

	engine, err := generator.NewEngine(s, runOpts, logger.GetLogger())
	if err != nil {
		return err
	}

	var spin *spinner.Spinner
	if !opts.NoProgress {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		spin.Suffix = " generating..."
		spin.Start()
		engine.OnProgress = func(fileIdx, totalFiles int, rowsDone, totalRows int64) {
			spin.Suffix = fmt.Sprintf(" generating... %d/%d rows (%d/%d files)",
				rowsDone, totalRows, fileIdx, totalFiles)
		}
		defer spin.Stop()
	}

	manifest, err := engine.Run(cmd.Context())
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}

	info := manifest.GenerationInfo
	fmt.Printf("Generated %d rows in %d file(s) under %s (%.0f rows/s).\n",
		info.TotalRows, info.FileCount, runOpts.OutputDir, info.RowsPerSecond)
	return nil
}

// buildRunOptions layers flag values over config-file values over
// defaults.
func buildRunOptions(cmd *cobra.Command, opts *GenerateOptions) generator.RunOptions {
	runOpts := generator.DefaultRunOptions()
	runOpts.TotalRows = cfg.Generate.Rows
	runOpts.BatchSize = cfg.Generate.BatchSize
	runOpts.MaxRowsPerFile = cfg.Generate.MaxRowsPerFile
	runOpts.MaxFileSizeMB = cfg.Generate.MaxFileSizeMB
	runOpts.Format = cfg.Generate.Format
	runOpts.OutputDir = cfg.Generate.OutputDir

	if opts.Rows > 0 {
		runOpts.TotalRows = opts.Rows
	}
	if opts.BatchSize > 0 {
		runOpts.BatchSize = opts.BatchSize
	}
	if opts.MaxRows > 0 {
		runOpts.MaxRowsPerFile = opts.MaxRows
	}
	if opts.MaxSizeMB > 0 {
		runOpts.MaxFileSizeMB = opts.MaxSizeMB
	}
	if opts.Format != "" {
		runOpts.Format = opts.Format
	}
	if opts.OutputDir != "" {
		runOpts.OutputDir = opts.OutputDir
	}
	if cmd.Flags().Changed("seed") {
		seed := opts.Seed
		runOpts.Seed = &seed
	}
	return runOpts
}

// resolveSchema loads a schema from a file or the catalog. Exactly one
// source must be given.
func resolveSchema(path, builtinID string) (*schema.CollectionSchema, error) {
	switch {
	case path != "" && builtinID != "":
		return nil, fmt.Errorf("--schema and --builtin are mutually exclusive")
	case path != "":
		return schema.Load(path)
	case builtinID != "":
		mgr, err := schema.NewManager("")
		if err != nil {
			return nil, err
		}
		return mgr.Get(builtinID)
	default:
		return nil, fmt.Errorf("either --schema or --builtin is required")
	}
}

// printPreview assembles a few rows in memory and prints them as a table
// without writing any files.
func printPreview(s *schema.CollectionSchema, runOpts generator.RunOptions) error {
	var rngSeed int64
	if runOpts.Seed != nil {
		rngSeed = *runOpts.Seed
	} else {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))
	seq := generator.NewPrimaryKeySequencer(runOpts.Seed)

	assembler, err := generator.NewColumnAssembler(s, rng, seq, memory.NewGoAllocator())
	if err != nil {
		return err
	}
	rec, err := assembler.AssembleBatch(0, previewRows)
	if err != nil {
		return err
	}
	defer rec.Release()

	columns := make([]string, 0, len(s.OutputFields()))
	for _, f := range s.OutputFields() {
		columns = append(columns, f.Name)
	}
	fmt.Printf("Preview of %q (%d rows):\n\n", s.CollectionName, previewRows)
	fmt.Print(utils.FormatTable(columns, utils.RecordRows(rec, previewRows)))
	return nil
}
