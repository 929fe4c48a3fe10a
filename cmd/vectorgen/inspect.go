package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/TFMV/vectorgen/metrics"
	"github.com/TFMV/vectorgen/pkg/readers"
	"github.com/TFMV/vectorgen/report"
	"github.com/TFMV/vectorgen/utils"
)

func newInspectCommand() *cobra.Command {
	var sampleRows int

	cmd := &cobra.Command{
		Use:   "inspect <dir>",
		Short: "Summarize a generated output directory",
		Long: `Inspect reads the meta.json manifest of a generated directory, prints a
summary of the run, and shows the first rows of the first data file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0], sampleRows)
		},
	}

	cmd.Flags().IntVar(&sampleRows, "rows", 10, "number of sample rows to print (0 to skip)")

	return cmd
}

func runInspect(dir string, sampleRows int) error {
	manifest, err := metrics.LoadManifest(dir)
	if err != nil {
		return err
	}

	gen := &report.TextGenerator{}
	out, err := gen.Generate(report.Report{Manifest: *manifest, GeneratedAt: time.Now()})
	if err != nil {
		return err
	}
	fmt.Print(string(out))

	if sampleRows <= 0 || len(manifest.GenerationInfo.DataFiles) == 0 {
		return nil
	}

	first := manifest.GenerationInfo.DataFiles[0]
	rows, err := readSample(filepath.Join(dir, first), sampleRows)
	if err != nil {
		return fmt.Errorf("reading %s: %w", first, err)
	}

	columns := make([]string, 0, len(manifest.Schema.Fields))
	for _, f := range manifest.Schema.OutputFields() {
		columns = append(columns, f.Name)
	}

	fmt.Printf("\nFirst %d row(s) of %s:\n", len(rows), first)
	fmt.Print(utils.FormatTable(columns, rows))
	return nil
}

func readSample(path string, limit int) ([]map[string]any, error) {
	reader, err := readers.OpenRows(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	rows := make([]map[string]any, 0, limit)
	for len(rows) < limit {
		row, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
