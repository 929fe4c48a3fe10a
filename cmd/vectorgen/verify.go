package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/TFMV/vectorgen/logger"
	"github.com/TFMV/vectorgen/metrics"
	"github.com/TFMV/vectorgen/report"
	"github.com/TFMV/vectorgen/validation"
)

func newVerifyCommand() *cobra.Command {
	var (
		format     string
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "verify <dir>",
		Short: "Re-read a generated directory and check it against its manifest",
		Long: `Verify re-reads every data file of a generated directory and checks row
conservation, primary-key ordering, dense vector normalization, and
declared value bounds against the meta.json manifest. The command exits
nonzero when any check fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args[0], format, reportPath)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "report format (text, json, or html)")
	cmd.Flags().StringVar(&reportPath, "report", "", "also write the report to this file")

	return cmd
}

func runVerify(dir, format, reportPath string) error {
	gen, err := report.ForFormat(format)
	if err != nil {
		return err
	}

	manifest, err := metrics.LoadManifest(dir)
	if err != nil {
		return err
	}

	verifier := validation.NewVerifier(logger.GetLogger())
	result, err := verifier.Verify(dir)
	if err != nil {
		return err
	}

	rep := report.Report{
		Manifest:     *manifest,
		Verification: result,
		GeneratedAt:  time.Now(),
	}

	out, err := gen.Generate(rep)
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if reportPath != "" {
		if err := gen.SaveToFile(rep, reportPath); err != nil {
			return fmt.Errorf("writing report to %s: %w", reportPath, err)
		}
		fmt.Printf("Report written to %s\n", reportPath)
	}

	if !result.Passed {
		return fmt.Errorf("verification failed: %d check(s) did not pass", failedChecks(result))
	}
	return nil
}

func failedChecks(r *metrics.VerificationReport) int {
	n := 0
	for _, c := range r.Checks {
		if !c.Passed {
			n++
		}
	}
	return n
}
