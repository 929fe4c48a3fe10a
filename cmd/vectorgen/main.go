// Package main provides the vectorgen command line tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/TFMV/vectorgen/config"
	"github.com/TFMV/vectorgen/logger"
	"github.com/TFMV/vectorgen/version"
)

var (
	cfg      *config.Config
	cfgPath  string
	logLevel string
	logFile  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "vectorgen",
		Short: "vectorgen generates schema-conformant synthetic vector datasets",
		Long: `vectorgen generates large synthetic datasets for Milvus-style collection
schemas: scalars, text, JSON documents, arrays, and several vector
encodings, written as partitioned Parquet or JSON Lines files with a
reproducible manifest.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadConfig(cfgPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			level := cfg.Log.Level
			if logLevel != "" {
				level = logLevel
			}
			file := cfg.Log.File
			if logFile != "" {
				file = logFile
			}
			logger.InitLogger(logger.Options{Level: level, File: file})
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also log JSON to this file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the vectorgen version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.Info())
		},
	})

	rootCmd.AddCommand(newGenerateCommand())
	rootCmd.AddCommand(newSchemaCommand())
	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newVerifyCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newUploadCommand())
	rootCmd.AddCommand(newServeCommand())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}
