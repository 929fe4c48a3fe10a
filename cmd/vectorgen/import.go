package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/TFMV/vectorgen/config"
	"github.com/TFMV/vectorgen/integrations"
	"github.com/TFMV/vectorgen/logger"
)

func newImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load generated data into Milvus",
	}

	cmd.AddCommand(newImportInsertCommand())
	cmd.AddCommand(newImportBulkCommand())
	cmd.AddCommand(newImportJobsCommand())

	return cmd
}

// milvusFlags are the connection flags shared by the import subcommands.
// Empty values fall back to the loaded configuration.
type milvusFlags struct {
	URI      string
	Token    string
	Database string
}

func (f *milvusFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.URI, "uri", "", "Milvus endpoint (overrides config)")
	cmd.Flags().StringVar(&f.Token, "token", "", "Milvus auth token (overrides config)")
	cmd.Flags().StringVar(&f.Database, "database", "", "Milvus database name (overrides config)")
}

func (f *milvusFlags) resolve() (config.MilvusConfig, error) {
	mc := cfg.Milvus
	if f.URI != "" {
		mc.URI = f.URI
	}
	if f.Token != "" {
		mc.Token = f.Token
	}
	if f.Database != "" {
		mc.Database = f.Database
	}
	if mc.URI == "" {
		return mc, fmt.Errorf("no Milvus URI: pass --uri or set milvus.uri in the config")
	}
	return mc, nil
}

func newImportInsertCommand() *cobra.Command {
	conn := &milvusFlags{}
	opts := integrations.MilvusImportOptions{}

	cmd := &cobra.Command{
		Use:   "insert <dir>",
		Short: "Insert a generated directory into Milvus over gRPC",
		Long: `Insert reads the manifest and data files of a generated directory,
creates the collection from the manifest schema, and inserts the rows in
batches.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mc, err := conn.resolve()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			importer, err := integrations.NewMilvusImporter(ctx, mc, opts, logger.GetLogger())
			if err != nil {
				return err
			}
			defer importer.Close(ctx)

			result, err := importer.Import(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Inserted %d rows from %d file(s) into %q in %s.\n",
				result.RowsInserted, result.FilesRead, result.Collection,
				result.Duration.Round(time.Millisecond))
			if len(result.Indexes) > 0 {
				fmt.Printf("Indexes: %s\n", strings.Join(result.Indexes, ", "))
			}
			return nil
		},
	}

	conn.register(cmd)
	cmd.Flags().BoolVar(&opts.DropIfExists, "drop-if-exists", false, "drop an existing collection of the same name first")
	cmd.Flags().BoolVar(&opts.CreateIndexes, "index", false, "create vector indexes after insert")
	cmd.Flags().BoolVar(&opts.LoadCollection, "load", false, "load the collection into memory after insert")

	return cmd
}

func newImportBulkCommand() *cobra.Command {
	conn := &milvusFlags{}
	var (
		collection string
		files      []string
		wait       bool
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Submit a Milvus bulk-import job over REST",
		Long: `Bulk submits a server-side import job for files already reachable by the
Milvus cluster, typically object-storage paths produced by the upload
command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if collection == "" {
				return fmt.Errorf("--collection is required")
			}
			if len(files) == 0 {
				return fmt.Errorf("at least one --file is required")
			}
			mc, err := conn.resolve()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client := integrations.NewBulkImportClient(mc.URI, mc.Token, logger.GetLogger())

			groups := make([][]string, len(files))
			for i, f := range files {
				groups[i] = []string{f}
			}

			jobID, err := client.CreateJob(ctx, collection, groups)
			if err != nil {
				return err
			}
			fmt.Printf("Created import job %s for collection %q.\n", jobID, collection)

			if !wait {
				return nil
			}

			job, err := client.WaitForJob(ctx, jobID, timeout)
			if err != nil {
				return err
			}
			fmt.Printf("Job %s finished: state=%s rows=%d/%d\n",
				job.JobID, job.State, job.ImportedRows, job.TotalRows)
			return nil
		},
	}

	conn.register(cmd)
	cmd.Flags().StringVarP(&collection, "collection", "c", "", "target collection name")
	cmd.Flags().StringArrayVar(&files, "file", nil, "server-reachable data file path (repeatable)")
	cmd.Flags().BoolVar(&wait, "wait", false, "poll until the job reaches a terminal state")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "maximum time to wait with --wait")

	return cmd
}

func newImportJobsCommand() *cobra.Command {
	conn := &milvusFlags{}
	var collection string

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List bulk-import jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			mc, err := conn.resolve()
			if err != nil {
				return err
			}

			client := integrations.NewBulkImportClient(mc.URI, mc.Token, logger.GetLogger())
			jobs, err := client.ListJobs(cmd.Context(), collection)
			if err != nil {
				return err
			}

			if len(jobs) == 0 {
				fmt.Println("No import jobs found.")
				return nil
			}
			for _, j := range jobs {
				line := fmt.Sprintf("%s  %-16s  %3d%%  %s", j.JobID, j.State, j.Progress, j.CollectionName)
				if j.Reason != "" {
					line += "  (" + j.Reason + ")"
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	conn.register(cmd)
	cmd.Flags().StringVarP(&collection, "collection", "c", "", "filter jobs by collection")

	return cmd
}
