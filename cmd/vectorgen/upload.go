package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TFMV/vectorgen/integrations"
	"github.com/TFMV/vectorgen/logger"
)

func newUploadCommand() *cobra.Command {
	var (
		bucket   string
		prefix   string
		region   string
		endpoint string
	)

	cmd := &cobra.Command{
		Use:   "upload <dir>",
		Short: "Upload a generated directory to S3-compatible object storage",
		Long: `Upload copies the data files and manifest of a generated directory to an
S3 bucket under <prefix>/<collection>/, printing the object URIs. A
custom --endpoint selects a MinIO or other S3-compatible store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := cfg.S3
			if bucket != "" {
				sc.Bucket = bucket
			}
			if prefix != "" {
				sc.Prefix = prefix
			}
			if region != "" {
				sc.Region = region
			}
			if endpoint != "" {
				sc.Endpoint = endpoint
			}
			if sc.Bucket == "" {
				return fmt.Errorf("no bucket: pass --bucket or set s3.bucket in the config")
			}

			ctx := cmd.Context()
			uploader, err := integrations.NewS3Uploader(ctx, sc, logger.GetLogger())
			if err != nil {
				return err
			}

			result, err := uploader.UploadDir(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Uploaded %d data file(s) to bucket %q:\n", len(result.DataURIs), result.Bucket)
			for _, uri := range result.DataURIs {
				fmt.Println("  " + uri)
			}
			fmt.Println("Manifest: " + result.MetaURI)
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "target bucket (overrides config)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "key prefix (overrides config)")
	cmd.Flags().StringVar(&region, "region", "", "AWS region (overrides config)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "custom S3 endpoint for MinIO-style stores")

	return cmd
}
