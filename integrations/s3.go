package integrations

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/TFMV/vectorgen/config"
	"github.com/TFMV/vectorgen/metrics"
)

// S3Uploader uploads a generated output directory to S3 (or an
// S3-compatible store such as MinIO), producing object URIs usable as
// bulk-import sources.
type S3Uploader struct {
	client *s3.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// NewS3Uploader builds an uploader from configuration. A non-empty
// endpoint selects an S3-compatible store with path-style addressing.
func NewS3Uploader(ctx context.Context, cfg config.S3Config, logger *zap.Logger) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: logger,
	}, nil
}

// UploadResult lists the uploaded objects.
type UploadResult struct {
	Bucket   string   `json:"bucket"`
	DataURIs []string `json:"data_uris"`
	MetaURI  string   `json:"meta_uri"`
}

// UploadDir uploads the manifest and every data file of a generated
// directory under prefix/collection/, returning s3:// URIs for the data
// files.
func (u *S3Uploader) UploadDir(ctx context.Context, dir string) (*UploadResult, error) {
	manifest, err := metrics.LoadManifest(dir)
	if err != nil {
		return nil, err
	}

	keyBase := path.Join(u.prefix, manifest.Schema.CollectionName)
	result := &UploadResult{Bucket: u.bucket}

	for _, name := range manifest.GenerationInfo.DataFiles {
		key := path.Join(keyBase, name)
		if err := u.uploadFile(ctx, filepath.Join(dir, name), key); err != nil {
			return nil, err
		}
		result.DataURIs = append(result.DataURIs, fmt.Sprintf("s3://%s/%s", u.bucket, key))
	}

	metaKey := path.Join(keyBase, metrics.ManifestFileName)
	if err := u.uploadFile(ctx, filepath.Join(dir, metrics.ManifestFileName), metaKey); err != nil {
		return nil, err
	}
	result.MetaURI = fmt.Sprintf("s3://%s/%s", u.bucket, metaKey)

	u.logger.Info("uploaded directory",
		zap.String("dir", dir),
		zap.String("bucket", u.bucket),
		zap.Int("files", len(result.DataURIs)+1))

	return result, nil
}

// List returns object keys under the uploader's prefix for a collection.
func (u *S3Uploader) List(ctx context.Context, collection string) ([]string, error) {
	fullPrefix := path.Join(u.prefix, collection)
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(u.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(u.bucket),
		Prefix: aws.String(fullPrefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing objects: %w", err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

func (u *S3Uploader) uploadFile(ctx context.Context, local, key string) error {
	f, err := os.Open(local)
	if err != nil {
		return fmt.Errorf("opening %s: %w", local, err)
	}
	defer f.Close()

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("putting object %s: %w", key, err)
	}
	return nil
}
