package integrations

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Bulk-import job endpoints of the Milvus v2 REST surface.
const (
	bulkImportCreatePath   = "/v2/vectordb/jobs/import/create"
	bulkImportDescribePath = "/v2/vectordb/jobs/import/describe"
	bulkImportListPath     = "/v2/vectordb/jobs/import/list"

	// bulkPollInterval is how often a waiting client re-describes its job.
	bulkPollInterval = 2 * time.Second
)

// BulkJob is the server-side state of one import job.
type BulkJob struct {
	JobID          string `json:"jobId"`
	CollectionName string `json:"collectionName"`
	State          string `json:"state"`
	Progress       int    `json:"progress"`
	ImportedRows   int64  `json:"importedRows"`
	TotalRows      int64  `json:"totalRows"`
	FileSize       int64  `json:"fileSize"`
	Reason         string `json:"reason"`
}

// Terminal job states across Milvus versions.
func (j *BulkJob) Completed() bool {
	return j.State == "ImportCompleted" || j.State == "Completed"
}

func (j *BulkJob) Failed() bool {
	return j.State == "ImportFailed" || j.State == "Failed"
}

// BulkImportClient drives Milvus bulk-import jobs over REST. The files
// must already be reachable by the server (typically uploaded to object
// storage first).
type BulkImportClient struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

// NewBulkImportClient builds a client for the given Milvus base URL.
func NewBulkImportClient(baseURL, token string, logger *zap.Logger) *BulkImportClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BulkImportClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// CreateJob submits one import job. Files are grouped the way the server
// expects: one inner list per logical file group.
func (c *BulkImportClient) CreateJob(ctx context.Context, collection string, files [][]string) (string, error) {
	body := map[string]any{
		"collectionName": collection,
		"files":          files,
	}
	var resp struct {
		Data struct {
			JobID string `json:"jobId"`
		} `json:"data"`
	}
	if err := c.post(ctx, bulkImportCreatePath, body, &resp); err != nil {
		return "", err
	}
	if resp.Data.JobID == "" {
		return "", fmt.Errorf("bulk import create returned no job id")
	}
	c.logger.Info("bulk import job created",
		zap.String("collection", collection),
		zap.String("job_id", resp.Data.JobID),
		zap.Int("file_groups", len(files)))
	return resp.Data.JobID, nil
}

// DescribeJob fetches one job's current state.
func (c *BulkImportClient) DescribeJob(ctx context.Context, jobID string) (*BulkJob, error) {
	body := map[string]any{"jobId": jobID}
	var resp struct {
		Data BulkJob `json:"data"`
	}
	if err := c.post(ctx, bulkImportDescribePath, body, &resp); err != nil {
		return nil, err
	}
	if resp.Data.JobID == "" {
		resp.Data.JobID = jobID
	}
	return &resp.Data, nil
}

// ListJobs lists import jobs, optionally filtered by collection.
func (c *BulkImportClient) ListJobs(ctx context.Context, collection string) ([]BulkJob, error) {
	body := map[string]any{}
	if collection != "" {
		body["collectionName"] = collection
	}
	var resp struct {
		Data struct {
			Records []BulkJob `json:"records"`
		} `json:"data"`
	}
	if err := c.post(ctx, bulkImportListPath, body, &resp); err != nil {
		return nil, err
	}
	return resp.Data.Records, nil
}

// WaitForJob polls every two seconds until the job reaches a terminal
// state or the timeout elapses. A failed job is returned along with an
// error carrying its reason.
func (c *BulkImportClient) WaitForJob(ctx context.Context, jobID string, timeout time.Duration) (*BulkJob, error) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(bulkPollInterval)
	defer ticker.Stop()

	for {
		job, err := c.DescribeJob(ctx, jobID)
		if err != nil {
			return nil, err
		}
		switch {
		case job.Completed():
			c.logger.Info("bulk import completed",
				zap.String("job_id", jobID),
				zap.Int64("rows", job.ImportedRows))
			return job, nil
		case job.Failed():
			return job, fmt.Errorf("bulk import job %s failed: %s", jobID, job.Reason)
		}

		if time.Now().After(deadline) {
			return job, fmt.Errorf("bulk import job %s did not finish within %s (state %s)",
				jobID, timeout, job.State)
		}

		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}

// post sends one JSON request and decodes the response, checking both the
// HTTP status and the embedded API code.
func (c *BulkImportClient) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned HTTP %d", path, resp.StatusCode)
	}

	var envelope struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if err := json.Unmarshal(buf.Bytes(), &envelope); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if envelope.Code != 0 {
		return fmt.Errorf("%s returned code %d: %s", path, envelope.Code, envelope.Message)
	}
	if out != nil {
		if err := json.Unmarshal(buf.Bytes(), out); err != nil {
			return fmt.Errorf("decoding response data: %w", err)
		}
	}
	return nil
}
