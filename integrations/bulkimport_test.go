package integrations

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestCreateJob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, bulkImportCreatePath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		body := decodeBody(t, r)
		assert.Equal(t, "products", body["collectionName"])
		files, ok := body["files"].([]any)
		require.True(t, ok)
		require.Len(t, files, 2)

		json.NewEncoder(w).Encode(map[string]any{
			"code": 0,
			"data": map[string]any{"jobId": "job-123"},
		})
	}))
	defer srv.Close()

	client := NewBulkImportClient(srv.URL+"/", "sekrit", nil)
	jobID, err := client.CreateJob(context.Background(), "products", [][]string{
		{"s3://bucket/data-00001-of-00002.parquet"},
		{"s3://bucket/data-00002-of-00002.parquet"},
	})
	require.NoError(t, err)
	assert.Equal(t, "job-123", jobID)
}

func TestCreateJobServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"code":    1100,
			"message": "collection not found",
		})
	}))
	defer srv.Close()

	client := NewBulkImportClient(srv.URL, "", nil)
	_, err := client.CreateJob(context.Background(), "missing", [][]string{{"s3://bucket/data.parquet"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code 1100")
	assert.Contains(t, err.Error(), "collection not found")
}

func TestCreateJobHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewBulkImportClient(srv.URL, "", nil)
	_, err := client.CreateJob(context.Background(), "products", [][]string{{"x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestDescribeJobFillsID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, bulkImportDescribePath, r.URL.Path)
		body := decodeBody(t, r)
		assert.Equal(t, "job-77", body["jobId"])

		// Some server versions omit jobId from the describe payload.
		json.NewEncoder(w).Encode(map[string]any{
			"code": 0,
			"data": map[string]any{
				"state":        "Importing",
				"progress":     40,
				"importedRows": 400,
				"totalRows":    1000,
			},
		})
	}))
	defer srv.Close()

	client := NewBulkImportClient(srv.URL, "", nil)
	job, err := client.DescribeJob(context.Background(), "job-77")
	require.NoError(t, err)
	assert.Equal(t, "job-77", job.JobID)
	assert.Equal(t, "Importing", job.State)
	assert.Equal(t, 40, job.Progress)
	assert.False(t, job.Completed())
	assert.False(t, job.Failed())
}

func TestListJobsFiltersByCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, bulkImportListPath, r.URL.Path)
		body := decodeBody(t, r)
		assert.Equal(t, "products", body["collectionName"])

		json.NewEncoder(w).Encode(map[string]any{
			"code": 0,
			"data": map[string]any{
				"records": []map[string]any{
					{"jobId": "a", "collectionName": "products", "state": "ImportCompleted", "progress": 100},
					{"jobId": "b", "collectionName": "products", "state": "ImportFailed", "reason": "bad file"},
				},
			},
		})
	}))
	defer srv.Close()

	client := NewBulkImportClient(srv.URL, "", nil)
	jobs, err := client.ListJobs(context.Background(), "products")
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.True(t, jobs[0].Completed())
	assert.True(t, jobs[1].Failed())
	assert.Equal(t, "bad file", jobs[1].Reason)
}

func TestWaitForJobCompleted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"code": 0,
			"data": map[string]any{"jobId": "job-1", "state": "Completed", "importedRows": 25},
		})
	}))
	defer srv.Close()

	client := NewBulkImportClient(srv.URL, "", nil)
	job, err := client.WaitForJob(context.Background(), "job-1", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 25, job.ImportedRows)
}

func TestWaitForJobFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"code": 0,
			"data": map[string]any{"jobId": "job-2", "state": "ImportFailed", "reason": "schema mismatch"},
		})
	}))
	defer srv.Close()

	client := NewBulkImportClient(srv.URL, "", nil)
	job, err := client.WaitForJob(context.Background(), "job-2", time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema mismatch")
	require.NotNil(t, job)
	assert.True(t, job.Failed())
}
