package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, s *Server, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 && data[0] == '{' {
		require.NoError(t, json.Unmarshal(data, &decoded))
	}
	return resp, decoded
}

func TestHealthEndpoint(t *testing.T) {
	s := NewServer(nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(body))
}

func TestVersionEndpoint(t *testing.T) {
	s := NewServer(nil)
	resp, body := doJSON(t, s, http.MethodGet, "/version", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "vectorgen API", body["service"])
	assert.NotEmpty(t, body["version"])
}

func TestValidateEndpointAcceptsSchema(t *testing.T) {
	s := NewServer(nil)
	resp, body := doJSON(t, s, http.MethodPost, "/api/v1/schema/validate", map[string]any{
		"collection_name": "demo",
		"fields": []map[string]any{
			{"name": "id", "type": "INT64", "is_primary": true},
			{"name": "vec", "type": "FLOAT_VECTOR", "dim": 16},
		},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["valid"])
	assert.NotNil(t, body["schema"])
}

func TestValidateEndpointReportsIssues(t *testing.T) {
	s := NewServer(nil)
	resp, body := doJSON(t, s, http.MethodPost, "/api/v1/schema/validate", map[string]any{
		"fields": []map[string]any{
			{"name": "vec", "type": "FLOAT_VECTOR"}, // missing dim
			{"name": "id", "type": "DECIMAL"},       // unknown type
		},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, false, body["valid"])

	issues, ok := body["issues"].([]any)
	require.True(t, ok)
	assert.Len(t, issues, 2)
}

func TestGenerateEndpoint(t *testing.T) {
	dir := t.TempDir()
	s := NewServer(nil)

	resp, body := doJSON(t, s, http.MethodPost, "/api/v1/generate", map[string]any{
		"schema": map[string]any{
			"collection_name": "api_demo",
			"fields": []map[string]any{
				{"name": "id", "type": "INT64", "is_primary": true},
				{"name": "vec", "type": "FLOAT_VECTOR", "dim": 8},
			},
		},
		"rows":       50,
		"format":     "json",
		"seed":       9,
		"output_dir": dir,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %v", body)

	info, ok := body["generation_info"].(map[string]any)
	require.True(t, ok, "unexpected body: %v", body)
	assert.Equal(t, float64(50), info["total_rows"])
	assert.Equal(t, "json", info["format"])

	// The files landed where the request pointed.
	files, ok := info["data_files"].([]any)
	require.True(t, ok)
	require.Len(t, files, 1)
	assert.Equal(t, "data.json", files[0])
	assert.FileExists(t, filepath.Join(dir, "data.json"))
	assert.FileExists(t, filepath.Join(dir, "meta.json"))
}

func TestGenerateEndpointRejectsBadFormat(t *testing.T) {
	s := NewServer(nil)
	resp, body := doJSON(t, s, http.MethodPost, "/api/v1/generate", map[string]any{
		"schema": map[string]any{
			"fields": []map[string]any{
				{"name": "id", "type": "INT64", "is_primary": true},
			},
		},
		"format":     "xml",
		"output_dir": t.TempDir(),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errMsg, _ := body["error"].(string)
	assert.Contains(t, errMsg, "unsupported output format")
}

func TestGenerateEndpointRejectsInvalidSchema(t *testing.T) {
	s := NewServer(nil)
	resp, body := doJSON(t, s, http.MethodPost, "/api/v1/generate", map[string]any{
		"schema": map[string]any{
			"fields": []map[string]any{
				{"name": "vec", "type": "FLOAT_VECTOR"},
			},
		},
		"output_dir": t.TempDir(),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, false, body["valid"])
}

func TestUnknownRouteReturns404(t *testing.T) {
	s := NewServer(nil)
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/%s", "nope"), nil)
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
