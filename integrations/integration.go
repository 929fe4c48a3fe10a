// Package integrations moves generated datasets into external systems:
// direct Milvus inserts, Milvus bulk-import jobs, and S3 uploads.
package integrations

import (
	"context"
	"time"
)

// ImportResult summarizes one import of a generated directory.
type ImportResult struct {
	Collection   string        `json:"collection"`
	RowsInserted int64         `json:"rows_inserted"`
	FilesRead    int           `json:"files_read"`
	Indexes      []string      `json:"indexes,omitempty"`
	Duration     time.Duration `json:"duration"`
}

// Importer loads a generated output directory into a destination system.
type Importer interface {
	// Import reads the manifest and data files in dir and loads them.
	Import(ctx context.Context, dir string) (*ImportResult, error)

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
