package generator

import "fmt"

// BatchPlan fixes the partitioning of a run before generation starts. The
// effective per-file row cap folds the batch-size hint into the declared
// maximum, and the total file count is decided up front so that file names
// carry a stable index width.
type BatchPlan struct {
	TotalRows        int64
	EffectiveMaxRows int64
	TotalFiles       int
}

// PlanBatches computes the partitioning for the given run parameters.
func PlanBatches(totalRows, batchSize, maxRowsPerFile int64) BatchPlan {
	effective := maxRowsPerFile
	if hint := batchSize * 10; hint < effective {
		effective = hint
	}
	files := int((totalRows + effective - 1) / effective)
	return BatchPlan{
		TotalRows:        totalRows,
		EffectiveMaxRows: effective,
		TotalFiles:       files,
	}
}

// NextRows returns the row count of the next file given how many rows
// remain. The final file simply holds the remainder.
func (p BatchPlan) NextRows(remaining int64) int64 {
	if remaining < p.EffectiveMaxRows {
		return remaining
	}
	return p.EffectiveMaxRows
}

// FileName names the 1-based index'th file. Single-file runs use the bare
// base name; multi-file runs carry a zero-padded index-of-total suffix.
func (p BatchPlan) FileName(index int, ext string) string {
	if p.TotalFiles == 1 {
		return fmt.Sprintf("data.%s", ext)
	}
	return fmt.Sprintf("data-%05d-of-%05d.%s", index, p.TotalFiles, ext)
}
