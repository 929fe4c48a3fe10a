// Package validation re-reads generated output directories and checks
// them against their manifest: row conservation, primary-key ordering,
// vector normalization, and declared value bounds.
package validation

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/TFMV/vectorgen/metrics"
	"github.com/TFMV/vectorgen/pkg/readers"
	"github.com/TFMV/vectorgen/pkg/schema"
)

// normTolerance is the allowed deviation from unit length for dense float
// vectors. Generation normalizes in float64 but stores float32
// components, so the tolerance absorbs the narrowing.
const normTolerance = 1e-3

// Verifier checks a generated output directory against its manifest.
type Verifier struct {
	Logger *zap.Logger
}

// NewVerifier constructs a Verifier.
func NewVerifier(logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{Logger: logger}
}

// Verify loads the manifest in dir, re-reads every data file, and returns
// a report of all checks. A missing manifest or unreadable data file is an
// error; a failed check is reported, not an error.
func (v *Verifier) Verify(dir string) (*metrics.VerificationReport, error) {
	manifest, err := metrics.LoadManifest(dir)
	if err != nil {
		return nil, err
	}

	report := &metrics.VerificationReport{
		Dir:        dir,
		Collection: manifest.Schema.CollectionName,
		Passed:     true,
	}

	missing := 0
	for _, name := range manifest.GenerationInfo.DataFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			missing++
		}
	}
	report.AddCheck("data files present", missing == 0,
		"%d of %d files found", len(manifest.GenerationInfo.DataFiles)-missing,
		len(manifest.GenerationInfo.DataFiles))
	if missing > 0 {
		return report, nil
	}

	state := newScanState(&manifest.Schema)
	var totalRows int64
	for _, name := range manifest.GenerationInfo.DataFiles {
		rows, err := v.scanFile(filepath.Join(dir, name), state)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		totalRows += rows
	}

	report.AddCheck("row conservation",
		totalRows == manifest.GenerationInfo.TotalRows &&
			len(manifest.GenerationInfo.DataFiles) == manifest.GenerationInfo.FileCount,
		"read %d rows across %d files, manifest declares %d rows in %d files",
		totalRows, len(manifest.GenerationInfo.DataFiles),
		manifest.GenerationInfo.TotalRows, manifest.GenerationInfo.FileCount)

	if state.pkField != "" {
		report.AddCheck("primary key order", state.pkOK,
			"%d keys checked, %s", state.pkCount, state.pkDetail())
	}
	for _, name := range state.vectorFields {
		bad := state.badNorms[name]
		report.AddCheck("vector norms: "+name, bad == 0,
			"%d vectors outside unit-norm tolerance", bad)
	}
	report.AddCheck("value bounds", len(state.boundsViolations) == 0,
		"%d violations%s", len(state.boundsViolations), state.boundsDetail())

	v.Logger.Info("verification complete",
		zap.String("dir", dir),
		zap.Bool("passed", report.Passed),
		zap.Int("checks", len(report.Checks)))

	return report, nil
}

// scanState accumulates cross-file check state in file order.
type scanState struct {
	schema *schema.CollectionSchema

	pkField string
	pkType  schema.FieldType
	pkSeen  map[int64]struct{}
	pkLast  int64
	pkCount int64
	pkOK    bool

	vectorFields []string
	vectorDims   map[string]int
	badNorms     map[string]int64

	boundsViolations []string
}

func newScanState(s *schema.CollectionSchema) *scanState {
	st := &scanState{
		schema:     s,
		pkSeen:     make(map[int64]struct{}),
		pkOK:       true,
		vectorDims: make(map[string]int),
		badNorms:   make(map[string]int64),
	}
	if pk, ok := s.PrimaryField(); ok && !pk.AutoID {
		st.pkField = pk.Name
		st.pkType = pk.Type
	}
	for _, f := range s.OutputFields() {
		if f.Type == schema.FieldTypeFloatVector {
			st.vectorFields = append(st.vectorFields, f.Name)
			st.vectorDims[f.Name] = f.Dim
		}
	}
	return st
}

func (st *scanState) pkDetail() string {
	if st.pkOK {
		return "strictly increasing and unique"
	}
	return "ordering or uniqueness violated"
}

func (st *scanState) boundsDetail() string {
	if len(st.boundsViolations) == 0 {
		return ""
	}
	n := len(st.boundsViolations)
	if n > 3 {
		n = 3
	}
	detail := ""
	for _, v := range st.boundsViolations[:n] {
		detail += "; " + v
	}
	return detail
}

// scanFile runs all row-level checks over one data file and returns its
// row count.
func (v *Verifier) scanFile(path string, st *scanState) (int64, error) {
	r, err := readers.OpenRows(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	var rows int64
	for {
		row, err := r.Next()
		if err != nil {
			if err == io.EOF {
				return rows, nil
			}
			return 0, err
		}
		rows++

		if st.pkField != "" {
			st.checkPrimaryKey(row[st.pkField])
		}
		for _, name := range st.vectorFields {
			st.checkNorm(name, row[name])
		}
		st.checkBounds(row)
	}
}

func (st *scanState) checkPrimaryKey(raw any) {
	key, ok := asInt64(raw)
	if !ok {
		st.pkOK = false
		return
	}
	st.pkCount++
	if _, dup := st.pkSeen[key]; dup {
		st.pkOK = false
	}
	st.pkSeen[key] = struct{}{}
	if st.pkCount > 1 && key <= st.pkLast {
		st.pkOK = false
	}
	st.pkLast = key
}

func (st *scanState) checkNorm(name string, raw any) {
	vec, ok := raw.([]any)
	if !ok || len(vec) != st.vectorDims[name] {
		st.badNorms[name]++
		return
	}
	var sumSq float64
	for _, c := range vec {
		f, ok := asFloat64(c)
		if !ok {
			st.badNorms[name]++
			return
		}
		sumSq += f * f
	}
	if math.Abs(math.Sqrt(sumSq)-1.0) > normTolerance {
		st.badNorms[name]++
	}
}

func (st *scanState) checkBounds(row readers.Row) {
	for _, f := range st.schema.OutputFields() {
		raw, present := row[f.Name]
		if !present || raw == nil {
			continue
		}
		switch {
		case f.Type == schema.FieldTypeVarChar && !f.IsPrimary:
			if s, ok := raw.(string); ok && len(s) > f.MaxLength {
				st.recordViolation("%s: text length %d exceeds max_length %d", f.Name, len(s), f.MaxLength)
			}
		case f.Type == schema.FieldTypeArray:
			if a, ok := raw.([]any); ok && len(a) > f.MaxCapacity {
				st.recordViolation("%s: array length %d exceeds max_capacity %d", f.Name, len(a), f.MaxCapacity)
			}
		case f.Type.IsInteger() || f.Type == schema.FieldTypeFloat || f.Type == schema.FieldTypeDouble:
			if f.IsPrimary || (f.Min == nil && f.Max == nil) {
				continue
			}
			val, ok := asFloat64(raw)
			if !ok {
				continue
			}
			if f.Min != nil && val < *f.Min {
				st.recordViolation("%s: value %v below min %v", f.Name, val, *f.Min)
			}
			if f.Max != nil && val > *f.Max {
				st.recordViolation("%s: value %v above max %v", f.Name, val, *f.Max)
			}
		}
	}
}

func (st *scanState) recordViolation(format string, a ...any) {
	// Cap retention; the count alone is enough beyond this.
	if len(st.boundsViolations) < 100 {
		st.boundsViolations = append(st.boundsViolations, fmt.Sprintf(format, a...))
	}
}

// asInt64 converts primary-key representations (native ints, json.Number,
// decimal strings) to int64.
func asInt64(v any) (int64, bool) {
	switch v := v.(type) {
	case int64:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		var n int64
		_, err := fmt.Sscanf(v, "%d", &n)
		return n, err == nil
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
