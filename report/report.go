// Package report renders generation manifests and verification results as
// JSON, text, or standalone HTML.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/TFMV/vectorgen/metrics"
)

// Report bundles a run manifest with an optional verification result.
type Report struct {
	Manifest     metrics.Manifest            `json:"manifest"`
	Verification *metrics.VerificationReport `json:"verification,omitempty"`
	GeneratedAt  time.Time                   `json:"generated_at"`
}

// -----------------------------
// Report Generator Interfaces
// -----------------------------

// Generator defines the methods for rendering reports.
type Generator interface {
	Generate(r Report) ([]byte, error)
	SaveToFile(r Report, filePath string) error
}

// -----------------------------
// JSON Report Generator
// -----------------------------

// JSONGenerator renders reports as indented JSON.
type JSONGenerator struct{}

func (g *JSONGenerator) Generate(r Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func (g *JSONGenerator) SaveToFile(r Report, filePath string) error {
	data, err := g.Generate(r)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}

// -----------------------------
// Text Report Generator
// -----------------------------

// TextGenerator renders reports as aligned plain text for terminal
// output.
type TextGenerator struct{}

func (g *TextGenerator) Generate(r Report) ([]byte, error) {
	var sb strings.Builder
	info := r.Manifest.GenerationInfo

	fmt.Fprintf(&sb, "Collection:      %s\n", r.Manifest.Schema.CollectionName)
	fmt.Fprintf(&sb, "Fields:          %d\n", len(r.Manifest.Schema.Fields))
	fmt.Fprintf(&sb, "Rows:            %d\n", info.TotalRows)
	fmt.Fprintf(&sb, "Format:          %s\n", info.Format)
	if info.Seed != nil {
		fmt.Fprintf(&sb, "Seed:            %d\n", *info.Seed)
	} else {
		fmt.Fprintf(&sb, "Seed:            (none)\n")
	}
	fmt.Fprintf(&sb, "Files:           %d\n", info.FileCount)
	for _, f := range info.DataFiles {
		fmt.Fprintf(&sb, "  - %s\n", f)
	}
	fmt.Fprintf(&sb, "Generation time: %.3fs\n", info.GenerationTime)
	fmt.Fprintf(&sb, "Write time:      %.3fs\n", info.WriteTime)
	fmt.Fprintf(&sb, "Total time:      %.3fs\n", info.TotalTime)
	fmt.Fprintf(&sb, "Rows/second:     %.0f\n", info.RowsPerSecond)

	if v := r.Verification; v != nil {
		fmt.Fprintf(&sb, "\nVerification: %s\n", passFail(v.Passed))
		for _, c := range v.Checks {
			fmt.Fprintf(&sb, "  [%s] %s: %s\n", passFail(c.Passed), c.Name, c.Details)
		}
	}
	return []byte(sb.String()), nil
}

func (g *TextGenerator) SaveToFile(r Report, filePath string) error {
	data, err := g.Generate(r)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

// -----------------------------
// HTML Report Generator
// -----------------------------

// HTMLGenerator renders reports as standalone HTML documents.
type HTMLGenerator struct{}

const htmlTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Generation Report: {{.Manifest.Schema.CollectionName}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        table { width: 100%; border-collapse: collapse; margin-top: 20px; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f4f4f4; }
        .status-pass { color: green; }
        .status-fail { color: red; }
    </style>
</head>
<body>
    <h1>Generation Report</h1>
    <p><strong>Collection:</strong> {{.Manifest.Schema.CollectionName}}</p>
    <p><strong>Rows:</strong> {{.Manifest.GenerationInfo.TotalRows}}</p>
    <p><strong>Format:</strong> {{.Manifest.GenerationInfo.Format}}</p>
    <p><strong>Files:</strong> {{.Manifest.GenerationInfo.FileCount}}</p>
    <p><strong>Rows/second:</strong> {{printf "%.0f" .Manifest.GenerationInfo.RowsPerSecond}}</p>
    <p><strong>Generated at:</strong> {{.GeneratedAt}}</p>

    <h2>Schema</h2>
    <table>
        <tr>
            <th>Field</th>
            <th>Type</th>
            <th>Primary</th>
            <th>Nullable</th>
        </tr>
        {{range .Manifest.Schema.Fields}}
        <tr>
            <td>{{.Name}}</td>
            <td>{{.Type}}</td>
            <td>{{if .IsPrimary}}yes{{end}}</td>
            <td>{{if .Nullable}}yes{{end}}</td>
        </tr>
        {{end}}
    </table>

    <h2>Data Files</h2>
    <table>
        <tr><th>File</th></tr>
        {{range .Manifest.GenerationInfo.DataFiles}}
        <tr><td>{{.}}</td></tr>
        {{end}}
    </table>

    {{if .Verification}}
    <h2>Verification</h2>
    <table>
        <tr>
            <th>Check</th>
            <th>Status</th>
            <th>Details</th>
        </tr>
        {{range .Verification.Checks}}
        <tr>
            <td>{{.Name}}</td>
            <td class="{{if .Passed}}status-pass{{else}}status-fail{{end}}">
                {{if .Passed}}PASS{{else}}FAIL{{end}}
            </td>
            <td>{{.Details}}</td>
        </tr>
        {{end}}
    </table>
    {{end}}
</body>
</html>
`

func (g *HTMLGenerator) Generate(r Report) ([]byte, error) {
	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing report template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r); err != nil {
		return nil, fmt.Errorf("rendering report: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *HTMLGenerator) SaveToFile(r Report, filePath string) error {
	data, err := g.Generate(r)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}

// ForFormat returns the generator for a report format name.
func ForFormat(format string) (Generator, error) {
	switch format {
	case "json":
		return &JSONGenerator{}, nil
	case "text":
		return &TextGenerator{}, nil
	case "html":
		return &HTMLGenerator{}, nil
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
}
