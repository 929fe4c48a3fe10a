package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Load reads a schema file (JSON or YAML by extension), validates it in
// full, and returns the normalized schema. A missing file surfaces the
// wrapped fs.ErrNotExist from os.ReadFile.
func Load(path string) (*CollectionSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return ParseJSON(data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported schema file extension %q (want .json, .yaml, or .yml)", ext)
	}
}

// ParseJSON decodes a JSON schema document. The document may be a
// top-level object with a "fields" list, or a bare list of field objects.
func ParseJSON(data []byte) (*CollectionSchema, error) {
	var raw rawSchema
	if err := json.Unmarshal(data, &raw); err != nil || len(raw.Fields) == 0 {
		var fields []rawField
		if listErr := json.Unmarshal(data, &fields); listErr == nil && len(fields) > 0 {
			raw = rawSchema{Fields: fields}
		} else if err != nil {
			return nil, fmt.Errorf("decoding schema JSON: %w", err)
		}
	}
	return raw.build()
}

// ParseYAML decodes a YAML schema document with the same shape rules as
// ParseJSON.
func ParseYAML(data []byte) (*CollectionSchema, error) {
	var raw rawSchema
	if err := yaml.Unmarshal(data, &raw); err != nil || len(raw.Fields) == 0 {
		var fields []rawField
		if listErr := yaml.Unmarshal(data, &fields); listErr == nil && len(fields) > 0 {
			raw = rawSchema{Fields: fields}
		} else if err != nil {
			return nil, fmt.Errorf("decoding schema YAML: %w", err)
		}
	}
	return raw.build()
}
