package schema

import (
	"fmt"
	"strings"
)

// Issue is one validation finding tied to a field path.
type Issue struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ValidationError reports every violation found in a schema document.
// Validation is total: all fields are checked and all findings returned
// together, never just the first.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "schema validation failed"
	}
	parts := make([]string, len(e.Issues))
	for i, iss := range e.Issues {
		parts[i] = fmt.Sprintf("%s: %s", iss.Path, iss.Reason)
	}
	return fmt.Sprintf("schema validation failed (%d issues): %s",
		len(e.Issues), strings.Join(parts, "; "))
}

// Defaults applied to omitted per-type parameters.
const (
	DefaultMaxLength   = 128
	DefaultMaxCapacity = 5
)

// rawField is the pre-validation shape of one declared field. Pointer
// members distinguish "omitted" from zero so defaults apply correctly.
type rawField struct {
	Name        string   `json:"name" yaml:"name"`
	Type        string   `json:"type" yaml:"type"`
	IsPrimary   bool     `json:"is_primary" yaml:"is_primary"`
	AutoID      bool     `json:"auto_id" yaml:"auto_id"`
	Nullable    bool     `json:"nullable" yaml:"nullable"`
	Dim         *int     `json:"dim" yaml:"dim"`
	MaxLength   *int     `json:"max_length" yaml:"max_length"`
	Min         *float64 `json:"min" yaml:"min"`
	Max         *float64 `json:"max" yaml:"max"`
	ElementType string   `json:"element_type" yaml:"element_type"`
	MaxCapacity *int     `json:"max_capacity" yaml:"max_capacity"`
}

type rawSchema struct {
	CollectionName string     `json:"collection_name" yaml:"collection_name"`
	Fields         []rawField `json:"fields" yaml:"fields"`
}

// build validates the raw document and produces an immutable
// CollectionSchema, or a *ValidationError listing every violation.
func (r *rawSchema) build() (*CollectionSchema, error) {
	var issues []Issue
	report := func(path, format string, a ...any) {
		issues = append(issues, Issue{Path: path, Reason: fmt.Sprintf(format, a...)})
	}

	if len(r.Fields) == 0 {
		report("fields", "schema must declare at least one field")
		return nil, &ValidationError{Issues: issues}
	}

	name := r.CollectionName
	if name == "" {
		name = "collection"
	}
	out := &CollectionSchema{CollectionName: name}

	seen := make(map[string]bool, len(r.Fields))
	primaries := 0

	for i, rf := range r.Fields {
		path := rf.Name
		if path == "" {
			path = fmt.Sprintf("fields[%d]", i)
		}

		if rf.Name == "" {
			report(path, "field name is required")
		} else if seen[rf.Name] {
			report(path, "duplicate field name %q", rf.Name)
		}
		seen[rf.Name] = true

		if rf.Type == "" {
			report(path, "field type is required")
			continue
		}
		ft, ok := ParseFieldType(rf.Type)
		if !ok {
			report(path, "unknown type %q", rf.Type)
			continue
		}

		spec := FieldSpec{
			Name:      rf.Name,
			Type:      ft,
			IsPrimary: rf.IsPrimary,
			AutoID:    rf.AutoID,
			Nullable:  rf.Nullable,
			Min:       rf.Min,
			Max:       rf.Max,
		}

		if rf.IsPrimary {
			primaries++
			if ft != FieldTypeInt64 && ft != FieldTypeVarChar {
				report(path, "primary key must be INT64 or VARCHAR, got %s", ft)
			}
			if rf.Nullable {
				report(path, "primary key cannot be nullable")
			}
		}
		if rf.AutoID && !rf.IsPrimary {
			report(path, "auto_id requires is_primary")
		}

		if ft.IsVector() {
			if rf.Nullable {
				report(path, "vector fields cannot be nullable")
			}
			switch {
			case rf.Dim == nil:
				report(path, "dim required for vector type %s", ft)
			case *rf.Dim <= 0:
				report(path, "dim must be positive, got %d", *rf.Dim)
			case ft == FieldTypeBinaryVector && *rf.Dim%8 != 0:
				report(path, "dim must be divisible by 8 for BINARY_VECTOR, got %d", *rf.Dim)
			default:
				spec.Dim = *rf.Dim
			}
		} else if rf.Dim != nil {
			report(path, "dim is only valid on vector types")
		}

		if rf.MaxLength != nil && *rf.MaxLength <= 0 {
			report(path, "max_length must be positive, got %d", *rf.MaxLength)
		}

		if ft == FieldTypeArray {
			spec.ElementType = FieldTypeInt32
			if rf.ElementType != "" {
				et, ok := ParseFieldType(rf.ElementType)
				switch {
				case !ok:
					report(path, "unknown element_type %q", rf.ElementType)
				case !et.IsScalar():
					report(path, "element_type must be a scalar type, got %s", et)
				default:
					spec.ElementType = et
				}
			}
			spec.MaxCapacity = DefaultMaxCapacity
			if rf.MaxCapacity != nil {
				if *rf.MaxCapacity <= 0 {
					report(path, "max_capacity must be positive, got %d", *rf.MaxCapacity)
				} else {
					spec.MaxCapacity = *rf.MaxCapacity
				}
			}
		} else if rf.ElementType != "" {
			report(path, "element_type is only valid on ARRAY fields")
		}

		// Text length applies to VARCHAR fields and to text array elements.
		if ft == FieldTypeVarChar || (ft == FieldTypeArray && spec.ElementType == FieldTypeVarChar) {
			spec.MaxLength = DefaultMaxLength
			if rf.MaxLength != nil && *rf.MaxLength > 0 {
				spec.MaxLength = *rf.MaxLength
			}
		}

		if rf.Min != nil && rf.Max != nil && *rf.Min > *rf.Max {
			report(path, "min (%v) must not exceed max (%v)", *rf.Min, *rf.Max)
		}

		out.Fields = append(out.Fields, spec)
	}

	if primaries > 1 {
		report("fields", "at most one field may set is_primary, found %d", primaries)
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return out, nil
}

// Validate re-checks an already constructed schema, for callers that build
// CollectionSchema values programmatically rather than from a file.
func Validate(s *CollectionSchema) error {
	raw := rawSchema{CollectionName: s.CollectionName}
	for _, f := range s.Fields {
		rf := rawField{
			Name:      f.Name,
			Type:      f.Type.String(),
			IsPrimary: f.IsPrimary,
			AutoID:    f.AutoID,
			Nullable:  f.Nullable,
			Min:       f.Min,
			Max:       f.Max,
		}
		if f.Dim != 0 {
			d := f.Dim
			rf.Dim = &d
		}
		if f.MaxLength != 0 {
			m := f.MaxLength
			rf.MaxLength = &m
		}
		if f.ElementType != FieldTypeInvalid {
			rf.ElementType = f.ElementType.String()
		}
		if f.MaxCapacity != 0 {
			c := f.MaxCapacity
			rf.MaxCapacity = &c
		}
		raw.Fields = append(raw.Fields, rf)
	}
	_, err := raw.build()
	return err
}
