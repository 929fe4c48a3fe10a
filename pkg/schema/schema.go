// Package schema models Milvus-style collection schemas: ordered field
// definitions with a closed type vocabulary, primary-key semantics, and
// per-type parameters. Schemas are validated in full before any data
// generation starts.
package schema

import (
	"fmt"
	"strings"
)

// FieldType is the closed set of generatable field types. The zero value
// is invalid so that an unset type never masquerades as a real one.
type FieldType int

const (
	FieldTypeInvalid FieldType = iota
	FieldTypeBool
	FieldTypeInt8
	FieldTypeInt16
	FieldTypeInt32
	FieldTypeInt64
	FieldTypeFloat
	FieldTypeDouble
	FieldTypeVarChar
	FieldTypeJSON
	FieldTypeArray
	FieldTypeFloatVector
	FieldTypeBinaryVector
	FieldTypeFloat16Vector
	FieldTypeBFloat16Vector
	FieldTypeInt8Vector
	FieldTypeSparseFloatVector
)

var fieldTypeNames = map[FieldType]string{
	FieldTypeBool:              "BOOL",
	FieldTypeInt8:              "INT8",
	FieldTypeInt16:             "INT16",
	FieldTypeInt32:             "INT32",
	FieldTypeInt64:             "INT64",
	FieldTypeFloat:             "FLOAT",
	FieldTypeDouble:            "DOUBLE",
	FieldTypeVarChar:           "VARCHAR",
	FieldTypeJSON:              "JSON",
	FieldTypeArray:             "ARRAY",
	FieldTypeFloatVector:       "FLOAT_VECTOR",
	FieldTypeBinaryVector:      "BINARY_VECTOR",
	FieldTypeFloat16Vector:     "FLOAT16_VECTOR",
	FieldTypeBFloat16Vector:    "BFLOAT16_VECTOR",
	FieldTypeInt8Vector:        "INT8_VECTOR",
	FieldTypeSparseFloatVector: "SPARSE_FLOAT_VECTOR",
}

// fieldTypeAliases maps the squashed (upper-case, underscore-free) form of
// every accepted spelling to its type. Lookup through this table makes type
// names case-insensitive and folds vector aliases like "FloatVector" into
// the canonical underscore vocabulary.
var fieldTypeAliases = map[string]FieldType{
	"BOOL":              FieldTypeBool,
	"BOOLEAN":           FieldTypeBool,
	"INT8":              FieldTypeInt8,
	"INT16":             FieldTypeInt16,
	"INT32":             FieldTypeInt32,
	"INT64":             FieldTypeInt64,
	"FLOAT":             FieldTypeFloat,
	"DOUBLE":            FieldTypeDouble,
	"VARCHAR":           FieldTypeVarChar,
	"STRING":            FieldTypeVarChar,
	"JSON":              FieldTypeJSON,
	"ARRAY":             FieldTypeArray,
	"FLOATVECTOR":       FieldTypeFloatVector,
	"BINARYVECTOR":      FieldTypeBinaryVector,
	"FLOAT16VECTOR":     FieldTypeFloat16Vector,
	"BFLOAT16VECTOR":    FieldTypeBFloat16Vector,
	"INT8VECTOR":        FieldTypeInt8Vector,
	"SPARSEFLOATVECTOR": FieldTypeSparseFloatVector,
}

// ParseFieldType resolves a declared type name to its canonical FieldType.
func ParseFieldType(s string) (FieldType, bool) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	ft, ok := fieldTypeAliases[key]
	return ft, ok
}

// String returns the canonical internal name, e.g. "FLOAT_VECTOR".
func (t FieldType) String() string {
	if name, ok := fieldTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("INVALID(%d)", int(t))
}

// MarshalJSON writes the canonical name so schemas round-trip through
// meta.json without loss.
func (t FieldType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON accepts any recognized spelling.
func (t *FieldType) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	ft, ok := ParseFieldType(s)
	if !ok {
		return fmt.Errorf("unknown field type %q", s)
	}
	*t = ft
	return nil
}

// MarshalYAML mirrors MarshalJSON for YAML schema files.
func (t FieldType) MarshalYAML() (any, error) {
	return t.String(), nil
}

// IsVector reports whether t is one of the five vector encodings.
func (t FieldType) IsVector() bool {
	switch t {
	case FieldTypeFloatVector, FieldTypeBinaryVector, FieldTypeFloat16Vector,
		FieldTypeBFloat16Vector, FieldTypeInt8Vector, FieldTypeSparseFloatVector:
		return true
	}
	return false
}

// IsInteger reports whether t is a fixed-width integer type.
func (t FieldType) IsInteger() bool {
	switch t {
	case FieldTypeInt8, FieldTypeInt16, FieldTypeInt32, FieldTypeInt64:
		return true
	}
	return false
}

// IsScalar reports whether t may serve as an array element type.
func (t FieldType) IsScalar() bool {
	switch t {
	case FieldTypeBool, FieldTypeInt8, FieldTypeInt16, FieldTypeInt32,
		FieldTypeInt64, FieldTypeFloat, FieldTypeDouble, FieldTypeVarChar:
		return true
	}
	return false
}

// FieldSpec is one declared column. Instances are built by validation and
// never mutated afterwards.
type FieldSpec struct {
	Name        string    `json:"name" yaml:"name"`
	Type        FieldType `json:"type" yaml:"type"`
	IsPrimary   bool      `json:"is_primary,omitempty" yaml:"is_primary,omitempty"`
	AutoID      bool      `json:"auto_id,omitempty" yaml:"auto_id,omitempty"`
	Nullable    bool      `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Dim         int       `json:"dim,omitempty" yaml:"dim,omitempty"`
	MaxLength   int       `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	Min         *float64  `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *float64  `json:"max,omitempty" yaml:"max,omitempty"`
	ElementType FieldType `json:"element_type,omitempty" yaml:"element_type,omitempty"`
	MaxCapacity int       `json:"max_capacity,omitempty" yaml:"max_capacity,omitempty"`
}

// CollectionSchema is a named, ordered field list. Field order defines
// output column order.
type CollectionSchema struct {
	CollectionName string      `json:"collection_name" yaml:"collection_name"`
	Fields         []FieldSpec `json:"fields" yaml:"fields"`
}

// PrimaryField returns the primary-key field, if one is declared.
func (s *CollectionSchema) PrimaryField() (*FieldSpec, bool) {
	for i := range s.Fields {
		if s.Fields[i].IsPrimary {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// Field returns the field with the given name.
func (s *CollectionSchema) Field(name string) (*FieldSpec, bool) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// OutputFields returns the fields that materialize as output columns,
// excluding auto_id fields whose values the downstream system assigns.
func (s *CollectionSchema) OutputFields() []FieldSpec {
	out := make([]FieldSpec, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.AutoID {
			continue
		}
		out = append(out, f)
	}
	return out
}
