package schema

import (
	"fmt"
	"sort"
)

// BuiltinSchema is a ready-to-use named schema shipped with the tool.
type BuiltinSchema struct {
	ID          string           `json:"id"`
	Description string           `json:"description"`
	Schema      CollectionSchema `json:"schema"`
}

func f64(v float64) *float64 { return &v }

var builtinSchemas = map[string]BuiltinSchema{
	"simple": {
		ID:          "simple",
		Description: "Minimal collection: Int64 primary key plus one dense embedding.",
		Schema: CollectionSchema{
			CollectionName: "simple",
			Fields: []FieldSpec{
				{Name: "id", Type: FieldTypeInt64, IsPrimary: true},
				{Name: "embedding", Type: FieldTypeFloatVector, Dim: 128},
			},
		},
	},
	"ecommerce": {
		ID:          "ecommerce",
		Description: "Product catalog with metadata, price bounds, and a search embedding.",
		Schema: CollectionSchema{
			CollectionName: "products",
			Fields: []FieldSpec{
				{Name: "product_id", Type: FieldTypeInt64, IsPrimary: true, AutoID: true},
				{Name: "title", Type: FieldTypeVarChar, MaxLength: 256},
				{Name: "price", Type: FieldTypeDouble, Min: f64(0.99), Max: f64(9999.99)},
				{Name: "in_stock", Type: FieldTypeBool},
				{Name: "metadata", Type: FieldTypeJSON, Nullable: true},
				{Name: "tags", Type: FieldTypeArray, ElementType: FieldTypeVarChar, MaxCapacity: 8, MaxLength: 32},
				{Name: "embedding", Type: FieldTypeFloatVector, Dim: 768},
			},
		},
	},
	"documents": {
		ID:          "documents",
		Description: "Text corpus with VarChar primary keys and hybrid dense plus sparse vectors.",
		Schema: CollectionSchema{
			CollectionName: "documents",
			Fields: []FieldSpec{
				{Name: "doc_id", Type: FieldTypeVarChar, IsPrimary: true, MaxLength: 64},
				{Name: "content", Type: FieldTypeVarChar, MaxLength: 2048},
				{Name: "word_count", Type: FieldTypeInt32, Min: f64(50), Max: f64(10000)},
				{Name: "dense", Type: FieldTypeFloatVector, Dim: 384},
				{Name: "sparse", Type: FieldTypeSparseFloatVector, Dim: 30000},
			},
		},
	},
	"images": {
		ID:          "images",
		Description: "Image index with compact binary and signed-byte embeddings.",
		Schema: CollectionSchema{
			CollectionName: "images",
			Fields: []FieldSpec{
				{Name: "image_id", Type: FieldTypeInt64, IsPrimary: true},
				{Name: "url", Type: FieldTypeVarChar, MaxLength: 512},
				{Name: "width", Type: FieldTypeInt16, Min: f64(16), Max: f64(8192)},
				{Name: "height", Type: FieldTypeInt16, Min: f64(16), Max: f64(8192)},
				{Name: "hash", Type: FieldTypeBinaryVector, Dim: 256},
				{Name: "features", Type: FieldTypeInt8Vector, Dim: 512},
			},
		},
	},
	"users": {
		ID:          "users",
		Description: "User profiles with scalar attributes, interests, and preferences.",
		Schema: CollectionSchema{
			CollectionName: "users",
			Fields: []FieldSpec{
				{Name: "user_id", Type: FieldTypeInt64, IsPrimary: true},
				{Name: "username", Type: FieldTypeVarChar, MaxLength: 48},
				{Name: "age", Type: FieldTypeInt8, Min: f64(13), Max: f64(120)},
				{Name: "score", Type: FieldTypeFloat, Min: f64(0), Max: f64(100)},
				{Name: "active", Type: FieldTypeBool, Nullable: true},
				{Name: "interests", Type: FieldTypeArray, ElementType: FieldTypeInt32, MaxCapacity: 10},
				{Name: "profile", Type: FieldTypeJSON},
				{Name: "embedding", Type: FieldTypeFloatVector, Dim: 256},
			},
		},
	},
	"news": {
		ID:          "news",
		Description: "News articles with reduced-precision embeddings for memory-tight indexes.",
		Schema: CollectionSchema{
			CollectionName: "articles",
			Fields: []FieldSpec{
				{Name: "article_id", Type: FieldTypeInt64, IsPrimary: true},
				{Name: "headline", Type: FieldTypeVarChar, MaxLength: 200},
				{Name: "published_ts", Type: FieldTypeInt64, Min: f64(1600000000), Max: f64(1900000000)},
				{Name: "half_embedding", Type: FieldTypeFloat16Vector, Dim: 384},
				{Name: "brain_embedding", Type: FieldTypeBFloat16Vector, Dim: 384},
			},
		},
	},
}

// ListBuiltin returns the built-in schemas sorted by id.
func ListBuiltin() []BuiltinSchema {
	out := make([]BuiltinSchema, 0, len(builtinSchemas))
	for _, b := range builtinSchemas {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetBuiltin returns the built-in schema with the given id.
func GetBuiltin(id string) (BuiltinSchema, error) {
	b, ok := builtinSchemas[id]
	if !ok {
		return BuiltinSchema{}, fmt.Errorf("unknown built-in schema %q", id)
	}
	return b, nil
}

// IsBuiltin reports whether id names a built-in schema.
func IsBuiltin(id string) bool {
	_, ok := builtinSchemas[id]
	return ok
}
