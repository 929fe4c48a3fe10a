package generator

import (
	"fmt"
	"math/rand"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/TFMV/vectorgen/pkg/core"
	"github.com/TFMV/vectorgen/pkg/schema"
)

// arrowType maps one collection field to its Arrow storage type.
func arrowType(f schema.FieldSpec) (arrow.DataType, error) {
	switch f.Type {
	case schema.FieldTypeBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case schema.FieldTypeInt8:
		return arrow.PrimitiveTypes.Int8, nil
	case schema.FieldTypeInt16:
		return arrow.PrimitiveTypes.Int16, nil
	case schema.FieldTypeInt32:
		return arrow.PrimitiveTypes.Int32, nil
	case schema.FieldTypeInt64:
		return arrow.PrimitiveTypes.Int64, nil
	case schema.FieldTypeFloat:
		return arrow.PrimitiveTypes.Float32, nil
	case schema.FieldTypeDouble:
		return arrow.PrimitiveTypes.Float64, nil
	case schema.FieldTypeVarChar, schema.FieldTypeJSON, schema.FieldTypeSparseFloatVector:
		return arrow.BinaryTypes.String, nil
	case schema.FieldTypeArray:
		elemType, err := arrowType(schema.FieldSpec{Type: f.ElementType})
		if err != nil {
			return nil, err
		}
		return arrow.ListOf(elemType), nil
	case schema.FieldTypeFloatVector:
		return arrow.ListOf(arrow.PrimitiveTypes.Float32), nil
	case schema.FieldTypeBinaryVector, schema.FieldTypeFloat16Vector, schema.FieldTypeBFloat16Vector:
		return arrow.ListOf(arrow.PrimitiveTypes.Uint8), nil
	case schema.FieldTypeInt8Vector:
		return arrow.ListOf(arrow.PrimitiveTypes.Int8), nil
	default:
		return nil, &UnsupportedTypeError{Type: f.Type.String()}
	}
}

// BuildArrowSchema maps the output fields of a collection schema onto an
// Arrow schema. auto_id fields are omitted; each Arrow field records its
// collection type in metadata.
func BuildArrowSchema(s *schema.CollectionSchema) (*arrow.Schema, error) {
	outFields := s.OutputFields()
	fields := make([]arrow.Field, len(outFields))
	for i, f := range outFields {
		dt, err := arrowType(f)
		if err != nil {
			return nil, err
		}
		fields[i] = arrow.Field{
			Name:     f.Name,
			Type:     dt,
			Nullable: f.Nullable,
			Metadata: arrow.NewMetadata(
				[]string{core.FieldTypeMetadataKey},
				[]string{f.Type.String()},
			),
		}
	}
	meta := arrow.NewMetadata(
		[]string{"collection_name"},
		[]string{s.CollectionName},
	)
	return arrow.NewSchema(fields, &meta), nil
}

// ColumnAssembler produces one record batch per call by running every
// field's generator against a shared random source. The primary-key column
// comes from the sequencer instead of the random source so keys stay
// monotonic across batches.
type ColumnAssembler struct {
	mem         memory.Allocator
	fields      []schema.FieldSpec
	arrowSchema *arrow.Schema
	rng         *rand.Rand
	seq         *PrimaryKeySequencer
}

// NewColumnAssembler builds an assembler for the schema's output fields.
func NewColumnAssembler(s *schema.CollectionSchema, rng *rand.Rand, seq *PrimaryKeySequencer, mem memory.Allocator) (*ColumnAssembler, error) {
	arrowSchema, err := BuildArrowSchema(s)
	if err != nil {
		return nil, err
	}
	return &ColumnAssembler{
		mem:         mem,
		fields:      s.OutputFields(),
		arrowSchema: arrowSchema,
		rng:         rng,
		seq:         seq,
	}, nil
}

// Schema returns the Arrow schema of assembled batches.
func (a *ColumnAssembler) Schema() *arrow.Schema { return a.arrowSchema }

// AssembleBatch generates columns for rows [rowOffset, rowOffset+rows) and
// returns them as one record. The caller owns the record and must Release
// it once written.
func (a *ColumnAssembler) AssembleBatch(rowOffset, rows int64) (arrow.Record, error) {
	builders := make([]array.Builder, len(a.fields))
	for i := range a.fields {
		builders[i] = array.NewBuilder(a.mem, a.arrowSchema.Field(i).Type)
	}
	defer func() {
		for _, b := range builders {
			b.Release()
		}
	}()

	for i, f := range a.fields {
		if err := a.appendColumn(builders[i], f, rowOffset, rows); err != nil {
			return nil, fmt.Errorf("generating column %q: %w", f.Name, err)
		}
	}

	cols := make([]arrow.Array, len(builders))
	for i, b := range builders {
		cols[i] = b.NewArray()
	}
	rec := array.NewRecord(a.arrowSchema, cols, rows)
	for _, c := range cols {
		c.Release()
	}
	return rec, nil
}

// appendColumn dispatches one field to its type generator.
func (a *ColumnAssembler) appendColumn(b array.Builder, f schema.FieldSpec, rowOffset, rows int64) error {
	if f.IsPrimary {
		return a.appendPrimaryKeys(b, f, rowOffset, rows)
	}

	switch f.Type {
	case schema.FieldTypeBool:
		genBools(a.rng, b.(*array.BooleanBuilder), f, rows)
	case schema.FieldTypeInt8:
		genInt8s(a.rng, b.(*array.Int8Builder), f, rows)
	case schema.FieldTypeInt16:
		genInt16s(a.rng, b.(*array.Int16Builder), f, rows)
	case schema.FieldTypeInt32:
		genInt32s(a.rng, b.(*array.Int32Builder), f, rows)
	case schema.FieldTypeInt64:
		genInt64s(a.rng, b.(*array.Int64Builder), f, rows)
	case schema.FieldTypeFloat:
		genFloat32s(a.rng, b.(*array.Float32Builder), f, rows)
	case schema.FieldTypeDouble:
		genFloat64s(a.rng, b.(*array.Float64Builder), f, rows)
	case schema.FieldTypeVarChar:
		genTexts(a.rng, b.(*array.StringBuilder), f, rows)
	case schema.FieldTypeJSON:
		return genJSONDocs(a.rng, b.(*array.StringBuilder), f, rows, rowOffset)
	case schema.FieldTypeArray:
		return genArrays(a.rng, b.(*array.ListBuilder), f, rows)
	case schema.FieldTypeFloatVector:
		genFloatVectors(a.rng, b.(*array.ListBuilder), f, rows)
	case schema.FieldTypeBinaryVector:
		genBinaryVectors(a.rng, b.(*array.ListBuilder), f, rows)
	case schema.FieldTypeFloat16Vector:
		genFloat16Vectors(a.rng, b.(*array.ListBuilder), f, rows)
	case schema.FieldTypeBFloat16Vector:
		genBFloat16Vectors(a.rng, b.(*array.ListBuilder), f, rows)
	case schema.FieldTypeInt8Vector:
		genInt8Vectors(a.rng, b.(*array.ListBuilder), f, rows)
	case schema.FieldTypeSparseFloatVector:
		genSparseVectors(a.rng, b.(*array.StringBuilder), f, rows)
	default:
		return &UnsupportedTypeError{Type: f.Type.String()}
	}
	return nil
}

// appendPrimaryKeys emits sequencer values for the primary-key column.
func (a *ColumnAssembler) appendPrimaryKeys(b array.Builder, f schema.FieldSpec, rowOffset, rows int64) error {
	switch f.Type {
	case schema.FieldTypeInt64:
		ib := b.(*array.Int64Builder)
		for i := int64(0); i < rows; i++ {
			ib.Append(a.seq.Int64At(rowOffset + i))
		}
	case schema.FieldTypeVarChar:
		sb := b.(*array.StringBuilder)
		for i := int64(0); i < rows; i++ {
			sb.Append(a.seq.StringAt(rowOffset + i))
		}
	default:
		return fmt.Errorf("primary key type %s cannot be sequenced", f.Type)
	}
	return nil
}
