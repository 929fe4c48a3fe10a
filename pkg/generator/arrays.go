package generator

import (
	"math"
	"math/rand"

	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/TFMV/vectorgen/pkg/schema"
)

// genArrays fills a list column with variable-length arrays. Lengths are
// uniform over [0, max_capacity]; elements come from the scalar generator
// for the declared element type, with max_length forwarded to text.
func genArrays(rng *rand.Rand, b *array.ListBuilder, f schema.FieldSpec, rows int64) error {
	elem := schema.FieldSpec{
		Name:      f.Name,
		Type:      f.ElementType,
		Min:       f.Min,
		Max:       f.Max,
		MaxLength: f.MaxLength,
	}
	appendElem, err := elementAppender(rng, b.ValueBuilder(), elem)
	if err != nil {
		return err
	}

	for i := int64(0); i < rows; i++ {
		if f.Nullable && rng.Float64() < nullProb {
			b.AppendNull()
			continue
		}
		n := rng.Intn(f.MaxCapacity + 1)
		b.Append(true)
		for j := 0; j < n; j++ {
			appendElem()
		}
	}
	return nil
}

// elementAppender binds one scalar draw-and-append closure for the element
// type, resolving bounds once up front.
func elementAppender(rng *rand.Rand, vb array.Builder, f schema.FieldSpec) (func(), error) {
	switch f.Type {
	case schema.FieldTypeBool:
		b := vb.(*array.BooleanBuilder)
		return func() { b.Append(rng.Intn(2) == 1) }, nil
	case schema.FieldTypeInt8:
		lo, hi := intBounds(f, math.MinInt8, math.MaxInt8)
		b := vb.(*array.Int8Builder)
		return func() { b.Append(int8(drawInt64(rng, lo, hi))) }, nil
	case schema.FieldTypeInt16:
		lo, hi := intBounds(f, math.MinInt16, math.MaxInt16)
		b := vb.(*array.Int16Builder)
		return func() { b.Append(int16(drawInt64(rng, lo, hi))) }, nil
	case schema.FieldTypeInt32:
		lo, hi := intBounds(f, math.MinInt32, math.MaxInt32)
		b := vb.(*array.Int32Builder)
		return func() { b.Append(int32(drawInt64(rng, lo, hi))) }, nil
	case schema.FieldTypeInt64:
		lo, hi := intBounds(f, math.MinInt64, math.MaxInt64)
		b := vb.(*array.Int64Builder)
		return func() { b.Append(drawInt64(rng, lo, hi)) }, nil
	case schema.FieldTypeFloat:
		lo, hi := floatBounds(f)
		b := vb.(*array.Float32Builder)
		return func() { b.Append(float32(lo + rng.Float64()*(hi-lo))) }, nil
	case schema.FieldTypeDouble:
		lo, hi := floatBounds(f)
		b := vb.(*array.Float64Builder)
		return func() { b.Append(lo + rng.Float64()*(hi-lo)) }, nil
	case schema.FieldTypeVarChar:
		maxLen := f.MaxLength
		if maxLen <= 0 {
			maxLen = schema.DefaultMaxLength
		}
		b := vb.(*array.StringBuilder)
		return func() { b.Append(genText(rng, maxLen)) }, nil
	default:
		return nil, &UnsupportedTypeError{Type: f.Type.String()}
	}
}
