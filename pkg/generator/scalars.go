package generator

import (
	"math"
	"math/rand"

	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/TFMV/vectorgen/pkg/schema"
)

// nullProb is the chance a nullable field draws null for a given row.
const nullProb = 0.1

// Default numeric bounds when a field declares none.
const (
	defaultIntMin   = 0
	defaultIntMax   = 1000000
	defaultFloatMin = 0.0
	defaultFloatMax = 1000.0
)

// intBounds resolves the sampling range for an integer field, clamped to
// the width's representable values. Declared bounds only narrow the range;
// the width never widens it.
func intBounds(f schema.FieldSpec, widthMin, widthMax int64) (int64, int64) {
	lo, hi := int64(defaultIntMin), int64(defaultIntMax)
	if f.Min != nil {
		lo = int64(*f.Min)
	}
	if f.Max != nil {
		hi = int64(*f.Max)
	}
	if lo < widthMin {
		lo = widthMin
	}
	if hi > widthMax {
		hi = widthMax
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func floatBounds(f schema.FieldSpec) (float64, float64) {
	lo, hi := defaultFloatMin, defaultFloatMax
	if f.Min != nil {
		lo = *f.Min
	}
	if f.Max != nil {
		hi = *f.Max
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// drawInt64 samples uniformly from [lo, hi].
func drawInt64(rng *rand.Rand, lo, hi int64) int64 {
	span := hi - lo + 1
	if span <= 0 {
		return lo
	}
	return lo + rng.Int63n(span)
}

func genBools(rng *rand.Rand, b *array.BooleanBuilder, f schema.FieldSpec, rows int64) {
	for i := int64(0); i < rows; i++ {
		if f.Nullable && rng.Float64() < nullProb {
			b.AppendNull()
			continue
		}
		b.Append(rng.Intn(2) == 1)
	}
}

func genInt8s(rng *rand.Rand, b *array.Int8Builder, f schema.FieldSpec, rows int64) {
	lo, hi := intBounds(f, math.MinInt8, math.MaxInt8)
	for i := int64(0); i < rows; i++ {
		if f.Nullable && rng.Float64() < nullProb {
			b.AppendNull()
			continue
		}
		b.Append(int8(drawInt64(rng, lo, hi)))
	}
}

func genInt16s(rng *rand.Rand, b *array.Int16Builder, f schema.FieldSpec, rows int64) {
	lo, hi := intBounds(f, math.MinInt16, math.MaxInt16)
	for i := int64(0); i < rows; i++ {
		if f.Nullable && rng.Float64() < nullProb {
			b.AppendNull()
			continue
		}
		b.Append(int16(drawInt64(rng, lo, hi)))
	}
}

func genInt32s(rng *rand.Rand, b *array.Int32Builder, f schema.FieldSpec, rows int64) {
	lo, hi := intBounds(f, math.MinInt32, math.MaxInt32)
	for i := int64(0); i < rows; i++ {
		if f.Nullable && rng.Float64() < nullProb {
			b.AppendNull()
			continue
		}
		b.Append(int32(drawInt64(rng, lo, hi)))
	}
}

func genInt64s(rng *rand.Rand, b *array.Int64Builder, f schema.FieldSpec, rows int64) {
	lo, hi := intBounds(f, math.MinInt64, math.MaxInt64)
	for i := int64(0); i < rows; i++ {
		if f.Nullable && rng.Float64() < nullProb {
			b.AppendNull()
			continue
		}
		b.Append(drawInt64(rng, lo, hi))
	}
}

func genFloat32s(rng *rand.Rand, b *array.Float32Builder, f schema.FieldSpec, rows int64) {
	lo, hi := floatBounds(f)
	for i := int64(0); i < rows; i++ {
		if f.Nullable && rng.Float64() < nullProb {
			b.AppendNull()
			continue
		}
		b.Append(float32(lo + rng.Float64()*(hi-lo)))
	}
}

func genFloat64s(rng *rand.Rand, b *array.Float64Builder, f schema.FieldSpec, rows int64) {
	lo, hi := floatBounds(f)
	for i := int64(0); i < rows; i++ {
		if f.Nullable && rng.Float64() < nullProb {
			b.AppendNull()
			continue
		}
		b.Append(lo + rng.Float64()*(hi-lo))
	}
}

func genTexts(rng *rand.Rand, b *array.StringBuilder, f schema.FieldSpec, rows int64) {
	maxLen := f.MaxLength
	if maxLen <= 0 {
		maxLen = schema.DefaultMaxLength
	}
	for i := int64(0); i < rows; i++ {
		if f.Nullable && rng.Float64() < nullProb {
			b.AppendNull()
			continue
		}
		b.Append(genText(rng, maxLen))
	}
}
