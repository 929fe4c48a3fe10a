package generator

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/TFMV/vectorgen/pkg/schema"
)

// TestProperty_PrimaryKeyOrdering checks that for any seed and any pair of
// row indices, the key at the later index is strictly greater, so keys
// stay monotonic no matter how rows are split across files.
func TestProperty_PrimaryKeyOrdering(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("later row indices yield strictly greater keys", prop.ForAll(
		func(seed, a, b int64) bool {
			if a == b {
				b = a + 1
			}
			if a > b {
				a, b = b, a
			}
			seq := NewPrimaryKeySequencer(&seed)
			return seq.Int64At(a) < seq.Int64At(b)
		},
		gen.Int64Range(0, 1<<20),
		gen.Int64Range(0, 1<<30),
		gen.Int64Range(0, 1<<30),
	))

	properties.Property("string keys are the decimal form of integer keys", prop.ForAll(
		func(seed, idx int64) bool {
			seq := NewPrimaryKeySequencer(&seed)
			parsed, err := strconv.ParseInt(seq.StringAt(idx), 10, 64)
			return err == nil && parsed == seq.Int64At(idx)
		},
		gen.Int64Range(1, 1<<20),
		gen.Int64Range(0, 1<<30),
	))

	properties.TestingRun(t)
}

// TestProperty_IntBoundsRespected checks that integer draws always fall in
// the declared range intersected with the type width.
func TestProperty_IntBoundsRespected(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("drawInt64 stays within resolved bounds", prop.ForAll(
		func(seed int64, minV, maxV int) bool {
			if minV > maxV {
				minV, maxV = maxV, minV
			}
			lo, hi := int64(minV), int64(maxV)
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < 50; i++ {
				v := drawInt64(rng, lo, hi)
				if v < lo || v > hi {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(-1000000, 1000000),
		gen.IntRange(-1000000, 1000000),
	))

	properties.Property("intBounds clamps to the type width", prop.ForAll(
		func(minV, maxV float64) bool {
			f := schema.FieldSpec{Min: &minV, Max: &maxV}
			lo, hi := intBounds(f, -128, 127)
			return lo >= -128 && hi <= 127 && lo <= hi
		},
		gen.Float64Range(-1e6, 1e6),
		gen.Float64Range(-1e6, 1e6),
	))

	properties.TestingRun(t)
}

// TestProperty_TextLengthCapped checks that generated text never exceeds
// the declared byte cap, for any cap and any random stream.
func TestProperty_TextLengthCapped(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("genText output fits max_length", prop.ForAll(
		func(seed int64, maxLen int) bool {
			rng := rand.New(rand.NewSource(seed))
			s := genText(rng, maxLen)
			return len(s) > 0 && len(s) <= maxLen
		},
		gen.Int64(),
		gen.IntRange(1, 2048),
	))

	properties.TestingRun(t)
}
