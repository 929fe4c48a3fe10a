package generator

import (
	"encoding/binary"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/x448/float16"

	"github.com/TFMV/vectorgen/pkg/schema"
)

// normalUnitVector draws dim standard-normal components and L2-normalizes
// them so the result has unit length.
func normalUnitVector(rng *rand.Rand, dim int) []float64 {
	v := make([]float64, dim)
	var sumSq float64
	for i := range v {
		v[i] = rng.NormFloat64()
		sumSq += v[i] * v[i]
	}
	if norm := math.Sqrt(sumSq); norm > 0 {
		for i := range v {
			v[i] /= norm
		}
	}
	return v
}

// genFloatVectors emits dim-length unit vectors of float32 components.
func genFloatVectors(rng *rand.Rand, b *array.ListBuilder, f schema.FieldSpec, rows int64) {
	vb := b.ValueBuilder().(*array.Float32Builder)
	for i := int64(0); i < rows; i++ {
		b.Append(true)
		for _, c := range normalUnitVector(rng, f.Dim) {
			vb.Append(float32(c))
		}
	}
}

// genBinaryVectors emits dim/8 bytes of uniform random bits per row.
func genBinaryVectors(rng *rand.Rand, b *array.ListBuilder, f schema.FieldSpec, rows int64) {
	vb := b.ValueBuilder().(*array.Uint8Builder)
	nBytes := f.Dim / 8
	for i := int64(0); i < rows; i++ {
		b.Append(true)
		for j := 0; j < nBytes; j++ {
			vb.Append(uint8(rng.Intn(256)))
		}
	}
}

// genFloat16Vectors emits unit vectors bit-narrowed to IEEE half precision,
// two little-endian bytes per component.
func genFloat16Vectors(rng *rand.Rand, b *array.ListBuilder, f schema.FieldSpec, rows int64) {
	vb := b.ValueBuilder().(*array.Uint8Builder)
	var buf [2]byte
	for i := int64(0); i < rows; i++ {
		b.Append(true)
		for _, c := range normalUnitVector(rng, f.Dim) {
			bits := float16.Fromfloat32(float32(c)).Bits()
			binary.LittleEndian.PutUint16(buf[:], bits)
			vb.Append(buf[0])
			vb.Append(buf[1])
		}
	}
}

// genBFloat16Vectors emits unit vectors truncated to bfloat16: the upper 16
// bits of each component's float32 pattern, two little-endian bytes each.
func genBFloat16Vectors(rng *rand.Rand, b *array.ListBuilder, f schema.FieldSpec, rows int64) {
	vb := b.ValueBuilder().(*array.Uint8Builder)
	var buf [2]byte
	for i := int64(0); i < rows; i++ {
		b.Append(true)
		for _, c := range normalUnitVector(rng, f.Dim) {
			bits := uint16(math.Float32bits(float32(c)) >> 16)
			binary.LittleEndian.PutUint16(buf[:], bits)
			vb.Append(buf[0])
			vb.Append(buf[1])
		}
	}
}

// genInt8Vectors emits dim-length vectors of uniform signed bytes.
func genInt8Vectors(rng *rand.Rand, b *array.ListBuilder, f schema.FieldSpec, rows int64) {
	vb := b.ValueBuilder().(*array.Int8Builder)
	for i := int64(0); i < rows; i++ {
		b.Append(true)
		for j := 0; j < f.Dim; j++ {
			vb.Append(int8(rng.Intn(256) - 128))
		}
	}
}

// genSparseVectors emits genuine sparse vectors: between 1 and max(1,
// dim/10) distinct ascending indices in [0, dim) with values in (0, 1],
// serialized as a JSON object keyed by decimal index.
func genSparseVectors(rng *rand.Rand, b *array.StringBuilder, f schema.FieldSpec, rows int64) {
	maxNNZ := f.Dim / 10
	if maxNNZ < 1 {
		maxNNZ = 1
	}
	for i := int64(0); i < rows; i++ {
		b.Append(encodeSparseVector(rng, f.Dim, maxNNZ))
	}
}

func encodeSparseVector(rng *rand.Rand, dim, maxNNZ int) string {
	nnz := 1 + rng.Intn(maxNNZ)
	picked := make(map[int]struct{}, nnz)
	for len(picked) < nnz {
		picked[rng.Intn(dim)] = struct{}{}
	}
	indices := make([]int, 0, nnz)
	for idx := range picked {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	var sb strings.Builder
	sb.WriteByte('{')
	for j, idx := range indices {
		if j > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(strconv.Itoa(idx))
		sb.WriteString(`":`)
		sb.WriteString(strconv.FormatFloat(1-rng.Float64(), 'g', -1, 64))
	}
	sb.WriteByte('}')
	return sb.String()
}
