package generator

import (
	"strconv"
	"time"
)

// pkShiftBits spreads the primary-key base apart so runs with nearby seeds
// (or close start times) never collide.
const pkShiftBits = 18

// PrimaryKeySequencer produces unique, strictly increasing primary-key
// values for an entire run. The base offset is fixed at construction; the
// caller supplies zero-based row indices, which stay globally numbered
// across file boundaries.
type PrimaryKeySequencer struct {
	base int64
}

// NewPrimaryKeySequencer derives the base offset from the seed when one is
// set, and from the wall clock otherwise.
func NewPrimaryKeySequencer(seed *int64) *PrimaryKeySequencer {
	var base int64
	if seed != nil {
		base = (*seed * 1000) << pkShiftBits
	} else {
		base = time.Now().UnixMilli() << pkShiftBits
	}
	return &PrimaryKeySequencer{base: base}
}

// Base returns the run-scoped base offset.
func (s *PrimaryKeySequencer) Base() int64 { return s.base }

// Int64At returns the integer key for the given zero-based row index.
func (s *PrimaryKeySequencer) Int64At(idx int64) int64 {
	return s.base + idx
}

// StringAt returns the text key for the given zero-based row index: the
// decimal form of the integer key.
func (s *PrimaryKeySequencer) StringAt(idx int64) string {
	return strconv.FormatInt(s.base+idx, 10)
}
