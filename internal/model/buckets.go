package model

import (
	"fmt"
	"math"
	"strconv"
)

// BucketScheme holds the fixed upper bounds of contiguous time ranges. The
// ranges are [0,b0), [b0,b1), ... and a final open-ended [bn,inf).
type BucketScheme struct {
	bounds []float64
}

// DefaultBucketScheme returns the 0-30s, 30-60s, 60-120s, 120s+ scheme.
func DefaultBucketScheme() BucketScheme {
	return BucketScheme{bounds: []float64{30, 60, 120}}
}

// NewBucketScheme validates bounds and returns a scheme. Bounds must be
// finite, positive and strictly increasing.
func NewBucketScheme(bounds ...float64) (BucketScheme, error) {
	prev := 0.0
	for i, b := range bounds {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			return BucketScheme{}, fmt.Errorf("bucket bound %d is not finite", i)
		}
		if b <= prev {
			return BucketScheme{}, fmt.Errorf("bucket bounds must be positive and strictly increasing (got %v after %v)", b, prev)
		}
		prev = b
	}
	out := make([]float64, len(bounds))
	copy(out, bounds)
	return BucketScheme{bounds: out}, nil
}

// Bounds returns a copy of the upper bounds.
func (s BucketScheme) Bounds() []float64 {
	out := make([]float64, len(s.bounds))
	copy(out, s.bounds)
	return out
}

// Len returns the number of buckets, including the open-ended last one.
func (s BucketScheme) Len() int {
	return len(s.bounds) + 1
}

// Index returns the bucket that contains seconds.
func (s BucketScheme) Index(seconds float64) int {
	for i, b := range s.bounds {
		if seconds < b {
			return i
		}
	}
	return len(s.bounds)
}

// Range returns the lower and upper bound of bucket i. Upper is zero for the
// last bucket.
func (s BucketScheme) Range(i int) (lower, upper float64) {
	if i > 0 && i-1 < len(s.bounds) {
		lower = s.bounds[i-1]
	}
	if i < len(s.bounds) {
		upper = s.bounds[i]
	}
	return lower, upper
}

// Label returns a display label such as "30-60s" or "120s+".
func (s BucketScheme) Label(i int) string {
	lower, upper := s.Range(i)
	if i >= len(s.bounds) {
		return formatSeconds(lower) + "s+"
	}
	return formatSeconds(lower) + "-" + formatSeconds(upper) + "s"
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
