// Package similarity compares face descriptors using cosine distance.
package similarity

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDimensionMismatch is returned when two descriptors differ in length.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrDegenerateVector is returned when a descriptor has zero (or non-finite) norm,
	// so its direction is undefined.
	ErrDegenerateVector = errors.New("degenerate vector")
)

// Float is the set of element types a descriptor may use.
type Float interface {
	~float32 | ~float64
}

// Squared norms outside [minSquared, maxSquared] may have lost precision to
// underflow or overflow, so the vectors are rescaled before dividing.
const (
	minSquared = 0x1p-600
	maxSquared = 0x1p600
)

// Distance returns the cosine distance 1 - cos(a, b) in the range [0, 2].
// 0 means the same direction, 1 orthogonal, 2 opposite.
//
// Sums are accumulated in float64 in a single left-to-right pass over the
// indices, regardless of the element type. Very small or very large vectors
// are first divided by their largest component, as math.Hypot does, so only
// zero vectors and vectors with NaN or Inf components are degenerate.
func Distance[T Float](a, b []T) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}

	dot, normA, normB := sums(a, b, 1, 1)
	if !inRange(normA) || !inRange(normB) {
		scaleA, err := largest(a)
		if err != nil {
			return 0, fmt.Errorf("%w: first vector %v", ErrDegenerateVector, err)
		}
		scaleB, err := largest(b)
		if err != nil {
			return 0, fmt.Errorf("%w: second vector %v", ErrDegenerateVector, err)
		}
		dot, normA, normB = sums(a, b, scaleA, scaleB)
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Rounding can push |cos| slightly past 1
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return 1 - cos, nil
}

// sums returns the dot product and squared norms of a/scaleA and b/scaleB.
func sums[T Float](a, b []T, scaleA, scaleB float64) (dot, normA, normB float64) {
	for i := range a {
		x, y := float64(a[i])/scaleA, float64(b[i])/scaleB
		dot += x * y
		normA += x * x
		normB += y * y
	}
	return dot, normA, normB
}

func inRange(sq float64) bool {
	return sq >= minSquared && sq <= maxSquared
}

// largest returns the largest absolute component of v.
// It fails when v is all zeros or holds a NaN or Inf.
func largest[T Float](v []T) (float64, error) {
	var m float64
	for _, x := range v {
		f := math.Abs(float64(x))
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, errors.New("has a non-finite component")
		}
		m = max(m, f)
	}
	if m == 0 {
		return 0, errors.New("has norm 0")
	}
	return m, nil
}

// Similarity maps a cosine distance onto a bounded score in [0, 1],
// where 1 is identical direction.
func Similarity(distance float64) float64 {
	return 1 - distance/2
}

// Norm returns the Euclidean length of v, accumulated in float64.
// NaN and Inf components give NaN and +Inf.
func Norm[T Float](v []T) float64 {
	m, err := largest(v)
	if err != nil {
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		return math.Sqrt(sum)
	}
	var sum float64
	for _, x := range v {
		f := float64(x) / m
		sum += f * f
	}
	return m * math.Sqrt(sum)
}

// Check reports whether v is usable as a descriptor of length dim.
// dim <= 0 skips the length check.
func Check[T Float](v []T, dim int) error {
	if dim > 0 && len(v) != dim {
		return fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(v), dim)
	}
	if _, err := largest(v); err != nil {
		return fmt.Errorf("%w: vector %v", ErrDegenerateVector, err)
	}
	return nil
}
