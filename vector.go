package vectro

import (
	"math"

	"github.com/viterin/vek/vek32"
)

// Dot computes the dot product of two equal-length vectors.
//
// The heavy lifting is delegated to vek's SIMD kernels, which fall back to a
// portable loop on architectures without vector instructions.
func Dot(a, b []float32) float32 {
	return vek32.Dot(a, b)
}

// Norm computes the L2 norm (Euclidean magnitude) of a vector.
//
// Formula: sqrt(sum(v[i]^2))
func Norm(v []float32) float32 {
	return float32(math.Sqrt(float64(vek32.Dot(v, v))))
}

// CosineSimilarity computes the cosine of the angle between two vectors.
//
// Range: [-1, 1], where 1 means identical direction. If either vector has
// zero magnitude the similarity is defined as 0 rather than an error; the
// engine treats degenerate vectors as maximally dissimilar instead of
// poisoning a whole search with NaNs.
//
// Time complexity: O(n) where n is the vector dimension
func CosineSimilarity(a, b []float32) float32 {
	na := Norm(a)
	nb := Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return clampUnit(vek32.Dot(a, b) / (na * nb))
}

// Normalize returns a new vector with the same direction as v but unit
// length. A zero vector is returned unchanged (as a copy) to avoid division
// by zero and NaN values.
func Normalize(v []float32) []float32 {
	result := make([]float32, len(v))
	copy(result, v)
	NormalizeInPlace(result)
	return result
}

// NormalizeInPlace normalizes v to unit length in place. A zero vector is
// left unchanged.
func NormalizeInPlace(v []float32) {
	norm := Norm(v)
	if norm == 0 {
		return
	}
	vek32.MulNumber_Inplace(v, 1/norm)
}

// clampUnit clamps x to [-1, 1] to absorb floating point drift in dot
// products of normalized vectors.
func clampUnit(x float32) float32 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
