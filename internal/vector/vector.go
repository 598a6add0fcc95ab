// Package vector provides similarity and normalization helpers for
// fixed-length float vectors.
package vector

import (
	"fmt"
	"math"
)

// CosineSimilarity returns the cosine similarity of a and b in [-1, 1].
// It returns an error when the vectors have different lengths or are empty;
// mismatched dimensions are a programming error, not a degraded condition.
// A zero vector has similarity 0 with everything.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector length mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("empty vectors")
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(-1, math.Min(1, sim)), nil
}

// L2Norm returns the L2 norm of x.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// NormalizeL2 normalizes x in place to unit L2 norm.
// If the norm is zero, x is unchanged.
func NormalizeL2(x []float32) {
	var sum float32
	for _, v := range x {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range x {
		x[i] *= norm
	}
}

// IsZero reports whether every component of x is zero.
// Degraded embeddings fall back to zero vectors; callers use this to
// exclude them from similarity ranking.
func IsZero(x []float32) bool {
	for _, v := range x {
		if v != 0 {
			return false
		}
	}
	return true
}

// WeightedAverage returns the weighted average of the given vectors.
// All vectors must share the same length and weights must match vectors
// one-to-one. Zero total weight yields a zero vector.
func WeightedAverage(vectors [][]float32, weights []float64) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no vectors")
	}
	if len(weights) != len(vectors) {
		return nil, fmt.Errorf("weights length mismatch: %d vs %d", len(weights), len(vectors))
	}
	dim := len(vectors[0])
	sum := make([]float64, dim)
	var totalWeight float64
	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("vector %d length mismatch: %d vs %d", i, len(vec), dim)
		}
		for j, v := range vec {
			sum[j] += float64(v) * weights[i]
		}
		totalWeight += weights[i]
	}
	out := make([]float32, dim)
	if totalWeight == 0 {
		return out, nil
	}
	for j := range sum {
		out[j] = float32(sum[j] / totalWeight)
	}
	return out, nil
}
