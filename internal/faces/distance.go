package faces

import (
	"fmt"
	"math"
)

// Distance returns the euclidean distance between two embeddings.
// Embeddings of different length are infinitely far apart.
func Distance(a, b Embedding) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Distances returns the distance from probe to every known face, in order.
func Distances(known []KnownFace, probe Embedding) []float64 {
	out := make([]float64, len(known))
	for i, k := range known {
		out[i] = Distance(k.Embedding, probe)
	}
	return out
}

// WithinTolerance is the pairwise match decision: distance <= tolerance.
func WithinTolerance(distance, tolerance float64) bool {
	return distance <= tolerance
}

// CompareFaces reports, per known face, whether probe is within tolerance.
func CompareFaces(known []KnownFace, probe Embedding, tolerance float64) []bool {
	out := make([]bool, len(known))
	for i, d := range Distances(known, probe) {
		out[i] = WithinTolerance(d, tolerance)
	}
	return out
}

// Confidence renders a distance as a percentage, clamped at zero.
func Confidence(distance float64) string {
	return fmt.Sprintf("%.1f%%", math.Max(0, 100-distance*100))
}
