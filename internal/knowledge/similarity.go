package knowledge

import (
	"math"
)

// CosineSimilarity returns the cosine of the angle between a and b.
// It is 0.0 when either vector has zero magnitude. When lengths differ the
// dot product covers the shared prefix while each norm covers its whole
// vector.
func CosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dotProduct float64
	for i := 0; i < n; i++ {
		dotProduct += a[i] * b[i]
	}

	normA := magnitude(a)
	normB := magnitude(b)
	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (normA * normB)
}

func magnitude(v []float64) float64 {
	var sumSquares float64
	for _, x := range v {
		sumSquares += x * x
	}
	return math.Sqrt(sumSquares)
}
