package embed

import "math"

// vectorMagnitude returns the Euclidean norm of v.
func vectorMagnitude(v []float32) float64 {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	return math.Sqrt(sumSquares)
}

// cosineSimilarity returns the cosine of the angle between a and b,
// or 0 when either vector is zero or the lengths differ.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	magA, magB := vectorMagnitude(a), vectorMagnitude(b)
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (magA * magB)
}
