package common

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch is returned when two vectors of different lengths are
// compared. This points at a misconfigured embedding provider, so it is a
// hard error rather than a silently degraded score.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// CosineSimilarity computes dot(a,b) / (‖a‖·‖b‖). It returns 0 when either
// vector has zero norm, so the result is always a real number in [-1, 1].
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
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

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
