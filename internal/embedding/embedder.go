package embedding

import (
	"context"
	"errors"
	"math"
	"math/rand"
)

// ErrDimensionMismatch means the backend produced vectors of a dimension
// other than the configured one. This is a configuration fault, not a
// transient failure, and must halt the operation.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Embedder maps texts to fixed-dimension vectors, one per input in input
// order. Implementations never return a vector of a dimension other than
// Dimension(); on backend failure they degrade to valid fallback vectors
// rather than erroring, and signal the degradation through their logger.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// randomVector returns a pseudo-random fallback vector of the given
// dimension, the degraded stand-in used when an embedding backend fails.
func randomVector(dim int) []float32 {
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = rand.Float32()
	}
	return vec
}

func normalize(vec []float32) {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= inv
	}
}
