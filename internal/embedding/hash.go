package embedding

import (
	"context"
	"hash/fnv"
	"strings"
)

// HashEmbedder is the local, no-network backend: a deterministic
// feature-hashing bag-of-words embedding, L2-normalized. Quality is far below
// a learned model but the dimensionality contract and determinism hold, which
// makes it the offline and test backend.
type HashEmbedder struct {
	dim int
}

func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = 384
	}
	return &HashEmbedder{dim: dim}
}

func (e *HashEmbedder) Dimension() int { return e.dim }

func (e *HashEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.encode(text)
	}
	return vectors, nil
}

func (e *HashEmbedder) encode(text string) []float32 {
	vec := make([]float32, e.dim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		sum := h.Sum32()
		bucket := int(sum % uint32(e.dim))
		// Half the hash space contributes negatively so vectors spread
		// across the sphere instead of clustering in one orthant.
		if sum&0x80000000 != 0 {
			vec[bucket]--
		} else {
			vec[bucket]++
		}
	}
	normalize(vec)
	return vec
}
