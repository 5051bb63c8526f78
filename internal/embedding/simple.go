package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
)

// SimpleModel is a deterministic stub Embedding backend. The same text always
// maps to the same unit vector, but the vectors carry no semantic meaning, so
// retrieval quality over them is meaningless. Intended for offline testing
// and as the fallback when an optional local backend cannot load.
type SimpleModel struct {
	dim int
}

// NewSimpleModel creates a stub backend with the given dimensionality.
func NewSimpleModel(dim int) *SimpleModel {
	if dim <= 0 {
		dim = Dimension(Simple)
	}
	return &SimpleModel{dim: dim}
}

// Embed generates a deterministic pseudo-random unit vector for the text.
func (m *SimpleModel) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	vec := make([]float32, m.dim)
	var norm float64
	for i := range vec {
		v := rng.Float64()*2 - 1
		vec[i] = float32(v)
		norm += v * v
	}

	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}

	return vec, nil
}

// EmbedBatch generates deterministic vectors for a batch of texts.
func (m *SimpleModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

var _ Embedding = (*SimpleModel)(nil)
