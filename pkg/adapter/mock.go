package adapter

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

const mockDimensions = 128

// MockEmbedder is a deterministic, offline embedder for tests and local runs.
// Each token is hashed into a fixed bucket of the vector, so texts sharing
// words land closer together than unrelated texts. Not a real embedding
// model, but similarity behaves directionally enough for ranking tests.
type MockEmbedder struct{}

// NewMockEmbedder creates a deterministic bag-of-tokens embedder.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vector := make([]float32, mockDimensions)

	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,:;!?\"'()<>")
		if token == "" {
			continue
		}
		h := fnv.New64a()
		h.Write([]byte(token))
		vector[h.Sum64()%mockDimensions]++
	}

	return normalize(vector), nil
}

// normalize converts the vector to unit length.
func normalize(vector []float32) []float32 {
	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vector
	}

	scale := float32(1 / math.Sqrt(norm))
	for i := range vector {
		vector[i] *= scale
	}
	return vector
}
