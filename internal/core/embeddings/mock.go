package embeddings

import (
	"context"
	"hash/fnv"
	"math"
)

const mockDimensions = 16

// mockProvider returns deterministic unit vectors derived from the URL so
// offline runs and tests behave identically across invocations.
type mockProvider struct{}

// NewMock creates a mock embedding provider.
func NewMock() Client {
	return &mockProvider{}
}

func (m *mockProvider) GetImageEmbedding(_ context.Context, url string) ([]float32, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(url)) //nolint:errcheck // fnv hash writes cannot fail

	seed := h.Sum64()
	vec := make([]float32, mockDimensions)

	var norm float64

	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed>>33)) / float32(math.MaxInt32)
		norm += float64(vec[i]) * float64(vec[i])
	}

	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil, nil
	}

	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}

	return vec, nil
}

// Ensure mockProvider implements Client interface.
var _ Client = (*mockProvider)(nil)
