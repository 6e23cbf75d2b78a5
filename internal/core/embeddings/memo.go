package embeddings

import (
	"context"
	"sync"
)

// memoized wraps a Client and caches results per URL for the lifetime of
// the wrapper. The wrapper normally lives as long as the process and spans
// batches; that is safe because a URL's vector never changes. Errors are
// not cached so transient failures can be retried on a later lookup.
type memoized struct {
	inner Client

	mu    sync.Mutex
	cache map[string][]float32
}

// NewMemoized wraps a client with per-URL memoization.
func NewMemoized(inner Client) Client {
	return &memoized{
		inner: inner,
		cache: make(map[string][]float32),
	}
}

func (m *memoized) GetImageEmbedding(ctx context.Context, url string) ([]float32, error) {
	m.mu.Lock()
	if vec, ok := m.cache[url]; ok {
		m.mu.Unlock()
		return vec, nil
	}
	m.mu.Unlock()

	vec, err := m.inner.GetImageEmbedding(ctx, url)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.cache[url] = vec
	m.mu.Unlock()

	return vec, nil
}
