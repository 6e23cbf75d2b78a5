// Package embeddings provides the image-embedding lookup used to visually
// confirm a front/back relationship when text signals are exhausted.
//
// The external service takes an image URL and returns a unit-normalized
// vector, or null when it cannot embed the image. Lookups are memoized per
// URL for the client's lifetime to avoid redundant remote calls.
package embeddings

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/snaplisting/photoset/internal/platform/config"
)

// Client defines the embedding lookup interface. A nil vector with a nil
// error means the service declined the image; callers treat that as "no
// visual signal", never as a failure.
type Client interface {
	GetImageEmbedding(ctx context.Context, url string) ([]float32, error)
}

// New creates an embedding client. Without a base URL it returns the mock
// provider so the pipeline runs offline. The returned client memoizes per
// URL and is safe for concurrent use.
func New(cfg *config.Config, logger *zerolog.Logger) Client {
	if logger == nil {
		nopLogger := zerolog.Nop()
		logger = &nopLogger
	}

	if cfg.EmbeddingBaseURL == "" {
		logger.Warn().Msg("no embedding base URL configured, using mock embedding provider")

		return NewMemoized(NewMock())
	}

	return NewMemoized(NewHTTPProvider(cfg, logger))
}
