package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/snaplisting/photoset/internal/platform/config"
	"github.com/snaplisting/photoset/internal/platform/observability"
)

const httpRateLimiterBurst = 2

// HTTPProvider calls the external embedding service over HTTP JSON.
type HTTPProvider struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *zerolog.Logger
}

type embedRequest struct {
	URL string `json:"url"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewHTTPProvider creates a provider for the configured embedding service.
func NewHTTPProvider(cfg *config.Config, logger *zerolog.Logger) *HTTPProvider {
	return &HTTPProvider{
		baseURL:     cfg.EmbeddingBaseURL,
		httpClient:  &http.Client{Timeout: cfg.EmbeddingTimeout},
		rateLimiter: rate.NewLimiter(rate.Limit(float64(cfg.EmbeddingRateLimitRPS)), httpRateLimiterBurst),
		logger:      logger,
	}
}

// GetImageEmbedding fetches the vector for one image URL. A null embedding
// in the response maps to (nil, nil).
func (p *HTTPProvider) GetImageEmbedding(ctx context.Context, url string) ([]float32, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(embedRequest{URL: url})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		observability.EmbeddingLookups.WithLabelValues("error").Inc()

		return nil, fmt.Errorf("embed request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is not actionable

	if resp.StatusCode != http.StatusOK {
		observability.EmbeddingLookups.WithLabelValues("error").Inc()

		return nil, fmt.Errorf("embed request: unexpected status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embed response: %w", err)
	}

	var parsed embedResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse embed response: %w", err)
	}

	if len(parsed.Embedding) == 0 {
		observability.EmbeddingLookups.WithLabelValues("miss").Inc()
		p.logger.Debug().Str("url", url).Msg("embedding service returned no vector")

		return nil, nil
	}

	observability.EmbeddingLookups.WithLabelValues("hit").Inc()

	return parsed.Embedding, nil
}

// Ensure HTTPProvider implements Client interface.
var _ Client = (*HTTPProvider)(nil)
