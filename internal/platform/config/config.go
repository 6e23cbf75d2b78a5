// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/snaplisting/photoset/internal/core/domain"
)

type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"local"`

	// LLM collaborator
	LLMAPIKey            string        `env:"LLM_API_KEY"`
	LLMModel             string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMRateLimitRPS      int           `env:"LLM_RATE_LIMIT_RPS" envDefault:"1"`
	LLMMaxRetries        int           `env:"LLM_MAX_RETRIES" envDefault:"3"`
	LLMRetryInitialDelay time.Duration `env:"LLM_RETRY_INITIAL_DELAY" envDefault:"500ms"`

	// Embedding collaborator
	EmbeddingBaseURL      string        `env:"EMBEDDING_BASE_URL"`
	EmbeddingTimeout      time.Duration `env:"EMBEDDING_TIMEOUT" envDefault:"15s"`
	EmbeddingRateLimitRPS int           `env:"EMBEDDING_RATE_LIMIT_RPS" envDefault:"4"`

	// Pairing thresholds
	ScoreThreshold         float64 `env:"SCORE_THRESHOLD" envDefault:"3.5"`
	GapThreshold           float64 `env:"GAP_THRESHOLD" envDefault:"1.2"`
	CosmeticScoreThreshold float64 `env:"COSMETIC_SCORE_THRESHOLD" envDefault:"1.5"`
	CosmeticGapThreshold   float64 `env:"COSMETIC_GAP_THRESHOLD" envDefault:"0.5"`
	TopKCandidates         int     `env:"TOP_K_CANDIDATES" envDefault:"4"`
	MinLLMMatchScore       float64 `env:"MIN_LLM_MATCH_SCORE" envDefault:"3.0"`
	VisualSimilarityFloor  float64 `env:"VISUAL_SIMILARITY_FLOOR" envDefault:"0.82"`
	ExtrasAttachFloor      float64 `env:"EXTRAS_ATTACH_FLOOR" envDefault:"1.0"`

	// OCR snippet cap applied by the feature builder.
	TextExtractMaxChars int `env:"TEXT_EXTRACT_MAX_CHARS" envDefault:"400"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, nil
}

// Snapshot returns the threshold set for inclusion in run metrics.
func (c *Config) Snapshot() domain.ConfigSnapshot {
	return domain.ConfigSnapshot{
		ScoreThreshold:         c.ScoreThreshold,
		GapThreshold:           c.GapThreshold,
		CosmeticScoreThreshold: c.CosmeticScoreThreshold,
		CosmeticGapThreshold:   c.CosmeticGapThreshold,
		TopKCandidates:         c.TopKCandidates,
		MinLLMMatchScore:       c.MinLLMMatchScore,
		VisualSimilarityFloor:  c.VisualSimilarityFloor,
		ExtrasAttachFloor:      c.ExtrasAttachFloor,
	}
}
