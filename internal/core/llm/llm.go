// Package llm provides the narrow client used for pairing arbitration calls.
//
// Two call sites exist: the constrained tie-breaker (strict allowed-backs
// contract, validated by the caller) and the unconstrained leftover pass.
// Both send a system instruction plus a structured JSON payload and expect
// one JSON object with pairs and singletons back.
package llm

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/snaplisting/photoset/internal/platform/config"
)

// Request kinds, used as metric labels.
const (
	KindTieBreak = "tiebreak"
	KindLeftover = "leftover"
)

// PairDecision is one proposed front/back pairing from the model.
type PairDecision struct {
	FrontURL   string  `json:"frontId"`
	BackURL    string  `json:"backId"`
	MatchScore float64 `json:"matchScore"`
	Reason     string  `json:"reason,omitempty"`
}

// SingletonDecision is an explicit "no match" from the model.
type SingletonDecision struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// Decision is the parsed model response.
type Decision struct {
	Pairs      []PairDecision      `json:"pairs"`
	Singletons []SingletonDecision `json:"singletons"`
}

// Client is the arbitration interface. Implementations must be safe for
// concurrent use; retry and backoff live inside the implementation so the
// pipeline stages never re-implement them.
type Client interface {
	ResolvePairs(ctx context.Context, kind, systemPrompt string, payload any) (Decision, error)
}

const llmAPIKeyMock = "mock"

// New creates an arbitration client. Without an API key it returns the mock
// client so the pipeline runs offline and deterministically.
func New(cfg *config.Config, logger *zerolog.Logger) Client {
	if logger == nil {
		nopLogger := zerolog.Nop()
		logger = &nopLogger
	}

	if cfg.LLMAPIKey == "" || cfg.LLMAPIKey == llmAPIKeyMock {
		logger.Warn().Msg("no LLM API key configured, using mock arbitration client")

		return NewMock()
	}

	return NewOpenAI(cfg, logger)
}
