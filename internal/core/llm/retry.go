package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/snaplisting/photoset/internal/core/errors"
)

const retryDelayMultiplier = 2

// retryCompletion runs fn up to maxRetries+1 times with exponential
// backoff. Circuit-open and canceled errors are returned immediately: the
// breaker will not clear within the backoff window, and cancellation means
// the caller is gone.
func retryCompletion(
	ctx context.Context,
	logger *zerolog.Logger,
	maxRetries int,
	initialDelay time.Duration,
	kind string,
	fn func() (string, error),
) (string, error) {
	var lastErr error

	delay := initialDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			logger.Warn().Err(lastErr).Int("attempt", attempt).Str("kind", kind).Msg("retrying LLM request")

			select {
			case <-ctx.Done():
				return "", fmt.Errorf("retry interrupted: %w", ctx.Err())
			case <-time.After(delay):
				delay *= retryDelayMultiplier
			}
		}

		var content string

		content, lastErr = fn()
		if lastErr == nil {
			return content, nil
		}

		if errors.Is(lastErr, apperrors.ErrCircuitBreakerOpen) || errors.Is(lastErr, context.Canceled) {
			return "", lastErr
		}
	}

	return "", lastErr
}
