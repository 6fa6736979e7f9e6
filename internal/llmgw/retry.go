package llmgw

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/basegraph/salesassist/internal/apperr"
)

// withRetry executes fn up to cfg.MaxAttempts times, sleeping with
// exponential backoff between attempts. Only transient failures (per
// apperr.IsTransient) are retried; anything else returns on the first
// attempt.
func withRetry(ctx context.Context, cfg Config, surface string, fn func(ctx context.Context) (string, error)) (string, error) {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !apperr.IsTransient(err) {
			return "", err
		}

		if attempt == maxAttempts-1 {
			break
		}

		backoff := calculateBackoff(cfg, attempt)
		slog.WarnContext(ctx, "transient llm failure, retrying",
			"surface", surface, "attempt", attempt+1, "backoff", backoff, "error", err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}

	return "", lastErr
}

func calculateBackoff(cfg Config, attempt int) time.Duration {
	backoff := float64(cfg.InitialBackoff) * math.Pow(cfg.BackoffFactor, float64(attempt))
	if backoff > float64(cfg.MaxBackoff) {
		backoff = float64(cfg.MaxBackoff)
	}
	return time.Duration(backoff)
}
