package llmgw

import (
	"context"
	"errors"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"

	"github.com/basegraph/salesassist/internal/apperr"
)

// classify normalizes a raw provider error into an *apperr.Error so the
// retry loop and the caller can make decisions without knowing which
// SDK produced the failure.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindDependencyTimeout, "llm call deadline exceeded", err)
	}
	if errors.Is(err, context.Canceled) {
		return apperr.Wrap(apperr.KindDependencyTimeout, "llm call canceled", err)
	}

	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return classifyStatus(openaiErr.StatusCode, err)
	}

	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return classifyStatus(anthropicErr.StatusCode, err)
	}

	// Unknown error shape (network-level failure from the HTTP
	// transport below the SDK, e.g. connection reset): treat as
	// transient so the retry loop gets a chance to recover.
	return apperr.Wrap(apperr.KindDependencyUnavailable, "llm call failed", err)
}

func classifyStatus(status int, cause error) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apperr.Wrap(apperr.KindDependencyAuth, "llm provider rejected credentials", cause)
	case status == http.StatusNotFound:
		return apperr.Wrap(apperr.KindDependencyNotFound, "llm model not found", cause)
	case status == http.StatusTooManyRequests:
		return apperr.Wrap(apperr.KindDependencyRateLimited, "llm provider rate limited request", cause)
	case status >= 500:
		return apperr.Wrap(apperr.KindDependencyUnavailable, "llm provider returned server error", cause)
	default:
		return apperr.Wrap(apperr.KindInternal, "llm provider returned unexpected error", cause)
	}
}
