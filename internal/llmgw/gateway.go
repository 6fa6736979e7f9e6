// Package llmgw implements the two-surface LLM Gateway contract: a Fast
// surface bound by a short per-call deadline, a Deep surface bound by a
// long one, and a combined Analyze surface that composes the two with
// fallback. Retry policy, fence-stripping and error normalization live
// here; common/llmclient only knows how to complete a single request
// against one concrete provider.
package llmgw

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/basegraph/salesassist/common/llmclient"
	"github.com/basegraph/salesassist/internal/apperr"
)

// Config bounds the Gateway's two surfaces and its retry policy.
type Config struct {
	FastDeadline time.Duration
	DeepDeadline time.Duration

	MaxAttempts     int
	InitialBackoff  time.Duration
	BackoffFactor   float64
	MaxBackoff      time.Duration
}

// DefaultConfig returns the retry/deadline policy used by default for both surfaces:
// up to 3 attempts, exponential backoff starting at 1s, factor 2, capped
// at 10s, with a Fast deadline of 10s and a Deep deadline of 90s.
func DefaultConfig() Config {
	return Config{
		FastDeadline:   10 * time.Second,
		DeepDeadline:   90 * time.Second,
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		BackoffFactor:  2,
		MaxBackoff:     10 * time.Second,
	}
}

// CompletionRequest is the caller-facing shape for both surfaces: a
// single prompt, not a multi-turn chat. The Gateway wraps it in a
// single user message; callers that need a system preamble pass it
// separately so it can be logged and retried independently of content.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature *float64
	MaxTokens   int
}

// AnalyzeResult is the combined Deep→Fast fallback surface's return
// value: which model actually produced the document, and whether a
// fallback occurred.
type AnalyzeResult struct {
	Document      json.RawMessage
	ModelUsed     string
	FallbackUsed  bool
	FallbackReason string
}

// Gateway is the two-surface abstraction the orchestrator depends on.
// Fast and Deep may be assigned the same or different providers.
type Gateway struct {
	fast llmclient.Provider
	deep llmclient.Provider
	cfg  Config
}

func New(fast, deep llmclient.Provider, cfg Config) *Gateway {
	return &Gateway{fast: fast, deep: deep, cfg: cfg}
}

// FastModel and DeepModel identify the two surfaces' underlying models,
// for callers that need to record which model produced (or failed to
// produce) a result without threading the provider through separately.
func (g *Gateway) FastModel() string { return g.fast.Model() }
func (g *Gateway) DeepModel() string { return g.deep.Model() }

// Fast completes prompt against the Fast Model with a ~10s deadline.
func (g *Gateway) Fast(ctx context.Context, req CompletionRequest) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.FastDeadline)
	defer cancel()
	return g.complete(ctx, g.fast, req, "fast")
}

// Deep completes prompt against the Deep Model with a ~90s deadline.
func (g *Gateway) Deep(ctx context.Context, req CompletionRequest) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.DeepDeadline)
	defer cancel()
	return g.complete(ctx, g.deep, req, "deep")
}

// Analyze tries Deep first; on any Deep failure (auth failures
// included) it retries the same prompt against Fast. When both fail, the returned error carries both
// failure reasons.
func (g *Gateway) Analyze(ctx context.Context, req CompletionRequest) (*AnalyzeResult, error) {
	deepDoc, deepErr := g.Deep(ctx, req)
	if deepErr == nil {
		return &AnalyzeResult{Document: deepDoc, ModelUsed: g.deep.Model()}, nil
	}

	slog.WarnContext(ctx, "deep surface failed, falling back to fast",
		"error", deepErr, "deep_model", g.deep.Model())

	fastDoc, fastErr := g.Fast(ctx, req)
	if fastErr == nil {
		return &AnalyzeResult{
			Document:       fastDoc,
			ModelUsed:      g.fast.Model(),
			FallbackUsed:   true,
			FallbackReason: deepErr.Error(),
		}, nil
	}

	return nil, apperr.Wrap(apperr.KindInternal,
		fmt.Sprintf("deep and fast both failed: deep=%v fast=%v", deepErr, fastErr), fastErr)
}

func (g *Gateway) complete(ctx context.Context, provider llmclient.Provider, req CompletionRequest, surface string) (json.RawMessage, error) {
	messages := []llmclient.Message{}
	if req.System != "" {
		messages = append(messages, llmclient.Message{Role: "system", Content: req.System})
	}
	messages = append(messages, llmclient.Message{Role: "user", Content: req.Prompt})

	clientReq := llmclient.Request{
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	raw, err := withRetry(ctx, g.cfg, surface, func(ctx context.Context) (string, error) {
		resp, err := provider.Complete(ctx, clientReq)
		if err != nil {
			return "", classify(err)
		}
		return resp.Content, nil
	})
	if err != nil {
		return nil, err
	}

	cleaned := stripFences(raw)
	if cleaned == "" {
		return nil, apperr.New(apperr.KindParseFailed, surface+": empty response body")
	}

	return json.RawMessage(cleaned), nil
}
