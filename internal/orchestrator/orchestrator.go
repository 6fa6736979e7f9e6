// Package orchestrator implements the Request Orchestrator: the Fast
// Path (synchronous, deadline-bound coached reply), the Slow Path (async
// deep analysis, bounded-concurrency, push-delivered) and the
// refinement turn. It composes the Session Manager, Retrieval Layer, LLM
// Gateway, strategic enrichment registry, persistent store, Channel
// Registry and admission queue; it never talks to a provider SDK, a
// database driver or a websocket directly.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/basegraph/salesassist/internal/channel"
	"github.com/basegraph/salesassist/internal/domain"
	"github.com/basegraph/salesassist/internal/enrich"
	"github.com/basegraph/salesassist/internal/llmgw"
	"github.com/basegraph/salesassist/internal/queue"
	"github.com/basegraph/salesassist/internal/retriever"
	"github.com/basegraph/salesassist/internal/sessionmgr"
	"github.com/basegraph/salesassist/internal/store"
)

// gatewayClient narrows llmgw.Gateway to what the orchestrator needs,
// the way retriever.Embedder narrows embed.Embedder — so a fake can
// stand in for tests without touching a provider SDK.
type gatewayClient interface {
	Fast(ctx context.Context, req llmgw.CompletionRequest) (json.RawMessage, error)
	Analyze(ctx context.Context, req llmgw.CompletionRequest) (*llmgw.AnalyzeResult, error)
	FastModel() string
	DeepModel() string
}

var _ gatewayClient = (*llmgw.Gateway)(nil)

// composer narrows enrich.Registry to its one call.
type composer interface {
	Compose(enrich.Input) string
}

var _ composer = (*enrich.Registry)(nil)

// Config bounds the Fast Path and Slow Path, and carries the
// injected strategic-enrichment snapshots.
type Config struct {
	FastPathDeadline     time.Duration
	SlowPathDeadline     time.Duration
	SlowPathStartupDelay time.Duration
	SlowPathChannelWait  time.Duration

	// HistoryLimit bounds the Fast Path's truncated history fetch (the
	// Slow Path always fetches the full, untruncated transcript).
	HistoryLimit int

	RegionalPrices enrich.RegionalPriceTable
	Subsidies      enrich.SubsidyTable
}

// DefaultConfig holds the default bounds: a 5s Fast Path budget, a
// 90s Slow Path budget, up to 1s of startup delay and up to 10s spent
// probing for a live channel before proceeding without one.
func DefaultConfig() Config {
	return Config{
		FastPathDeadline:     5 * time.Second,
		SlowPathDeadline:     90 * time.Second,
		SlowPathStartupDelay: time.Second,
		SlowPathChannelWait:  10 * time.Second,
		HistoryLimit:         20,
	}
}

// Orchestrator is the Core. Its exported surface is Send, RunSlowPath,
// Refine and RetrySlowPath; RunSlowPath also satisfies
// worker.SlowPathProcessor.
type Orchestrator struct {
	sessions sessionmgr.Manager
	retrieve retriever.Retriever
	gateway  gatewayClient
	enricher composer
	analyses store.AnalysisStore
	feedback store.FeedbackStore
	channels *channel.Registry
	producer queue.Producer

	schema *gojsonschema.Schema
	cfg    Config
}

func New(
	sessions sessionmgr.Manager,
	retrieve retriever.Retriever,
	gateway gatewayClient,
	enricher composer,
	analyses store.AnalysisStore,
	feedback store.FeedbackStore,
	channels *channel.Registry,
	producer queue.Producer,
	cfg Config,
) (*Orchestrator, error) {
	schema, err := compileSchema(domain.OpusMagnumDocument{})
	if err != nil {
		return nil, fmt.Errorf("compiling opus magnum document schema: %w", err)
	}

	return &Orchestrator{
		sessions: sessions,
		retrieve: retrieve,
		gateway:  gateway,
		enricher: enricher,
		analyses: analyses,
		feedback: feedback,
		channels: channels,
		producer: producer,
		schema:   schema,
		cfg:      cfg,
	}, nil
}
