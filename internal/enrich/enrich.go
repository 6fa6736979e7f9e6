// Package enrich composes optional strategic-context blocks into the
// Slow Path prompt. Each function is pure, synchronous and
// non-authoritative: it sources from data already in memory or
// injected at construction time, never performs I/O on the hot path,
// and a failure or "nothing to say" outcome is silently omitted rather
// than surfaced to the caller.
package enrich

import (
	"strings"
	"time"

	"github.com/basegraph/salesassist/core/config"
	"github.com/basegraph/salesassist/internal/domain"
)

// Input is everything an enrichment function may read. It is built once
// per Slow Path run from data already available to the orchestrator;
// no enrichment function is ever handed a database handle or client.
type Input struct {
	Session        domain.Session
	LatestNote     string
	History        domain.History
	Now            time.Time
	RegionalPrices RegionalPriceTable
	Subsidies      SubsidyTable
}

// Func is a single pluggable enrichment heuristic. It returns the block
// to append to the prompt and whether it has anything to say.
type Func func(Input) (block string, ok bool)

// entry pairs a named Func with the config flag that gates it.
type entry struct {
	name    string
	enabled func(config.EnrichmentConfig) bool
	fn      Func
}

// Registry holds the fixed, ordered set of enrichment functions and the
// config that toggles each independently.
type Registry struct {
	cfg     config.EnrichmentConfig
	entries []entry
}

// New builds the registry with the built-in heuristics in a fixed
// composition order: market context first, then time-pressure signals.
func New(cfg config.EnrichmentConfig) *Registry {
	return &Registry{
		cfg: cfg,
		entries: []entry{
			{"fuel_price_benchmark", func(c config.EnrichmentConfig) bool { return c.FuelPriceBenchmark }, FuelPriceBenchmark},
			{"regional_market_note", func(c config.EnrichmentConfig) bool { return c.RegionalMarketNote }, RegionalMarketNote},
			{"subsidy_expiry_clock", func(c config.EnrichmentConfig) bool { return c.SubsidyExpiryClock }, SubsidyExpiryClock},
			{"urgency_heuristic", func(c config.EnrichmentConfig) bool { return c.UrgencyHeuristic }, UrgencyHeuristic},
		},
	}
}

// Compose runs every enabled function and joins the non-empty blocks, in
// registration order, with a blank line between them. A panicking
// heuristic is not recovered here; the panic propagates to the Slow Path
// caller.
func (r *Registry) Compose(in Input) string {
	var blocks []string
	for _, e := range r.entries {
		if !e.enabled(r.cfg) {
			continue
		}
		if block, ok := e.fn(in); ok && strings.TrimSpace(block) != "" {
			blocks = append(blocks, strings.TrimSpace(block))
		}
	}
	return strings.Join(blocks, "\n\n")
}
