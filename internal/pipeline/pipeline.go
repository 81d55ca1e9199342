// Package pipeline sequences the analysis stages for one sector request:
// Search, Plan, Fetch, Synthesize. Only a failed or empty search is fatal;
// planning and synthesis degrade to deterministic local paths and fetch
// failures are absorbed per target.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mohammad-safakhou/tradeops/internal/planner"
	"github.com/mohammad-safakhou/tradeops/internal/report"
	"github.com/mohammad-safakhou/tradeops/internal/telemetry"
	"github.com/mohammad-safakhou/tradeops/models"
	"github.com/mohammad-safakhou/tradeops/tools/web_fetch"
	"github.com/mohammad-safakhou/tradeops/tools/web_search"
)

var (
	// ErrNoResults means the search stage found nothing to analyze.
	ErrNoResults = errors.New("no search results found")
	// ErrSearchProvider wraps a search provider failure.
	ErrSearchProvider = errors.New("search provider error")
	// ErrSynthesisFailed means no report body exists even after the local
	// fallback. The fallback is pure formatting, so this is a designated
	// error for a condition that should not occur.
	ErrSynthesisFailed = errors.New("report synthesis produced no output")
)

type Pipeline struct {
	Search      web_search.WebSearcher
	Fetcher     web_fetch.WebFetcher
	Planner     *planner.Planner
	Synthesizer *report.Synthesizer
	Metrics     *telemetry.Metrics
	Logger      *log.Logger

	MaxResults int // search hits requested
	MaxTargets int // fetch fan-out cap
	MaxChars   int // finding snippet cap
}

// Analyze runs the full pipeline for one sector. Admission control is the
// caller's responsibility; by the time this runs the session is validated,
// unlimited and recorded.
func (p *Pipeline) Analyze(ctx context.Context, sector string) (models.Report, error) {
	query := fmt.Sprintf("%s India market news", sector)

	t0 := time.Now()
	hits, err := p.Search.Discover(ctx, query, p.MaxResults)
	p.Metrics.ObserveStage("search", time.Since(t0).Seconds())
	if err != nil {
		return models.Report{}, fmt.Errorf("%w: %v", ErrSearchProvider, err)
	}
	if len(hits) == 0 {
		return models.Report{}, ErrNoResults
	}

	t0 = time.Now()
	plan := p.Planner.PlanScraping(ctx, hits, sector)
	if plan == nil {
		p.Metrics.PlanFallback()
	}
	items := planner.SelectPlan(plan, hits, p.MaxTargets)
	p.Metrics.ObserveStage("plan", time.Since(t0).Seconds())

	t0 = time.Now()
	findings := p.fetchAll(ctx, items)
	p.Metrics.ObserveStage("fetch", time.Since(t0).Seconds())

	t0 = time.Now()
	rep := p.Synthesizer.Generate(ctx, sector, findings)
	p.Metrics.ObserveStage("synthesize", time.Since(t0).Seconds())
	if rep.Fallback {
		p.Metrics.ReportFallback()
	}
	if rep.Markdown == "" {
		return models.Report{}, ErrSynthesisFailed
	}
	return rep, nil
}
