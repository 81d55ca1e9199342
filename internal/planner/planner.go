// Package planner decides which search hits are worth scraping. The plan
// comes from the LLM when one is available and parseable; otherwise a
// deterministic default plan covers every hit.
package planner

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/mohammad-safakhou/tradeops/models"
	"github.com/mohammad-safakhou/tradeops/provider"
)

const (
	defaultPriority = 3
	defaultReason   = "top result"

	planMaxTokens = 800
)

type Planner struct {
	LLM    provider.Provider // nil disables remote planning
	Logger *log.Logger
}

// PlanScraping asks the model which result pages merit scraping. Any
// failure, from transport to unparseable output, yields nil so the caller
// falls back to the default plan.
func (p *Planner) PlanScraping(ctx context.Context, hits []models.SearchHit, sector string) []models.ScrapeItem {
	if p.LLM == nil {
		return nil
	}
	res, err := p.LLM.Complete(ctx, planPrompt(hits, sector), planMaxTokens)
	if err != nil {
		if p.Logger != nil {
			p.Logger.Printf("scrape planning failed, using default plan: %v", err)
		}
		return nil
	}
	return ParsePlan(res)
}

func planPrompt(hits []models.SearchHit, sector string) string {
	var b strings.Builder
	for _, h := range hits {
		fmt.Fprintf(&b, "- %s (%s)\n", h.Title, h.URL)
	}
	return fmt.Sprintf(
		"You are a helpful analyst. The user asked about the sector: %s (India). "+
			"Given these search results:\n%s\n"+
			"Decide which pages should be scraped for structured market information "+
			"(e.g., regulatory news, earnings, analyst commentary, company press releases). "+
			"For each page, return a JSON array called \"scrape_plan\" where each item has keys: "+
			"url, reason, selectors (list of CSS selectors that would extract the key info), "+
			"and priority (1-5). Only output JSON (no extra text).",
		sector, b.String())
}

// SelectPlan turns a model plan (possibly nil or partially malformed) into
// the ordered, capped list of fetch targets. Output is never longer than
// max, the sort is stable ascending by priority, and malformed entries are
// absorbed by defaults rather than rejected.
func SelectPlan(plan []models.ScrapeItem, hits []models.SearchHit, max int) []models.ScrapeItem {
	if len(plan) == 0 {
		plan = defaultPlan(hits)
	}

	// entries are normalized, never rejected: even one without a url is
	// kept, attempted downstream and recorded as a fetch_failed finding
	items := make([]models.ScrapeItem, 0, len(plan))
	for _, it := range plan {
		if it.Priority < 1 || it.Priority > 5 {
			it.Priority = defaultPriority
		}
		if it.Selectors == nil {
			it.Selectors = []string{}
		}
		items = append(items, it)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Priority < items[j].Priority
	})

	if len(items) > max {
		items = items[:max]
	}
	return items
}

func defaultPlan(hits []models.SearchHit) []models.ScrapeItem {
	out := make([]models.ScrapeItem, 0, len(hits))
	for _, h := range hits {
		out = append(out, models.ScrapeItem{
			URL:       h.URL,
			Reason:    defaultReason,
			Selectors: []string{},
			Priority:  defaultPriority,
		})
	}
	return out
}
