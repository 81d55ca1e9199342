// Package report produces the final markdown document. Remote generation
// is attempted first; a deterministic local renderer guarantees a report
// exists on every path past fetching.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"github.com/mohammad-safakhou/tradeops/models"
	"github.com/mohammad-safakhou/tradeops/provider"
)

const (
	synthesisMaxTokens = 1200
	snippetLimit       = 800
)

const fallbackBanner = "**WARNING:** LLM analysis unavailable — returning a local fallback report. " +
	"Configure the llm provider (api key and model) for richer analysis.\n\n"

type Synthesizer struct {
	LLM    provider.Provider // nil forces the local renderer
	Logger *log.Logger

	now func() time.Time
}

func NewSynthesizer(llm provider.Provider, logger *log.Logger) *Synthesizer {
	return &Synthesizer{LLM: llm, Logger: logger, now: time.Now}
}

// Generate builds the sector report. The returned report is never empty
// for a non-empty findings list: when the model is unavailable or returns
// nothing usable, the local renderer takes over and the result is flagged
// as a fallback.
func (s *Synthesizer) Generate(ctx context.Context, sector string, findings []models.Finding) models.Report {
	now := s.now()
	if s.LLM != nil {
		text, err := s.LLM.Complete(ctx, synthesisPrompt(sector, findings), synthesisMaxTokens)
		if err == nil && strings.TrimSpace(text) != "" {
			return models.Report{Markdown: text, Fallback: false, GeneratedAt: now}
		}
		if s.Logger != nil {
			s.Logger.Printf("remote synthesis failed, rendering local report: %v", err)
		}
	}
	body := fallbackBanner + renderLocal(sector, findings, now)
	return models.Report{Markdown: body, Fallback: true, GeneratedAt: now}
}

func synthesisPrompt(sector string, findings []models.Finding) string {
	body, _ := json.MarshalIndent(findings, "", "  ")
	return fmt.Sprintf(
		"You are an expert financial analyst. Create a structured markdown market analysis "+
			"report for the sector '%s' in India. Use the findings below (which include scraped "+
			"text and extracted selectors), and produce a clear markdown document with sections: "+
			"Title, Generated time, Executive Summary, Key Drivers, Trade Opportunities "+
			"(1-5 items with rationale and suggested trade idea), Risks, and Sources. "+
			"Return ONLY the markdown text.\n\nFINDINGS:\n%s\n",
		sector, body)
}

// renderLocal is pure string formatting: no I/O, no failure mode.
func renderLocal(sector string, findings []models.Finding, now time.Time) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("# Trade Opportunities — %s (India)", titleCase(sector)))
	lines = append(lines, fmt.Sprintf("**Generated:** %s UTC", now.UTC().Format(time.RFC3339)))

	lines = append(lines, "## Sources")
	for _, f := range findings {
		reason := f.Reason
		if reason == "" {
			reason = "scraped"
		}
		lines = append(lines, fmt.Sprintf("- %s (%s)", f.URL, reason))
	}

	lines = append(lines, "## Findings (snippets)")
	for _, f := range findings {
		lines = append(lines, fmt.Sprintf("### Source: %s", f.URL))
		if f.Error != "" {
			lines = append(lines, fmt.Sprintf("_unavailable: %s_", f.Error))
			continue
		}
		lines = append(lines, truncate(f.TextSnippet, snippetLimit))
	}

	lines = append(lines, "## Note")
	lines = append(lines, "This report was generated by the local fallback renderer because no LLM response was available.")
	return strings.Join(lines, "\n\n")
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
