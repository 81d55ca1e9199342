package pipeline

import (
	"context"
	"sync"

	"github.com/mohammad-safakhou/tradeops/internal/extract"
	"github.com/mohammad-safakhou/tradeops/models"
)

// fetchAll resolves every scrape target concurrently and joins before
// returning. findings[i] always corresponds to items[i] regardless of
// completion order, so downstream synthesis is deterministic.
func (p *Pipeline) fetchAll(ctx context.Context, items []models.ScrapeItem) []models.Finding {
	findings := make([]models.Finding, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item models.ScrapeItem) {
			defer wg.Done()
			findings[i] = p.fetchOne(ctx, item)
		}(i, item)
	}
	wg.Wait()
	return findings
}

func (p *Pipeline) fetchOne(ctx context.Context, item models.ScrapeItem) models.Finding {
	html, err := p.Fetcher.Exec(ctx, item.URL)
	if err != nil || html == "" {
		p.Metrics.FetchFailure()
		if p.Logger != nil {
			p.Logger.Printf("fetch failed for %s: %v", item.URL, err)
		}
		return models.Finding{URL: item.URL, Reason: item.Reason, Error: models.FetchFailed}
	}

	finding := models.Finding{
		URL:         item.URL,
		Reason:      item.Reason,
		TextSnippet: snippet(extract.Text(html, item.URL), p.MaxChars),
	}
	if len(item.Selectors) > 0 {
		finding.Extracted = extract.Selectors(html, item.Selectors)
	}
	return finding
}

func snippet(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
