package models

import "time"

// SearchHit is a single search result as returned by a search provider.
type SearchHit struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ScrapeItem is one target page of a scrape plan, either produced by the
// planning model or synthesized as a default.
type ScrapeItem struct {
	URL       string   `json:"url"`
	Reason    string   `json:"reason"`
	Selectors []string `json:"selectors"`
	Priority  int      `json:"priority"` // 1..5, lower is more urgent
}

// FetchError marks why a target produced no content.
type FetchError string

const (
	FetchFailed FetchError = "fetch_failed"
)

// Finding is the per-target scrape result. Exactly one Finding is emitted
// for every attempted ScrapeItem, failures included.
type Finding struct {
	URL         string             `json:"url"`
	Reason      string             `json:"reason,omitempty"`
	TextSnippet string             `json:"text_snippet,omitempty"`
	Extracted   map[string]*string `json:"extracted,omitempty"`
	Error       FetchError         `json:"error,omitempty"`
}

// Report is the final markdown document produced for a sector.
type Report struct {
	Markdown    string
	Fallback    bool // true when the local renderer produced the body
	GeneratedAt time.Time
}
