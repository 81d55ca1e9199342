package planner

import (
	"encoding/json"
	"strings"

	"github.com/mohammad-safakhou/tradeops/models"
)

// ParsePlan extracts a scrape plan from raw model output. Models wrap JSON
// in code fences or prose more often than not, so parsing is tolerant:
// strip fence markers, try the whole text as an array, then as an object
// holding a "scrape_plan" array, then the first [...] substring. Anything
// unparseable yields nil.
func ParsePlan(text string) []models.ScrapeItem {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return nil
	}

	var items []models.ScrapeItem
	if err := json.Unmarshal([]byte(cleaned), &items); err == nil {
		return items
	}

	var wrapped struct {
		ScrapePlan []models.ScrapeItem `json:"scrape_plan"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wrapped); err == nil && wrapped.ScrapePlan != nil {
		return wrapped.ScrapePlan
	}

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start == -1 || end <= start {
		return nil
	}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &items); err != nil {
		return nil
	}
	return items
}
