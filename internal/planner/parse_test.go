package planner

import (
	"testing"
)

func TestParsePlanCleanJSON(t *testing.T) {
	got := ParsePlan(`[{"url":"https://a.example","reason":"earnings","selectors":["h1"],"priority":2}]`)
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	if got[0].URL != "https://a.example" || got[0].Priority != 2 {
		t.Fatalf("unexpected item: %+v", got[0])
	}
}

func TestParsePlanFenced(t *testing.T) {
	text := "```json\n[{\"url\":\"https://a.example\",\"priority\":1}]\n```"
	got := ParsePlan(text)
	if len(got) != 1 || got[0].Priority != 1 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestParsePlanWrappedObject(t *testing.T) {
	text := `{"scrape_plan":[{"url":"https://a.example"},{"url":"https://b.example"}]}`
	got := ParsePlan(text)
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
}

func TestParsePlanEmbeddedInProse(t *testing.T) {
	text := `Sure! Here is the plan you asked for:

[{"url":"https://a.example","reason":"analyst note"}]

Let me know if you need anything else.`
	got := ParsePlan(text)
	if len(got) != 1 || got[0].Reason != "analyst note" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestParsePlanGarbage(t *testing.T) {
	for _, text := range []string{
		"",
		"no json here at all",
		"[this is not json]",
		"{\"other_key\": true}",
	} {
		if got := ParsePlan(text); got != nil {
			t.Fatalf("ParsePlan(%q) = %+v, want nil", text, got)
		}
	}
}
