package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mohammad-safakhou/tradeops/models"
)

type fakeLLM struct {
	text string
	err  error
}

func (f fakeLLM) Complete(_ context.Context, _ string, _ int) (string, error) {
	return f.text, f.err
}

func fixedNow() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

func findings() []models.Finding {
	return []models.Finding{
		{URL: "https://a.example", Reason: "earnings", TextSnippet: "Quarterly results beat estimates."},
		{URL: "https://b.example", Error: models.FetchFailed},
	}
}

func TestGenerateRemoteSuccess(t *testing.T) {
	s := NewSynthesizer(fakeLLM{text: "# Banking Report\n\nAll good."}, nil)
	s.now = fixedNow

	rep := s.Generate(context.Background(), "banking", findings())
	if rep.Fallback {
		t.Fatal("remote path must not be flagged as fallback")
	}
	if rep.Markdown != "# Banking Report\n\nAll good." {
		t.Fatalf("model text must pass through untouched, got %q", rep.Markdown)
	}
}

func TestGenerateFallbackOnProviderError(t *testing.T) {
	s := NewSynthesizer(fakeLLM{err: errors.New("rate limited")}, nil)
	s.now = fixedNow

	rep := s.Generate(context.Background(), "banking", findings())
	if !rep.Fallback {
		t.Fatal("expected fallback report")
	}
	for _, want := range []string{
		"**WARNING:**",
		"Banking",
		"## Sources",
		"https://a.example (earnings)",
		"## Findings (snippets)",
		"Quarterly results beat estimates.",
	} {
		if !strings.Contains(rep.Markdown, want) {
			t.Fatalf("fallback report missing %q:\n%s", want, rep.Markdown)
		}
	}
}

func TestGenerateFallbackWithoutProvider(t *testing.T) {
	s := NewSynthesizer(nil, nil)
	s.now = fixedNow

	rep := s.Generate(context.Background(), "information technology", findings())
	if !rep.Fallback || rep.Markdown == "" {
		t.Fatalf("expected non-empty fallback report, got %+v", rep)
	}
	if !strings.Contains(rep.Markdown, "Information Technology") {
		t.Fatalf("title casing missing from report:\n%s", rep.Markdown)
	}
}

func TestGenerateFallbackOnEmptyModelText(t *testing.T) {
	s := NewSynthesizer(fakeLLM{text: "   \n"}, nil)
	s.now = fixedNow

	if rep := s.Generate(context.Background(), "banking", findings()); !rep.Fallback {
		t.Fatal("whitespace-only model output must trigger the fallback")
	}
}

func TestSnippetTruncation(t *testing.T) {
	long := strings.Repeat("x", 900)
	s := NewSynthesizer(nil, nil)
	s.now = fixedNow

	rep := s.Generate(context.Background(), "banking", []models.Finding{{URL: "https://a", TextSnippet: long}})
	if !strings.Contains(rep.Markdown, strings.Repeat("x", 800)+"...") {
		t.Fatal("long snippet not truncated with ellipsis")
	}
	if strings.Contains(rep.Markdown, strings.Repeat("x", 801)) {
		t.Fatal("snippet exceeds the 800 character cap")
	}
}
