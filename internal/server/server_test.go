package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/tradeops/config"
	"github.com/mohammad-safakhou/tradeops/internal/pipeline"
	"github.com/mohammad-safakhou/tradeops/internal/planner"
	"github.com/mohammad-safakhou/tradeops/internal/report"
	"github.com/mohammad-safakhou/tradeops/internal/session"
	"github.com/mohammad-safakhou/tradeops/models"
)

type fakeSearch struct {
	hits []models.SearchHit
	err  error
}

func (f fakeSearch) Discover(_ context.Context, _ string, k int) ([]models.SearchHit, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.hits) > k {
		return f.hits[:k], nil
	}
	return f.hits, nil
}

type fakeFetcher struct {
	mu      sync.Mutex
	fetched []string
}

func (f *fakeFetcher) Exec(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	f.mu.Unlock()
	return fmt.Sprintf("<html><body><article><p>content of %s</p></article></body></html>", url), nil
}

type fakeLLM struct {
	text string
	err  error
}

func (f fakeLLM) Complete(_ context.Context, _ string, _ int) (string, error) {
	return f.text, f.err
}

func testHits() []models.SearchHit {
	return []models.SearchHit{
		{Title: "A", URL: "https://a.example"},
		{Title: "B", URL: "https://b.example"},
	}
}

func newTestServer(t *testing.T, search fakeSearch, fetcher *fakeFetcher) (*echo.Echo, *Server) {
	t.Helper()
	sessions := session.NewInMemoryStore(config.SessionConfig{
		TTL:        time.Hour,
		RateLimit:  1,
		RateWindow: 60 * time.Second,
	})
	srv := &Server{
		Sessions: sessions,
		Pipeline: &pipeline.Pipeline{
			Search:      search,
			Fetcher:     fetcher,
			Planner:     &planner.Planner{},
			Synthesizer: report.NewSynthesizer(nil, nil),
			MaxResults:  6,
			MaxTargets:  5,
			MaxChars:    2000,
		},
	}
	e := echo.New()
	srv.Register(e)
	return e, srv
}

func guestToken(t *testing.T, e *echo.Echo) string {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/guest", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("guest auth: expected 200, got %d", rec.Code)
	}
	var resp AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode auth response: %v", err)
	}
	if resp.SessionID == "" {
		t.Fatal("empty session id")
	}
	return resp.SessionID
}

func analyzeReq(token, sector string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/analyze/"+sector, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	return req
}

func TestGuestAuthThenAnalyze(t *testing.T) {
	e, _ := newTestServer(t, fakeSearch{hits: testHits()}, &fakeFetcher{})
	token := guestToken(t, e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, analyzeReq(token, "Banking"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/markdown") {
		t.Fatalf("expected text/markdown, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Banking") {
		t.Fatalf("report missing sector name:\n%s", rec.Body.String())
	}
}

func TestSecondRequestWithinWindowIs429(t *testing.T) {
	e, _ := newTestServer(t, fakeSearch{hits: testHits()}, &fakeFetcher{})
	token := guestToken(t, e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, analyzeReq(token, "Banking"))
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, analyzeReq(token, "Pharma"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rec.Code)
	}
}

func TestMissingAuthorizationIs401(t *testing.T) {
	e, _ := newTestServer(t, fakeSearch{hits: testHits()}, &fakeFetcher{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, analyzeReq("", "Banking"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestUnknownTokenIs401(t *testing.T) {
	e, _ := newTestServer(t, fakeSearch{hits: testHits()}, &fakeFetcher{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, analyzeReq("not-a-session", "Banking"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestInvalidSectorIs400(t *testing.T) {
	e, _ := newTestServer(t, fakeSearch{hits: testHits()}, &fakeFetcher{})

	for _, sector := range []string{"Tech123", strings.Repeat("a", 51), "a;b"} {
		token := guestToken(t, e)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, analyzeReq(token, sector))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("sector %q: expected 400, got %d", sector, rec.Code)
		}
	}
}

func TestZeroSearchHitsIs502(t *testing.T) {
	fetcher := &fakeFetcher{}
	e, _ := newTestServer(t, fakeSearch{}, fetcher)
	token := guestToken(t, e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, analyzeReq(token, "Banking"))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if len(fetcher.fetched) != 0 {
		t.Fatalf("no downstream stage should run, but fetched %v", fetcher.fetched)
	}
}

func TestSearchProviderErrorIs502(t *testing.T) {
	e, _ := newTestServer(t, fakeSearch{err: errors.New("upstream down")}, &fakeFetcher{})
	token := guestToken(t, e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, analyzeReq(token, "Banking"))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestMalformedPlanFallsBackToDefault(t *testing.T) {
	fetcher := &fakeFetcher{}
	e, srv := newTestServer(t, fakeSearch{hits: testHits()}, fetcher)
	// a planner whose model emits prose instead of JSON
	srv.Pipeline.Planner = &planner.Planner{LLM: fakeLLM{text: "sorry, no JSON today"}}
	token := guestToken(t, e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, analyzeReq(token, "Banking"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	// default plan scrapes every hit
	if len(fetcher.fetched) != len(testHits()) {
		t.Fatalf("expected %d fetches from the default plan, got %v", len(testHits()), fetcher.fetched)
	}
}

func TestSectorLengthCountsRunes(t *testing.T) {
	e, _ := newTestServer(t, fakeSearch{hits: testHits()}, &fakeFetcher{})

	// 50 two-byte letters: 100 bytes but exactly at the character cap
	token := guestToken(t, e)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, analyzeReq(token, strings.Repeat("é", 50)))
	if rec.Code != http.StatusOK {
		t.Fatalf("50-character sector: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	token = guestToken(t, e)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, analyzeReq(token, strings.Repeat("é", 51)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("51-character sector: expected 400, got %d", rec.Code)
	}
}

func TestSectorWithSpaces(t *testing.T) {
	e, _ := newTestServer(t, fakeSearch{hits: testHits()}, &fakeFetcher{})
	token := guestToken(t, e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, analyzeReq(token, "information%20technology"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
