package web_fetch

import (
	"context"
	"time"

	"github.com/mohammad-safakhou/tradeops/tools/web_fetch/chromedp"
	"github.com/mohammad-safakhou/tradeops/tools/web_fetch/httpfetch"
)

const DefaultTimeout = 10 * time.Second

// WebFetcher resolves a URL to its raw HTML. Implementations return an
// error for anything that prevented obtaining a document, including
// timeouts and redirect loops.
type WebFetcher interface {
	Exec(ctx context.Context, url string) (string, error)
}

type FetcherType string

const (
	HTTPFetcherType     FetcherType = "http"
	ChromedpFetcherType FetcherType = "chromedp"
)

type Error struct{ Msg string }

func (e *Error) Error() string { return e.Msg }

func NewWebFetcher(fetcherType FetcherType, timeout time.Duration) (WebFetcher, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	switch fetcherType {
	case HTTPFetcherType:
		return &httpfetch.Fetch{Timeout: timeout}, nil
	case ChromedpFetcherType:
		return &chromedp.Fetch{Timeout: timeout}, nil
	default:
		return nil, &Error{"unsupported fetcher type"}
	}
}
