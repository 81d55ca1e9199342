package web_search

import (
	"context"
	"time"

	"github.com/mohammad-safakhou/tradeops/models"
	"github.com/mohammad-safakhou/tradeops/tools/web_search/brave"
	"github.com/mohammad-safakhou/tradeops/tools/web_search/googlenews"
)

type WebSearcher interface {
	Discover(ctx context.Context, q string, k int) ([]models.SearchHit, error)
}

type Provider string

const (
	GoogleNewsProvider Provider = "googlenews"
	BraveProvider      Provider = "brave"
)

type Error struct{ Msg string }

func (e *Error) Error() string { return e.Msg }

var ErrUnsupportedProvider = &Error{"unsupported provider"}

func NewWebSearcher(provider Provider, apiKey string, timeout time.Duration) (WebSearcher, error) {
	switch provider {
	case GoogleNewsProvider:
		return googlenews.Search{Timeout: timeout}, nil
	case BraveProvider:
		return brave.Search{ApiKey: apiKey, Timeout: timeout}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
