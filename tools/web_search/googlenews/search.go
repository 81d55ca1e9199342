package googlenews

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mohammad-safakhou/tradeops/models"
)

const userAgent = "Mozilla/5.0 (compatible; TradeBot/1.0)"

// Search discovers news articles via the Google News RSS feed. It needs no
// API key, which makes it the default provider.
type Search struct {
	Timeout time.Duration
}

type rss struct {
	Channel struct {
		Items []struct {
			Title string `xml:"title"`
			Link  string `xml:"link"`
		} `xml:"item"`
	} `xml:"channel"`
}

func (s Search) Discover(ctx context.Context, q string, k int) ([]models.SearchHit, error) {
	feedURL := fmt.Sprintf("https://news.google.com/rss/search?q=%s&hl=en-IN&gl=IN&ceid=IN:en", url.QueryEscape(q))

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, "GET", feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google news rss returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var feed rss
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parsing rss feed: %w", err)
	}

	var out []models.SearchHit
	for i, item := range feed.Channel.Items {
		if i >= k {
			break
		}
		if item.Title == "" || item.Link == "" {
			continue
		}
		out = append(out, models.SearchHit{Title: item.Title, URL: item.Link})
	}
	return out, nil
}
