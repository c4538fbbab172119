package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// ParseFeed returns the non-empty item titles of an RSS, Atom or JSON feed.
func ParseFeed(r io.Reader) ([]string, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return itemTitles(feed), nil
}

func itemTitles(feed *gofeed.Feed) []string {
	titles := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		if title := CleanLine(item.Title); title != "" {
			titles = append(titles, title)
		}
	}
	return titles
}

// FeedReader fetches feeds over HTTP.
type FeedReader struct {
	Client *http.Client
}

// NewFeedReader returns a reader with a bounded HTTP timeout.
func NewFeedReader() *FeedReader {
	return &FeedReader{Client: &http.Client{Timeout: 15 * time.Second}}
}

// Titles downloads feedURL and returns its item titles.
func (f *FeedReader) Titles(ctx context.Context, feedURL string) ([]string, error) {
	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return nil, fmt.Errorf("feed url required")
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch feed: status %d", resp.StatusCode)
	}
	return ParseFeed(resp.Body)
}
