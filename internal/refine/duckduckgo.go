package refine

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const defaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo scrapes the DuckDuckGo HTML results page.
type DuckDuckGo struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

var _ Searcher = (*DuckDuckGo)(nil)

// NewDuckDuckGo creates a DuckDuckGo backend.
func NewDuckDuckGo(baseURL string, httpClient *http.Client) *DuckDuckGo {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 8 * time.Second}
	}
	return &DuckDuckGo{
		baseURL:    trimBase(baseURL, defaultDuckDuckGoURL),
		userAgent:  "Mozilla/5.0 (X11; Linux x86_64) animatch",
		httpClient: httpClient,
	}
}

// Search posts the query form and parses result anchors.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]Hit, error) {
	form := url.Values{}
	form.Set("q", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", d.userAgent)

	body, err := doRequest(d.httpClient, req, "duckduckgo")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse duckduckgo html: %w", err)
	}
	return parseDuckDuckGo(doc), nil
}

func parseDuckDuckGo(doc *goquery.Document) []Hit {
	var hits []Hit
	doc.Find("div.result a.result__a").Each(func(_ int, a *goquery.Selection) {
		title := strings.Join(strings.Fields(a.Text()), " ")
		if title == "" {
			return
		}
		href, _ := a.Attr("href")
		hits = append(hits, Hit{Title: title, URL: resolveRedirect(href)})
	})
	return hits
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg=<target> links.
func resolveRedirect(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
