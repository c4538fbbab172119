package refine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultGoogleURL = "https://www.googleapis.com/customsearch/v1"

// Google queries the Custom Search JSON API.
type Google struct {
	apiKey     string
	engineID   string
	baseURL    string
	httpClient *http.Client
}

var _ Searcher = (*Google)(nil)

// NewGoogle creates a Google backend. Both credentials are required.
func NewGoogle(apiKey, engineID, baseURL string, httpClient *http.Client) (*Google, error) {
	apiKey = strings.TrimSpace(apiKey)
	engineID = strings.TrimSpace(engineID)
	if apiKey == "" || engineID == "" {
		return nil, errors.New("google search requires api key and engine id")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 8 * time.Second}
	}
	return &Google{
		apiKey:     apiKey,
		engineID:   engineID,
		baseURL:    trimBase(baseURL, defaultGoogleURL),
		httpClient: httpClient,
	}, nil
}

type googleResponse struct {
	Items []struct {
		Title string `json:"title"`
		Link  string `json:"link"`
	} `json:"items"`
}

// Search returns the result titles and links in ranking order.
func (g *Google) Search(ctx context.Context, query string) ([]Hit, error) {
	endpoint, err := url.Parse(g.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse google url: %w", err)
	}
	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.engineID)
	params.Set("q", query)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	body, err := doRequest(g.httpClient, req, "google")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var payload googleResponse
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode google response: %w", err)
	}
	hits := make([]Hit, 0, len(payload.Items))
	for _, item := range payload.Items {
		hits = append(hits, Hit{Title: item.Title, URL: item.Link})
	}
	return hits, nil
}
