package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const searchQuery = `query ($search: String, $perPage: Int) {
  Page(perPage: $perPage) {
    media(search: $search, type: ANIME) {
      id
      title { romaji english native }
      coverImage { large }
      seasonYear
    }
  }
}`

// DefaultPageSize matches the page size used by the reference deployment.
const DefaultPageSize = 5

// ErrMalformedResponse reports a successful HTTP exchange whose payload is
// missing the expected fields or carries GraphQL errors.
var ErrMalformedResponse = errors.New("anilist: malformed response")

// StatusError reports a non-success HTTP status from AniList.
type StatusError struct {
	StatusCode int
	Latency    time.Duration
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("anilist search returned %d (latency=%v)", e.StatusCode, e.Latency)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Searcher defines the catalog operation used by matching.
type Searcher interface {
	SearchAnime(ctx context.Context, query string) ([]Media, error)
}

// Client provides access to the AniList GraphQL API.
type Client struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
}

var _ Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithPageSize caps the number of candidates returned per search.
func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates an AniList client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("anilist base url required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		pageSize:   DefaultPageSize,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type searchResponse struct {
	Data *struct {
		Page *struct {
			Media []Media `json:"media"`
		} `json:"Page"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// SearchAnime returns up to the configured page size of anime matching the
// query, in the order AniList ranks them. A successful search with no hits
// returns an empty slice.
func (c *Client) SearchAnime(ctx context.Context, query string) ([]Media, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}

	body, err := json.Marshal(graphQLRequest{
		Query: searchQuery,
		Variables: map[string]any{
			"search":  query,
			"perPage": c.pageSize,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode anilist request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Latency:    latency,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode anilist response: %w", err)
	}
	if len(payload.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, payload.Errors[0].Message)
	}
	if payload.Data == nil || payload.Data.Page == nil {
		return nil, fmt.Errorf("%w: missing data.Page", ErrMalformedResponse)
	}

	results := make([]Media, 0, len(payload.Data.Page.Media))
	for _, media := range payload.Data.Page.Media {
		if len(media.TitleVariants()) == 0 {
			continue
		}
		results = append(results, media)
	}
	if len(results) > c.pageSize {
		results = results[:c.pageSize]
	}
	return results, nil
}
