package refine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Hit is one web search result.
type Hit struct {
	Title string
	URL   string
}

// Searcher runs a web search.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Hit, error)
}

// StatusError reports a non-success HTTP status from a search backend.
type StatusError struct {
	Backend    string
	StatusCode int
	Latency    time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s search returned %d (latency=%v)", e.Backend, e.StatusCode, e.Latency)
}

func doRequest(client *http.Client, req *http.Request, backend string) (io.ReadCloser, error) {
	requestStart := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute %s request (latency=%v): %w", backend, latency, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{Backend: backend, StatusCode: resp.StatusCode, Latency: latency}
	}
	return resp.Body, nil
}

func trimBase(baseURL, fallback string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return fallback
	}
	return baseURL
}
