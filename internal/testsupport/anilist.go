package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"animatch/internal/anilist"
)

// AniListServer is a fake GraphQL endpoint keyed by search phrase.
type AniListServer struct {
	*httptest.Server

	mu       sync.Mutex
	results  map[string][]anilist.Media
	failures map[string]int
	searches []string
}

// NewAniListServer starts a fake catalog. Unknown phrases return no media.
func NewAniListServer(t testing.TB, results map[string][]anilist.Media) *AniListServer {
	t.Helper()

	srv := &AniListServer{results: results, failures: map[string]int{}}
	srv.Server = httptest.NewServer(http.HandlerFunc(srv.handle))
	t.Cleanup(srv.Close)
	return srv
}

// FailWith makes searches for phrase answer with the given HTTP status.
func (s *AniListServer) FailWith(phrase string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[phrase] = status
}

// Searches returns the phrases received so far.
func (s *AniListServer) Searches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.searches...)
}

func (s *AniListServer) handle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Variables struct {
			Search string `json:"search"`
		} `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.searches = append(s.searches, req.Variables.Search)
	status := s.failures[req.Variables.Search]
	media := s.results[req.Variables.Search]
	s.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}
	if media == nil {
		media = []anilist.Media{}
	}
	payload := map[string]any{
		"data": map[string]any{
			"Page": map[string]any{"media": media},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
