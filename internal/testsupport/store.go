package testsupport

import (
	"context"
	"testing"

	"animatch/internal/anilist"
	"animatch/internal/config"
	"animatch/internal/matching"
	"animatch/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// MustEnqueueReview stores a review item with the given candidates.
func MustEnqueueReview(t testing.TB, st *store.Store, input string, candidates ...matching.ScoredCandidate) *store.ReviewItem {
	t.Helper()

	status := store.ReviewStatusReview
	best := 0.0
	if len(candidates) == 0 {
		status = store.ReviewStatusNoMatch
	} else {
		best = candidates[0].Score
	}
	item, err := st.EnqueueReview(context.Background(), store.ReviewItem{
		Input:      input,
		Phrase:     input,
		Status:     status,
		Candidates: candidates,
		BestScore:  best,
	})
	if err != nil {
		t.Fatalf("store.EnqueueReview: %v", err)
	}
	return item
}

// Candidate builds a scored candidate with a romaji and english title.
func Candidate(id int64, title string, score float64) matching.ScoredCandidate {
	return matching.ScoredCandidate{
		Media: anilist.Media{
			ID:    id,
			Title: anilist.Title{Romaji: title, English: title},
		},
		Score: score,
	}
}
