package matching_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"animatch/internal/aliases"
	"animatch/internal/anilist"
	"animatch/internal/logging"
	"animatch/internal/matching"
)

type fakeCatalog struct {
	responses map[string][]anilist.Media
	errs      map[string]error
	calls     []string
}

func (f *fakeCatalog) SearchAnime(_ context.Context, query string) ([]anilist.Media, error) {
	f.calls = append(f.calls, query)
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	return f.responses[query], nil
}

type fakeRefiner struct {
	phrase string
	ok     bool
	calls  []string
}

func (f *fakeRefiner) Refine(_ context.Context, phrase string) (string, bool) {
	f.calls = append(f.calls, phrase)
	return f.phrase, f.ok
}

func media(id int64, romaji string) anilist.Media {
	return anilist.Media{ID: id, Title: anilist.Title{Romaji: romaji}}
}

// scoreTable scores a title by lookup so tests control exact values.
func scoreTable(scores map[string]float64) matching.SimilarityFunc {
	return func(_, title string) float64 {
		return scores[title]
	}
}

func newMatcher(t *testing.T, catalog matching.CatalogSearcher, opts ...matching.Option) *matching.Matcher {
	t.Helper()
	opts = append([]matching.Option{matching.WithLogger(logging.NewNop())}, opts...)
	m, err := matching.New(catalog, opts...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return m
}

func TestNewRequiresCatalog(t *testing.T) {
	if _, err := matching.New(nil); err == nil {
		t.Fatal("expected error without catalog")
	}
}

func TestMatchAliasExactTitleIsAuto(t *testing.T) {
	jjk := anilist.Media{ID: 113415, Title: anilist.Title{Romaji: "Jujutsu Kaisen", English: "Jujutsu Kaisen", Native: "呪術廻戦"}}
	catalog := &fakeCatalog{responses: map[string][]anilist.Media{"Jujutsu Kaisen": {jjk}}}
	m := newMatcher(t, catalog, matching.WithAliases(aliases.NewResolver(nil, nil)))

	result, err := m.Match(context.Background(), "jjk")
	if err != nil {
		t.Fatalf("Match returned error: %v", err)
	}
	if len(catalog.calls) != 1 || catalog.calls[0] != "Jujutsu Kaisen" {
		t.Fatalf("expected alias-resolved query, got %v", catalog.calls)
	}
	if result.Tag != matching.TagAuto {
		t.Fatalf("expected auto, got %s", result.Tag)
	}
	if result.Best == nil || result.Best.Media.ID != 113415 || result.Best.Score != 1.0 {
		t.Fatalf("unexpected best: %#v", result.Best)
	}
	if result.Margin != 1.0 {
		t.Fatalf("expected margin 1.0 for single candidate, got %v", result.Margin)
	}
	if result.Input != "jjk" || result.Phrase != "Jujutsu Kaisen" {
		t.Fatalf("unexpected input/phrase: %q / %q", result.Input, result.Phrase)
	}
}

func TestMatchNarrowMarginIsReviewAndSorted(t *testing.T) {
	catalog := &fakeCatalog{responses: map[string][]anilist.Media{
		"one punch man": {media(2, "One Punch Man 2"), media(1, "One Punch Man")},
	}}
	m := newMatcher(t, catalog, matching.WithSimilarity(scoreTable(map[string]float64{
		"One Punch Man":   0.95,
		"One Punch Man 2": 0.90,
	})))

	result, err := m.Match(context.Background(), "one punch man")
	if err != nil {
		t.Fatalf("Match returned error: %v", err)
	}
	if result.Tag != matching.TagReview {
		t.Fatalf("expected review, got %s", result.Tag)
	}
	if len(result.Candidates) != 2 {
		t.Fatalf("expected both candidates, got %d", len(result.Candidates))
	}
	if result.Candidates[0].Media.ID != 1 || result.Candidates[1].Media.ID != 2 {
		t.Fatalf("candidates not sorted by score: %#v", result.Candidates)
	}
	if result.Best == nil || result.Best.Score != 0.95 {
		t.Fatalf("unexpected best: %#v", result.Best)
	}
}

func TestMatchTiesKeepCatalogOrder(t *testing.T) {
	// Large enough that an unstable sort would reorder equal scores.
	var wide []float64
	for i := 0; i < 24; i++ {
		wide = append(wide, []float64{0.5, 0.8, 0.3}[i%3])
	}

	tests := []struct {
		name   string
		ids    []int64
		scores []float64
	}{
		{name: "two tiers", ids: []int64{5, 3, 9, 1}, scores: []float64{0.5, 0.8, 0.5, 0.8}},
		{name: "all equal", ids: []int64{7, 2, 4}, scores: []float64{0.6, 0.6, 0.6}},
		{name: "many candidates", scores: wide},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := tt.ids
			if ids == nil {
				for i := range tt.scores {
					ids = append(ids, int64(100-i))
				}
			}
			hits := make([]anilist.Media, 0, len(ids))
			scores := make(map[string]float64, len(ids))
			for i, id := range ids {
				title := fmt.Sprintf("Title %d", id)
				hits = append(hits, media(id, title))
				scores[title] = tt.scores[i]
			}

			// Expected: descending score, catalog order within a score.
			var want []int64
			for _, tier := range []float64{0.8, 0.6, 0.5, 0.3} {
				for i, id := range ids {
					if tt.scores[i] == tier {
						want = append(want, id)
					}
				}
			}

			catalog := &fakeCatalog{responses: map[string][]anilist.Media{"ties": hits}}
			m := newMatcher(t, catalog, matching.WithSimilarity(scoreTable(scores)))
			result, err := m.Match(context.Background(), "ties")
			if err != nil {
				t.Fatalf("Match returned error: %v", err)
			}
			if len(result.Candidates) != len(want) {
				t.Fatalf("expected %d candidates, got %d", len(want), len(result.Candidates))
			}
			for i, candidate := range result.Candidates {
				if candidate.Media.ID != want[i] {
					t.Fatalf("position %d: got id %d, want %d (order %v)", i, candidate.Media.ID, want[i], want)
				}
			}
		})
	}
}

func TestMatchBlankInputSkipsCatalog(t *testing.T) {
	catalog := &fakeCatalog{}
	m := newMatcher(t, catalog)
	for _, input := range []string{"", "   ", "\t\n"} {
		result, err := m.Match(context.Background(), input)
		if err != nil {
			t.Fatalf("Match(%q) returned error: %v", input, err)
		}
		if result != nil {
			t.Fatalf("Match(%q) expected nil result, got %#v", input, result)
		}
	}
	if len(catalog.calls) != 0 {
		t.Fatalf("expected no catalog calls, got %v", catalog.calls)
	}
}

func TestMatchNoHitsWithoutRefinerIsNoMatch(t *testing.T) {
	catalog := &fakeCatalog{}
	m := newMatcher(t, catalog)

	result, err := m.Match(context.Background(), "qwertyuiop")
	if err != nil {
		t.Fatalf("Match returned error: %v", err)
	}
	if result.Tag != matching.TagNoMatch {
		t.Fatalf("expected no-match, got %s", result.Tag)
	}
	if result.Candidates == nil || len(result.Candidates) != 0 {
		t.Fatalf("expected empty candidate list, got %#v", result.Candidates)
	}
	if result.Best != nil {
		t.Fatalf("expected no best candidate, got %#v", result.Best)
	}
}

func TestMatchRefinementReplacesWeakAttempt(t *testing.T) {
	catalog := &fakeCatalog{responses: map[string][]anilist.Media{
		"that slime show": {media(1, "Slime Taoshite 300-nen")},
		"Tensei shitara Slime Datta Ken": {
			media(2, "Tensei shitara Slime Datta Ken"),
			media(3, "Tensura Nikki"),
		},
	}}
	refiner := &fakeRefiner{phrase: "Tensei shitara Slime Datta Ken", ok: true}
	m := newMatcher(t, catalog,
		matching.WithRefiner(refiner),
		matching.WithSimilarity(scoreTable(map[string]float64{
			"Slime Taoshite 300-nen":         0.40,
			"Tensei shitara Slime Datta Ken": 0.85,
			"Tensura Nikki":                  0.55,
		})),
	)

	result, err := m.Match(context.Background(), "that slime show")
	if err != nil {
		t.Fatalf("Match returned error: %v", err)
	}
	if len(refiner.calls) != 1 || refiner.calls[0] != "that slime show" {
		t.Fatalf("unexpected refiner calls: %v", refiner.calls)
	}
	if result.Tag != matching.TagAuto {
		t.Fatalf("expected auto, got %s", result.Tag)
	}
	if !result.Refined || result.Phrase != "Tensei shitara Slime Datta Ken" {
		t.Fatalf("expected refined attempt, got refined=%v phrase=%q", result.Refined, result.Phrase)
	}
	if result.Best.Media.ID != 2 {
		t.Fatalf("unexpected best: %#v", result.Best)
	}
	if result.Input != "that slime show" {
		t.Fatalf("expected raw input preserved, got %q", result.Input)
	}
}

func TestMatchConfidentAttemptNeverRefines(t *testing.T) {
	catalog := &fakeCatalog{responses: map[string][]anilist.Media{
		"bebop": {media(1, "Cowboy Bebop")},
	}}
	refiner := &fakeRefiner{phrase: "Cowboy Bebop", ok: true}
	m := newMatcher(t, catalog,
		matching.WithRefiner(refiner),
		matching.WithSimilarity(scoreTable(map[string]float64{"Cowboy Bebop": 0.60})),
	)

	result, err := m.Match(context.Background(), "bebop")
	if err != nil {
		t.Fatalf("Match returned error: %v", err)
	}
	if len(refiner.calls) != 0 {
		t.Fatalf("expected no refinement, got %v", refiner.calls)
	}
	if result.Tag != matching.TagReview || result.Refined {
		t.Fatalf("expected initial review result, got %s refined=%v", result.Tag, result.Refined)
	}
}

func TestMatchRefinementEdgeCases(t *testing.T) {
	weak := map[string][]anilist.Media{"weak": {media(1, "Weak Title")}}
	tests := []struct {
		name          string
		refiner       *fakeRefiner
		extra         map[string][]anilist.Media
		scores        map[string]float64
		wantCalls     int
		wantRefined   bool
		wantTag       matching.Tag
		wantBestScore float64
	}{
		{
			name:          "refiner has nothing",
			refiner:       &fakeRefiner{ok: false},
			scores:        map[string]float64{"Weak Title": 0.3},
			wantCalls:     1,
			wantTag:       matching.TagReview,
			wantBestScore: 0.3,
		},
		{
			name:          "refined phrase normalizes identically",
			refiner:       &fakeRefiner{phrase: "  WEAK!! ", ok: true},
			scores:        map[string]float64{"Weak Title": 0.3},
			wantCalls:     1,
			wantTag:       matching.TagReview,
			wantBestScore: 0.3,
		},
		{
			name:          "tie keeps initial",
			refiner:       &fakeRefiner{phrase: "other", ok: true},
			extra:         map[string][]anilist.Media{"other": {media(2, "Other Title")}},
			scores:        map[string]float64{"Weak Title": 0.3, "Other Title": 0.3},
			wantCalls:     2,
			wantTag:       matching.TagReview,
			wantBestScore: 0.3,
		},
		{
			name:          "worse refinement keeps initial",
			refiner:       &fakeRefiner{phrase: "other", ok: true},
			extra:         map[string][]anilist.Media{"other": {media(2, "Other Title")}},
			scores:        map[string]float64{"Weak Title": 0.3, "Other Title": 0.1},
			wantCalls:     2,
			wantTag:       matching.TagReview,
			wantBestScore: 0.3,
		},
		{
			name:          "refined search empty keeps initial",
			refiner:       &fakeRefiner{phrase: "other", ok: true},
			scores:        map[string]float64{"Weak Title": 0.3},
			wantCalls:     2,
			wantTag:       matching.TagReview,
			wantBestScore: 0.3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responses := map[string][]anilist.Media{}
			for k, v := range weak {
				responses[k] = v
			}
			for k, v := range tt.extra {
				responses[k] = v
			}
			catalog := &fakeCatalog{responses: responses}
			m := newMatcher(t, catalog, matching.WithRefiner(tt.refiner), matching.WithSimilarity(scoreTable(tt.scores)))

			result, err := m.Match(context.Background(), "weak")
			if err != nil {
				t.Fatalf("Match returned error: %v", err)
			}
			if len(catalog.calls) != tt.wantCalls {
				t.Fatalf("expected %d catalog calls, got %v", tt.wantCalls, catalog.calls)
			}
			if result.Refined != tt.wantRefined || result.Tag != tt.wantTag {
				t.Fatalf("unexpected result: tag=%s refined=%v", result.Tag, result.Refined)
			}
			if result.Best == nil || result.Best.Score != tt.wantBestScore {
				t.Fatalf("unexpected best: %#v", result.Best)
			}
		})
	}
}

func TestMatchRefinementRescuesEmptyInitialAttempt(t *testing.T) {
	catalog := &fakeCatalog{responses: map[string][]anilist.Media{
		"Kusuriya no Hitorigoto": {media(7, "Kusuriya no Hitorigoto")},
	}}
	refiner := &fakeRefiner{phrase: "Kusuriya no Hitorigoto", ok: true}
	m := newMatcher(t, catalog,
		matching.WithRefiner(refiner),
		matching.WithSimilarity(scoreTable(map[string]float64{})),
	)

	result, err := m.Match(context.Background(), "the apothecary one")
	if err != nil {
		t.Fatalf("Match returned error: %v", err)
	}
	if result.Tag != matching.TagReview || !result.Refined {
		t.Fatalf("expected refined review, got tag=%s refined=%v", result.Tag, result.Refined)
	}
	if len(result.Candidates) != 1 {
		t.Fatalf("expected refined candidates, got %#v", result.Candidates)
	}
}

func TestMatchPropagatesCatalogErrors(t *testing.T) {
	boom := errors.New("boom")
	catalog := &fakeCatalog{errs: map[string]error{"x": boom}}
	m := newMatcher(t, catalog)
	if _, err := m.Match(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("expected catalog error, got %v", err)
	}

	catalog = &fakeCatalog{errs: map[string]error{"clean": boom}}
	m = newMatcher(t, catalog, matching.WithRefiner(&fakeRefiner{phrase: "clean", ok: true}))
	if _, err := m.Match(context.Background(), "dirty"); !errors.Is(err, boom) {
		t.Fatalf("expected second-pass catalog error, got %v", err)
	}
}

func TestMatchUsesMaximumOverTitleVariants(t *testing.T) {
	record := anilist.Media{ID: 1, Title: anilist.Title{Romaji: "Shingeki no Kyojin", English: "Attack on Titan"}}
	catalog := &fakeCatalog{responses: map[string][]anilist.Media{"attack on titan": {record}}}
	m := newMatcher(t, catalog)

	result, err := m.Match(context.Background(), "attack on titan")
	if err != nil {
		t.Fatalf("Match returned error: %v", err)
	}
	if result.Best.Score != 1.0 {
		t.Fatalf("expected english variant to score 1.0, got %v", result.Best.Score)
	}
}

func TestMatchRealScorerFlagsSequelAmbiguity(t *testing.T) {
	catalog := &fakeCatalog{responses: map[string][]anilist.Media{
		"one punch man": {media(1, "One Punch Man"), media(2, "One Punch Man 2")},
	}}
	m := newMatcher(t, catalog)

	result, err := m.Match(context.Background(), "one punch man")
	if err != nil {
		t.Fatalf("Match returned error: %v", err)
	}
	if result.Tag != matching.TagReview {
		t.Fatalf("expected sequel ambiguity to need review, got %s (margin %v)", result.Tag, result.Margin)
	}
}
