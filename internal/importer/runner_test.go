package importer_test

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"animatch/internal/anilist"
	"animatch/internal/importer"
	"animatch/internal/logging"
	"animatch/internal/matching"
	"animatch/internal/store"
	"animatch/internal/testsupport"
)

type scriptedMatcher struct {
	results map[string]*matching.Result
	errs    map[string]error
	calls   []string
	onCall  func(input string)
}

func (m *scriptedMatcher) Match(_ context.Context, raw string) (*matching.Result, error) {
	m.calls = append(m.calls, raw)
	if m.onCall != nil {
		m.onCall(raw)
	}
	if err := m.errs[raw]; err != nil {
		return nil, err
	}
	return m.results[raw], nil
}

func autoResult(input string, candidate matching.ScoredCandidate) *matching.Result {
	return &matching.Result{Input: input, Phrase: input, Tag: matching.TagAuto, Candidates: []matching.ScoredCandidate{candidate}, Best: &candidate}
}

func reviewResult(input string, candidates ...matching.ScoredCandidate) *matching.Result {
	result := &matching.Result{Input: input, Phrase: input, Tag: matching.TagReview, Candidates: candidates}
	if len(candidates) > 0 {
		best := candidates[0]
		result.Best = &best
	}
	return result
}

func noMatchResult(input string) *matching.Result {
	return &matching.Result{Input: input, Phrase: input, Tag: matching.TagNoMatch, Candidates: []matching.ScoredCandidate{}}
}

func TestRunClassifiesEachLine(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	jjk := testsupport.Candidate(113415, "Jujutsu Kaisen", 1)

	matcher := &scriptedMatcher{
		results: map[string]*matching.Result{
			"jjk":            autoResult("jjk", jjk),
			"Jujutsu Kaisen": autoResult("Jujutsu Kaisen", jjk),
			"one punch man": reviewResult("one punch man",
				testsupport.Candidate(21087, "One Punch Man", 0.95),
				testsupport.Candidate(97668, "One Punch Man 2", 0.90)),
			"qwertyuiop": noMatchResult("qwertyuiop"),
		},
		errs: map[string]error{"broken": errors.New("anilist search returned 500")},
	}
	runner := importer.NewRunner(matcher, st,
		importer.WithLockPath(cfg.ImportLockPath()),
		importer.WithLogger(logging.NewNop()),
		importer.WithRunIDFunc(func() string { return "run-1" }),
	)

	lines := []string{"jjk", "", "one punch man", "broken", "  ", "qwertyuiop", "Jujutsu Kaisen"}
	summary, err := runner.Run(context.Background(), lines)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.RunID != "run-1" || summary.Lines != 7 {
		t.Fatalf("unexpected summary header: %+v", summary)
	}
	if summary.Added != 1 || summary.Duplicates != 1 || summary.Review != 1 || summary.NoMatch != 1 || summary.Failed != 1 || summary.Skipped != 2 {
		t.Fatalf("unexpected tallies: %+v", summary)
	}
	if summary.Processed() != 5 {
		t.Fatalf("unexpected processed count: %d", summary.Processed())
	}
	if len(summary.Failures) != 1 || summary.Failures[0].Line != 4 || summary.Failures[0].Input != "broken" {
		t.Fatalf("unexpected failures: %+v", summary.Failures)
	}
	if len(matcher.calls) != 5 {
		t.Fatalf("blank lines must not reach the matcher: %v", matcher.calls)
	}
	want := []string{"jjk", "one punch man", "broken", "qwertyuiop", "Jujutsu Kaisen"}
	for i := range want {
		if matcher.calls[i] != want[i] {
			t.Fatalf("lines processed out of order: %v", matcher.calls)
		}
	}

	ctx := context.Background()
	entries, _ := st.ListEntries(ctx)
	if len(entries) != 1 || entries[0].RunID != "run-1" {
		t.Fatalf("unexpected entries: %#v", entries)
	}
	items, _ := st.ListReview(ctx)
	if len(items) != 2 {
		t.Fatalf("expected two review items, got %d", len(items))
	}
	if items[0].Status != store.ReviewStatusReview || items[1].Status != store.ReviewStatusNoMatch {
		t.Fatalf("unexpected review statuses: %s, %s", items[0].Status, items[1].Status)
	}
	if items[0].BestScore != 0.95 || items[0].RunID != "run-1" {
		t.Fatalf("unexpected review item: %#v", items[0])
	}
}

func TestRunStopsOnCancellation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx, cancel := context.WithCancel(context.Background())

	matcher := &scriptedMatcher{
		results: map[string]*matching.Result{"a": noMatchResult("a"), "b": noMatchResult("b")},
		onCall: func(input string) {
			if input == "a" {
				cancel()
			}
		},
	}
	runner := importer.NewRunner(matcher, st)
	summary, err := runner.Run(ctx, []string{"a", "b", "c"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if summary == nil || summary.Processed() != 1 {
		t.Fatalf("expected partial summary, got %+v", summary)
	}
	if len(matcher.calls) != 1 {
		t.Fatalf("expected processing to stop after cancellation, got %v", matcher.calls)
	}
}

func TestRunRefusesConcurrentImport(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	held := flock.New(cfg.ImportLockPath())
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("failed to take lock: ok=%v err=%v", ok, err)
	}
	t.Cleanup(func() { _ = held.Unlock() })

	runner := importer.NewRunner(&scriptedMatcher{}, st, importer.WithLockPath(cfg.ImportLockPath()))
	if _, err := runner.Run(context.Background(), []string{"x"}); !errors.Is(err, importer.ErrImportLocked) {
		t.Fatalf("expected ErrImportLocked, got %v", err)
	}
}

func TestRetryPromotesAutoMatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	item := testsupport.MustEnqueueReview(t, st, "frieren")

	frieren := testsupport.Candidate(154587, "Frieren: Beyond Journey's End", 0.9)
	matcher := &scriptedMatcher{results: map[string]*matching.Result{"frieren": autoResult("frieren", frieren)}}
	runner := importer.NewRunner(matcher, st, importer.WithLockPath(cfg.ImportLockPath()))

	outcome, err := runner.Retry(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("Retry returned error: %v", err)
	}
	if outcome.Entry == nil || !outcome.Created || outcome.Entry.CatalogID != 154587 {
		t.Fatalf("unexpected outcome: %#v", outcome)
	}
	if _, err := st.GetReview(context.Background(), item.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected review item removed, got %v", err)
	}
}

// failingPromoteStore refuses promotions and records direct list writes.
type failingPromoteStore struct {
	*store.Store
	added int
}

func (f *failingPromoteStore) AddEntry(ctx context.Context, entry store.Entry) (*store.Entry, bool, error) {
	f.added++
	return f.Store.AddEntry(ctx, entry)
}

func (f *failingPromoteStore) PromoteReview(context.Context, int64, store.Entry) (*store.Entry, bool, error) {
	return nil, false, errors.New("disk full")
}

func TestRetryPromotionFailureLeavesListUntouched(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	item := testsupport.MustEnqueueReview(t, st, "frieren")

	frieren := testsupport.Candidate(154587, "Frieren: Beyond Journey's End", 0.9)
	matcher := &scriptedMatcher{results: map[string]*matching.Result{"frieren": autoResult("frieren", frieren)}}
	wrapped := &failingPromoteStore{Store: st}
	runner := importer.NewRunner(matcher, wrapped)

	if _, err := runner.Retry(context.Background(), item.ID); err == nil {
		t.Fatal("expected promotion error")
	}
	if wrapped.added != 0 {
		t.Fatalf("expected no direct list writes, got %d", wrapped.added)
	}
	if ok, _ := st.HasCatalogID(context.Background(), 154587); ok {
		t.Fatal("expected entry not added")
	}
	if _, err := st.GetReview(context.Background(), item.ID); err != nil {
		t.Fatalf("expected review item kept: %v", err)
	}
}

func TestRetryUpdatesReviewItem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	item := testsupport.MustEnqueueReview(t, st, "slime")

	matcher := &scriptedMatcher{results: map[string]*matching.Result{
		"slime": reviewResult("slime", testsupport.Candidate(101280, "Tensei shitara Slime Datta Ken", 0.5)),
	}}
	runner := importer.NewRunner(matcher, st, importer.WithRunIDFunc(func() string { return "retry-run" }))

	outcome, err := runner.Retry(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("Retry returned error: %v", err)
	}
	if outcome.Item == nil || outcome.Item.Status != store.ReviewStatusReview || len(outcome.Item.Candidates) != 1 || outcome.Item.RunID != "retry-run" {
		t.Fatalf("unexpected outcome: %#v", outcome.Item)
	}
}

func TestRetryMissingItem(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	runner := importer.NewRunner(&scriptedMatcher{}, st)
	if _, err := runner.Retry(context.Background(), 42); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRunEndToEndWithCatalogServer(t *testing.T) {
	server := testsupport.NewAniListServer(t, map[string][]anilist.Media{
		"Jujutsu Kaisen": {{ID: 113415, Title: anilist.Title{Romaji: "Jujutsu Kaisen", English: "Jujutsu Kaisen"}}},
	})
	server.FailWith("boom", http.StatusInternalServerError)
	cfg := testsupport.NewConfig(t, testsupport.WithAniListURL(server.URL))
	st := testsupport.MustOpenStore(t, cfg)

	client, err := anilist.New(cfg.AniList.BaseURL)
	if err != nil {
		t.Fatalf("anilist.New: %v", err)
	}
	matcher, err := matching.New(client, matching.WithAliases(aliasTable{"jjk": "Jujutsu Kaisen"}))
	if err != nil {
		t.Fatalf("matching.New: %v", err)
	}
	runner := importer.NewRunner(matcher, st, importer.WithLockPath(filepath.Join(cfg.Paths.DataDir, "import.lock")))

	summary, err := runner.Run(context.Background(), []string{"jjk", "boom", "nothing"})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Added != 1 || summary.Failed != 1 || summary.NoMatch != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	var statusErr *anilist.StatusError
	if !errors.As(summary.Failures[0], &statusErr) || statusErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected StatusError in failure, got %v", summary.Failures[0])
	}
	if got := server.Searches(); len(got) != 3 || got[0] != "Jujutsu Kaisen" {
		t.Fatalf("unexpected searches: %v", got)
	}
}

type aliasTable map[string]string

func (a aliasTable) Resolve(raw string) string {
	if canonical, ok := a[raw]; ok {
		return canonical
	}
	return raw
}
