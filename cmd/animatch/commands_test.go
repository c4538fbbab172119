package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"animatch/internal/anilist"
	"animatch/internal/importer"
	"animatch/internal/matching"
	"animatch/internal/store"
	"animatch/internal/testsupport"
)

func catalogFixture() map[string][]anilist.Media {
	return map[string][]anilist.Media{
		"Jujutsu Kaisen": {media(113415, "Jujutsu Kaisen", "JUJUTSU KAISEN")},
		"Shingeki": {
			media(16498, "Shingeki no Kyojin", "Attack on Titan"),
			media(20958, "Shingeki no Kyojin Season 2", "Attack on Titan Season 2"),
		},
	}
}

func TestMatchCommandResolvesAliasAndPrintsJSON(t *testing.T) {
	env := setupCLITestEnv(t, catalogFixture())

	out, _, err := runCLI(t, []string{"match", "jjk", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	var result matching.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if result.Tag != matching.TagAuto {
		t.Fatalf("tag = %q, want auto", result.Tag)
	}
	if result.Phrase != "Jujutsu Kaisen" || result.Input != "jjk" {
		t.Fatalf("unexpected input/phrase: %+v", result)
	}
	if result.Best == nil || result.Best.Media.ID != 113415 {
		t.Fatalf("unexpected best: %+v", result.Best)
	}
	if searches := env.catalog.Searches(); len(searches) != 1 || searches[0] != "Jujutsu Kaisen" {
		t.Fatalf("catalog searches = %v", searches)
	}
}

func TestMatchCommandTableOutput(t *testing.T) {
	env := setupCLITestEnv(t, catalogFixture())

	out, _, err := runCLI(t, []string{"match", "Shingeki"}, env.configPath)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	requireContains(t, out, "Tag:     review")
	requireContains(t, out, "Attack on Titan Season 2")
	requireContains(t, out, "Margin:")

	out, _, err = runCLI(t, []string{"match", "something", "obscure"}, env.configPath)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	requireContains(t, out, "Input:   something obscure")
	requireContains(t, out, "Tag:     no-match")
	requireContains(t, out, "No candidates found")
}

func TestMatchCommandSurfacesCatalogErrors(t *testing.T) {
	env := setupCLITestEnv(t, catalogFixture())
	env.catalog.FailWith("Jujutsu Kaisen", http.StatusInternalServerError)

	_, _, err := runCLI(t, []string{"match", "jjk"}, env.configPath)
	if err == nil {
		t.Fatal("expected catalog failure to surface")
	}
	requireContains(t, err.Error(), "500")
}

func TestMatchCommandSaveAddsAutoMatch(t *testing.T) {
	env := setupCLITestEnv(t, catalogFixture())

	if _, stderr, err := runCLI(t, []string{"match", "--save", "jjk"}, env.configPath); err != nil {
		t.Fatalf("match --save: %v", err)
	} else {
		requireContains(t, stderr, "Added JUJUTSU KAISEN")
	}
	_, stderr, err := runCLI(t, []string{"match", "--save", "jjk"}, env.configPath)
	if err != nil {
		t.Fatalf("second match --save: %v", err)
	}
	requireContains(t, stderr, "already on the list")

	out, _, err := runCLI(t, []string{"list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var entries []store.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(entries) != 1 || entries[0].CatalogID != 113415 || entries[0].SourceInput != "jjk" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestImportThenResolveReviewQueue(t *testing.T) {
	env := setupCLITestEnv(t, catalogFixture())
	listPath := filepath.Join(env.baseDir, "list.txt")
	testsupport.WriteFile(t, listPath, "- jjk\n\n2. Shingeki\nnothing here\n")

	out, _, err := runCLI(t, []string{"import", listPath, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	var summary importer.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary %q: %v", out, err)
	}
	if summary.Lines != 4 || summary.Added != 1 || summary.Review != 1 || summary.NoMatch != 1 || summary.Skipped != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	out, _, err = runCLI(t, []string{"review", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("review list: %v", err)
	}
	var items []store.ReviewItem
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("decode review list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 review items, got %d", len(items))
	}
	var reviewID, noMatchID int64
	for _, item := range items {
		switch item.Status {
		case store.ReviewStatusReview:
			reviewID = item.ID
		case store.ReviewStatusNoMatch:
			noMatchID = item.ID
		}
	}
	if reviewID == 0 || noMatchID == 0 {
		t.Fatalf("unexpected statuses: %+v", items)
	}

	out, _, err = runCLI(t, []string{"review", "show", fmt.Sprint(reviewID)}, env.configPath)
	if err != nil {
		t.Fatalf("review show: %v", err)
	}
	requireContains(t, out, "Input:   Shingeki")
	requireContains(t, out, "Attack on Titan Season 2")

	out, _, err = runCLI(t, []string{"review", "accept", fmt.Sprint(reviewID), "--candidate", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("review accept: %v", err)
	}
	requireContains(t, out, "Added Attack on Titan")

	out, _, err = runCLI(t, []string{"review", "reject", fmt.Sprint(noMatchID)}, env.configPath)
	if err != nil {
		t.Fatalf("review reject: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Rejected review item %d", noMatchID))

	out, _, err = runCLI(t, []string{"review", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("review list: %v", err)
	}
	requireContains(t, out, "Nothing to review")

	out, _, err = runCLI(t, []string{"list"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "JUJUTSU KAISEN")
	requireContains(t, out, "2 listed, 0 awaiting review, 0 without a match")
}

func TestImportReadsStandardInput(t *testing.T) {
	env := setupCLITestEnv(t, catalogFixture())

	out, _, err := runCLIWithInput(t, []string{"import", "-"}, env.configPath, "\ufeffjjk\nnothing here\n")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	requireContains(t, out, "2 of 2 lines processed")
	requireContains(t, out, "animatch review list")
}

func TestImportFeed(t *testing.T) {
	env := setupCLITestEnv(t, catalogFixture())
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>Watchlist</title>
<item><title>Jujutsu Kaisen</title></item>
<item><title>nothing here</title></item>
</channel></rss>`)
	}))
	t.Cleanup(feed.Close)

	out, _, err := runCLI(t, []string{"import", "--feed", feed.URL, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("import --feed: %v", err)
	}
	var summary importer.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Added != 1 || summary.NoMatch != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	if _, _, err := runCLI(t, []string{"import", "list.txt", "--feed", feed.URL}, env.configPath); err == nil {
		t.Fatal("expected file and --feed to be rejected together")
	}
}

func TestReviewRetryPromotesAfterAliasAdded(t *testing.T) {
	env := setupCLITestEnv(t, catalogFixture())
	st := testsupport.MustOpenStore(t, env.cfg)
	item := testsupport.MustEnqueueReview(t, st, "sorcery fight")

	out, _, err := runCLI(t, []string{"review", "retry", fmt.Sprint(item.ID)}, env.configPath)
	if err != nil {
		t.Fatalf("review retry: %v", err)
	}
	requireContains(t, out, "Tag:     no-match")
	requireContains(t, out, "Still queued with 0 candidates")

	testsupport.WriteFile(t, env.cfg.Paths.AliasesPath, `{"aliases": {"sorcery fight": "Jujutsu Kaisen"}}`)
	out, _, err = runCLI(t, []string{"review", "retry", fmt.Sprint(item.ID)}, env.configPath)
	if err != nil {
		t.Fatalf("review retry: %v", err)
	}
	requireContains(t, out, "Tag:     auto")
	requireContains(t, out, "Added JUJUTSU KAISEN")

	if _, err := st.GetReview(context.Background(), item.ID); err == nil {
		t.Fatal("expected review item to be cleared after promotion")
	}
}

func TestReviewAcceptValidation(t *testing.T) {
	env := setupCLITestEnv(t, catalogFixture())
	st := testsupport.MustOpenStore(t, env.cfg)
	item := testsupport.MustEnqueueReview(t, st, "aot", testsupport.Candidate(16498, "Shingeki no Kyojin", 0.6))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"zero candidate", []string{"review", "accept", fmt.Sprint(item.ID), "--candidate", "0"}, "--candidate must be 1 or greater"},
		{"out of range", []string{"review", "accept", fmt.Sprint(item.ID), "--candidate", "3"}, "out of range"},
		{"missing item", []string{"review", "accept", "999"}, "review item 999 not found"},
		{"bad id", []string{"review", "reject", "abc"}, `invalid id "abc"`},
		{"unknown status", []string{"review", "list", "--status", "done"}, `unknown review status "done"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := runCLI(t, tc.args, env.configPath)
			if err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			}
			requireContains(t, err.Error(), tc.want)
		})
	}

	if _, err := st.GetReview(context.Background(), item.ID); err != nil {
		t.Fatalf("failed accepts must keep the item: %v", err)
	}
}

func TestListRemove(t *testing.T) {
	env := setupCLITestEnv(t, catalogFixture())

	out, _, err := runCLI(t, []string{"list"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, "The list is empty")

	if _, _, err := runCLI(t, []string{"match", "--save", "jjk"}, env.configPath); err != nil {
		t.Fatalf("match --save: %v", err)
	}
	st := testsupport.MustOpenStore(t, env.cfg)
	entries, err := st.ListEntries(context.Background())
	if err != nil || len(entries) != 1 {
		t.Fatalf("ListEntries: %v (%d entries)", err, len(entries))
	}

	out, _, err = runCLI(t, []string{"list", "remove", fmt.Sprint(entries[0].ID)}, env.configPath)
	if err != nil {
		t.Fatalf("list remove: %v", err)
	}
	requireContains(t, out, "Removed JUJUTSU KAISEN")

	_, _, err = runCLI(t, []string{"list", "remove", fmt.Sprint(entries[0].ID)}, env.configPath)
	if err == nil {
		t.Fatal("expected removing a missing entry to fail")
	}
	requireContains(t, err.Error(), "not found")
}

func TestAliasesCommandMergesUserFile(t *testing.T) {
	env := setupCLITestEnv(t, nil, testsupport.WithAliases(`{"aliases": {"Tensura": "That Time I Got Reincarnated as a Slime", "jjk": "Jujutsu Kaisen 0"}}`))

	out, _, err := runCLI(t, []string{"aliases", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("aliases: %v", err)
	}
	var entries []struct {
		Shorthand string `json:"shorthand"`
		Canonical string `json:"canonical"`
		Source    string `json:"source"`
	}
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode aliases: %v", err)
	}
	got := map[string]string{}
	for _, entry := range entries {
		got[entry.Shorthand] = entry.Canonical + "/" + entry.Source
	}
	if got["tensura"] != "That Time I Got Reincarnated as a Slime/user" {
		t.Fatalf("tensura = %q", got["tensura"])
	}
	if got["jjk"] != "Jujutsu Kaisen 0/user" {
		t.Fatalf("jjk = %q", got["jjk"])
	}
	if got["aot"] != "Attack on Titan/builtin" {
		t.Fatalf("aot = %q", got["aot"])
	}

	out, _, err = runCLI(t, []string{"aliases"}, env.configPath)
	if err != nil {
		t.Fatalf("aliases: %v", err)
	}
	requireContains(t, out, "User aliases: "+env.cfg.Paths.AliasesPath)
}

func TestConfigInitAndValidate(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	target := filepath.Join(home, "custom", "animatch.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration to "+target)

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+target)
	requireContains(t, out, "Refinement enabled: no")
	requireContains(t, out, "Configuration valid")
	if _, err := os.Stat(filepath.Join(home, ".local", "share", "animatch")); err != nil {
		t.Fatalf("expected data dir to be created: %v", err)
	}
}

func TestConfigValidateReportsErrors(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, "bad.toml")
	testsupport.WriteFile(t, path, "[matching]\nauto_threshold = 1.5\n")

	_, _, err := runCLI(t, []string{"config", "validate"}, path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	requireContains(t, err.Error(), "auto_threshold")

	_, _, err = runCLI(t, []string{"list"}, path)
	if err == nil || !strings.Contains(err.Error(), "auto_threshold") {
		t.Fatalf("expected commands to fail on invalid config, got %v", err)
	}
}

func TestImportPublishesNotification(t *testing.T) {
	var (
		mu     sync.Mutex
		titles []string
		bodies []string
	)
	ntfy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		defer mu.Unlock()
		titles = append(titles, r.Header.Get("Title"))
		bodies = append(bodies, string(body))
	}))
	t.Cleanup(ntfy.Close)
	sent := func() ([]string, []string) {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), titles...), append([]string(nil), bodies...)
	}

	env := setupCLITestEnv(t, catalogFixture(), testsupport.WithNtfyTopic(ntfy.URL+"/anime"))

	if _, _, err := runCLIWithInput(t, []string{"import"}, env.configPath, "jjk\nShingeki\n"); err != nil {
		t.Fatalf("import: %v", err)
	}
	gotTitles, gotBodies := sent()
	if len(gotTitles) != 1 || gotTitles[0] != "animatch - Import Needs Review" {
		t.Fatalf("unexpected notifications: %v", gotTitles)
	}
	requireContains(t, gotBodies[0], "Added 1")
	requireContains(t, gotBodies[0], "1 waiting for review")

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Test notification sent")
	if gotTitles, _ = sent(); len(gotTitles) != 2 || gotTitles[1] != "animatch - Test" {
		t.Fatalf("unexpected notifications: %v", gotTitles)
	}
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t, nil)

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "ntfy topic not configured")
}

func TestLogsCommand(t *testing.T) {
	env := setupCLITestEnv(t, nil)

	if _, _, err := runCLI(t, []string{"logs"}, env.configPath); err == nil {
		t.Fatal("expected logs to fail without a log dir")
	}

	env.cfg.Paths.LogDir = filepath.Join(env.baseDir, "logs")
	writeTestConfig(t, env.configPath, env.cfg)
	testsupport.WriteFile(t, env.cfg.LogPath(), ""+
		"10:00:00 INFO importer: import started run_id=run-1 lines=2\n"+
		"10:00:01 INFO importer: import started run_id=run-2 lines=1\n"+
		"10:00:02 INFO importer: import finished run_id=run-1 added=2\n")

	out, _, err := runCLI(t, []string{"logs", "-n", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if strings.Contains(out, "10:00:00") {
		t.Fatalf("expected only the last two lines, got %q", out)
	}
	requireContains(t, out, "run_id=run-2")

	out, _, err = runCLI(t, []string{"logs", "--run", "run-1"}, env.configPath)
	if err != nil {
		t.Fatalf("logs --run: %v", err)
	}
	if strings.Contains(out, "run-2") || strings.Count(out, "run_id=run-1") != 2 {
		t.Fatalf("unexpected filtered output %q", out)
	}
}
