package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"animatch/internal/aliases"
	"animatch/internal/anilist"
	"animatch/internal/config"
)

// probeQuery is a title every AniList mirror is expected to know.
const probeQuery = "Cowboy Bebop"

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckAniList runs one small search against the catalog endpoint.
func CheckAniList(ctx context.Context, baseURL string, timeout time.Duration) Result {
	const name = "AniList"

	base := strings.TrimSpace(baseURL)
	if base == "" {
		return Result{Name: name, Detail: "missing base url"}
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client, err := anilist.New(base, anilist.WithPageSize(1), anilist.WithTimeout(timeout))
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	if _, err := client.SearchAnime(checkCtx, probeQuery); err != nil {
		return Result{Name: name, Detail: summarizeCatalogError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable (%s)", base, time.Since(start).Round(time.Millisecond))}
}

// CheckRefinement reports whether web-search refinement can run.
func CheckRefinement(cfg *config.Config) Result {
	const name = "Refinement"

	if cfg == nil {
		return Result{Name: name, Detail: "unknown"}
	}
	switch cfg.Refinement.Provider {
	case "":
		return Result{Name: name, Passed: true, Detail: "disabled"}
	case config.ProviderGoogle:
		if !cfg.RefinementEnabled() {
			return Result{Name: name, Detail: "google selected but api_key or engine_id is missing"}
		}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s via %s", cfg.Refinement.Provider, cfg.Refinement.BaseURL)}
}

// CheckAliasFile verifies the optional user alias file parses.
func CheckAliasFile(path string) Result {
	const name = "User aliases"

	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Passed: true, Detail: "not configured"}
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not created yet)", path)}
	}
	entries, err := aliases.NewCatalog(path, nil).Entries()
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d aliases)", path, len(entries))}
}

func summarizeCatalogError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "search timed out (AniList unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "search timed out (AniList unreachable)"
	}
	var statusErr *anilist.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == 429 {
		return "rate limited by AniList; retry in a minute"
	}
	return err.Error()
}
