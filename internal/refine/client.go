package refine

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"animatch/internal/config"
	"animatch/internal/logging"
)

// Client refines phrases through a Searcher.
type Client struct {
	searcher  Searcher
	qualifier string
	logger    *slog.Logger
}

// NewClient wraps a searcher. The qualifier is appended to every query.
func NewClient(searcher Searcher, qualifier string, logger *slog.Logger) *Client {
	return &Client{
		searcher:  searcher,
		qualifier: strings.TrimSpace(qualifier),
		logger:    logging.NewComponentLogger(logger, "refine"),
	}
}

// NewFromConfig builds the configured backend, or returns nil when
// refinement is disabled or lacks credentials.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Client {
	if cfg == nil || !cfg.RefinementEnabled() {
		return nil
	}
	httpClient := &http.Client{Timeout: cfg.RefinementTimeout()}
	var searcher Searcher
	switch cfg.Refinement.Provider {
	case config.ProviderGoogle:
		google, err := NewGoogle(cfg.Refinement.APIKey, cfg.Refinement.EngineID, cfg.Refinement.BaseURL, httpClient)
		if err != nil {
			logging.WarnWithContext(logging.NewComponentLogger(logger, "refine"), "refinement disabled", "refine_config_invalid",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "set refinement.api_key and refinement.engine_id"),
				logging.String(logging.FieldImpact, "low-confidence lines go straight to review"),
			)
			return nil
		}
		searcher = google
	case config.ProviderDuckDuckGo:
		searcher = NewDuckDuckGo(cfg.Refinement.BaseURL, httpClient)
	default:
		return nil
	}
	return NewClient(searcher, cfg.Refinement.Qualifier, logger)
}

// Refine searches for phrase and returns the cleaned title of the
// highest-priority hit. Lower-ranked hits are never consulted. It reports
// false when unconfigured, on any search failure, or when the top hit has no
// usable title.
func (c *Client) Refine(ctx context.Context, phrase string) (string, bool) {
	if c == nil || c.searcher == nil {
		return "", false
	}
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return "", false
	}
	query := phrase
	if c.qualifier != "" {
		query = phrase + " " + c.qualifier
	}

	start := time.Now()
	hits, err := c.searcher.Search(ctx, query)
	if err != nil {
		logging.WarnWithContext(c.logger, "refinement search failed", "refine_search_failed",
			logging.String(logging.FieldPhrase, phrase),
			logging.Duration("latency", time.Since(start)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check refinement credentials and network access"),
			logging.String(logging.FieldImpact, "line is classified from the initial search only"),
		)
		return "", false
	}

	ranked := append([]Hit(nil), hits...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return SourcePriority(ranked[i].URL) > SourcePriority(ranked[j].URL)
	})
	if len(ranked) == 0 {
		return "", false
	}
	top := ranked[0]
	title := CleanTitle(top.Title)
	if title == "" {
		c.logger.Debug("top refinement hit has no usable title",
			logging.String(logging.FieldPhrase, phrase),
			logging.String("source_url", top.URL),
		)
		return "", false
	}
	c.logger.Debug("refined phrase",
		logging.String(logging.FieldPhrase, phrase),
		logging.String("refined_phrase", title),
		logging.String("source_url", top.URL),
	)
	return title, true
}
