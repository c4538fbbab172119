package searchcache

import (
	"context"
	"log/slog"

	"animatch/internal/anilist"
	"animatch/internal/logging"
)

// Searcher serves catalog searches from the cache and fills it on a miss.
// Failed searches are never cached.
type Searcher struct {
	next   anilist.Searcher
	cache  *Cache
	logger *slog.Logger
}

var _ anilist.Searcher = (*Searcher)(nil)

// NewSearcher wraps next with cache.
func NewSearcher(next anilist.Searcher, cache *Cache, logger *slog.Logger) *Searcher {
	return &Searcher{next: next, cache: cache, logger: logging.NewComponentLogger(logger, "searchcache")}
}

// SearchAnime implements anilist.Searcher.
func (s *Searcher) SearchAnime(ctx context.Context, query string) ([]anilist.Media, error) {
	if media, ok := s.cache.Lookup(query); ok {
		logging.WithContext(ctx, s.logger).Debug("search cache hit", logging.String("query", query), logging.Int("results", len(media)))
		return media, nil
	}
	media, err := s.next.SearchAnime(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Store(query, media); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "failed to cache search response", "searchcache_store_failed",
			logging.String("query", query),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the data directory"),
			logging.String(logging.FieldImpact, "the next identical search queries AniList again"),
		)
	}
	return media, nil
}
