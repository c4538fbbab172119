package searchcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"animatch/internal/anilist"
	"animatch/internal/logging"
)

// Entry is one cached search response.
type Entry struct {
	Query    string          `json:"query"`
	Media    []anilist.Media `json:"media"`
	CachedAt time.Time       `json:"cached_at"`
}

// Cache provides thread-safe access to the search cache file.
type Cache struct {
	path    string
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewCache loads the cache at path. An empty path or non-positive ttl yields
// a disabled cache on which every operation is a no-op.
func NewCache(path string, ttl time.Duration, logger *slog.Logger) *Cache {
	c := &Cache{
		path:    strings.TrimSpace(path),
		ttl:     ttl,
		logger:  logging.NewComponentLogger(logger, "searchcache"),
		now:     time.Now,
		entries: make(map[string]Entry),
	}
	if !c.Enabled() {
		return c
	}
	if err := c.load(); err != nil {
		logging.WarnWithContext(c.logger, "failed to load search cache", "searchcache_load_failed",
			logging.String("path", c.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the cache file or run `animatch cache clear`"),
			logging.String(logging.FieldImpact, "cache starts empty; catalog queries are repeated"),
		)
	}
	return c
}

// Enabled reports whether lookups can hit.
func (c *Cache) Enabled() bool {
	return c != nil && c.path != "" && c.ttl > 0
}

// Path returns the backing file.
func (c *Cache) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Key folds a query to its cache key. AniList search ignores case and
// repeated whitespace, so those are folded too.
func Key(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// Lookup returns the cached media for query when present and fresh.
func (c *Cache) Lookup(query string) ([]anilist.Media, bool) {
	key := Key(query)
	if key == "" || !c.Enabled() {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.expired(entry) {
		return nil, false
	}
	return append([]anilist.Media(nil), entry.Media...), true
}

// Store records the response for query and persists the cache.
func (c *Cache) Store(query string, media []anilist.Media) error {
	key := Key(query)
	if key == "" {
		return errors.New("query cannot be empty")
	}
	if !c.Enabled() {
		return nil
	}
	if media == nil {
		media = []anilist.Media{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry{Query: key, Media: append([]anilist.Media(nil), media...), CachedAt: c.now().UTC()}
	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	c.logger.Debug("cached search response", logging.String("query", key), logging.Int("results", len(media)))
	return nil
}

// List returns fresh entries sorted by CachedAt descending (newest first).
func (c *Cache) List() []Entry {
	if !c.Enabled() {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		if !c.expired(entry) {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CachedAt.Equal(entries[j].CachedAt) {
			return entries[i].Query < entries[j].Query
		}
		return entries[i].CachedAt.After(entries[j].CachedAt)
	})
	return entries
}

// Clear removes all entries and persists the empty cache. It returns the
// number of entries removed.
func (c *Cache) Clear() (int, error) {
	if c == nil || c.path == "" {
		return 0, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := len(c.entries)
	c.entries = make(map[string]Entry)
	if err := c.save(); err != nil {
		return 0, fmt.Errorf("persist cache: %w", err)
	}
	c.logger.Debug("cleared search cache", logging.Int("removed", removed))
	return removed, nil
}

func (c *Cache) expired(entry Entry) bool {
	return c.now().Sub(entry.CachedAt) >= c.ttl
}

// load reads the cache from disk, dropping expired entries.
func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}
	for _, entry := range entries {
		key := Key(entry.Query)
		if key == "" || c.expired(entry) {
			continue
		}
		entry.Query = key
		c.entries[key] = entry
	}
	c.logger.Debug("loaded search cache", logging.Int("entry_count", len(c.entries)), logging.String("path", c.path))
	return nil
}

// save writes fresh entries to disk atomically.
func (c *Cache) save() error {
	entries := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		if !c.expired(entry) {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Query < entries[j].Query
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
