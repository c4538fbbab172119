package aliases

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"animatch/internal/logging"
	"animatch/internal/textutil"
)

// Catalog loads user-authored aliases from a JSON or YAML file.
type Catalog struct {
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	loaded  time.Time
	entries map[string]string
}

// NewCatalog constructs a catalog backed by the provided file. An empty path
// yields a nil catalog, which resolves nothing.
func NewCatalog(path string, logger *slog.Logger) *Catalog {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil
	}
	return &Catalog{path: trimmed, logger: logging.NewComponentLogger(logger, "aliases")}
}

// Path returns the backing file.
func (c *Catalog) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Lookup returns the canonical phrase for an already normalized key.
func (c *Catalog) Lookup(normalized string) (string, bool, error) {
	if c == nil {
		return "", false, nil
	}
	if err := c.ensureLoaded(); err != nil {
		return "", false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	canonical, ok := c.entries[normalized]
	return canonical, ok, nil
}

// Entries returns a copy of the loaded user aliases.
func (c *Catalog) Entries() (map[string]string, error) {
	if c == nil {
		return map[string]string{}, nil
	}
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.entries))
	for key, value := range c.entries {
		out[key] = value
	}
	return out, nil
}

func (c *Catalog) ensureLoaded() error {
	info, err := os.Stat(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.mu.Lock()
			c.entries = nil
			c.loaded = time.Time{}
			c.mu.Unlock()
			return nil
		}
		return err
	}

	c.mu.RLock()
	alreadyLoaded := !c.loaded.IsZero() && c.loaded.Equal(info.ModTime())
	c.mu.RUnlock()
	if alreadyLoaded {
		return nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return err
	}
	entries, err := parseAliases(c.path, data)
	if err != nil {
		return fmt.Errorf("parse aliases %s: %w", c.path, err)
	}

	c.mu.Lock()
	c.entries = entries
	c.loaded = info.ModTime()
	c.mu.Unlock()
	c.logger.Info("loaded user aliases", logging.String("path", c.path), logging.Int("count", len(entries)))
	return nil
}

// parseAliases accepts {"aliases": {...}} or a bare mapping, in JSON or YAML.
func parseAliases(path string, data []byte) (map[string]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]string{}, nil
	}

	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	}

	if nested, ok := raw["aliases"].(map[string]any); ok && len(raw) == 1 {
		raw = nested
	}

	entries := make(map[string]string, len(raw))
	for shorthand, value := range raw {
		canonical, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("alias %q: canonical phrase must be a string", shorthand)
		}
		key := textutil.Normalize(shorthand)
		canonical = strings.TrimSpace(canonical)
		if key == "" || canonical == "" {
			continue
		}
		entries[key] = canonical
	}
	return entries, nil
}
