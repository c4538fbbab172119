package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains filesystem locations.
type Paths struct {
	DataDir     string `toml:"data_dir"`
	LogDir      string `toml:"log_dir"`
	AliasesPath string `toml:"aliases_path"`
}

// AniList contains configuration for the AniList GraphQL catalog.
type AniList struct {
	BaseURL        string `toml:"base_url"`
	PageSize       int    `toml:"page_size"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	// CacheTTLHours keeps search responses on disk this long. 0, the
	// default, disables the cache.
	CacheTTLHours int `toml:"cache_ttl_hours"`
}

// Matching holds the decision boundary for automatic matches.
type Matching struct {
	// AutoThreshold is the minimum best score for an automatic match.
	AutoThreshold float64 `toml:"auto_threshold"`
	// MarginMin is the minimum lead of the best candidate over the runner-up.
	MarginMin float64 `toml:"margin_min"`
	// LowConfidenceThreshold is the best score below which refinement is tried.
	LowConfidenceThreshold float64 `toml:"low_confidence_threshold"`
	// Similarity selects how token and edit-distance scores combine: max, token, or edit.
	Similarity string `toml:"similarity"`
}

// Refinement configures the optional web-search phrase cleanup.
type Refinement struct {
	Provider       string `toml:"provider"`
	APIKey         string `toml:"api_key"`
	EngineID       string `toml:"engine_id"`
	BaseURL        string `toml:"base_url"`
	Qualifier      string `toml:"qualifier"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Notifications configures ntfy push messages after imports.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for animatch.
//
// Configuration sections by subsystem:
//   - Paths: list database, logs, and user alias file
//   - AniList: catalog endpoint, page size, and search cache lifetime
//   - Matching: auto/margin/low-confidence thresholds and similarity mode
//   - Refinement: optional web search used to clean up low-confidence input
//   - Notifications: optional ntfy topic for import summaries
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	AniList       AniList       `toml:"anilist"`
	Matching      Matching      `toml:"matching"`
	Refinement    Refinement    `toml:"refinement"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/animatch/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("animatch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the data directory and, when configured, the log directory.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir}
	if c.Paths.LogDir != "" {
		dirs = append(dirs, c.Paths.LogDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the SQLite list database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "animatch.db")
}

// ImportLockPath returns the lock file guarding concurrent imports.
func (c *Config) ImportLockPath() string {
	return filepath.Join(c.Paths.DataDir, "import.lock")
}

// SearchCachePath returns the on-disk catalog search cache.
func (c *Config) SearchCachePath() string {
	return filepath.Join(c.Paths.DataDir, "search_cache.json")
}

// SearchCacheTTL returns how long cached search responses stay fresh.
func (c *Config) SearchCacheTTL() time.Duration {
	return time.Duration(c.AniList.CacheTTLHours) * time.Hour
}

// LogPath returns the log file inside log_dir, or "" when file logging is off.
func (c *Config) LogPath() string {
	if c.Paths.LogDir == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "animatch.log")
}

// AniListTimeout returns the per-request catalog timeout.
func (c *Config) AniListTimeout() time.Duration {
	return time.Duration(c.AniList.TimeoutSeconds) * time.Second
}

// RefinementTimeout returns the per-request web search timeout.
func (c *Config) RefinementTimeout() time.Duration {
	return time.Duration(c.Refinement.TimeoutSeconds) * time.Second
}

// RefinementEnabled reports whether a refinement backend is selected and has
// the credentials it needs. Missing credentials disable refinement rather than
// failing validation.
func (c *Config) RefinementEnabled() bool {
	switch c.Refinement.Provider {
	case ProviderGoogle:
		return c.Refinement.APIKey != "" && c.Refinement.EngineID != ""
	case ProviderDuckDuckGo:
		return true
	default:
		return false
	}
}

// NotificationTimeout returns the ntfy request timeout.
func (c *Config) NotificationTimeout() time.Duration {
	return time.Duration(c.Notifications.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
