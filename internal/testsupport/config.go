package testsupport

import (
	"path/filepath"
	"testing"

	"animatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Refinement and the search cache are disabled unless an option turns it on.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.AliasesPath = filepath.Join(base, "aliases.json")
	cfgVal.AniList.BaseURL = "http://127.0.0.1:0"
	cfgVal.AniList.TimeoutSeconds = 2
	cfgVal.Refinement = config.Refinement{Qualifier: "anime", TimeoutSeconds: 2}
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithAniListURL points the catalog client at a test server.
func WithAniListURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.AniList.BaseURL = url
	}
}

// WithSearchCache keeps catalog responses for hours.
func WithSearchCache(hours int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.AniList.CacheTTLHours = hours
	}
}

// WithRefinement enables a refinement provider against a test server.
func WithRefinement(provider, baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Refinement.Provider = provider
		b.cfg.Refinement.BaseURL = baseURL
		if provider == config.ProviderGoogle {
			b.cfg.Refinement.APIKey = "test-key"
			b.cfg.Refinement.EngineID = "test-cx"
		}
	}
}

// WithNtfyTopic sends notifications to a test server.
func WithNtfyTopic(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = url
	}
}

// WithAliases writes a user alias file with the provided JSON body.
func WithAliases(body string) ConfigOption {
	return func(b *configBuilder) {
		WriteFile(b.t, b.cfg.Paths.AliasesPath, body)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
