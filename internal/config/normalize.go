package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAniList()
	c.normalizeMatching()
	c.normalizeRefinement()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.AliasesPath, err = expandPath(strings.TrimSpace(c.Paths.AliasesPath)); err != nil {
		return fmt.Errorf("paths.aliases_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeAniList() {
	c.AniList.BaseURL = strings.TrimSpace(c.AniList.BaseURL)
	if c.AniList.BaseURL == "" {
		c.AniList.BaseURL = defaultAniListBaseURL
	}
	if c.AniList.PageSize <= 0 {
		c.AniList.PageSize = defaultAniListPageSize
	}
	if c.AniList.TimeoutSeconds <= 0 {
		c.AniList.TimeoutSeconds = defaultAniListTimeout
	}
}

func (c *Config) normalizeMatching() {
	c.Matching.Similarity = strings.ToLower(strings.TrimSpace(c.Matching.Similarity))
	if c.Matching.Similarity == "" {
		c.Matching.Similarity = defaultSimilarity
	}
}

func (c *Config) normalizeRefinement() {
	c.Refinement.Provider = strings.ToLower(strings.TrimSpace(c.Refinement.Provider))
	if c.Refinement.Provider == "none" {
		c.Refinement.Provider = ""
	}
	c.Refinement.APIKey = strings.TrimSpace(c.Refinement.APIKey)
	if c.Refinement.APIKey == "" {
		c.Refinement.APIKey = firstEnv("ANIMATCH_SEARCH_API_KEY", "GOOGLE_API_KEY")
	}
	c.Refinement.EngineID = strings.TrimSpace(c.Refinement.EngineID)
	if c.Refinement.EngineID == "" {
		c.Refinement.EngineID = firstEnv("ANIMATCH_SEARCH_ENGINE_ID")
	}
	c.Refinement.BaseURL = strings.TrimSpace(c.Refinement.BaseURL)
	if c.Refinement.BaseURL == "" {
		switch c.Refinement.Provider {
		case ProviderGoogle:
			c.Refinement.BaseURL = defaultGoogleBaseURL
		case ProviderDuckDuckGo:
			c.Refinement.BaseURL = defaultDuckDuckGoBaseURL
		}
	}
	c.Refinement.Qualifier = strings.TrimSpace(c.Refinement.Qualifier)
	if c.Refinement.TimeoutSeconds <= 0 {
		c.Refinement.TimeoutSeconds = defaultRefinementTimeout
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.TimeoutSeconds <= 0 {
		c.Notifications.TimeoutSeconds = defaultNotificationTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format != "json" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
