package config

import (
	"errors"
	"fmt"
	"net/url"

	"animatch/internal/textutil"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAniList(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateRefinement(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateAniList() error {
	if c.AniList.PageSize > 50 {
		return errors.New("anilist.page_size must be at most 50")
	}
	if c.AniList.CacheTTLHours < 0 {
		return errors.New("anilist.cache_ttl_hours must be 0 or greater")
	}
	return nil
}

func (c *Config) validateMatching() error {
	if err := ensureUnitInterval(map[string]float64{
		"matching.auto_threshold":           c.Matching.AutoThreshold,
		"matching.margin_min":               c.Matching.MarginMin,
		"matching.low_confidence_threshold": c.Matching.LowConfidenceThreshold,
	}); err != nil {
		return err
	}
	if _, err := textutil.ParseCombine(c.Matching.Similarity); err != nil {
		return fmt.Errorf("matching.similarity: %w", err)
	}
	return nil
}

func (c *Config) validateRefinement() error {
	switch c.Refinement.Provider {
	case "", ProviderGoogle, ProviderDuckDuckGo:
		return nil
	default:
		return fmt.Errorf("refinement.provider must be one of none, %s, %s (got %q)", ProviderGoogle, ProviderDuckDuckGo, c.Refinement.Provider)
	}
}

func (c *Config) validateNotifications() error {
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	parsed, err := url.Parse(topic)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic must be an http(s) URL (got %q)", topic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
}

func ensureUnitInterval(values map[string]float64) error {
	for key, value := range values {
		if value < 0 || value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", key)
		}
	}
	return nil
}
