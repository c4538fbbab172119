package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"animatch/internal/aliases"
	"animatch/internal/anilist"
	"animatch/internal/config"
	"animatch/internal/importer"
	"animatch/internal/logging"
	"animatch/internal/matching"
	"animatch/internal/notifications"
	"animatch/internal/refine"
	"animatch/internal/searchcache"
	"animatch/internal/store"
	"animatch/internal/textutil"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.configPath = resolved
		c.configExists = exists
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// services bundles everything a list-touching command needs.
type services struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	matcher  *matching.Matcher
	runner   *importer.Runner
	notifier notifications.Service
}

func (c *commandContext) withServices(fn func(*services) error) error {
	svc, err := c.buildServices()
	if err != nil {
		return err
	}
	defer svc.store.Close()
	return fn(svc)
}

func (c *commandContext) buildServices() (*services, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	matcher, err := buildMatcher(cfg, logger)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open list database: %w", err)
	}

	runner := importer.NewRunner(matcher, st,
		importer.WithLockPath(cfg.ImportLockPath()),
		importer.WithLogger(logger),
	)
	return &services{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		matcher:  matcher,
		runner:   runner,
		notifier: notifications.NewService(cfg),
	}, nil
}

func buildMatcher(cfg *config.Config, logger *slog.Logger) (*matching.Matcher, error) {
	catalog, err := anilist.New(cfg.AniList.BaseURL,
		anilist.WithPageSize(cfg.AniList.PageSize),
		anilist.WithTimeout(cfg.AniListTimeout()),
	)
	if err != nil {
		return nil, fmt.Errorf("anilist client: %w", err)
	}
	var searcher anilist.Searcher = catalog
	if cfg.SearchCacheTTL() > 0 {
		cache := searchcache.NewCache(cfg.SearchCachePath(), cfg.SearchCacheTTL(), logger)
		searcher = searchcache.NewSearcher(catalog, cache, logger)
	}
	combine, err := textutil.ParseCombine(cfg.Matching.Similarity)
	if err != nil {
		return nil, err
	}
	resolver := aliases.NewResolver(aliases.NewCatalog(cfg.Paths.AliasesPath, logger), logger)

	opts := []matching.Option{
		matching.WithAliases(resolver),
		matching.WithThresholds(matching.Thresholds{
			Auto:          cfg.Matching.AutoThreshold,
			Margin:        cfg.Matching.MarginMin,
			LowConfidence: cfg.Matching.LowConfidenceThreshold,
		}),
		matching.WithCombine(combine),
		matching.WithLogger(logger),
	}
	if refiner := refine.NewFromConfig(cfg, logger); refiner != nil {
		opts = append(opts, matching.WithRefiner(refiner))
	}
	matcher, err := matching.New(searcher, opts...)
	if err != nil {
		return nil, err
	}
	return matcher, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
