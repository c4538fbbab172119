package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"animatch/internal/searchcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the AniList search cache",
	}
	cmd.AddCommand(newCacheListCommand(ctx))
	cmd.AddCommand(newCacheClearCommand(ctx))
	return cmd
}

func (c *commandContext) openSearchCache() (*searchcache.Cache, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return searchcache.NewCache(cfg.SearchCachePath(), cfg.SearchCacheTTL(), logger), nil
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached searches, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openSearchCache()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cache.Enabled() {
				fmt.Fprintln(out, "Search cache disabled; set [anilist] cache_ttl_hours above 0")
				return nil
			}
			entries := cache.List()
			if jsonOutput {
				if entries == nil {
					entries = []searchcache.Entry{}
				}
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "Search cache is empty")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.Query,
					strconv.Itoa(len(entry.Media)),
					entry.CachedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprint(out, renderTable([]column{
				{header: "Query", maxWidth: 50},
				{header: "Results", right: true},
				{header: "Cached"},
			}, rows))
			fmt.Fprintln(out)
			fmt.Fprintf(out, "%d cached searches in %s\n", len(entries), cache.Path())
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print cached searches as JSON")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openSearchCache()
			if err != nil {
				return err
			}
			removed, err := cache.Clear()
			if err != nil {
				return fmt.Errorf("clear search cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached searches\n", removed)
			return nil
		},
	}
}
