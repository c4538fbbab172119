package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"animatch/internal/config"
	"animatch/internal/preflight"
	"animatch/internal/store"
)

type statusReport struct {
	ConfigPath   string             `json:"config_path"`
	ConfigExists bool               `json:"config_exists"`
	Database     string             `json:"database"`
	SearchCache  string             `json:"search_cache"`
	Checks       []preflight.Result `json:"checks"`
	List         *store.Stats       `json:"list,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check configuration, catalog reachability, and list totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			report := statusReport{
				ConfigPath:   ctx.configPath,
				ConfigExists: ctx.configExists,
				Database:     cfg.DatabasePath(),
				SearchCache:  describeSearchCache(cfg),
				Checks:       preflight.RunAll(cmd.Context(), cfg),
			}

			st, err := store.Open(cfg)
			if err == nil {
				stats, statsErr := st.Stats(cmd.Context())
				st.Close()
				if statsErr == nil {
					report.List = &stats
				} else {
					err = statsErr
				}
			}
			if err != nil {
				report.Checks = append(report.Checks, preflight.Result{Name: "List database", Detail: err.Error()})
			} else {
				report.Checks = append(report.Checks, preflight.Result{Name: "List database", Passed: true, Detail: cfg.DatabasePath()})
			}

			if jsonOutput {
				return writeJSON(cmd, report)
			}
			printStatus(cmd, report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the status report as JSON")
	return cmd
}

func describeSearchCache(cfg *config.Config) string {
	ttl := cfg.SearchCacheTTL()
	if ttl <= 0 {
		return "disabled"
	}
	return fmt.Sprintf("%s (ttl %s)", cfg.SearchCachePath(), ttl)
}

func printStatus(cmd *cobra.Command, report statusReport) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	var lines []string
	lines = append(lines, renderSectionHeader("Configuration", colorize)...)
	if report.ConfigExists {
		lines = append(lines, renderStatusLine("Config", statusOK, report.ConfigPath, colorize))
	} else {
		lines = append(lines, renderStatusLine("Config", statusInfo, "no file found; using defaults", colorize))
	}

	lines = append(lines, renderStatusLine("Search cache", statusInfo, report.SearchCache, colorize))

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Checks", colorize)...)
	failed := 0
	for _, check := range report.Checks {
		kind := statusOK
		if !check.Passed {
			kind = statusError
			failed++
		}
		lines = append(lines, renderStatusLine(check.Name, kind, check.Detail, colorize))
	}

	if report.List != nil {
		lines = append(lines, "")
		lines = append(lines, renderSectionHeader("List", colorize)...)
		lines = append(lines, renderStatusLine("Entries", statusInfo, strconv.Itoa(report.List.Entries), colorize))
		reviewKind := statusInfo
		if report.List.Review+report.List.NoMatch > 0 {
			reviewKind = statusWarn
		}
		lines = append(lines, renderStatusLine("Needs review", reviewKind, strconv.Itoa(report.List.Review), colorize))
		lines = append(lines, renderStatusLine("No match", reviewKind, strconv.Itoa(report.List.NoMatch), colorize))
	}

	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	if failed > 0 {
		fmt.Fprintf(out, "\n%d check(s) failed\n", failed)
	}
}
