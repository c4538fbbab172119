package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"animatch/internal/config"
	"animatch/internal/importer"
	"animatch/internal/logging"
	"animatch/internal/notifications"
	"animatch/internal/source"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var feedURL string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "import [file|-]",
		Short: "Import a list of titles, one per line",
		Long: "Import reads titles from a file, from standard input (\"-\" or no argument), " +
			"or from the item titles of an RSS/Atom feed. Confident matches are added to " +
			"the list; everything else is queued for review.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(feedURL) != "" && len(args) > 0 {
				return errors.New("pass either a file or --feed, not both")
			}
			lines, err := readImportLines(cmd, args, feedURL)
			if err != nil {
				return err
			}
			return ctx.withServices(func(svc *services) error {
				started := time.Now()
				summary, runErr := svc.runner.Run(cmd.Context(), lines)
				if runErr != nil && !errors.Is(runErr, context.Canceled) {
					logging.ErrorWithContext(svc.logger, "import failed", "import_failed",
						logging.Error(runErr),
						logging.Int("lines", len(lines)),
						logging.String(logging.FieldErrorHint, "wait for the running import to finish, then retry"),
					)
				}
				notifyImport(cmd, svc, summary, runErr, time.Since(started))
				if summary != nil {
					if err := printSummary(cmd, summary, jsonOutput); err != nil {
						return err
					}
				}
				return runErr
			})
		},
	}

	cmd.Flags().StringVar(&feedURL, "feed", "", "Import item titles from an RSS or Atom feed URL")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the import summary as JSON")
	return cmd
}

func readImportLines(cmd *cobra.Command, args []string, feedURL string) ([]string, error) {
	if feed := strings.TrimSpace(feedURL); feed != "" {
		titles, err := source.NewFeedReader().Titles(cmd.Context(), feed)
		if err != nil {
			return nil, fmt.Errorf("read feed: %w", err)
		}
		return titles, nil
	}

	var reader io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		path, err := config.ExpandPath(args[0])
		if err != nil {
			return nil, fmt.Errorf("resolve input path: %w", err)
		}
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer file.Close()
		reader = file
	}

	lines, err := source.ReadLines(reader)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return lines, nil
}

func notifyImport(cmd *cobra.Command, svc *services, summary *importer.Summary, runErr error, elapsed time.Duration) {
	var err error
	switch {
	case runErr != nil && errors.Is(runErr, context.Canceled):
		return
	case runErr != nil:
		err = svc.notifier.NotifyImportFailed(cmd.Context(), runErr)
	case summary != nil:
		err = svc.notifier.NotifyImportCompleted(cmd.Context(), notifications.ImportCounts{
			Added:      summary.Added,
			Duplicates: summary.Duplicates,
			Review:     summary.Review,
			NoMatch:    summary.NoMatch,
			Failed:     summary.Failed,
		}, elapsed)
	}
	if err != nil {
		logging.WarnWithContext(svc.logger, "import notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "import results were saved but not announced"),
		)
	}
}

func printSummary(cmd *cobra.Command, summary *importer.Summary, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(cmd, summary)
	}
	out := cmd.OutOrStdout()
	rows := [][]string{
		{"Added", strconv.Itoa(summary.Added)},
		{"Already listed", strconv.Itoa(summary.Duplicates)},
		{"Needs review", strconv.Itoa(summary.Review)},
		{"No match", strconv.Itoa(summary.NoMatch)},
		{"Failed", strconv.Itoa(summary.Failed)},
		{"Blank lines", strconv.Itoa(summary.Skipped)},
	}
	fmt.Fprintf(out, "Import %s: %d of %d lines processed\n", summary.RunID, summary.Processed(), summary.Lines)
	fmt.Fprint(out, renderTable([]column{{header: "Outcome"}, {header: "Lines", right: true}}, rows))
	fmt.Fprintln(out)
	for _, failure := range summary.Failures {
		fmt.Fprintf(out, "  %s\n", failure.Error())
	}
	if summary.Review+summary.NoMatch > 0 {
		fmt.Fprintln(out, "Run `animatch review list` to resolve queued titles.")
	}
	return nil
}
