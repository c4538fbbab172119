package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"animatch/internal/importer"
	"animatch/internal/store"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Resolve titles that were not matched automatically",
	}

	reviewCmd.AddCommand(newReviewListCommand(ctx))
	reviewCmd.AddCommand(newReviewShowCommand(ctx))
	reviewCmd.AddCommand(newReviewAcceptCommand(ctx))
	reviewCmd.AddCommand(newReviewRejectCommand(ctx))
	reviewCmd.AddCommand(newReviewRetryCommand(ctx))
	return reviewCmd
}

func newReviewListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued titles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseReviewStatuses(statusFilter)
			if err != nil {
				return err
			}
			return ctx.withServices(func(svc *services) error {
				items, err := svc.store.ListReview(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if jsonOutput {
					if items == nil {
						items = []*store.ReviewItem{}
					}
					return writeJSON(cmd, items)
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "Nothing to review")
					return nil
				}
				fmt.Fprint(out, renderReviewItems(items, shouldColorize(out)))
				fmt.Fprintln(out)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&statusFilter, "status", "s", nil, "Filter by status (review, no-match)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print review items as JSON")
	return cmd
}

func newReviewShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the candidates for a queued title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withServices(func(svc *services) error {
				item, err := svc.store.GetReview(cmd.Context(), id)
				if err != nil {
					return describeNotFound(err, "review item", id)
				}
				if jsonOutput {
					return writeJSON(cmd, item)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Input:   %s\n", item.Input)
				if item.Phrase != "" && item.Phrase != item.Input {
					fmt.Fprintf(out, "Phrase:  %s\n", item.Phrase)
				}
				fmt.Fprintf(out, "Status:  %s\n", renderReviewStatus(item.Status, shouldColorize(out)))
				if len(item.Candidates) == 0 {
					fmt.Fprintln(out, "No candidates; add an alias and run `animatch review retry`")
					return nil
				}
				fmt.Fprint(out, renderCandidates(item.Candidates))
				fmt.Fprintln(out)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the review item as JSON")
	return cmd
}

func newReviewAcceptCommand(ctx *commandContext) *cobra.Command {
	var candidate int

	cmd := &cobra.Command{
		Use:   "accept <id>",
		Short: "Add a candidate of a queued title to the list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if candidate < 1 {
				return fmt.Errorf("--candidate must be 1 or greater")
			}
			return ctx.withServices(func(svc *services) error {
				entry, created, err := svc.store.AcceptReview(cmd.Context(), id, candidate-1)
				if err != nil {
					return describeNotFound(err, "review item", id)
				}
				out := cmd.OutOrStdout()
				if created {
					fmt.Fprintf(out, "Added %s to the list as entry %d\n", entry.Title, entry.ID)
				} else {
					fmt.Fprintf(out, "%s was already on the list (entry %d)\n", entry.Title, entry.ID)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&candidate, "candidate", 1, "Candidate number to accept, as shown by `review show`")
	return cmd
}

func newReviewRejectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reject <id>",
		Short: "Drop a queued title without adding it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withServices(func(svc *services) error {
				if err := svc.store.RejectReview(cmd.Context(), id); err != nil {
					return describeNotFound(err, "review item", id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rejected review item %d\n", id)
				return nil
			})
		},
	}
}

func newReviewRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <id>",
		Short: "Match a queued title again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withServices(func(svc *services) error {
				outcome, err := svc.runner.Retry(cmd.Context(), id)
				if err != nil {
					return describeNotFound(err, "review item", id)
				}
				printRetryOutcome(cmd, outcome)
				return nil
			})
		},
	}
}

func printRetryOutcome(cmd *cobra.Command, outcome *importer.RetryOutcome) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	fmt.Fprintf(out, "Tag:     %s\n", renderTag(outcome.Result.Tag, colorize))
	switch {
	case outcome.Entry != nil && outcome.Created:
		fmt.Fprintf(out, "Added %s to the list as entry %d\n", outcome.Entry.Title, outcome.Entry.ID)
	case outcome.Entry != nil:
		fmt.Fprintf(out, "%s was already on the list (entry %d)\n", outcome.Entry.Title, outcome.Entry.ID)
	case outcome.Item != nil:
		fmt.Fprintf(out, "Still queued with %d candidates\n", len(outcome.Item.Candidates))
	}
}

func renderReviewItems(items []*store.ReviewItem, colorize bool) string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		best := ""
		if len(item.Candidates) > 0 {
			best = item.Candidates[0].Media.DisplayTitle()
		}
		rows = append(rows, []string{
			formatID(item.ID),
			renderReviewStatus(item.Status, colorize),
			item.Input,
			best,
			formatScore(item.BestScore),
			strconv.Itoa(len(item.Candidates)),
		})
	}
	return renderTable([]column{
		{header: "ID", right: true},
		{header: "Status"},
		{header: "Input", maxWidth: 40},
		{header: "Best candidate", maxWidth: 50},
		{header: "Score", right: true},
		{header: "Candidates", right: true},
	}, rows)
}

func parseReviewStatuses(values []string) ([]store.ReviewStatus, error) {
	statuses := make([]store.ReviewStatus, 0, len(values))
	for _, value := range values {
		switch status := store.ReviewStatus(strings.ToLower(strings.TrimSpace(value))); status {
		case store.ReviewStatusReview, store.ReviewStatusNoMatch:
			statuses = append(statuses, status)
		default:
			return nil, fmt.Errorf("unknown review status %q (use review or no-match)", value)
		}
	}
	return statuses, nil
}
