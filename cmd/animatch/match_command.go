package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"animatch/internal/matching"
	"animatch/internal/store"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var save bool

	cmd := &cobra.Command{
		Use:   "match <title...>",
		Short: "Match one title against the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := strings.Join(args, " ")
			if strings.TrimSpace(input) == "" {
				return fmt.Errorf("title is blank")
			}
			if save {
				return ctx.withServices(func(svc *services) error {
					result, err := matchOne(cmd, svc.matcher, input)
					if err != nil {
						return err
					}
					if err := saveResult(cmd, svc.store, result); err != nil {
						return err
					}
					return printMatch(cmd, result, jsonOutput)
				})
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			matcher, err := buildMatcher(cfg, logger)
			if err != nil {
				return err
			}
			result, err := matchOne(cmd, matcher, input)
			if err != nil {
				return err
			}
			return printMatch(cmd, result, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the match result as JSON")
	cmd.Flags().BoolVar(&save, "save", false, "Add an automatic match to the list, or queue the title for review")
	return cmd
}

func matchOne(cmd *cobra.Command, matcher *matching.Matcher, input string) (*matching.Result, error) {
	result, err := matcher.Match(cmd.Context(), input)
	if err != nil {
		return nil, fmt.Errorf("match %q: %w", input, err)
	}
	if result == nil {
		return nil, fmt.Errorf("title is blank")
	}
	return result, nil
}

func saveResult(cmd *cobra.Command, st *store.Store, result *matching.Result) error {
	if result.Tag == matching.TagAuto {
		entry, created, err := st.AddEntry(cmd.Context(), store.EntryFromCandidate(result.Input, *result.Best, ""))
		if err != nil {
			return fmt.Errorf("add entry: %w", err)
		}
		if created {
			fmt.Fprintf(cmd.ErrOrStderr(), "Added %s to the list as entry %d\n", entry.Title, entry.ID)
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s is already on the list\n", entry.Title)
		}
		return nil
	}
	item, ok := store.ReviewItemFromResult(result, "")
	if !ok {
		return nil
	}
	queued, err := st.EnqueueReview(cmd.Context(), item)
	if err != nil {
		return fmt.Errorf("queue for review: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Queued for review as item %d\n", queued.ID)
	return nil
}

func printMatch(cmd *cobra.Command, result *matching.Result, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(cmd, result)
	}

	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	phrase := result.Phrase
	if result.Refined {
		phrase += " (refined)"
	}
	fmt.Fprintf(out, "Input:   %s\n", result.Input)
	fmt.Fprintf(out, "Phrase:  %s\n", phrase)
	fmt.Fprintf(out, "Tag:     %s\n", renderTag(result.Tag, colorize))
	if result.Best != nil {
		fmt.Fprintf(out, "Match:   %s (%s)\n", result.Best.Media.DisplayTitle(), result.Best.Media.SiteURL())
	}
	if len(result.Candidates) > 1 {
		fmt.Fprintf(out, "Margin:  %s\n", formatScore(result.Margin))
	}
	if len(result.Candidates) == 0 {
		fmt.Fprintln(out, "No candidates found")
		return nil
	}
	fmt.Fprint(out, renderCandidates(result.Candidates))
	fmt.Fprintln(out)
	return nil
}

func renderCandidates(candidates []matching.ScoredCandidate) string {
	rows := make([][]string, 0, len(candidates))
	for idx, candidate := range candidates {
		year := ""
		if candidate.Media.SeasonYear > 0 {
			year = strconv.Itoa(candidate.Media.SeasonYear)
		}
		rows = append(rows, []string{
			strconv.Itoa(idx + 1),
			formatID(candidate.Media.ID),
			candidate.Media.DisplayTitle(),
			year,
			formatScore(candidate.Score),
		})
	}
	return renderTable([]column{
		{header: "#", right: true},
		{header: "AniList ID", right: true},
		{header: "Title", maxWidth: 60},
		{header: "Year", right: true},
		{header: "Score", right: true},
	}, rows)
}
