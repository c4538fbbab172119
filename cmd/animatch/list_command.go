package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"animatch/internal/store"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show titles on the list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withServices(func(svc *services) error {
				entries, err := svc.store.ListEntries(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					if entries == nil {
						entries = []*store.Entry{}
					}
					return writeJSON(cmd, entries)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "The list is empty")
					return nil
				}
				fmt.Fprint(out, renderEntries(entries))
				fmt.Fprintln(out)

				stats, err := svc.store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d listed, %d awaiting review, %d without a match\n", stats.Entries, stats.Review, stats.NoMatch)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print entries as JSON")

	cmd.AddCommand(newListRemoveCommand(ctx))
	return cmd
}

func newListRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an entry from the list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ctx.withServices(func(svc *services) error {
				entry, err := svc.store.GetEntry(cmd.Context(), id)
				if err != nil {
					return describeNotFound(err, "entry", id)
				}
				if err := svc.store.RemoveEntry(cmd.Context(), id); err != nil {
					return describeNotFound(err, "entry", id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (entry %d)\n", entry.Title, id)
				return nil
			})
		},
	}
}

func renderEntries(entries []*store.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		year := ""
		if entry.SeasonYear > 0 {
			year = strconv.Itoa(entry.SeasonYear)
		}
		rows = append(rows, []string{
			formatID(entry.ID),
			entry.Title,
			year,
			formatID(entry.CatalogID),
			entry.SourceInput,
		})
	}
	return renderTable([]column{
		{header: "ID", right: true},
		{header: "Title", maxWidth: 50},
		{header: "Year", right: true},
		{header: "AniList ID", right: true},
		{header: "Input", maxWidth: 40},
	}, rows)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func describeNotFound(err error, kind string, id int64) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s %d not found", kind, id)
	}
	return err
}
