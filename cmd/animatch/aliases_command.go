package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"animatch/internal/aliases"
)

func newAliasesCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "aliases",
		Short: "Show the shorthand alias table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			catalog := aliases.NewCatalog(cfg.Paths.AliasesPath, logger)
			entries, err := aliases.NewResolver(catalog, logger).Entries()
			if err != nil {
				return fmt.Errorf("load aliases: %w", err)
			}
			if jsonOutput {
				return writeJSON(cmd, entries)
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{entry.Shorthand, entry.Canonical, string(entry.Source)})
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, renderTable([]column{
				{header: "Shorthand"},
				{header: "Title", maxWidth: 60},
				{header: "Source"},
			}, rows))
			fmt.Fprintln(out)
			if path := catalog.Path(); path != "" {
				fmt.Fprintf(out, "User aliases: %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the alias table as JSON")
	return cmd
}
