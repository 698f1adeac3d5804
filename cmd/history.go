package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/bnema/focus-budget-cli/internal/domain"
	"github.com/bnema/focus-budget-cli/internal/ports"
	"github.com/spf13/cobra"
)

func newHistoryCmd(app *app) *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded cycles, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var entries []domain.HistoryEntry
			if err := app.withHistory(func(repo ports.HistoryRepository) error {
				var err error
				entries, err = repo.List(cmd.Context(), limit)
				return err
			}); err != nil {
				return err
			}

			if jsonOut {
				if entries == nil {
					entries = []domain.HistoryEntry{}
				}
				encoded, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return fmt.Errorf("encode history: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
				return err
			}

			rendered, err := app.historyView(entries)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Show at most this many recent cycles (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print history as JSON")

	return cmd
}
