package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bnema/focus-budget-cli/internal/adapters/items"
	"github.com/bnema/focus-budget-cli/internal/domain"
	"github.com/bnema/focus-budget-cli/internal/ports"
	"github.com/spf13/cobra"
)

type batchFlags struct {
	itemsPath string
	goals     []string
	domains   []string
}

func (f *batchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.itemsPath, "items", "", "Work item file (.toml, .yaml, .yml or .json)")
	cmd.Flags().StringArrayVar(&f.goals, "goal", nil, "Goal phrase to score relevance against (repeatable)")
	cmd.Flags().StringArrayVar(&f.domains, "domain", nil, "Active domain (repeatable)")
	_ = cmd.MarkFlagRequired("items")
}

func (f *batchFlags) load(app *app) (items.Batch, error) {
	batch, err := items.Load(f.itemsPath, app.now())
	if err != nil {
		return items.Batch{}, err
	}

	batch.Context.Goals = append(batch.Context.Goals, f.goals...)
	batch.Context.ActiveDomains = append(batch.Context.ActiveDomains, f.domains...)

	return batch, nil
}

func newRunCmd(app *app) *cobra.Command {
	var (
		batch     batchFlags
		cycles    int
		jsonOut   bool
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run processing cycles over a work item file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cycles < 1 {
				return errors.New("--cycles must be at least 1")
			}

			loaded, err := batch.load(app)
			if err != nil {
				return err
			}

			orchestrator, err := app.newOrchestrator()
			if err != nil {
				return err
			}

			var last domain.CycleResult
			for i := 0; i < cycles; i++ {
				last, err = orchestrator.RunCycle(cmd.Context(), loaded.Items, loaded.Context)
				if err != nil {
					return err
				}
			}

			if !noHistory {
				if err := app.withHistory(func(repo ports.HistoryRepository) error {
					return repo.Append(cmd.Context(), orchestrator.History())
				}); err != nil {
					return fmt.Errorf("persist history: %w", err)
				}
			}

			if jsonOut {
				encoded, err := json.MarshalIndent(last, "", "  ")
				if err != nil {
					return fmt.Errorf("encode cycle result: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
				return err
			}

			rendered, err := app.cycleRenderer(last)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	batch.register(cmd)
	cmd.Flags().IntVar(&cycles, "cycles", 1, "Number of cycles to run over the same batch")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the last cycle result as JSON")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not persist cycle history")

	return cmd
}
