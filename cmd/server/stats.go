package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/spf13/cobra"
)

func newStatsCmd(state *cliState) *cobra.Command {
	var deck string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print a study session snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := store.AllDecks()
			if deck != "" {
				id, err := uuid.Parse(deck)
				if err != nil {
					return fmt.Errorf("invalid --deck %q: %w", deck, err)
				}
				filter = store.ForDeck(id)
			}

			db, err := openDatabase(cmd.Context(), state.config.Database, state.logger)
			if err != nil {
				return err
			}
			defer db.Close()

			app, err := newApplication(state.config, state.logger, db.repo, nil)
			if err != nil {
				return err
			}

			stats, err := app.studyService.SessionStats(cmd.Context(), filter, app.clock.Now())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 1, ' ', 0)
			fmt.Fprintf(w, "Due cards:\t%d\n", stats.DueCards)
			fmt.Fprintf(w, "New cards:\t%d\n", stats.NewCards)
			fmt.Fprintf(w, "Total cards:\t%d\n", stats.TotalCards)
			fmt.Fprintf(w, "Reviewed today:\t%d\n", stats.ReviewedToday)
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&deck, "deck", "", "Limit the snapshot to one deck (UUID)")
	return cmd
}
