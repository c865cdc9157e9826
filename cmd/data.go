package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/marquee/internal/presentation"
)

func newDataCmds(app *session) []*cobra.Command {
	return []*cobra.Command{
		newDataSeedCmd(app),
		newDataClearCmd(app),
		newDataStatusCmd(app),
	}
}

func newDataSeedCmd(app *session) *cobra.Command {
	return &cobra.Command{
		Use:   "data:seed",
		Short: "Replace all data with a small test data set",
		Long: `Replace all data with the test data set: eight persons and three movies
(Pulp Fiction, Star Wars and Dangerous Liaisons).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.catalog.Seed(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Test data created: %d persons, %d movies.\n",
				app.catalog.People().Len(), app.catalog.Movies().Len())
			return err
		},
	}
}

func newDataClearCmd(app *session) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "data:clear",
		Short: "Delete all movies and persons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if !yes {
				ok, err := confirm(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), "Do you really want to delete all data?")
				if err != nil {
					return err
				}
				if !ok {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), "Nothing deleted.")
					return err
				}
			}
			if err := app.catalog.Clear(ctx); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "All data cleared.")
			return err
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newDataStatusCmd(app *session) *cobra.Command {
	return &cobra.Command{
		Use:   "data:status",
		Short: "Show the storage backend and what it holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			people, movies := app.catalog.People(), app.catalog.Movies()
			st := presentation.StatusDTO{
				Backend: app.cfg.Storage.Backend,
				Cached:  app.cfg.Storage.Cache,
				Persons: people.Len(),
				Movies:  movies.Len(),
				NextIDs: [2]int{people.NextID(), movies.NextID()},
			}
			if app.db != nil {
				st.Path = app.db.Path()
				slots, err := app.db.SlotStore().List(cmd.Context())
				if err != nil {
					return fmt.Errorf("listing slots: %w", err)
				}
				for _, s := range slots {
					st.Slots = append(st.Slots, presentation.SlotDTO{
						Key:       s.Key,
						Bytes:     s.Bytes,
						Revision:  s.Revision,
						UpdatedAt: s.UpdatedAt,
					})
				}
			}
			return app.out.FormatStatus(st)
		},
	}
}
