package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/marquee/internal/catalog/domain"
	"github.com/zjrosen/marquee/internal/catalog/storage"
	"github.com/zjrosen/marquee/internal/config"
	"github.com/zjrosen/marquee/internal/domain/enum"
	"github.com/zjrosen/marquee/internal/flags"
	"github.com/zjrosen/marquee/internal/presentation"
	"github.com/zjrosen/marquee/internal/watcher"
)

func newMovieCmds(app *session) []*cobra.Command {
	return []*cobra.Command{
		newMovieListCmd(app),
		newMovieShowCmd(app),
		newMovieAddCmd(app),
		newMovieUpdateCmd(app),
		newMovieDestroyCmd(app),
	}
}

// enumCode accepts either a numeric code or a symbolic name such as PG13 or
// SCI_FI. Unknown names are passed through for the validator to reject.
func enumCode(e *enum.Enumeration, value string) string {
	if code, ok := e.Code(value); ok {
		return strconv.Itoa(code)
	}
	return value
}

func enumCodes(e *enum.Enumeration, values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = enumCode(e, v)
	}
	return out
}

func newMovieListCmd(app *session) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "movie:list",
		Short: "List all movies",
		Long: `List all movies with their director and cast.

With --watch the listing is printed again whenever another marquee process
changes the database, until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list := func() error {
				movies := app.catalog.Movies()
				return app.out.FormatMovies(presentation.FromDomainMovies(movies.All(), movies))
			}
			if err := list(); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			if app.db == nil {
				return fmt.Errorf("--watch needs the %s backend", config.BackendSQLite)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			w, err := watcher.New(watcher.DefaultConfig(app.db.Path()))
			if err != nil {
				return err
			}
			defer func() { _ = w.Stop() }()
			changes, err := w.Start(ctx)
			if err != nil {
				return err
			}

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-changes:
					if err := app.reload(ctx); err != nil {
						return err
					}
					if err := list(); err != nil {
						return err
					}
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "print the listing again after every change to the database")
	return cmd
}

func newMovieShowCmd(app *session) *cobra.Command {
	var id int

	cmd := &cobra.Command{
		Use:   "movie:show",
		Short: "Show one movie with its director and cast",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			movies := app.catalog.Movies()
			m, ok := movies.Get(id)
			if !ok {
				return app.report(fmt.Errorf("movie %d: %w", id, storage.ErrNotFound))
			}
			return app.out.FormatMovie(presentation.FromDomainMovie(m, movies))
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "movie id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newMovieAddCmd(app *session) *cobra.Command {
	var slots domain.MovieSlots

	cmd := &cobra.Command{
		Use:   "movie:add",
		Short: "Create a movie",
		Long: `Create a movie. The id defaults to the next free movie id.

Ratings and genres are given by code or by name (see enum:list). The
director and actors are person ids.

Examples:
  marquee movie:add --title "Pulp Fiction" --rating R --genre CRIME --genre DRAMA \
    --release-date 1994-05-12 --director 3 --actor 4 --actor 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			movies := app.catalog.Movies()
			if !cmd.Flags().Changed("id") {
				slots.MovieID = strconv.Itoa(movies.NextID())
			}
			slots.Rating = enumCode(domain.Ratings, slots.Rating)
			slots.Genres = enumCodes(domain.Genres, slots.Genres)

			m, err := movies.Add(ctx, slots)
			if err != nil {
				return app.report(err)
			}
			if err := app.save(ctx); err != nil {
				return err
			}
			return app.out.FormatMovie(presentation.FromDomainMovie(m, movies))
		},
	}

	cmd.Flags().StringVar(&slots.MovieID, "id", "", "movie id (default: next free id)")
	cmd.Flags().StringVar(&slots.Title, "title", "", "title, at most 120 characters")
	cmd.Flags().StringVar(&slots.Rating, "rating", "", "rating code or name")
	cmd.Flags().StringSliceVar(&slots.Genres, "genre", nil, "genre code or name (repeatable)")
	cmd.Flags().StringVar(&slots.ReleaseDate, "release-date", "", "release date, YYYY-MM-DD")
	cmd.Flags().StringVar(&slots.Director, "director", "", "director person id")
	cmd.Flags().StringSliceVar(&slots.Actors, "actor", nil, "actor person id (repeatable)")
	return cmd
}

func newMovieUpdateCmd(app *session) *cobra.Command {
	var (
		id                                   int
		title, rating, releaseDate, director string
		genres, addActors, removeActors      []string
		showDiff                             bool
	)

	cmd := &cobra.Command{
		Use:   "movie:update",
		Short: "Change fields of a movie",
		Long: `Change fields of a movie. Only the flags given are applied, and a field
equal to its current value is left alone. If any field is rejected the movie
keeps all of its previous values.

--genre replaces the genre set. Actors are added and removed individually.
An empty --rating or --release-date clears that field.

Examples:
  marquee movie:update --id 1 --title "Pulp Fiction (Remastered)"
  marquee movie:update --id 2 --genre ACTION --genre SCI_FI --remove-actor 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			movies := app.catalog.Movies()
			m, ok := movies.Get(id)
			if !ok {
				return app.report(fmt.Errorf("update movie %d: %w", id, storage.ErrNotFound))
			}
			before := presentation.FromDomainMovie(m, movies)

			upd := storage.MovieUpdate{MovieID: id, ActorsToAdd: addActors, ActorsToRemove: removeActors}
			changed := cmd.Flags().Changed
			if changed("title") {
				upd.Title = &title
			}
			if changed("rating") {
				code := enumCode(domain.Ratings, rating)
				upd.Rating = &code
			}
			if changed("genre") {
				upd.Genres = enumCodes(domain.Genres, genres)
			}
			if changed("release-date") {
				upd.ReleaseDate = &releaseDate
			}
			if changed("director") {
				upd.Director = &director
			}

			if err := movies.Update(ctx, upd); err != nil {
				return app.report(err)
			}
			if err := app.save(ctx); err != nil {
				return err
			}

			after := presentation.FromDomainMovie(m, movies)
			if !changed("diff") {
				showDiff = app.flags.Enabled(flags.FlagShowDiff)
			}
			if showDiff && app.out.Format() == presentation.FormatTable {
				return app.out.FormatChange(before, after)
			}
			return app.out.FormatMovie(after)
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "id of the movie to change")
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&rating, "rating", "", "new rating code or name")
	cmd.Flags().StringSliceVar(&genres, "genre", nil, "new genre set, code or name (repeatable)")
	cmd.Flags().StringVar(&releaseDate, "release-date", "", "new release date, YYYY-MM-DD")
	cmd.Flags().StringVar(&director, "director", "", "new director person id")
	cmd.Flags().StringSliceVar(&addActors, "add-actor", nil, "person id to add to the cast (repeatable)")
	cmd.Flags().StringSliceVar(&removeActors, "remove-actor", nil, "person id to remove from the cast (repeatable)")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "print a line diff of the change (default from the show-diff flag)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newMovieDestroyCmd(app *session) *cobra.Command {
	var id int

	cmd := &cobra.Command{
		Use:   "movie:destroy",
		Short: "Delete a movie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := app.catalog.Movies().Destroy(ctx, id); err != nil {
				return app.report(err)
			}
			if err := app.save(ctx); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Movie %d deleted.\n", id)
			return err
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "id of the movie to delete")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
