// Package application coordinates the movie and person registries as one
// catalog session: loading and saving both slots, enforcing the person
// reference policy, and seeding test data.
package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/marquee/internal/catalog/domain"
	"github.com/zjrosen/marquee/internal/catalog/storage"
	"github.com/zjrosen/marquee/internal/flags"
	"github.com/zjrosen/marquee/internal/log"
	"github.com/zjrosen/marquee/internal/pubsub"
	"github.com/zjrosen/marquee/internal/tracing"
)

// ErrPersonReferenced is returned by DestroyPerson under strict references
// when a movie still names the person as director or actor.
var ErrPersonReferenced = errors.New("person is referenced by movies")

// eventBuffer is sized so one cascading delete or seed fits in a
// subscription without drops.
const eventBuffer = 1024

// Catalog owns both registries over one slot store.
type Catalog struct {
	store  storage.SlotStore
	flags  *flags.Registry
	events *pubsub.Broker[storage.ChangeEvent]
	people *storage.PersonStorage
	movies *storage.MovieStorage
}

// NewCatalog creates an empty catalog over store. Call Load to read the slots.
func NewCatalog(store storage.SlotStore, fl *flags.Registry) *Catalog {
	events := pubsub.NewBrokerWithBuffer[storage.ChangeEvent](eventBuffer)
	people := storage.NewPersonStorage(store, storage.WithBroker(events))
	return &Catalog{
		store:  store,
		flags:  fl,
		events: events,
		people: people,
		movies: storage.NewMovieStorage(store, people, storage.WithBroker(events)),
	}
}

// Store returns the slot store both registries persist to.
func (c *Catalog) Store() storage.SlotStore { return c.store }

// People returns the person registry.
func (c *Catalog) People() *storage.PersonStorage { return c.people }

// Movies returns the movie registry.
func (c *Catalog) Movies() *storage.MovieStorage { return c.movies }

// Load reads persons, then movies, so that movie references resolve.
func (c *Catalog) Load(ctx context.Context) (err error) {
	ctx, span := tracing.Start(ctx, tracing.SpanPrefixCatalog+"load")
	defer func() { tracing.End(span, err) }()

	persons, perr := c.people.RetrieveAll(ctx)
	if perr != nil {
		perr = fmt.Errorf("load persons: %w", perr)
	}
	movies, merr := c.movies.RetrieveAll(ctx)
	if merr != nil {
		merr = fmt.Errorf("load movies: %w", merr)
	}
	if err = errors.Join(perr, merr); err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("catalog.persons", persons), attribute.Int("catalog.movies", movies))
	log.Debug(log.CatCatalog, "Catalog loaded", "persons", persons, "movies", movies)
	return nil
}

// Save writes both registries to their slots. Both writes are attempted; the
// returned error joins any failures.
func (c *Catalog) Save(ctx context.Context) (err error) {
	ctx, span := tracing.Start(ctx, tracing.SpanPrefixCatalog+"save")
	defer func() { tracing.End(span, err) }()

	_, perr := c.people.Persist(ctx)
	if perr != nil {
		perr = fmt.Errorf("save persons: %w", perr)
	}
	_, merr := c.movies.Persist(ctx)
	if merr != nil {
		merr = fmt.Errorf("save movies: %w", merr)
	}
	return errors.Join(perr, merr)
}

// DestroyPerson removes a person and resolves the movies that reference them.
// By default the removal cascades: movies the person directed are destroyed
// and the person is dropped from every cast. With strict references enabled a
// referenced person is kept and ErrPersonReferenced is returned.
func (c *Catalog) DestroyPerson(ctx context.Context, id int) error {
	if refs := c.movies.References(id); len(refs) > 0 && c.flags.Enabled(flags.FlagStrictReferences) {
		ids := make([]int, len(refs))
		for i, m := range refs {
			ids[i] = m.ID()
		}
		log.Warn(log.CatCatalog, "Person not deleted, still referenced", "personId", id, "movies", ids)
		return fmt.Errorf("destroy person %d: %w %v", id, ErrPersonReferenced, ids)
	}

	return c.people.Destroy(ctx, id, func(p *domain.Person) {
		directed := c.movies.DestroyAll(ctx, func(m *domain.Movie) bool { return m.Director() == p.ID() })
		cast := c.movies.DropActor(ctx, p.ID())
		if directed > 0 || len(cast) > 0 {
			log.Info(log.CatCatalog, "References to deleted person resolved",
				"personId", p.ID(), "moviesDestroyed", directed, "castsUpdated", len(cast))
		}
	})
}

// Clear empties both registries and both slots.
func (c *Catalog) Clear(ctx context.Context) error {
	merr := c.movies.Clear(ctx)
	perr := c.people.Clear(ctx)
	if err := errors.Join(merr, perr); err != nil {
		return err
	}
	log.Info(log.CatCatalog, "All data cleared.")
	return nil
}

// Seed replaces the catalog with the test data set and saves it.
func (c *Catalog) Seed(ctx context.Context) error {
	if err := c.Clear(ctx); err != nil {
		return err
	}
	for _, p := range seedPersons {
		if _, err := c.people.Add(ctx, p); err != nil {
			return fmt.Errorf("seed person %s: %w", p.PersonID, err)
		}
	}
	for _, m := range seedMovies() {
		if _, err := c.movies.Add(ctx, m); err != nil {
			return fmt.Errorf("seed movie %s: %w", m.MovieID, err)
		}
	}
	if err := c.Save(ctx); err != nil {
		return err
	}
	log.Info(log.CatCatalog, "Test data created", "persons", c.people.Len(), "movies", c.movies.Len())
	return nil
}

// Subscribe returns one stream of the change events of both registries in
// the order they happened, closed when ctx is cancelled. Events published
// before Subscribe returns are not replayed.
func (c *Catalog) Subscribe(ctx context.Context) <-chan pubsub.Event[storage.ChangeEvent] {
	return c.events.Subscribe(ctx)
}

var seedPersons = []domain.PersonSlots{
	{PersonID: "1", Name: "Stephen Frears"},
	{PersonID: "2", Name: "George Lucas"},
	{PersonID: "3", Name: "Quentin Terrentino"},
	{PersonID: "4", Name: "Uma Thurman"},
	{PersonID: "5", Name: "John Travolta"},
	{PersonID: "6", Name: "Ewan McGregor"},
	{PersonID: "7", Name: "Natalie Portman"},
	{PersonID: "8", Name: "Keanu Reeves"},
}

func codes(cs ...int) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = strconv.Itoa(c)
	}
	return out
}

func seedMovies() []domain.MovieSlots {
	return []domain.MovieSlots{
		{
			MovieID:     "1",
			Title:       "Pulp Fiction",
			Rating:      strconv.Itoa(domain.RatingR),
			Genres:      codes(domain.GenreCrime, domain.GenreDrama),
			ReleaseDate: "1994-05-12",
			Director:    "3",
			Actors:      []string{"4", "5"},
		},
		{
			MovieID:     "2",
			Title:       "Star Wars",
			Rating:      strconv.Itoa(domain.RatingPG),
			Genres:      codes(domain.GenreAction, domain.GenreAdventure, domain.GenreFantasy, domain.GenreSciFi),
			ReleaseDate: "1977-05-25",
			Director:    "2",
			Actors:      []string{"6", "7"},
		},
		{
			MovieID:     "3",
			Title:       "Dangerous Liaisons",
			Rating:      strconv.Itoa(domain.RatingR),
			Genres:      codes(domain.GenreRomance, domain.GenreDrama),
			ReleaseDate: "1988-12-16",
			Director:    "1",
			Actors:      []string{"4", "8"},
		},
	}
}
