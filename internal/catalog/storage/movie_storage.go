package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/zjrosen/marquee/internal/catalog/domain"
	"github.com/zjrosen/marquee/internal/log"
	"github.com/zjrosen/marquee/internal/pubsub"
)

// PersonLookup resolves person ids. *PersonStorage implements it.
type PersonLookup interface {
	domain.Container
	Get(id int) (*domain.Person, bool)
}

// MovieUpdate carries the fields to change on one movie. A nil field is left
// as is. An empty ReleaseDate or Rating clears the value.
type MovieUpdate struct {
	MovieID        int
	Title          *string
	Rating         *string
	Genres         []string
	ReleaseDate    *string
	Director       *string
	ActorsToAdd    []string
	ActorsToRemove []string
}

// MovieStorage is the registry of movies, persisted under MoviesKey.
// Director and actor references are validated against people.
type MovieStorage struct {
	collection[*domain.Movie]
	people PersonLookup
}

var _ domain.Container = (*MovieStorage)(nil)

// NewMovieStorage creates an empty registry backed by store.
func NewMovieStorage(store SlotStore, people PersonLookup, opts ...Option) *MovieStorage {
	return &MovieStorage{
		collection: newCollection[*domain.Movie](KindMovie, MoviesKey, store, opts),
		people:     people,
	}
}

// Add validates slots, registers the new movie and returns it. On a violation
// nothing is registered and the violation is returned.
func (s *MovieStorage) Add(ctx context.Context, slots domain.MovieSlots) (*domain.Movie, error) {
	m, err := domain.NewMovie(slots, s, s.people)
	if err != nil {
		log.Warn(log.CatModel, "Movie not created", "movieId", slots.MovieID, "error", err)
		return nil, err
	}
	s.insert(m)
	log.Info(log.CatStorage, fmt.Sprintf("%s created", m))
	return m, nil
}

// Update applies the provided fields to a registered movie, each through its
// validating setter and only when it differs from the current value. If any
// field is rejected, the movie is restored to its state before the call and
// the remaining fields are not applied.
func (s *MovieStorage) Update(ctx context.Context, upd MovieUpdate) error {
	m, ok := s.instances[upd.MovieID]
	if !ok {
		log.Info(log.CatStorage, fmt.Sprintf("There is no movie with id %d to update", upd.MovieID))
		return fmt.Errorf("update movie %d: %w", upd.MovieID, ErrNotFound)
	}
	snapshot := m.Clone()

	changed, err := s.apply(m, upd)
	if err != nil {
		m.Restore(snapshot)
		log.Warn(log.CatModel, "Movie update rolled back", "movieId", upd.MovieID, "error", err)
		return err
	}

	logChanges("movie", upd.MovieID, changed)
	if len(changed) > 0 {
		s.publish(pubsub.UpdatedEvent, upd.MovieID)
	}
	return nil
}

func (s *MovieStorage) apply(m *domain.Movie, upd MovieUpdate) ([]string, error) {
	var changed []string

	if upd.Title != nil {
		if v := domain.CheckTitle(*upd.Title); !v.Ok() || v.Value != m.Title() {
			if err := m.SetTitle(*upd.Title); err != nil {
				return nil, err
			}
			changed = append(changed, "title")
		}
	}

	if upd.Rating != nil {
		if v := domain.CheckRating(*upd.Rating); !v.Ok() || v.Value != m.Rating() {
			if err := m.SetRating(*upd.Rating); err != nil {
				return nil, err
			}
			changed = append(changed, "rating")
		}
	}

	if upd.Genres != nil {
		if v := domain.CheckGenres(upd.Genres); !v.Ok() || !sameSet(v.Value.([]int), m.Genres()) {
			if err := m.SetGenres(upd.Genres); err != nil {
				return nil, err
			}
			changed = append(changed, "genres")
		}
	}

	if upd.ReleaseDate != nil {
		v := domain.CheckReleaseDate(*upd.ReleaseDate)
		var next, current *time.Time
		if d, ok := v.Value.(time.Time); ok {
			next = &d
		}
		if d, ok := m.ReleaseDate(); ok {
			current = &d
		}
		if !v.Ok() || domain.CompareDates(next, current) != 0 {
			if err := m.SetReleaseDate(*upd.ReleaseDate); err != nil {
				return nil, err
			}
			changed = append(changed, "releaseDate")
		}
	}

	if upd.Director != nil {
		if v := domain.CheckDirector(*upd.Director, s.people); !v.Ok() || v.Value != m.Director() {
			if err := m.SetDirector(*upd.Director, s.people); err != nil {
				return nil, err
			}
			changed = append(changed, "director")
		}
	}

	if len(upd.ActorsToAdd) > 0 {
		before := m.Actors()
		if err := m.AddActors(upd.ActorsToAdd, s.people); err != nil {
			return nil, err
		}
		if !slices.Equal(before, m.Actors()) {
			changed = append(changed, "actors(added)")
		}
	}

	if len(upd.ActorsToRemove) > 0 {
		before := m.Actors()
		if err := m.RemoveActors(upd.ActorsToRemove); err != nil {
			return nil, err
		}
		if !slices.Equal(before, m.Actors()) {
			changed = append(changed, "actors(removed)")
		}
	}

	return changed, nil
}

func sameSet(a, b []int) bool {
	a, b = slices.Clone(a), slices.Clone(b)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(slices.Compact(a), slices.Compact(b))
}

// UpdateAll applies upd to every movie matching pred (all when pred is nil).
// Each movie is updated independently; a failure on one does not undo the
// others. The returned error joins every per-movie failure.
func (s *MovieStorage) UpdateAll(ctx context.Context, upd MovieUpdate, pred func(*domain.Movie) bool) error {
	var errs []error
	for _, m := range s.All() {
		if pred != nil && !pred(m) {
			continue
		}
		u := upd
		u.MovieID = m.ID()
		if err := s.Update(ctx, u); err != nil {
			errs = append(errs, fmt.Errorf("movie %d: %w", m.ID(), err))
		}
	}
	return errors.Join(errs...)
}

// Destroy removes the movie with the given id.
func (s *MovieStorage) Destroy(ctx context.Context, id int) error {
	return s.destroy(id, nil)
}

// DestroyAll removes every movie matching pred (all when pred is nil) and
// returns how many were removed.
func (s *MovieStorage) DestroyAll(ctx context.Context, pred func(*domain.Movie) bool) int {
	return s.destroyAll(pred)
}

// DropActor removes personID from the cast of every movie and returns the ids
// of the movies that changed.
func (s *MovieStorage) DropActor(ctx context.Context, personID int) []int {
	var touched []int
	for _, m := range s.All() {
		if m.DropActor(personID) {
			touched = append(touched, m.ID())
			s.publish(pubsub.UpdatedEvent, m.ID())
		}
	}
	if len(touched) > 0 {
		log.Info(log.CatStorage, "Actor removed from movies", "personId", personID, "movies", touched)
	}
	return touched
}

// References returns the movies that refer to personID as director or actor.
func (s *MovieStorage) References(personID int) []*domain.Movie {
	var out []*domain.Movie
	for _, m := range s.All() {
		if m.Director() == personID || m.HasActor(personID) {
			out = append(out, m)
		}
	}
	return out
}

// Director resolves the movie's director through the person registry.
func (s *MovieStorage) Director(m *domain.Movie) (*domain.Person, bool) {
	return s.people.Get(m.Director())
}

// Actors resolves the movie's actors through the person registry, in id order.
// Ids that no longer resolve are left out.
func (s *MovieStorage) Actors(m *domain.Movie) []*domain.Person {
	var out []*domain.Person
	for _, id := range m.Actors() {
		if p, ok := s.people.Get(id); ok {
			out = append(out, p)
		}
	}
	return out
}

// RetrieveAll loads movies from the slot store. Persons must be loaded first
// so that director and actor references resolve. Invalid records are skipped.
func (s *MovieStorage) RetrieveAll(ctx context.Context) (int, error) {
	return s.retrieveAll(ctx, func(raw json.RawMessage) (*domain.Movie, bool) {
		var rec domain.MovieRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			log.Warn(log.CatModel, "Malformed movie record skipped", "error", err)
			return nil, false
		}
		m := domain.DeserializeMovie(rec, s.people)
		return m, m != nil
	})
}

// Persist writes all movies to the slot store and returns how many were written.
func (s *MovieStorage) Persist(ctx context.Context) (int, error) {
	return s.persist(ctx, func(m *domain.Movie) any { return m.ToRecord() })
}

// Clear removes every movie and empties the slot.
func (s *MovieStorage) Clear(ctx context.Context) error {
	return s.clear(ctx)
}
