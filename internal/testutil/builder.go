package testutil

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/marquee/internal/catalog/domain"
	"github.com/zjrosen/marquee/internal/catalog/storage"
)

// Builder accumulates catalog records and writes them to the two slots.
// Records are written as stored, without validation, so tests can set up
// data the loader has to reject.
type Builder struct {
	t       *testing.T
	store   storage.SlotStore
	persons map[string]json.RawMessage
	movies  map[string]json.RawMessage
}

// NewBuilder creates a builder for the given slot store.
func NewBuilder(t *testing.T, store storage.SlotStore) *Builder {
	t.Helper()
	return &Builder{
		t:       t,
		store:   store,
		persons: map[string]json.RawMessage{},
		movies:  map[string]json.RawMessage{},
	}
}

// WithPerson adds a person record.
func (b *Builder) WithPerson(id int, name string) *Builder {
	b.persons[strconv.Itoa(id)] = b.encode(domain.PersonRecord{PersonID: id, Name: name})
	return b
}

// WithMovie adds a movie record with optional configuration.
func (b *Builder) WithMovie(id int, opts ...MovieOption) *Builder {
	m := defaultMovie(id)
	for _, opt := range opts {
		opt(&m)
	}
	b.movies[strconv.Itoa(id)] = b.encode(domain.MovieRecord{
		MovieID:     m.id,
		Title:       m.title,
		Rating:      m.rating,
		Genres:      m.genres,
		ReleaseDate: m.releaseDate,
		Director:    m.director,
		Actors:      m.actors,
	})
	return b
}

// WithRawMovie stores value under key in the movies slot as is.
func (b *Builder) WithRawMovie(key, value string) *Builder {
	b.movies[key] = json.RawMessage(value)
	return b
}

// Build writes both slots. A slot with no records is written as "{}".
func (b *Builder) Build() {
	b.t.Helper()
	// Persons first so a failure leaves no movie slot without its people.
	b.write(storage.PersonsKey, b.persons)
	b.write(storage.MoviesKey, b.movies)
}

func (b *Builder) encode(v any) json.RawMessage {
	b.t.Helper()
	data, err := json.Marshal(v)
	require.NoError(b.t, err)
	return data
}

func (b *Builder) write(key string, records map[string]json.RawMessage) {
	b.t.Helper()
	data, err := json.Marshal(records)
	require.NoError(b.t, err)
	require.NoError(b.t, b.store.Set(context.Background(), key, string(data)))
}
