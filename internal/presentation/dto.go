package presentation

import (
	"time"

	"github.com/zjrosen/marquee/internal/catalog/domain"
	"github.com/zjrosen/marquee/internal/domain/enum"
)

// PeopleResolver resolves a movie's person references. *storage.MovieStorage implements it.
type PeopleResolver interface {
	Director(m *domain.Movie) (*domain.Person, bool)
	Actors(m *domain.Movie) []*domain.Person
}

// PersonDTO represents a person for presentation
type PersonDTO struct {
	PersonID int    `json:"personId"`
	Name     string `json:"name"`
}

// MovieDTO represents a movie with its references resolved to names
type MovieDTO struct {
	MovieID     int         `json:"movieId"`
	Title       string      `json:"title"`
	Rating      string      `json:"rating,omitempty"`
	Genres      []string    `json:"genres"`
	ReleaseDate string      `json:"releaseDate,omitempty"`
	DirectorID  int         `json:"directorId"`
	Director    string      `json:"director,omitempty"` // empty when the reference no longer resolves
	Actors      []PersonDTO `json:"actors"`
}

// EnumEntryDTO represents one code of an enumeration
type EnumEntryDTO struct {
	Code  int    `json:"code"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

// EnumDTO represents a named enumeration
type EnumDTO struct {
	Name    string         `json:"name"`
	Entries []EnumEntryDTO `json:"entries"`
}

// SlotDTO describes one stored slot
type SlotDTO struct {
	Key       string    `json:"key"`
	Bytes     int       `json:"bytes"`
	Revision  string    `json:"revision,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// StatusDTO summarizes the open catalog and its store
type StatusDTO struct {
	Backend string    `json:"backend"`
	Path    string    `json:"path,omitempty"`
	Cached  bool      `json:"cached"`
	Persons int       `json:"persons"`
	Movies  int       `json:"movies"`
	NextIDs [2]int    `json:"nextIds"` // person, movie
	Slots   []SlotDTO `json:"slots,omitempty"`
}

// FromDomainPerson converts a domain person to a DTO
func FromDomainPerson(p *domain.Person) PersonDTO {
	return PersonDTO{PersonID: p.ID(), Name: p.Name()}
}

// FromDomainPersons converts a slice of domain persons to DTOs
func FromDomainPersons(people []*domain.Person) []PersonDTO {
	dtos := make([]PersonDTO, len(people))
	for i, p := range people {
		dtos[i] = FromDomainPerson(p)
	}
	return dtos
}

// FromDomainMovie converts a domain movie to a DTO, resolving the director
// and actors through refs.
func FromDomainMovie(m *domain.Movie, refs PeopleResolver) MovieDTO {
	dto := MovieDTO{
		MovieID:    m.ID(),
		Title:      m.Title(),
		Genres:     make([]string, 0, len(m.Genres())),
		DirectorID: m.Director(),
		Actors:     FromDomainPersons(refs.Actors(m)),
	}
	if m.Rating() != 0 {
		dto.Rating = domain.Ratings.Name(m.Rating())
	}
	for _, g := range m.Genres() {
		dto.Genres = append(dto.Genres, domain.Genres.Label(g))
	}
	if date, ok := m.ReleaseDate(); ok {
		dto.ReleaseDate = date.Format(domain.DateLayout)
	}
	if d, ok := refs.Director(m); ok {
		dto.Director = d.Name()
	}
	return dto
}

// FromDomainMovies converts a slice of domain movies to DTOs
func FromDomainMovies(movies []*domain.Movie, refs PeopleResolver) []MovieDTO {
	dtos := make([]MovieDTO, len(movies))
	for i, m := range movies {
		dtos[i] = FromDomainMovie(m, refs)
	}
	return dtos
}

// FromEnumeration converts an enumeration to a DTO
func FromEnumeration(name string, e *enum.Enumeration) EnumDTO {
	dto := EnumDTO{Name: name}
	for i, entry := range e.Entries() {
		dto.Entries = append(dto.Entries, EnumEntryDTO{Code: i + 1, Name: entry.Name, Label: entry.Label})
	}
	return dto
}
