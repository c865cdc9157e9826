package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/zjrosen/marquee/internal/domain/violation"
	"github.com/zjrosen/marquee/internal/log"
)

// MaxTitleLength is the maximum number of runes in a trimmed movie title.
const MaxTitleLength = 120

// MovieSlots is the raw field bag used to create a Movie.
// Every value is a form-style string; empty means "not provided".
type MovieSlots struct {
	MovieID     string
	Title       string
	Rating      string
	Genres      []string
	ReleaseDate string
	Director    string
	Actors      []string
}

// MovieRecord is the persisted form of a Movie. References are stored as person ids.
type MovieRecord struct {
	MovieID     int    `json:"movieId"`
	Title       string `json:"title"`
	Rating      int    `json:"rating,omitempty"`
	Genres      []int  `json:"genres"`
	ReleaseDate string `json:"releaseDate,omitempty"`
	Director    int    `json:"director"`
	Actors      []int  `json:"actors"`
}

// Slots converts a persisted record back into raw creation slots.
func (r MovieRecord) Slots() MovieSlots {
	genres := make([]string, len(r.Genres))
	for i, g := range r.Genres {
		genres[i] = strconv.Itoa(g)
	}
	actors := make([]string, len(r.Actors))
	for i, a := range r.Actors {
		actors[i] = strconv.Itoa(a)
	}
	return MovieSlots{
		MovieID:     itoaOrEmpty(r.MovieID),
		Title:       r.Title,
		Rating:      itoaOrEmpty(r.Rating),
		Genres:      genres,
		ReleaseDate: r.ReleaseDate,
		Director:    itoaOrEmpty(r.Director),
		Actors:      actors,
	}
}

// Movie is a catalog entry.
// All fields are unexported to keep every assignment behind its check function.
type Movie struct {
	id          int
	title       string
	rating      int // 0 when unrated
	genres      []int
	releaseDate *time.Time
	director    int
	actors      []int // ascending, no duplicates
}

// CheckMovieID validates the format of a movie id.
func CheckMovieID(raw string) violation.Violation {
	return checkID(raw, "movie", "movieId")
}

// CheckMovieIDAsID validates a movie id for creation: it must not be registered yet.
func CheckMovieIDAsID(raw string, movies Container) violation.Violation {
	return checkIDAsID(raw, "movie", "movieId", movies)
}

// CheckMovieIDAsIDRef validates a movie id used as a reference: it must be registered.
func CheckMovieIDAsIDRef(raw string, movies Container) violation.Violation {
	return checkIDAsIDRef(raw, "movie", "movieId", movies)
}

// CheckTitle validates a title: non-blank and at most MaxTitleLength runes once trimmed.
func CheckTitle(raw string) violation.Violation {
	title := strings.TrimSpace(raw)
	if title == "" {
		return violation.Mandatory("The movie's title is required!")
	}
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return violation.OutOfInterval("The movie's title must have a length between 1 and %d letters, but is %d!", MaxTitleLength, n)
	}
	return violation.OKWith(title)
}

// CheckRating validates an optional rating code. An empty value passes with code 0.
func CheckRating(raw string) violation.Violation {
	if strings.TrimSpace(raw) == "" {
		return violation.OKWith(0)
	}
	code, ok := parseInteger(raw)
	if !ok {
		return violation.OutOfRange("The movie's rating must be an integer, but is %q!", raw)
	}
	if !Ratings.Contains(code) {
		return violation.OutOfInterval("The movie's rating (%d) is not in the rating enumeration [1,%d]", code, Ratings.Max())
	}
	return violation.OKWith(code)
}

// CheckGenre validates a single genre code.
func CheckGenre(raw string) violation.Violation {
	code, ok := parseInteger(raw)
	if !ok {
		return violation.OutOfRange("The movie's genre must be an integer, but is %q!", raw)
	}
	if !Genres.Contains(code) {
		return violation.OutOfInterval("The movie's genre (%d) is not in the genre enumeration [1,%d]", code, Genres.Max())
	}
	return violation.OKWith(code)
}

// CheckGenres validates a non-empty list of genre codes. The first failing
// element decides the result. On success the value is the de-duplicated code list
// in input order.
func CheckGenres(raws []string) violation.Violation {
	if len(raws) == 0 {
		return violation.Mandatory("The movie must have at least one genre")
	}
	codes := make([]int, 0, len(raws))
	for _, raw := range raws {
		v := CheckGenre(raw)
		if !v.Ok() {
			return v
		}
		if code := v.Value.(int); !slices.Contains(codes, code) {
			codes = append(codes, code)
		}
	}
	return violation.OKWith(codes)
}

// CheckReleaseDate validates an optional release date. An empty value passes
// with a nil value; otherwise the value is the parsed time.Time.
func CheckReleaseDate(raw string) violation.Violation {
	if strings.TrimSpace(raw) == "" {
		return violation.OK()
	}
	date, ok := ParseDate(raw)
	if !ok {
		return violation.OutOfRange("The movie's releaseDate must be a valid date string, but is %q!", raw)
	}
	if date.Before(MinReleaseDate) {
		return violation.OutOfInterval("The movie's releaseDate must be on or after %s, but is %s!",
			MinReleaseDate.Format(DateLayout), date.Format(DateLayout))
	}
	return violation.OKWith(date)
}

// CheckDirector validates a director reference.
func CheckDirector(raw string, people Container) violation.Violation {
	return CheckPersonIDAsIDRef(raw, people)
}

// CheckActor validates a single actor reference.
func CheckActor(raw string, people Container) violation.Violation {
	return CheckPersonIDAsIDRef(raw, people)
}

// CheckActors validates every actor reference, stopping at the first failure.
// On success the value is the sorted, de-duplicated id list.
func CheckActors(raws []string, people Container) violation.Violation {
	ids := make([]int, 0, len(raws))
	for _, raw := range raws {
		v := CheckActor(raw, people)
		if !v.Ok() {
			return v
		}
		ids = append(ids, v.Value.(int))
	}
	slices.Sort(ids)
	return violation.OKWith(slices.Compact(ids))
}

// NewMovie validates slots and creates a Movie. When movies is non-nil the id
// must not already be registered in it; director and actors must exist in people.
// The first violation found is returned.
func NewMovie(slots MovieSlots, movies, people Container) (*Movie, error) {
	idCheck := CheckMovieIDAsID(slots.MovieID, movies)
	if !idCheck.Ok() {
		return nil, idCheck
	}
	m := &Movie{id: idCheck.Value.(int)}
	if err := m.SetTitle(slots.Title); err != nil {
		return nil, err
	}
	if err := m.SetRating(slots.Rating); err != nil {
		return nil, err
	}
	if err := m.SetGenres(slots.Genres); err != nil {
		return nil, err
	}
	if err := m.SetReleaseDate(slots.ReleaseDate); err != nil {
		return nil, err
	}
	if err := m.SetDirector(slots.Director, people); err != nil {
		return nil, err
	}
	if err := m.SetActors(slots.Actors, people); err != nil {
		return nil, err
	}
	return m, nil
}

// DeserializeMovie rebuilds a Movie from its record, resolving director and
// actors against people. Invalid records are logged and yield nil.
func DeserializeMovie(rec MovieRecord, people Container) *Movie {
	m, err := NewMovie(rec.Slots(), nil, people)
	if err != nil {
		log.Warn(log.CatModel, "Invalid movie record skipped", "movieId", rec.MovieID, "error", err)
		return nil
	}
	return m
}

// ID returns the movie id.
func (m *Movie) ID() int { return m.id }

// Title returns the trimmed title.
func (m *Movie) Title() string { return m.title }

// Rating returns the rating code, or 0 when unrated.
func (m *Movie) Rating() int { return m.rating }

// Genres returns a copy of the genre codes in display order.
func (m *Movie) Genres() []int { return slices.Clone(m.genres) }

// ReleaseDate returns the release date and whether one is set.
func (m *Movie) ReleaseDate() (time.Time, bool) {
	if m.releaseDate == nil {
		return time.Time{}, false
	}
	return *m.releaseDate, true
}

// Director returns the director's person id.
func (m *Movie) Director() int { return m.director }

// Actors returns a copy of the actor person ids in ascending order.
func (m *Movie) Actors() []int { return slices.Clone(m.actors) }

// HasActor reports whether personID is among the actors.
func (m *Movie) HasActor(personID int) bool {
	_, found := slices.BinarySearch(m.actors, personID)
	return found
}

// SetMovieID assigns the id of a movie that has none yet. Once set, the id is frozen.
func (m *Movie) SetMovieID(raw string) error {
	v := CheckMovieID(raw)
	if !v.Ok() {
		return v
	}
	id := v.Value.(int)
	if m.id != 0 && m.id != id {
		return violation.Frozen("The movie's movieId (%d) cannot be changed to %d!", m.id, id)
	}
	m.id = id
	return nil
}

// SetTitle validates and assigns a new title.
func (m *Movie) SetTitle(raw string) error {
	v := CheckTitle(raw)
	if !v.Ok() {
		return v
	}
	m.title = v.Value.(string)
	return nil
}

// SetRating validates and assigns a rating code. An empty value clears the rating.
func (m *Movie) SetRating(raw string) error {
	v := CheckRating(raw)
	if !v.Ok() {
		return v
	}
	m.rating = v.Value.(int)
	return nil
}

// ClearRating removes the rating.
func (m *Movie) ClearRating() { m.rating = 0 }

// SetGenres validates and replaces the genre list.
func (m *Movie) SetGenres(raws []string) error {
	v := CheckGenres(raws)
	if !v.Ok() {
		return v
	}
	m.genres = v.Value.([]int)
	return nil
}

// SetReleaseDate validates and assigns a release date. An empty value clears it.
func (m *Movie) SetReleaseDate(raw string) error {
	v := CheckReleaseDate(raw)
	if !v.Ok() {
		return v
	}
	if v.Value == nil {
		m.releaseDate = nil
		return nil
	}
	date := v.Value.(time.Time)
	m.releaseDate = &date
	return nil
}

// ClearReleaseDate removes the release date.
func (m *Movie) ClearReleaseDate() { m.releaseDate = nil }

// SetDirector validates and assigns the director reference.
func (m *Movie) SetDirector(raw string, people Container) error {
	v := CheckDirector(raw, people)
	if !v.Ok() {
		return v
	}
	m.director = v.Value.(int)
	return nil
}

// SetActors validates every reference and replaces the actor set.
// Nothing is assigned unless all references are valid.
func (m *Movie) SetActors(raws []string, people Container) error {
	v := CheckActors(raws, people)
	if !v.Ok() {
		return v
	}
	m.actors = v.Value.([]int)
	return nil
}

// AddActor validates and adds one actor reference. Adding a present actor is a no-op.
func (m *Movie) AddActor(raw string, people Container) error {
	v := CheckActor(raw, people)
	if !v.Ok() {
		return v
	}
	id := v.Value.(int)
	if i, found := slices.BinarySearch(m.actors, id); !found {
		m.actors = slices.Insert(m.actors, i, id)
	}
	return nil
}

// AddActors adds each reference in turn and stops at the first violation.
func (m *Movie) AddActors(raws []string, people Container) error {
	for _, raw := range raws {
		if err := m.AddActor(raw, people); err != nil {
			return err
		}
	}
	return nil
}

// RemoveActor removes one actor reference. Only the id format is checked, so
// that a reference to a person who no longer exists can still be dropped.
func (m *Movie) RemoveActor(raw string) error {
	v := CheckPersonID(raw)
	if !v.Ok() {
		return v
	}
	m.removeActorID(v.Value.(int))
	return nil
}

// RemoveActors removes each reference in turn and stops at the first violation.
func (m *Movie) RemoveActors(raws []string) error {
	for _, raw := range raws {
		if err := m.RemoveActor(raw); err != nil {
			return err
		}
	}
	return nil
}

func (m *Movie) removeActorID(id int) {
	if i, found := slices.BinarySearch(m.actors, id); found {
		m.actors = slices.Delete(m.actors, i, i+1)
	}
}

// DropActor removes personID from the actors without validation. It reports
// whether the person was an actor. Used when the person itself is destroyed.
func (m *Movie) DropActor(personID int) bool {
	if !m.HasActor(personID) {
		return false
	}
	m.removeActorID(personID)
	return true
}

// Restore overwrites m with a deep copy of snapshot, keeping m's identity.
func (m *Movie) Restore(snapshot *Movie) {
	*m = *snapshot.Clone()
}

// Clone returns a deep copy that shares no slices or pointers with m.
func (m *Movie) Clone() *Movie {
	c := *m
	c.genres = slices.Clone(m.genres)
	c.actors = slices.Clone(m.actors)
	if m.releaseDate != nil {
		d := *m.releaseDate
		c.releaseDate = &d
	}
	return &c
}

// ToRecord converts the movie to its persisted form.
func (m *Movie) ToRecord() MovieRecord {
	rec := MovieRecord{
		MovieID:  m.id,
		Title:    m.title,
		Rating:   m.rating,
		Genres:   slices.Clone(m.genres),
		Director: m.director,
		Actors:   slices.Clone(m.actors),
	}
	if rec.Genres == nil {
		rec.Genres = []int{}
	}
	if rec.Actors == nil {
		rec.Actors = []int{}
	}
	if m.releaseDate != nil {
		rec.ReleaseDate = FormatRecordDate(*m.releaseDate)
	}
	return rec
}

func (m *Movie) String() string {
	date := "undefined"
	if m.releaseDate != nil {
		date = m.releaseDate.Format(DateLayout)
	}
	return fmt.Sprintf("Movie{movieId: %d, title: %s, releaseDate: %s, director: %d, actors: %v}",
		m.id, m.title, date, m.director, m.actors)
}
