package testutil

import "strconv"

// movieData holds all data for a movie record to be written.
type movieData struct {
	id          int
	title       string
	rating      int
	genres      []int
	releaseDate string
	director    int
	actors      []int
}

// defaultMovie returns a movieData that passes validation once person 1 exists.
func defaultMovie(id int) movieData {
	return movieData{
		id:       id,
		title:    "Movie " + strconv.Itoa(id),
		genres:   []int{7}, // Drama
		director: 1,
		actors:   []int{},
	}
}

// MovieOption configures a movie during builder setup.
type MovieOption func(*movieData)

// Title sets the movie title.
func Title(title string) MovieOption {
	return func(m *movieData) { m.title = title }
}

// Rating sets the rating code.
func Rating(code int) MovieOption {
	return func(m *movieData) { m.rating = code }
}

// Genres sets the genre codes.
func Genres(codes ...int) MovieOption {
	return func(m *movieData) { m.genres = codes }
}

// ReleaseDate sets the stored release date string, in any form the loader reads.
func ReleaseDate(date string) MovieOption {
	return func(m *movieData) { m.releaseDate = date }
}

// Director sets the director person id.
func Director(personID int) MovieOption {
	return func(m *movieData) { m.director = personID }
}

// Actors sets the actor person ids.
func Actors(personIDs ...int) MovieOption {
	return func(m *movieData) { m.actors = personIDs }
}
