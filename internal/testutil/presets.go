package testutil

import "github.com/zjrosen/marquee/internal/catalog/domain"

// WithStandardTestData adds the eight persons and three movies of data:seed.
func (b *Builder) WithStandardTestData() *Builder {
	return b.
		WithPerson(1, "Stephen Frears").
		WithPerson(2, "George Lucas").
		WithPerson(3, "Quentin Terrentino").
		WithPerson(4, "Uma Thurman").
		WithPerson(5, "John Travolta").
		WithPerson(6, "Ewan McGregor").
		WithPerson(7, "Natalie Portman").
		WithPerson(8, "Keanu Reeves").
		WithMovie(1,
			Title("Pulp Fiction"), Rating(domain.RatingR),
			Genres(domain.GenreCrime, domain.GenreDrama),
			ReleaseDate("1994-05-12T00:00:00.000Z"), Director(3), Actors(4, 5)).
		WithMovie(2,
			Title("Star Wars"), Rating(domain.RatingPG),
			Genres(domain.GenreAction, domain.GenreAdventure, domain.GenreFantasy, domain.GenreSciFi),
			ReleaseDate("1977-05-25T00:00:00.000Z"), Director(2), Actors(6, 7)).
		WithMovie(3,
			Title("Dangerous Liaisons"), Rating(domain.RatingR),
			Genres(domain.GenreRomance, domain.GenreDrama),
			ReleaseDate("1988-12-16T00:00:00.000Z"), Director(1), Actors(4, 8))
}

// WithInvalidTestData adds movie records the loader must skip, next to one
// valid movie (id 10) and its director.
//
// Rejected records:
//
//	11  empty title
//	12  director 99 does not exist
//	13  actor 98 does not exist
//	14  released before 1895-12-28
//	15  genre 42 is not a genre
//	"x" not a movie record
func (b *Builder) WithInvalidTestData() *Builder {
	return b.
		WithPerson(1, "Stephen Frears").
		WithMovie(10, Title("The Queen"), ReleaseDate("2006-09-15")).
		WithMovie(11, Title("")).
		WithMovie(12, Director(99)).
		WithMovie(13, Actors(1, 98)).
		WithMovie(14, ReleaseDate("1895-12-27")).
		WithMovie(15, Genres(42)).
		WithRawMovie("x", `"not a movie"`)
}
