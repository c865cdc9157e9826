package domain

import "github.com/zjrosen/marquee/internal/domain/enum"

// Genre codes, in the order of the Genres enumeration.
const (
	GenreAction = iota + 1
	GenreAdventure
	GenreAnimation
	GenreComedy
	GenreCrime
	GenreDocumentary
	GenreDrama
	GenreFantasy
	GenreFamily
	GenreFilmNoir
	GenreHorror
	GenreMusical
	GenreRomance
	GenreSciFi
	GenreWar
)

// Rating codes, in the order of the Ratings enumeration.
const (
	RatingG = iota + 1
	RatingPG
	RatingPG13
	RatingR
	RatingNC17
)

// Genres is the closed set of movie genres.
var Genres = enum.New(
	"Action",
	"Adventure",
	"Animation",
	"Comedy",
	"Crime",
	"Documentary",
	"Drama",
	"Fantasy",
	"Family",
	"Film-Noir",
	"Horror",
	"Musical",
	"Romance",
	"Sci-Fi",
	"War",
)

// Ratings is the closed set of audience ratings.
var Ratings = enum.NewNamed(
	enum.Entry{Name: "G", Label: "General Audiences"},
	enum.Entry{Name: "PG", Label: "Parental Guidance"},
	enum.Entry{Name: "PG13", Label: "Not Under 13"},
	enum.Entry{Name: "R", Label: "Restricted"},
	enum.Entry{Name: "NC17", Label: "Not Under 17"},
)
