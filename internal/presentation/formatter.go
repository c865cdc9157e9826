package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Format selects how listings are written.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat validates a --format value. An empty value selects the table.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatTable, "":
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want %s or %s)", s, FormatTable, FormatJSON)
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	alertStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	format Format
}

// NewFormatter creates a new formatter writing tables
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{writer: writer, format: FormatTable}
}

// WithFormat returns a copy of f that writes in format.
func (f *Formatter) WithFormat(format Format) *Formatter {
	c := *f
	c.format = format
	return &c
}

// Format returns the output format in use.
func (f *Formatter) Format() Format {
	return f.format
}

// JSON writes v as indented JSON
func (f *Formatter) JSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (f *Formatter) table(headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(f.writer, t.String())
	return err
}

// FormatMovies writes a movie listing
func (f *Formatter) FormatMovies(movies []MovieDTO) error {
	if f.format == FormatJSON {
		return f.JSON(movies)
	}
	rows := make([][]string, len(movies))
	for i, m := range movies {
		actors := make([]string, len(m.Actors))
		for j, a := range m.Actors {
			actors[j] = a.Name
		}
		rows[i] = []string{
			strconv.Itoa(m.MovieID),
			m.Title,
			m.Rating,
			strings.Join(m.Genres, ", "),
			m.ReleaseDate,
			directorName(m),
			strings.Join(actors, ", "),
		}
	}
	return f.table([]string{"ID", "Title", "Rating", "Genres", "Released", "Director", "Actors"}, rows)
}

// FormatPersons writes a person listing
func (f *Formatter) FormatPersons(people []PersonDTO) error {
	if f.format == FormatJSON {
		return f.JSON(people)
	}
	rows := make([][]string, len(people))
	for i, p := range people {
		rows[i] = []string{strconv.Itoa(p.PersonID), p.Name}
	}
	return f.table([]string{"ID", "Name"}, rows)
}

// FormatEnums writes one or more enumerations
func (f *Formatter) FormatEnums(enums []EnumDTO) error {
	if f.format == FormatJSON {
		return f.JSON(enums)
	}
	var rows [][]string
	for _, e := range enums {
		for _, entry := range e.Entries {
			rows = append(rows, []string{e.Name, strconv.Itoa(entry.Code), entry.Name, entry.Label})
		}
	}
	return f.table([]string{"Enumeration", "Code", "Name", "Label"}, rows)
}

// FormatStatus writes a store summary followed by its slots, if known
func (f *Formatter) FormatStatus(st StatusDTO) error {
	if f.format == FormatJSON {
		return f.JSON(st)
	}
	backend := st.Backend
	if st.Cached {
		backend += " (cached)"
	}
	rows := [][]string{
		{"backend", backend},
		{"persons", fmt.Sprintf("%d (next id %d)", st.Persons, st.NextIDs[0])},
		{"movies", fmt.Sprintf("%d (next id %d)", st.Movies, st.NextIDs[1])},
	}
	if st.Path != "" {
		rows = append(rows[:1], append([][]string{{"path", st.Path}}, rows[1:]...)...)
	}
	if err := f.table([]string{"Store", ""}, rows); err != nil {
		return err
	}
	if len(st.Slots) == 0 {
		return nil
	}
	slots := make([][]string, len(st.Slots))
	for i, s := range st.Slots {
		slots[i] = []string{s.Key, strconv.Itoa(s.Bytes), s.Revision, s.UpdatedAt.Local().Format(time.DateTime)}
	}
	return f.table([]string{"Slot", "Bytes", "Revision", "Updated"}, slots)
}

// FormatMovie writes a single movie as a field listing
func (f *Formatter) FormatMovie(m MovieDTO) error {
	if f.format == FormatJSON {
		return f.JSON(m)
	}
	_, err := io.WriteString(f.writer, MovieText(m))
	return err
}

// FormatChange writes a line diff between two renderings of a movie
func (f *Formatter) FormatChange(before, after MovieDTO) error {
	_, err := io.WriteString(f.writer, LineDiff(MovieText(before), MovieText(after)))
	return err
}

// Alert writes a user-facing validation message
func (f *Formatter) Alert(err error) {
	fmt.Fprintln(f.writer, alertStyle.Render(err.Error()))
}

// MovieText renders a movie as one "field: value" line per property.
func MovieText(m MovieDTO) string {
	actors := make([]string, len(m.Actors))
	for i, a := range m.Actors {
		actors[i] = fmt.Sprintf("%s (%d)", a.Name, a.PersonID)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "movieId: %d\n", m.MovieID)
	fmt.Fprintf(&b, "title: %s\n", m.Title)
	fmt.Fprintf(&b, "rating: %s\n", m.Rating)
	fmt.Fprintf(&b, "genres: %s\n", strings.Join(m.Genres, ", "))
	fmt.Fprintf(&b, "releaseDate: %s\n", m.ReleaseDate)
	fmt.Fprintf(&b, "director: %s (%d)\n", directorName(m), m.DirectorID)
	fmt.Fprintf(&b, "actors: %s\n", strings.Join(actors, ", "))
	return b.String()
}

func directorName(m MovieDTO) string {
	if m.Director == "" {
		return "?"
	}
	return m.Director
}
