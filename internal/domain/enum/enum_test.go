package enum

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNew_DerivesNames(t *testing.T) {
	e := New("Action", "Film-Noir", "Sci-Fi")

	require.Equal(t, 3, e.Max())
	require.Equal(t, []string{"Action", "Film-Noir", "Sci-Fi"}, e.Labels())
	require.Equal(t, []string{"ACTION", "FILM_NOIR", "SCI_FI"}, e.Names())
}

func TestNewNamed_KeepsExplicitNames(t *testing.T) {
	e := NewNamed(
		Entry{Name: "G", Label: "General Audiences"},
		Entry{Name: "PG13", Label: "Not Under 13"},
	)

	require.Equal(t, 2, e.Max())
	require.Equal(t, "General Audiences", e.Label(1))
	require.Equal(t, "PG13", e.Name(2))

	code, ok := e.Code("pg13")
	require.True(t, ok, "lookup should be case-insensitive")
	require.Equal(t, 2, code)
}

func TestNewNamed_PanicsOnDuplicate(t *testing.T) {
	require.Panics(t, func() {
		NewNamed(Entry{Name: "A", Label: "a"}, Entry{Name: "A", Label: "b"})
	})
}

func TestLabel_OutOfBounds(t *testing.T) {
	e := New("One", "Two")

	tests := []struct {
		name string
		code int
		want string
	}{
		{"zero", 0, ""},
		{"negative", -1, ""},
		{"first", 1, "One"},
		{"last", 2, "Two"},
		{"past end", 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, e.Label(tt.code))
		})
	}
}

func TestCode_Unknown(t *testing.T) {
	e := New("One")
	_, ok := e.Code("TWO")
	require.False(t, ok)
}

func TestFormat_SkipsUnknownCodes(t *testing.T) {
	e := New("Crime", "Drama", "War")
	require.Equal(t, "Crime, War", e.Format([]int{1, 9, 3}))
	require.Equal(t, "", e.Format(nil))
}

func TestEntries_ReturnsCopy(t *testing.T) {
	e := New("One")
	entries := e.Entries()
	entries[0].Label = "changed"
	require.Equal(t, "One", e.Label(1))
}

func TestContains_MatchesLabelBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		labels := rapid.SliceOfNDistinct(rapid.StringMatching(`[A-Z][a-z]{2,8}`), 1, 20, rapid.ID[string]).Draw(t, "labels")
		e := New(labels...)
		code := rapid.IntRange(-5, 30).Draw(t, "code")

		want := code >= 1 && code <= len(labels)
		if e.Contains(code) != want {
			t.Fatalf("Contains(%d) = %v with %d labels", code, !want, len(labels))
		}
		if want && e.Label(code) != labels[code-1] {
			t.Fatalf("Label(%d) = %q, want %q", code, e.Label(code), labels[code-1])
		}
		if want {
			got, ok := e.Code(e.Name(code))
			if !ok || got != code {
				t.Fatalf("Code(Name(%d)) = %d, %v", code, got, ok)
			}
		}
	})
}
