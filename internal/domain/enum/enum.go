// Package enum provides Enumeration, a closed ordered set of labeled integer
// codes used for properties like genre and rating.
//
// Codes are 1-based: the first label has code 1 and the last has code Max().
package enum

import (
	"fmt"
	"strings"
	"unicode"
)

// Entry pairs a symbolic name with its display label.
type Entry struct {
	Name  string
	Label string
}

// Enumeration is an immutable list of entries addressed by 1-based code.
type Enumeration struct {
	entries []Entry
	byName  map[string]int
}

// New builds an enumeration from plain labels. Names are derived from the
// labels by upper-casing them and replacing every non-alphanumeric rune with
// an underscore, so "Sci-Fi" becomes SCI_FI.
func New(labels ...string) *Enumeration {
	entries := make([]Entry, len(labels))
	for i, label := range labels {
		entries[i] = Entry{Name: nameOf(label), Label: label}
	}
	return NewNamed(entries...)
}

// NewNamed builds an enumeration from explicit name/label pairs.
// It panics on a duplicate name since enumerations are package-level constants.
func NewNamed(entries ...Entry) *Enumeration {
	e := &Enumeration{
		entries: make([]Entry, len(entries)),
		byName:  make(map[string]int, len(entries)),
	}
	copy(e.entries, entries)
	for i, entry := range entries {
		if _, dup := e.byName[entry.Name]; dup {
			panic(fmt.Sprintf("enum: duplicate name %q", entry.Name))
		}
		e.byName[entry.Name] = i + 1
	}
	return e
}

func nameOf(label string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(label) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Max returns the number of entries, which is also the highest valid code.
func (e *Enumeration) Max() int {
	return len(e.entries)
}

// Contains reports whether code addresses an entry.
func (e *Enumeration) Contains(code int) bool {
	return code >= 1 && code <= len(e.entries)
}

// Labels returns the labels in code order.
func (e *Enumeration) Labels() []string {
	out := make([]string, len(e.entries))
	for i, entry := range e.entries {
		out[i] = entry.Label
	}
	return out
}

// Names returns the symbolic names in code order.
func (e *Enumeration) Names() []string {
	out := make([]string, len(e.entries))
	for i, entry := range e.entries {
		out[i] = entry.Name
	}
	return out
}

// Entries returns a copy of all entries in code order.
func (e *Enumeration) Entries() []Entry {
	out := make([]Entry, len(e.entries))
	copy(out, e.entries)
	return out
}

// Label returns the label for code, or "" if code is out of bounds.
func (e *Enumeration) Label(code int) string {
	if !e.Contains(code) {
		return ""
	}
	return e.entries[code-1].Label
}

// Name returns the symbolic name for code, or "" if code is out of bounds.
func (e *Enumeration) Name(code int) string {
	if !e.Contains(code) {
		return ""
	}
	return e.entries[code-1].Name
}

// Code returns the code for a symbolic name. Lookup is case-insensitive.
func (e *Enumeration) Code(name string) (int, bool) {
	code, ok := e.byName[strings.ToUpper(strings.TrimSpace(name))]
	return code, ok
}

// Format renders codes as a comma-separated list of labels.
// Codes outside the enumeration are skipped.
func (e *Enumeration) Format(codes []int) string {
	labels := make([]string, 0, len(codes))
	for _, code := range codes {
		if l := e.Label(code); l != "" {
			labels = append(labels, l)
		}
	}
	return strings.Join(labels, ", ")
}
