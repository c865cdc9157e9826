package presentation

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"
)

var (
	deletedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

// LineDiff compares two texts line by line. Unchanged lines are prefixed
// with two spaces, removed lines with "- " and added lines with "+ ".
// Both inputs are expected to end with a newline.
func LineDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)

	var out strings.Builder
	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				out.WriteString("  " + line + "\n")
			case diffmatchpatch.DiffDelete:
				out.WriteString(deletedStyle.Render("- "+line) + "\n")
			case diffmatchpatch.DiffInsert:
				out.WriteString(addedStyle.Render("+ "+line) + "\n")
			}
		}
	}
	return out.String()
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
