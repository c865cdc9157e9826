package cmd

import (
	"context"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	questionStyle = lipgloss.NewStyle().Bold(true)
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// hintStyle dims the [y/N] hint against the terminal background.
func hintStyle(dark bool) lipgloss.Style {
	if dark {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
}

// confirmModel is a single yes/no question. Anything but "y" answers no.
type confirmModel struct {
	question string
	dark     bool
	answer   bool
	done     bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch strings.ToLower(key.String()) {
	case "y":
		m.answer = true
	case "n", "q", "enter", "esc", "ctrl+c":
		m.answer = false
	default:
		return m, nil
	}
	m.done = true
	return m, tea.Quit
}

func (m confirmModel) View() string {
	line := questionStyle.Render(m.question) + " " + hintStyle(m.dark).Render("[y/N]")
	if m.done {
		answer := "no"
		if m.answer {
			answer = "yes"
		}
		line += " " + answerStyle.Render(answer)
	}
	return line + "\n"
}

// confirm asks question on out and reads a single key from in.
func confirm(ctx context.Context, in io.Reader, out io.Writer, question string) (bool, error) {
	// Query the background before the program owns stdin, so the terminal's
	// OSC 11 reply is not read as a key press.
	dark := lipgloss.HasDarkBackground()

	p := tea.NewProgram(confirmModel{question: question, dark: dark},
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	return final.(confirmModel).answer, nil
}
