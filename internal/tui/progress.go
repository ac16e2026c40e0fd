// Package tui renders run progress for long population builds.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ProgressMsg reports per-phase completion counts.
type ProgressMsg struct {
	Phase string
	Done  int
	Total int
}

// DoneMsg ends the view; Err is non-nil when the run failed.
type DoneMsg struct {
	Err error
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

const barWidth = 40

type Model struct {
	ch       <-chan tea.Msg
	phase    string
	done     int
	total    int
	err      error
	finished bool
}

func NewModel(ch <-chan tea.Msg) Model {
	return Model{ch: ch, phase: "starting"}
}

func (m Model) Init() tea.Cmd {
	return m.listen()
}

func (m Model) listen() tea.Cmd {
	return func() tea.Msg { return <-m.ch }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProgressMsg:
		m.phase = msg.Phase
		m.done = msg.Done
		m.total = msg.Total
		return m, m.listen()
	case DoneMsg:
		m.err = msg.Err
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("galpop population build"))
	b.WriteByte('\n')

	if m.total > 0 {
		filled := m.done * barWidth / m.total
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
		b.WriteString(fmt.Sprintf("%s %s %d/%d\n",
			dimStyle.Render(m.phase), barStyle.Render(bar), m.done, m.total))
	} else {
		b.WriteString(dimStyle.Render(m.phase) + "\n")
	}

	if m.finished {
		if m.err != nil {
			b.WriteString(errStyle.Render("failed: "+m.err.Error()) + "\n")
		} else {
			b.WriteString("done\n")
		}
	}
	return b.String()
}
