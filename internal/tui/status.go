package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/easiarr/easiarr/internal/health"
)

type statusDoneMsg struct {
	reports []health.Report
}

// StatusModel probes the running stack and lists which apps answer.
type StatusModel struct {
	spinner spinner.Model
	run     func() []health.Report

	done    bool
	reports []health.Report
}

// NewStatus builds the screen; run performs the probes off the UI goroutine.
func NewStatus(run func() []health.Report) StatusModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle
	return StatusModel{spinner: sp, run: run}
}

func (m StatusModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.check)
}

func (m StatusModel) check() tea.Msg {
	return statusDoneMsg{reports: m.run()}
}

func (m StatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit
		case "enter":
			if m.done {
				return m, tea.Quit
			}
		case "r":
			if m.done {
				m.done = false
				m.reports = nil
				return m, tea.Batch(m.spinner.Tick, m.check)
			}
		}

	case statusDoneMsg:
		m.done = true
		m.reports = msg.reports
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m StatusModel) View() string {
	if !m.done {
		return fmt.Sprintf("\n %s Probing applications...\n\n", m.spinner.View())
	}

	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render("Stack status") + "\n\n")

	if len(m.reports) == 0 {
		b.WriteString(subtleStyle.Render(" nothing to probe: no enabled app has a web UI") + "\n\n")
		b.WriteString(helpStyle.Render("enter: back") + "\n")
		return b.String()
	}

	up := 0
	for _, r := range m.reports {
		if r.Up() {
			up++
			fmt.Fprintf(&b, " %s %-14s %s\n", successStyle.Render(glyphDone), r.App.Name, subtleStyle.Render(r.URL))
			continue
		}
		fmt.Fprintf(&b, " %s %-14s %s\n", errorStyle.Render(glyphFailed), r.App.Name, subtleStyle.Render(r.URL))
		fmt.Fprintf(&b, "   %s\n", errorStyle.Render(fmt.Sprintf("%s Error: %v", glyphFailed, r.Err)))
	}

	fmt.Fprintf(&b, "\n %s\n", subtleStyle.Render(fmt.Sprintf("%d of %d answering", up, len(m.reports))))
	b.WriteString(helpStyle.Render("r: re-probe • enter: back") + "\n")
	return b.String()
}

// Reports returns the probe outcomes from the latest pass.
func (m StatusModel) Reports() []health.Report {
	return m.reports
}
