package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// WelcomeModel is the first-run greeting.
type WelcomeModel struct {
	proceed bool
}

func NewWelcome() WelcomeModel {
	return WelcomeModel{}
}

func (m WelcomeModel) Init() tea.Cmd {
	return nil
}

func (m WelcomeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter", "y":
			m.proceed = true
			return m, tea.Quit
		case "ctrl+c", "esc", "q", "n":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m WelcomeModel) View() string {
	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render("Welcome to easiarr") + "\n\n")
	b.WriteString(" Sets up a self-hosted media stack: pick your applications, generate a\n")
	b.WriteString(" Docker Compose project, start it, and let easiarr walk each app's API\n")
	b.WriteString(" so they already know about each other when you first log in.\n\n")
	b.WriteString(subtleStyle.Render(" Docker with the compose plugin must be installed.") + "\n\n")
	b.WriteString(helpStyle.Render("enter: begin • q: quit") + "\n")
	return b.String()
}

// Proceed reports whether the operator wants the guided setup.
func (m WelcomeModel) Proceed() bool {
	return m.proceed
}
