package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/easiarr/easiarr/internal/registry"
)

// selectRow is one line of the app picker: a category header or an app.
type selectRow struct {
	header string
	app    registry.App
}

// SelectModel is the application picker, a checkbox list grouped by
// category. It edits the raw selection; dependencies are resolved later so
// unticking an app never silently unticks another.
type SelectModel struct {
	rows     []selectRow
	cursor   int
	selected map[string]bool
	help     help.Model
	accepted bool
}

// NewSelect builds the picker with the given app IDs ticked.
func NewSelect(selected []string) SelectModel {
	var rows []selectRow
	for _, cat := range registry.Categories() {
		apps := registry.ByCategory(cat)
		if len(apps) == 0 {
			continue
		}
		rows = append(rows, selectRow{header: cat.Title()})
		for _, app := range apps {
			rows = append(rows, selectRow{app: app})
		}
	}

	sel := make(map[string]bool, len(selected))
	for _, id := range selected {
		sel[id] = true
	}

	m := SelectModel{rows: rows, selected: sel, help: help.New()}
	m.move(1)
	return m
}

// move advances the cursor by delta, skipping category headers. The first
// call lands on the first app row.
func (m *SelectModel) move(delta int) {
	n := len(m.rows)
	if n == 0 {
		return
	}
	i := m.cursor
	for tries := 0; tries < n; tries++ {
		i = (i + delta + n) % n
		if m.rows[i].header == "" {
			m.cursor = i
			return
		}
	}
}

func (m SelectModel) Init() tea.Cmd {
	return nil
}

func (m SelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, Keys.ForceQuit), key.Matches(msg, Keys.Esc):
			m.accepted = false
			return m, tea.Quit
		case key.Matches(msg, Keys.Up):
			m.move(-1)
		case key.Matches(msg, Keys.Down):
			m.move(1)
		case key.Matches(msg, Keys.Toggle):
			app := m.rows[m.cursor].app
			m.selected[app.ID] = !m.selected[app.ID]
		case key.Matches(msg, Keys.Defaults):
			m.selected = map[string]bool{}
			for _, id := range registry.Defaults() {
				m.selected[id] = true
			}
		case key.Matches(msg, Keys.Enter):
			m.accepted = true
			return m, tea.Quit
		case key.Matches(msg, Keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m SelectModel) View() string {
	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render("Select applications") + "\n")

	for i, row := range m.rows {
		if row.header != "" {
			b.WriteString("\n" + categoryStyle.Render(row.header) + "\n")
			continue
		}

		app := row.app
		box := checkUnselected
		if m.selected[app.ID] {
			box = checkSelected
		}

		name := fmt.Sprintf("%s%s %-14s", box, vs15, app.Name)
		if i == m.cursor {
			b.WriteString("  " + focusedStyle.Render(name) + " " + app.Description + "\n")
			continue
		}
		b.WriteString("  " + name + " " + subtleStyle.Render(app.Description) + "\n")
	}

	sel := m.Selected()
	summary := fmt.Sprintf("%d selected", len(sel))
	if deps := len(registry.WithDependencies(sel)) - len(sel); deps > 0 {
		summary += fmt.Sprintf(", %d pulled in by dependencies", deps)
	}
	b.WriteString("\n" + subtleStyle.Render(summary) + "\n")
	b.WriteString(m.help.View(Keys) + "\n")
	return b.String()
}

// Selected returns the ticked app IDs, sorted.
func (m SelectModel) Selected() []string {
	out := make([]string, 0, len(m.selected))
	for id, on := range m.selected {
		if on {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Accepted reports whether the operator confirmed rather than backed out.
func (m SelectModel) Accepted() bool {
	return m.accepted
}
