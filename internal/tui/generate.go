package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/easiarr/easiarr/internal/artifacts"
)

type generateDoneMsg struct {
	arts []artifacts.Artifact
	err  error
}

// GenerateModel runs the artifact generator and shows what it wrote. Diffs
// of changed files, when the generator produced any, land in a scrollable
// viewport under the summary.
type GenerateModel struct {
	spinner  spinner.Model
	viewport viewport.Model
	root     string
	run      func() ([]artifacts.Artifact, error)

	done     bool
	err      error
	arts     []artifacts.Artifact
	hasDiffs bool
}

// NewGenerate builds the screen. root is the stack directory paths are
// shown relative to; run does the actual work off the UI goroutine.
func NewGenerate(root string, run func() ([]artifacts.Artifact, error)) GenerateModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	vp := viewport.New(78, 14)

	return GenerateModel{spinner: sp, viewport: vp, root: root, run: run}
}

func (m GenerateModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.generate)
}

func (m GenerateModel) generate() tea.Msg {
	arts, err := m.run()
	return generateDoneMsg{arts: arts, err: err}
}

func (m GenerateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit
		case "enter":
			if m.done {
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width - 2
		if msg.Height > 14 {
			m.viewport.Height = msg.Height - 14
		}

	case generateDoneMsg:
		m.done = true
		m.err = msg.err
		m.arts = msg.arts
		m.viewport.SetContent(m.diffContent())
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// diffContent concatenates the per-file diffs for the viewport.
func (m *GenerateModel) diffContent() string {
	var b strings.Builder
	for _, a := range m.arts {
		if a.Diff == "" {
			continue
		}
		m.hasDiffs = true
		b.WriteString(focusedStyle.Render(m.rel(a.Path)) + "\n")
		b.WriteString(a.Diff)
		if !strings.HasSuffix(a.Diff, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m GenerateModel) rel(path string) string {
	if r, err := filepath.Rel(m.root, path); err == nil && !strings.HasPrefix(r, "..") {
		return r
	}
	return path
}

func (m GenerateModel) View() string {
	if !m.done {
		return fmt.Sprintf("\n %s Generating stack files...\n\n", m.spinner.View())
	}

	if m.err != nil {
		return "\n" + errorStyle.Render(fmt.Sprintf(" %s Generate failed: %v", glyphFailed, m.err)) + "\n\n" +
			helpStyle.Render("enter: back") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render("Stack files") + " " + subtleStyle.Render(m.root) + "\n\n")

	var created, updated int
	for _, a := range m.arts {
		var mark string
		switch a.Action {
		case artifacts.ActionCreated:
			mark = successStyle.Render("+")
			created++
		case artifacts.ActionUpdated:
			mark = warnStyle.Render("~")
			updated++
		default:
			mark = subtleStyle.Render("=")
		}
		fmt.Fprintf(&b, " %s %s\n", mark, m.rel(a.Path))
	}

	fmt.Fprintf(&b, "\n %s\n",
		subtleStyle.Render(fmt.Sprintf("%d created, %d updated, %d unchanged", created, updated, len(m.arts)-created-updated)))

	if m.hasDiffs {
		b.WriteString("\n" + subtleStyle.Render(" Changes") + "\n")
		b.WriteString(m.viewport.View() + "\n")
		b.WriteString(helpStyle.Render("↑/↓: scroll • enter: back") + "\n")
		return b.String()
	}

	b.WriteString(helpStyle.Render("enter: back") + "\n")
	return b.String()
}

// Err returns the generator failure, if any.
func (m GenerateModel) Err() error {
	return m.err
}

// Artifacts returns what the generator reported. Only meaningful when the
// run finished without error.
func (m GenerateModel) Artifacts() []artifacts.Artifact {
	return m.arts
}
