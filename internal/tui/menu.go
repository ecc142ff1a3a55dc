package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/easiarr/easiarr/internal/config"
	"github.com/easiarr/easiarr/internal/paths"
	"github.com/easiarr/easiarr/internal/registry"
)

// menuAction identifies what the operator picked from the main menu.
type menuAction int

const (
	actionNone menuAction = iota
	actionSelectApps
	actionSettings
	actionGenerate
	actionStart
	actionProvision
	actionStatus
	actionStop
	actionQuit
)

type menuItem struct {
	title       string
	description string
	action      menuAction
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.description }
func (i menuItem) FilterValue() string { return i.title }

type menuDelegate struct{}

func (d menuDelegate) Height() int                             { return 1 }
func (d menuDelegate) Spacing() int                            { return 0 }
func (d menuDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d menuDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(menuItem)
	if !ok {
		return
	}

	title := fmt.Sprintf("%-24s", i.title)
	if index == m.Index() {
		fmt.Fprint(w, selectedItemStyle.Render("> "+title+" "+i.description))
		return
	}
	fmt.Fprint(w, itemStyle.Render(title)+subtleStyle.Render(i.description))
}

// MenuModel is the main menu screen.
type MenuModel struct {
	list   list.Model
	choice menuAction
}

// NewMenu builds the main menu. Descriptions carry live context such as the
// current selection size and the stack directory.
func NewMenu(s config.Settings) MenuModel {
	selected := len(registry.WithDependencies(s.Apps))
	items := []list.Item{
		menuItem{"Select applications", fmt.Sprintf("%d selected", selected), actionSelectApps},
		menuItem{"Stack settings", paths.Expand(s.RootDir), actionSettings},
		menuItem{"Generate files", "compose file, .env and companions", actionGenerate},
		menuItem{"Start stack", "docker compose up -d", actionStart},
		menuItem{"Configure applications", "first-run setup over each app's API", actionProvision},
		menuItem{"Stack status", "probe the running apps", actionStatus},
		menuItem{"Stop stack", "docker compose down", actionStop},
		menuItem{"Quit", "", actionQuit},
	}

	l := list.New(items, menuDelegate{}, 76, len(items)+6)
	l.Title = "easiarr"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle

	return MenuModel{list: l}
}

func (m MenuModel) Init() tea.Cmd {
	return nil
}

func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.choice = actionQuit
			return m, tea.Quit
		case "enter":
			if i, ok := m.list.SelectedItem().(menuItem); ok {
				m.choice = i.action
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m MenuModel) View() string {
	return "\n" + m.list.View()
}

// Choice returns the action the operator picked, actionQuit when they left.
func (m MenuModel) Choice() menuAction {
	return m.choice
}
