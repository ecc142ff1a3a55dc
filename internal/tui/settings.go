package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/easiarr/easiarr/internal/config"
)

// Field indexes of the settings form.
const (
	fieldRoot = iota
	fieldMedia
	fieldDownloads
	fieldTimezone
	fieldPUID
	fieldPGID
	fieldLAN
	fieldDomain
	fieldEmail
	fieldProvider
	fieldWireguard

	fieldCount
)

// settingsSections are headers rendered before the given field index.
var settingsSections = map[int]string{
	fieldRoot:     "Directories",
	fieldTimezone: "Host",
	fieldLAN:      "Network",
	fieldProvider: "VPN",
}

var (
	focusedButton = focusedStyle.Render("[ Save ]")
	blurredButton = fmt.Sprintf("[ %s ]", blurredStyle.Render("Save"))
)

// SettingsModel is the stack settings form. Traefik and the VPN have no
// dedicated toggles: a non-empty Traefik domain enables routing and a
// non-empty WireGuard key enables the VPN.
type SettingsModel struct {
	base       config.Settings
	focusIndex int
	inputs     []textinput.Model
	err        error
	saved      bool
	result     config.Settings
}

// NewSettings builds the form prefilled from the current settings.
func NewSettings(s config.Settings) *SettingsModel {
	m := &SettingsModel{
		base:   s,
		inputs: make([]textinput.Model, fieldCount),
	}

	var t textinput.Model
	for i := range m.inputs {
		t = textinput.New()
		t.Cursor.Style = cursorStyle
		t.CharLimit = 256

		switch i {
		case fieldRoot:
			t.Prompt = settingsPrompt("Stack directory")
			t.Placeholder = "~/easiarr"
			t.SetValue(s.RootDir)
			t.Focus()
			t.PromptStyle = focusedStyle
			t.TextStyle = focusedStyle
		case fieldMedia:
			t.Prompt = settingsPrompt("Media directory")
			t.Placeholder = "~/easiarr/media"
			t.SetValue(s.MediaDir)
		case fieldDownloads:
			t.Prompt = settingsPrompt("Downloads directory")
			t.Placeholder = "~/easiarr/downloads"
			t.SetValue(s.DownloadsDir)
		case fieldTimezone:
			t.Prompt = settingsPrompt("Timezone")
			t.Placeholder = "Etc/UTC"
			t.SetValue(s.Timezone)
		case fieldPUID:
			t.Prompt = settingsPrompt("PUID")
			t.Placeholder = "1000"
			t.CharLimit = 10
			t.SetValue(s.PUID)
		case fieldPGID:
			t.Prompt = settingsPrompt("PGID")
			t.Placeholder = "1000"
			t.CharLimit = 10
			t.SetValue(s.PGID)
		case fieldLAN:
			t.Prompt = settingsPrompt("LAN CIDR")
			t.Placeholder = "192.168.1.0/24"
			t.SetValue(s.Network.LANCIDR)
		case fieldDomain:
			t.Prompt = settingsPrompt("Traefik domain")
			t.Placeholder = "empty keeps direct ports"
			t.SetValue(s.Traefik.Domain)
		case fieldEmail:
			t.Prompt = settingsPrompt("ACME email")
			t.Placeholder = "for Let's Encrypt"
			t.SetValue(s.Traefik.Email)
		case fieldProvider:
			t.Prompt = settingsPrompt("VPN provider")
			t.Placeholder = "mullvad, protonvpn, custom"
			t.SetValue(s.VPN.Provider)
		case fieldWireguard:
			t.Prompt = settingsPrompt("WireGuard key")
			t.Placeholder = "empty disables the VPN"
			t.SetValue(s.VPN.WireguardKey)
		}

		m.inputs[i] = t
	}

	return m
}

func settingsPrompt(label string) string {
	return fmt.Sprintf(" %-21s ", label)
}

func (m *SettingsModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.saved = false
			return m, tea.Quit

		case "tab", "shift+tab", "enter", "up", "down":
			s := msg.String()

			if s == "enter" && m.focusIndex == len(m.inputs) {
				settings, err := m.assemble()
				if err != nil {
					m.err = err
					return m, nil
				}
				m.result = settings
				m.saved = true
				return m, tea.Quit
			}
			m.err = nil

			if s == "up" || s == "shift+tab" {
				m.focusIndex--
			} else {
				m.focusIndex++
			}
			if m.focusIndex > len(m.inputs) {
				m.focusIndex = 0
			} else if m.focusIndex < 0 {
				m.focusIndex = len(m.inputs)
			}

			cmds := make([]tea.Cmd, len(m.inputs))
			for i := 0; i <= len(m.inputs)-1; i++ {
				if i == m.focusIndex {
					cmds[i] = m.inputs[i].Focus()
					m.inputs[i].PromptStyle = focusedStyle
					m.inputs[i].TextStyle = focusedStyle
					continue
				}
				m.inputs[i].Blur()
				m.inputs[i].PromptStyle = noStyle
				m.inputs[i].TextStyle = noStyle
			}

			return m, tea.Batch(cmds...)
		}
	}

	return m, m.updateInputs(msg)
}

func (m *SettingsModel) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))

	// Only the focused input responds, so updating all of them is safe.
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}

	return tea.Batch(cmds...)
}

// assemble folds the field values back into a Settings and validates them.
func (m *SettingsModel) assemble() (config.Settings, error) {
	s := m.base

	s.RootDir = strings.TrimSpace(m.inputs[fieldRoot].Value())
	s.MediaDir = strings.TrimSpace(m.inputs[fieldMedia].Value())
	s.DownloadsDir = strings.TrimSpace(m.inputs[fieldDownloads].Value())
	s.Timezone = strings.TrimSpace(m.inputs[fieldTimezone].Value())
	s.PUID = strings.TrimSpace(m.inputs[fieldPUID].Value())
	s.PGID = strings.TrimSpace(m.inputs[fieldPGID].Value())
	s.Network.LANCIDR = strings.TrimSpace(m.inputs[fieldLAN].Value())

	s.Traefik.Domain = strings.TrimSpace(m.inputs[fieldDomain].Value())
	s.Traefik.Email = strings.TrimSpace(m.inputs[fieldEmail].Value())
	s.Traefik.Enabled = s.Traefik.Domain != ""

	s.VPN.Provider = strings.TrimSpace(m.inputs[fieldProvider].Value())
	s.VPN.WireguardKey = strings.TrimSpace(m.inputs[fieldWireguard].Value())
	s.VPN.Enabled = s.VPN.WireguardKey != ""

	if s.RootDir == "" {
		return s, fmt.Errorf("the stack directory cannot be empty")
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

func (m *SettingsModel) View() string {
	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render("Stack settings") + "\n")

	for i := range m.inputs {
		if header, ok := settingsSections[i]; ok {
			b.WriteString("\n" + categoryStyle.Render(header) + "\n")
		}
		b.WriteString(m.inputs[i].View() + "\n")
	}

	button := &blurredButton
	if m.focusIndex == len(m.inputs) {
		button = &focusedButton
	}
	fmt.Fprintf(&b, "\n %s\n", *button)

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf(" %s %v", glyphFailed, m.err)) + "\n")
	}

	b.WriteString(helpStyle.Render("tab/shift+tab: navigate • enter: save • esc: back") + "\n")
	return b.String()
}

// Saved reports whether the operator submitted a valid form.
func (m *SettingsModel) Saved() bool {
	return m.saved
}

// Result returns the assembled settings. Only meaningful when Saved.
func (m *SettingsModel) Result() config.Settings {
	return m.result
}
