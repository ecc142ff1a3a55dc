package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/easiarr/easiarr/internal/provision"
)

type setupEventMsg provision.Event

type setupDoneMsg struct {
	result provision.Result
	err    error
}

// setupRow is the display state of one provisioning step.
type setupRow struct {
	id      string
	title   string
	status  provision.Status
	attempt int
	err     error
}

// SetupModel streams a provisioning run. The runner executes on its own
// goroutine; step transitions arrive over the events channel and the final
// outcome over done. Esc cancels the run context and the screen stays up
// until the runner has wound down.
type SetupModel struct {
	spinner spinner.Model
	rows    []setupRow
	index   map[string]int

	events chan provision.Event
	done   chan setupDoneMsg
	start  func()
	cancel context.CancelFunc

	finished  bool
	cancelled bool
	result    provision.Result
	err       error
}

// NewSetup wires the runner's event stream into a screen. The rows appear
// in plan order and update as the runner reports transitions.
func NewSetup(ctx context.Context, runner *provision.Runner, steps []*provision.Step) SetupModel {
	runCtx, cancel := context.WithCancel(ctx)

	events := make(chan provision.Event, 16)
	done := make(chan setupDoneMsg, 1)
	runner.Events = events

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	rows := make([]setupRow, len(steps))
	index := make(map[string]int, len(steps))
	for i, s := range steps {
		rows[i] = setupRow{id: s.ID, title: s.Title, status: provision.StatusPending}
		index[s.ID] = i
	}

	return SetupModel{
		spinner: sp,
		rows:    rows,
		index:   index,
		events:  events,
		done:    done,
		cancel:  cancel,
		start: func() {
			go func() {
				result, err := runner.Run(runCtx, steps)
				done <- setupDoneMsg{result: result, err: err}
			}()
		},
	}
}

func (m SetupModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.begin, m.wait())
}

func (m SetupModel) begin() tea.Msg {
	m.start()
	return nil
}

// wait blocks for the next runner transition or the final outcome.
func (m SetupModel) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-m.events:
			return setupEventMsg(ev)
		case d := <-m.done:
			return d
		}
	}
}

func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			if m.finished {
				return m, tea.Quit
			}
			m.cancelled = true
			m.cancel()
			return m, nil
		case "enter":
			if m.finished {
				return m, tea.Quit
			}
		}

	case setupEventMsg:
		m.apply(provision.Event(msg))
		return m, m.wait()

	case setupDoneMsg:
		// The runner may have emitted transitions after the last one we
		// consumed; fold the leftovers in before declaring the run over.
		for {
			select {
			case ev := <-m.events:
				m.apply(ev)
			default:
				m.finished = true
				m.result = msg.result
				m.err = msg.err
				return m, nil
			}
		}

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *SetupModel) apply(ev provision.Event) {
	i, ok := m.index[ev.StepID]
	if !ok {
		return
	}
	m.rows[i].status = ev.Status
	m.rows[i].attempt = ev.Attempt
	m.rows[i].err = ev.Err
}

func (m SetupModel) View() string {
	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render("Configure applications") + "\n\n")

	for _, row := range m.rows {
		b.WriteString(m.renderStep(row) + "\n")
	}

	b.WriteString("\n")
	switch {
	case !m.finished && m.cancelled:
		b.WriteString(warnStyle.Render(" stopping...") + "\n")
	case !m.finished:
		fmt.Fprintf(&b, " %s Working through the plan %s\n",
			m.spinner.View(), subtleStyle.Render("(esc stops after the current step)"))
	case m.err != nil && errors.Is(m.err, context.Canceled):
		b.WriteString(warnStyle.Render(fmt.Sprintf(" %s cancelled", glyphFailed)) + "\n")
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf(" %s %v", glyphFailed, m.err)) + "\n")
	case m.result.Ok():
		b.WriteString(successStyle.Render(fmt.Sprintf(" %s All applications configured", glyphDone)) + "\n")
	default:
		failed := len(m.result.Failed())
		b.WriteString(errorStyle.Render(fmt.Sprintf(" %s %d of %d steps failed", glyphFailed, failed, len(m.result.Steps))) + "\n")
	}

	if m.finished {
		b.WriteString(helpStyle.Render("enter: back") + "\n")
	}
	return b.String()
}

func (m SetupModel) renderStep(r setupRow) string {
	switch r.status {
	case provision.StatusRunning:
		line := fmt.Sprintf(" %s %s", m.spinner.View(), r.title)
		if r.attempt > 1 {
			line += " " + warnStyle.Render(fmt.Sprintf("%s attempt %d", glyphRetry, r.attempt))
		}
		return line
	case provision.StatusDone:
		return fmt.Sprintf(" %s %s", successStyle.Render(glyphDone), r.title)
	case provision.StatusSkipped:
		return fmt.Sprintf(" %s %s %s", successStyle.Render(glyphDone), r.title, subtleStyle.Render("(already configured)"))
	case provision.StatusFailed:
		return fmt.Sprintf(" %s %s\n   %s", errorStyle.Render(glyphFailed), r.title,
			errorStyle.Render(fmt.Sprintf("%s Error: %v", glyphFailed, r.err)))
	case provision.StatusBlocked:
		return fmt.Sprintf(" %s %s %s", warnStyle.Render(glyphFailed), r.title, subtleStyle.Render(fmt.Sprintf("(blocked: %v)", r.err)))
	default:
		return subtleStyle.Render(fmt.Sprintf(" %s %s", glyphPending, r.title))
	}
}

// Err returns the run-level failure, if any. Step failures are in Result.
func (m SetupModel) Err() error {
	return m.err
}

// Result returns the outcome of the run.
func (m SetupModel) Result() provision.Result {
	return m.result
}

// Cancelled reports whether the operator stopped the run early.
func (m SetupModel) Cancelled() bool {
	return m.cancelled
}
