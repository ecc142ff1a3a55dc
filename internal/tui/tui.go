// Package tui is the interactive front end of easiarr.
//
// Every screen is a self-contained bubbletea model run by its own program,
// and the wizard chains them so exactly one is live at a time. Screens hand
// their outcome back through accessors on the final model; writes (config,
// stack files, docker calls) happen in the wizard loop between programs,
// never inside a model's Update. Long work inside a screen runs as a
// command feeding messages back, so the UI keeps painting.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/easiarr/easiarr/internal/artifacts"
	"github.com/easiarr/easiarr/internal/config"
	"github.com/easiarr/easiarr/internal/docker"
	"github.com/easiarr/easiarr/internal/envfile"
	"github.com/easiarr/easiarr/internal/health"
	"github.com/easiarr/easiarr/internal/paths"
	"github.com/easiarr/easiarr/internal/provision"
)

// Wizard owns the screen flow and the settings being edited.
type Wizard struct {
	Settings config.Settings

	// ConfigPath overrides where settings are saved; empty means the
	// default location.
	ConfigPath string

	Logger zerolog.Logger
}

// Run shows the main menu until the operator quits. Screen helpers report
// (done, err): done false means the operator backed out or the screen
// already displayed its failure, err means something program-level broke.
func (w *Wizard) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		final, err := tea.NewProgram(NewMenu(w.Settings)).Run()
		if err != nil {
			return err
		}

		var actErr error
		switch final.(MenuModel).Choice() {
		case actionQuit, actionNone:
			return nil
		case actionSelectApps:
			_, actErr = w.selectApps()
		case actionSettings:
			_, actErr = w.editSettings()
		case actionGenerate:
			_, actErr = w.generate(ctx)
		case actionStart:
			_, actErr = w.startStack(ctx)
		case actionProvision:
			_, actErr = w.provision(ctx)
		case actionStatus:
			_, actErr = w.showStatus(ctx)
		case actionStop:
			_, actErr = w.stopStack(ctx)
		}
		if actErr != nil {
			if errors.Is(actErr, context.Canceled) {
				return actErr
			}
			fmt.Println(errorStyle.Render(glyphFailed + " " + actErr.Error()))
		}
	}
}

// FirstRun walks the whole setup once: selection, settings, files, stack
// start, app configuration. Backing out of any screen ends the walk; the
// saved progress is picked up by the menu next time.
func (w *Wizard) FirstRun(ctx context.Context) error {
	final, err := tea.NewProgram(NewWelcome()).Run()
	if err != nil {
		return err
	}
	if !final.(WelcomeModel).Proceed() {
		return nil
	}

	steps := []func() (bool, error){
		w.selectApps,
		w.editSettings,
		func() (bool, error) { return w.generate(ctx) },
		func() (bool, error) { return w.startStack(ctx) },
		func() (bool, error) { return w.provision(ctx) },
	}
	for _, step := range steps {
		ok, err := step()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	fmt.Println()
	fmt.Println(successStyle.Render(glyphDone+" Setup complete.") + " " +
		subtleStyle.Render("Run easiarr again for the menu."))
	w.printLinks()
	return nil
}

func (w *Wizard) selectApps() (bool, error) {
	final, err := tea.NewProgram(NewSelect(w.Settings.Apps)).Run()
	if err != nil {
		return false, err
	}
	m := final.(SelectModel)
	if !m.Accepted() {
		return false, nil
	}

	w.Settings.Apps = m.Selected()
	if err := w.save(); err != nil {
		return false, err
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("%s %d applications selected", glyphDone, len(w.Settings.Apps))))
	return true, nil
}

func (w *Wizard) editSettings() (bool, error) {
	final, err := tea.NewProgram(NewSettings(w.Settings)).Run()
	if err != nil {
		return false, err
	}
	m := final.(*SettingsModel)
	if !m.Saved() {
		return false, nil
	}

	w.Settings = m.Result()
	if err := w.save(); err != nil {
		return false, err
	}
	fmt.Println(successStyle.Render(glyphDone + " settings saved"))
	return true, nil
}

func (w *Wizard) generate(ctx context.Context) (bool, error) {
	gen := artifacts.New(w.Settings, w.Logger)
	gen.WithDiff = true

	root := paths.Expand(w.Settings.RootDir)
	final, err := tea.NewProgram(NewGenerate(root, func() ([]artifacts.Artifact, error) {
		return gen.Run(ctx)
	})).Run()
	if err != nil {
		return false, err
	}
	return final.(GenerateModel).Err() == nil, nil
}

func (w *Wizard) startStack(ctx context.Context) (bool, error) {
	root := paths.Expand(w.Settings.RootDir)
	if _, err := os.Stat(filepath.Join(root, "docker-compose.yml")); err != nil {
		return false, fmt.Errorf("no docker-compose.yml under %s, generate the stack files first", root)
	}

	client, err := docker.NewClient(ctx, w.Logger, root)
	if err != nil {
		return false, err
	}

	fmt.Println(titleStyle.Render("Starting stack"))
	if err := client.Up(ctx); err != nil {
		return false, err
	}
	fmt.Println(successStyle.Render(glyphDone + " stack is up"))
	return true, nil
}

func (w *Wizard) stopStack(ctx context.Context) (bool, error) {
	client, err := docker.NewClient(ctx, w.Logger, paths.Expand(w.Settings.RootDir))
	if err != nil {
		return false, err
	}

	fmt.Println(titleStyle.Render("Stopping stack"))
	if err := client.Down(ctx, false); err != nil {
		return false, err
	}
	fmt.Println(successStyle.Render(glyphDone + " stack is down"))
	return true, nil
}

func (w *Wizard) provision(ctx context.Context) (bool, error) {
	root := paths.Expand(w.Settings.RootDir)
	planner := &provision.Planner{
		Settings: w.Settings,
		Env:      envfile.New(filepath.Join(root, ".env")),
		Logger:   w.Logger,
	}
	steps := planner.Plan()
	if len(steps) == 0 {
		fmt.Println(subtleStyle.Render("nothing to configure for the current selection"))
		return true, nil
	}

	store, err := provision.NewStateStore(paths.StateFile())
	if err != nil {
		return false, err
	}
	runner := provision.NewRunner(store, w.Logger)
	runner.LockPath = paths.LockFile()

	final, err := tea.NewProgram(NewSetup(ctx, runner, steps)).Run()
	if err != nil {
		return false, err
	}
	m := final.(SetupModel)
	if m.Err() != nil || !m.Result().Ok() {
		return false, nil
	}

	// Homepage reads the captured API keys from the environment, so bounce
	// it now that provisioning has filled them in.
	if w.Settings.Enabled("homepage") {
		client, err := docker.NewClient(ctx, w.Logger, root)
		if err == nil {
			err = client.Restart(ctx, "homepage")
		}
		if err != nil {
			w.Logger.Warn().Err(err).Msg("restarting homepage")
		}
	}
	return true, nil
}

func (w *Wizard) showStatus(ctx context.Context) (bool, error) {
	checker := &health.Checker{Settings: w.Settings, Logger: w.Logger}
	_, err := tea.NewProgram(NewStatus(func() []health.Report {
		return checker.Run(ctx)
	})).Run()
	return err == nil, err
}

func (w *Wizard) save() error {
	if w.ConfigPath != "" {
		return w.Settings.SaveTo(w.ConfigPath)
	}
	return w.Settings.Save()
}

// printLinks lists where each enabled app answers once the stack is up.
func (w *Wizard) printLinks() {
	for _, app := range w.Settings.EnabledApps() {
		if !app.HasWebUI() {
			continue
		}
		fmt.Printf("  %-14s %s\n", app.Name, w.Settings.URLFor(app))
	}
}
