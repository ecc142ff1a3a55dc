package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/easiarr/easiarr/internal/envfile"
	"github.com/easiarr/easiarr/internal/paths"
	"github.com/easiarr/easiarr/internal/provision"
	"github.com/easiarr/easiarr/internal/registry"
)

var (
	setupApps       []string
	setupResetState bool
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure the running apps over their APIs",
	Long: `Setup walks the enabled apps and performs their first-run configuration:
capturing API keys into .env, connecting the *arr apps to the download
client and to Prowlarr, creating root folders, registering monitors and
dashboards. Finished steps are recorded, so rerunning only picks up what
is missing.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)

	setupCmd.Flags().StringSliceVar(&setupApps, "app", nil, "limit to these apps (repeatable)")
	setupCmd.Flags().BoolVar(&setupResetState, "reset-state", false, "forget recorded outcomes and redo the steps")
}

func runSetup(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	for _, id := range setupApps {
		if _, ok := registry.Get(id); !ok {
			return fmt.Errorf("unknown app %q", id)
		}
	}

	root := paths.Expand(settings.RootDir)
	planner := &provision.Planner{
		Settings: settings,
		Env:      envfile.New(filepath.Join(root, ".env")),
		Logger:   log,
	}

	steps := planner.Plan()
	if len(setupApps) > 0 {
		steps = filterSteps(steps, setupApps)
	}
	if len(steps) == 0 {
		fmt.Println("nothing to configure for this selection")
		return nil
	}

	store, err := provision.NewStateStore(paths.StateFile())
	if err != nil {
		return err
	}
	if setupResetState {
		ids := make([]string, 0, len(steps))
		if len(setupApps) > 0 {
			for _, s := range steps {
				ids = append(ids, s.ID)
			}
		}
		if err := store.Reset(ids...); err != nil {
			return err
		}
	}

	runner := provision.NewRunner(store, log)
	runner.LockPath = paths.LockFile()

	events := make(chan provision.Event, 16)
	runner.Events = events
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for ev := range events {
			printEvent(ev)
		}
	}()

	result, err := runner.Run(cmd.Context(), steps)
	close(events)
	<-printed
	if err != nil {
		return err
	}

	if !result.Ok() {
		return fmt.Errorf("%d of %d steps failed", len(result.Failed()), len(result.Steps))
	}
	fmt.Printf("✓ %d steps finished\n", len(result.Steps))
	return nil
}

func printEvent(ev provision.Event) {
	switch ev.Status {
	case provision.StatusRunning:
		if ev.Attempt > 1 {
			fmt.Printf("↻ %s (attempt %d)\n", ev.Title, ev.Attempt)
			return
		}
		fmt.Printf("→ %s\n", ev.Title)
	case provision.StatusDone:
		fmt.Printf("✓ %s\n", ev.Title)
	case provision.StatusSkipped:
		fmt.Printf("✓ %s (already configured)\n", ev.Title)
	case provision.StatusFailed:
		fmt.Printf("✗ %s\n  ✗ Error: %v\n", ev.Title, ev.Err)
	case provision.StatusBlocked:
		fmt.Printf("− %s (blocked: %v)\n", ev.Title, ev.Err)
	}
}

// filterSteps keeps the steps of the named apps plus everything they need.
func filterSteps(steps []*provision.Step, apps []string) []*provision.Step {
	want := make(map[string]bool, len(apps))
	for _, id := range apps {
		want[id] = true
	}

	byID := make(map[string]*provision.Step, len(steps))
	for _, s := range steps {
		byID[s.ID] = s
	}

	keep := map[string]bool{}
	var add func(s *provision.Step)
	add = func(s *provision.Step) {
		if keep[s.ID] {
			return
		}
		keep[s.ID] = true
		for _, need := range s.Needs {
			if n, ok := byID[need]; ok {
				add(n)
			}
		}
	}
	for _, s := range steps {
		if want[s.App] {
			add(s)
		}
	}

	out := make([]*provision.Step, 0, len(keep))
	for _, s := range steps {
		if keep[s.ID] {
			out = append(out, s)
		}
	}
	return out
}
