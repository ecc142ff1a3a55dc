// Package cmd wires the CLI. Running easiarr bare launches the interactive
// wizard; the subcommands expose the same operations headless for scripts
// and cron.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/easiarr/easiarr/internal/config"
	"github.com/easiarr/easiarr/internal/logger"
	"github.com/easiarr/easiarr/internal/paths"
	"github.com/easiarr/easiarr/internal/sysinfo"
	"github.com/easiarr/easiarr/internal/tui"
	"github.com/easiarr/easiarr/internal/version"
)

var (
	cfgFile string
	verbose bool
	logFile string
	noColor bool

	log      zerolog.Logger
	closeLog func()
)

var rootCmd = &cobra.Command{
	Use:   "easiarr",
	Short: "Set up and run a self-hosted media stack",
	Long: `easiarr lays out a Docker Compose project for a media stack (the *arr
family, download clients, media servers and friends), starts it, and then
configures the running apps over their APIs so they already know about
each other the first time you log in.

Run it without arguments for the interactive wizard. The subcommands do
the same work headless.`,
	Version:           version.Full(),
	PersistentPreRunE: initializeApp,
	RunE:              runRoot,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if closeLog != nil {
		closeLog()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default ~/.easiarr/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on the console")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file location (default under the XDG state dir)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// initializeApp builds the logger every command shares. The wizard paints
// the terminal itself, so the bare command keeps the console quiet and
// leans on the file sink instead.
func initializeApp(cmd *cobra.Command, args []string) error {
	if err := paths.EnsureHome(); err != nil {
		return err
	}

	level := "info"
	switch {
	case verbose:
		level = "debug"
	case cmd == rootCmd:
		level = "warn"
	}

	file := logFile
	if file == "" {
		file = paths.LogFile()
	}

	var err error
	log, closeLog, err = logger.New(logger.Options{Level: level, File: file, NoColor: noColor})
	return err
}

func runRoot(cmd *cobra.Command, args []string) error {
	path := settingsPath()
	_, err := os.Stat(path)
	firstRun := errors.Is(err, os.ErrNotExist)

	var settings config.Settings
	if firstRun {
		settings = config.FromHost(sysinfo.Detect())
	} else {
		if settings, err = loadSettings(); err != nil {
			return err
		}
	}

	w := &tui.Wizard{Settings: settings, ConfigPath: cfgFile, Logger: log}
	if firstRun {
		return w.FirstRun(cmd.Context())
	}
	return w.Run(cmd.Context())
}

// settingsPath is where the settings live, honoring --config.
func settingsPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return paths.ConfigFile()
}

// loadSettings reads the settings for the headless commands.
func loadSettings() (config.Settings, error) {
	if cfgFile != "" {
		return config.LoadFrom(cfgFile)
	}
	return config.Load()
}
