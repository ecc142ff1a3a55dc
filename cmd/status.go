package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/easiarr/easiarr/internal/health"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe the enabled apps",
	Long: `Status checks whether each enabled app answers on its published port.
The exit code is non-zero when any app is down, so the command slots into
scripts and monitoring.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	checker := &health.Checker{Settings: settings, Logger: log}
	reports := checker.Run(cmd.Context())
	if len(reports) == 0 {
		fmt.Println("no enabled app has a web UI")
		return nil
	}

	down := 0
	for _, r := range reports {
		if r.Up() {
			fmt.Printf("✓ %-14s %s\n", r.App.Name, r.URL)
			continue
		}
		down++
		fmt.Printf("✗ %-14s %s (%v)\n", r.App.Name, r.URL, r.Err)
	}

	if down > 0 {
		return fmt.Errorf("%d of %d apps are not answering", down, len(reports))
	}
	fmt.Printf("all %d apps answering\n", len(reports))
	return nil
}
