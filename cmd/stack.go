package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/easiarr/easiarr/internal/docker"
	"github.com/easiarr/easiarr/internal/paths"
)

var downVolumes bool

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Start the stack with docker compose",
	RunE:  runUp,
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop the stack",
	RunE:  runDown,
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull newer images for the stack",
	RunE:  runPull,
}

func init() {
	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(downCmd)
	rootCmd.AddCommand(pullCmd)

	downCmd.Flags().BoolVar(&downVolumes, "volumes", false, "also remove named volumes (bind mounts are never touched)")
}

// stackClient builds a compose client rooted at the stack directory.
func stackClient(cmd *cobra.Command) (*docker.Client, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}

	root := paths.Expand(settings.RootDir)
	if _, err := os.Stat(filepath.Join(root, "docker-compose.yml")); err != nil {
		return nil, fmt.Errorf("no docker-compose.yml under %s, run easiarr generate first", root)
	}
	return docker.NewClient(cmd.Context(), log, root)
}

func runUp(cmd *cobra.Command, args []string) error {
	client, err := stackClient(cmd)
	if err != nil {
		return err
	}
	return client.Up(cmd.Context())
}

func runDown(cmd *cobra.Command, args []string) error {
	client, err := stackClient(cmd)
	if err != nil {
		return err
	}
	return client.Down(cmd.Context(), downVolumes)
}

func runPull(cmd *cobra.Command, args []string) error {
	client, err := stackClient(cmd)
	if err != nil {
		return err
	}
	return client.Pull(cmd.Context())
}
