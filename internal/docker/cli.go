// Package docker drives the stack lifecycle through the docker CLI. easiarr
// generates the compose file; starting and stopping it is delegated to the
// real compose implementation rather than reimplemented.
package docker

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/easiarr/easiarr/internal/exec"
)

// Client runs compose commands against one stack directory.
type Client struct {
	log zerolog.Logger

	// compose is the resolved invocation, either the docker plugin or the
	// standalone binary.
	compose []string

	// dir is the stack directory holding docker-compose.yml and .env.
	dir string

	// Out receives command output for the streaming operations. Defaults
	// to stdout.
	Out io.Writer
}

// NewClient resolves the compose CLI and returns a client for the stack at
// dir.
func NewClient(ctx context.Context, log zerolog.Logger, dir string) (*Client, error) {
	compose, err := composeCommand(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug().Strs("compose", compose).Str("dir", dir).Msg("docker client ready")
	return &Client{log: log, compose: compose, dir: dir, Out: os.Stdout}, nil
}

// composeCommand prefers `docker compose`; older hosts only have the
// standalone docker-compose binary.
func composeCommand(ctx context.Context) ([]string, error) {
	if exec.Available("docker") {
		if _, err := exec.Output(ctx, "docker", "compose", "version"); err == nil {
			return []string{"docker", "compose"}, nil
		}
	}
	if exec.Available("docker-compose") {
		return []string{"docker-compose"}, nil
	}
	return nil, fmt.Errorf("docker compose was not found; install docker with the compose plugin and try again")
}

// args prepends the compose invocation and the project directory.
func (c *Client) args(rest ...string) (string, []string) {
	full := append([]string{}, c.compose[1:]...)
	full = append(full, "--project-directory", c.dir)
	full = append(full, rest...)
	return c.compose[0], full
}

// run streams a compose command to the client's output writer.
func (c *Client) run(ctx context.Context, rest ...string) error {
	name, full := c.args(rest...)
	return exec.Run(ctx, c.log, c.Out, c.Out, name, full...)
}

// runQuiet folds a compose command's output into the debug log instead of
// streaming it, for housekeeping calls made while the terminal is showing
// other UI.
func (c *Client) runQuiet(ctx context.Context, rest ...string) error {
	name, full := c.args(rest...)
	return exec.RunAndLog(ctx, c.log, name, full...)
}
