package docker

import (
	"context"
)

// Up starts the stack in the background, removing containers for apps that
// were dropped from the selection.
func (c *Client) Up(ctx context.Context) error {
	return c.run(ctx, "up", "--detach", "--remove-orphans")
}

// Down stops the stack. With removeVolumes the named volumes go too; bind
// mounts under the stack directory are never touched.
func (c *Client) Down(ctx context.Context, removeVolumes bool) error {
	args := []string{"down", "--remove-orphans"}
	if removeVolumes {
		args = append(args, "--volumes")
	}
	return c.run(ctx, args...)
}

// Pull fetches newer images for every service.
func (c *Client) Pull(ctx context.Context) error {
	return c.run(ctx, "pull")
}

// Restart bounces the named services, or the whole stack when none are
// given. Used after provisioning so containers re-read captured credentials;
// compose output goes to the log, not the terminal.
func (c *Client) Restart(ctx context.Context, services ...string) error {
	return c.runQuiet(ctx, append([]string{"restart"}, services...)...)
}
