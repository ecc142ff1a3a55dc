// Package health probes the published web endpoints of the enabled apps.
//
// A probe answers "is the container up and serving" and nothing more: any
// HTTP response below 500 counts, because a login redirect or an auth wall
// still proves the app is alive. Probes run concurrently so a full stack
// reports in roughly the time of its slowest member.
package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/easiarr/easiarr/internal/config"
	"github.com/easiarr/easiarr/internal/httpx"
	"github.com/easiarr/easiarr/internal/registry"
)

const (
	probeLimit   = 8
	probeTimeout = 5 * time.Second
)

// Report is the outcome of probing one app.
type Report struct {
	App registry.App

	// URL is the address that was probed, without the health path.
	URL string

	Err error
}

// Up reports whether the probe found the app serving.
func (r Report) Up() bool {
	return r.Err == nil
}

// Checker probes every enabled app that has a web UI.
type Checker struct {
	Settings config.Settings

	// Client overrides the probe transport. Without it a short-timeout
	// retrying client is built per run.
	Client *http.Client

	// Host is where the published ports answer, "localhost" when empty.
	Host string

	Logger zerolog.Logger
}

// Run probes the enabled apps concurrently and returns one report per app
// with a web UI, in EnabledApps order. Apps without a web port have nothing
// to answer on and are left out.
func (c *Checker) Run(ctx context.Context) []Report {
	client := c.Client
	if client == nil {
		client = httpx.New(probeTimeout, c.Logger)
	}

	host := c.Host
	if host == "" {
		host = "localhost"
	}

	var reports []Report
	for _, app := range c.Settings.EnabledApps() {
		if !app.HasWebUI() {
			continue
		}
		reports = append(reports, Report{
			App: app,
			URL: fmt.Sprintf("http://%s:%d", host, c.Settings.PortFor(app)),
		})
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(probeLimit)
	for i := range reports {
		g.Go(func() error {
			reports[i].Err = c.probe(ctx, client, reports[i])
			return nil
		})
	}
	// Failures live in the individual reports; nothing aborts the group.
	_ = g.Wait()
	return reports
}

// probe issues one GET against the app's health path. Status codes below 500
// pass: a 401 or a redirect to a login page is an app that is up.
func (c *Checker) probe(ctx context.Context, client *http.Client, r Report) error {
	path := r.App.HealthPath
	if path == "" {
		path = "/"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL+path, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%s answered %s", r.App.Name, resp.Status)
	}
	c.Logger.Debug().Str("app", r.App.ID).Int("status", resp.StatusCode).Msg("probe ok")
	return nil
}
