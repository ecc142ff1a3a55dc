// Package prowlarr configures a Prowlarr instance: each enabled *arr app is
// registered for full indexer sync, and qBittorrent is added for manual
// grabs.
package prowlarr

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"golift.io/starr"
	"golift.io/starr/prowlarr"

	"github.com/easiarr/easiarr/internal/clients"
	"github.com/easiarr/easiarr/internal/httpx"
)

const (
	minimumVersion = "1.0.0"

	managedTag = "easiarr"
)

// AppLink describes one *arr application Prowlarr should push indexers to.
type AppLink struct {
	Name           string
	Implementation string
	URL            string
	APIKey         string
}

// Settings carries everything Configure needs. OwnURL is Prowlarr's address
// as the *arr containers reach it, not as the operator does.
type Settings struct {
	OwnURL string
	Apps   []AppLink
	Qbit   clients.QbitConnection
}

// Client wraps the starr Prowlarr client with easiarr's setup operations.
type Client struct {
	client *prowlarr.Prowlarr
	logger zerolog.Logger
}

// NewClient creates a Prowlarr client without touching the network.
func NewClient(url, apiKey string, httpClient *http.Client, logger zerolog.Logger) *Client {
	config := starr.New(apiKey, url, httpx.DefaultTimeout)
	if httpClient != nil {
		config.Client = httpClient
	}

	return &Client{
		client: prowlarr.New(config),
		logger: logger,
	}
}

// Health checks that Prowlarr is reachable and recent enough to configure.
func (c *Client) Health(ctx context.Context) error {
	if err := c.client.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to reach Prowlarr: %w", err)
	}

	status, err := c.client.GetSystemStatusContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to get system status: %w", err)
	}

	if err := clients.CheckMinimum(status.Version, minimumVersion); err != nil {
		return fmt.Errorf("unsupported Prowlarr: %w", err)
	}

	c.logger.Debug().Str("version", status.Version).Msg("Prowlarr is healthy")
	return nil
}

// Initialized reports whether the managed tag is already present.
func (c *Client) Initialized(ctx context.Context) (bool, error) {
	tags, err := c.client.GetTagsContext(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get tags: %w", err)
	}

	for _, tag := range tags {
		if tag.Label == managedTag {
			return true, nil
		}
	}
	return false, nil
}

// MarkInitialized adds the managed tag so later runs skip this instance.
func (c *Client) MarkInitialized(ctx context.Context) error {
	if _, err := c.client.AddTagContext(ctx, &starr.Tag{Label: managedTag}); err != nil {
		return fmt.Errorf("failed to add tag %s: %w", managedTag, err)
	}

	c.logger.Info().Msg("Marked Prowlarr as configured")
	return nil
}

// Configure runs the full setup in order, each step idempotent.
func (c *Client) Configure(ctx context.Context, settings Settings) error {
	if err := c.EnsureApplications(ctx, settings.OwnURL, settings.Apps); err != nil {
		return err
	}
	if err := c.EnsureDownloadClient(ctx, settings.Qbit); err != nil {
		return err
	}
	return c.MarkInitialized(ctx)
}

// EnsureApplications registers each app for full sync, matching existing
// entries by name so re-runs and hand-added apps are left alone.
func (c *Client) EnsureApplications(ctx context.Context, ownURL string, apps []AppLink) error {
	existing, err := c.client.GetApplicationsContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applications: %w", err)
	}

	present := make(map[string]bool, len(existing))
	for _, app := range existing {
		present[app.Name] = true
	}

	for _, app := range apps {
		if present[app.Name] {
			c.logger.Debug().Str("app", app.Name).Msg("Application already registered")
			continue
		}

		input := &prowlarr.ApplicationInput{
			Name:           app.Name,
			SyncLevel:      "fullSync",
			Implementation: app.Implementation,
			ConfigContract: app.Implementation + "Settings",
			Fields: []*starr.FieldInput{
				{Name: "prowlarrUrl", Value: ownURL},
				{Name: "baseUrl", Value: app.URL},
				{Name: "apiKey", Value: app.APIKey},
			},
		}
		if _, err := c.client.AddApplicationContext(ctx, input); err != nil {
			return fmt.Errorf("failed to add application %s: %w", app.Name, err)
		}

		c.logger.Info().Str("app", app.Name).Str("url", app.URL).Msg("Registered application for indexer sync")
	}

	return nil
}

// EnsureDownloadClient points Prowlarr at qBittorrent unless one is already
// configured.
func (c *Client) EnsureDownloadClient(ctx context.Context, qbit clients.QbitConnection) error {
	existing, err := c.client.GetDownloadClientsContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to get download clients: %w", err)
	}

	for _, dc := range existing {
		if dc.Implementation == "QBittorrent" {
			c.logger.Debug().Str("name", dc.Name).Msg("Download client already configured")
			return nil
		}
	}

	input := &prowlarr.DownloadClientInput{
		Enable:         true,
		Priority:       1,
		Name:           "qBittorrent",
		Implementation: "QBittorrent",
		ConfigContract: "QBittorrentSettings",
		Protocol:       "torrent",
		Fields: []*starr.FieldInput{
			{Name: "host", Value: qbit.Host},
			{Name: "port", Value: qbit.Port},
			{Name: "useSsl", Value: false},
			{Name: "username", Value: qbit.Username},
			{Name: "password", Value: qbit.Password},
			{Name: "category", Value: qbit.Category},
		},
	}

	if _, err := c.client.AddDownloadClientContext(ctx, input); err != nil {
		return fmt.Errorf("failed to add download client: %w", err)
	}

	c.logger.Info().Str("host", qbit.Host).Int("port", qbit.Port).Msg("Added qBittorrent download client")
	return nil
}
