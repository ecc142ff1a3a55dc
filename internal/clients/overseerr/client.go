// Package overseerr configures an Overseerr instance: Plex sign-in, library
// sync, Radarr and Sonarr registration, and the final initialize step.
package overseerr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/easiarr/easiarr/internal/clients"
)

// Settings carries everything Configure needs. The Plex token signs in the
// first admin; Overseerr has no other bootstrap path.
type Settings struct {
	PlexToken string
	Radarr    []ArrInstance
	Sonarr    []ArrInstance
}

// Client is an Overseerr API client. Overseerr authenticates setup calls
// with a session cookie, so the client keeps its own jar.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates an Overseerr client without touching the network.
func NewClient(baseURL string, httpClient *http.Client, logger zerolog.Logger) *Client {
	jar, _ := cookiejar.New(nil)

	// Clone so the session cookie stays private to this client.
	own := &http.Client{Jar: jar}
	if httpClient != nil {
		own.Transport = httpClient.Transport
		own.Timeout = httpClient.Timeout
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: own,
		logger:     logger,
	}
}

// Health checks that Overseerr answers its status endpoint.
func (c *Client) Health(ctx context.Context) error {
	var status statusResponse
	if err := c.doRequest(ctx, http.MethodGet, "/status", nil, nil, &status); err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	c.logger.Debug().Str("version", status.Version).Msg("Overseerr is healthy")
	return nil
}

// Initialized reports whether first-run setup has been finalized.
func (c *Client) Initialized(ctx context.Context) (bool, error) {
	var settings publicSettings
	if err := c.doRequest(ctx, http.MethodGet, "/settings/public", nil, nil, &settings); err != nil {
		return false, fmt.Errorf("failed to get public settings: %w", err)
	}
	return settings.Initialized, nil
}

// Configure runs the setup chain: Plex auth, library sync, Radarr and
// Sonarr registration, then initialize. Steps are idempotent so a partial
// earlier run is completed rather than repeated.
func (c *Client) Configure(ctx context.Context, settings Settings) error {
	if settings.PlexToken == "" {
		return fmt.Errorf("overseerr setup needs a plex token")
	}

	if err := c.AuthenticateWithPlex(ctx, settings.PlexToken); err != nil {
		return err
	}
	if err := c.SyncLibraries(ctx); err != nil {
		return err
	}
	for _, instance := range settings.Radarr {
		if err := c.EnsureRadarr(ctx, instance); err != nil {
			return err
		}
	}
	for _, instance := range settings.Sonarr {
		if err := c.EnsureSonarr(ctx, instance); err != nil {
			return err
		}
	}

	done, err := c.Initialized(ctx)
	if err != nil {
		return err
	}
	if done {
		return nil
	}
	return c.Finalize(ctx)
}

// AuthenticateWithPlex signs in with a Plex token. The first sign-in
// creates the admin account; later ones just open a session.
func (c *Client) AuthenticateWithPlex(ctx context.Context, token string) error {
	body := plexAuthRequest{AuthToken: token}
	if err := c.doRequest(ctx, http.MethodPost, "/auth/plex", nil, body, nil); err != nil {
		return fmt.Errorf("failed to authenticate with plex: %w", err)
	}

	c.logger.Debug().Msg("Authenticated with Overseerr via Plex")
	return nil
}

// SyncLibraries pulls the Plex library list and enables every library.
func (c *Client) SyncLibraries(ctx context.Context) error {
	params := url.Values{}
	params.Set("sync", "true")

	var libraries []plexLibrary
	if err := c.doRequest(ctx, http.MethodGet, "/settings/plex/library", params, nil, &libraries); err != nil {
		return fmt.Errorf("failed to sync plex libraries: %w", err)
	}

	var enable []string
	for _, library := range libraries {
		if !library.Enabled {
			enable = append(enable, library.ID)
		}
	}
	if len(enable) == 0 {
		c.logger.Debug().Int("count", len(libraries)).Msg("Plex libraries already enabled")
		return nil
	}

	params = url.Values{}
	params.Set("enable", strings.Join(enable, ","))
	if err := c.doRequest(ctx, http.MethodGet, "/settings/plex/library", params, nil, nil); err != nil {
		return fmt.Errorf("failed to enable plex libraries: %w", err)
	}

	c.logger.Info().Int("count", len(enable)).Msg("Enabled Plex libraries")
	return nil
}

// EnsureRadarr registers a Radarr server, matching existing ones by name.
func (c *Client) EnsureRadarr(ctx context.Context, instance ArrInstance) error {
	var existing []radarrSettings
	if err := c.doRequest(ctx, http.MethodGet, "/settings/radarr", nil, nil, &existing); err != nil {
		return fmt.Errorf("failed to list radarr servers: %w", err)
	}
	for _, server := range existing {
		if server.Name == instance.Name {
			c.logger.Debug().Str("name", instance.Name).Msg("Radarr server already registered")
			return nil
		}
	}

	body := radarrSettings{
		Name:                instance.Name,
		Hostname:            instance.Hostname,
		Port:                instance.Port,
		APIKey:              instance.APIKey,
		ActiveProfileID:     instance.ProfileID,
		ActiveProfileName:   instance.ProfileName,
		ActiveDirectory:     instance.Directory,
		MinimumAvailability: "released",
		IsDefault:           len(existing) == 0,
		SyncEnabled:         true,
	}
	if err := c.doRequest(ctx, http.MethodPost, "/settings/radarr", nil, body, nil); err != nil {
		return fmt.Errorf("failed to register radarr server %s: %w", instance.Name, err)
	}

	c.logger.Info().Str("name", instance.Name).Msg("Registered Radarr server")
	return nil
}

// EnsureSonarr registers a Sonarr server, matching existing ones by name.
func (c *Client) EnsureSonarr(ctx context.Context, instance ArrInstance) error {
	var existing []sonarrSettings
	if err := c.doRequest(ctx, http.MethodGet, "/settings/sonarr", nil, nil, &existing); err != nil {
		return fmt.Errorf("failed to list sonarr servers: %w", err)
	}
	for _, server := range existing {
		if server.Name == instance.Name {
			c.logger.Debug().Str("name", instance.Name).Msg("Sonarr server already registered")
			return nil
		}
	}

	body := sonarrSettings{
		Name:                    instance.Name,
		Hostname:                instance.Hostname,
		Port:                    instance.Port,
		APIKey:                  instance.APIKey,
		ActiveProfileID:         instance.ProfileID,
		ActiveProfileName:       instance.ProfileName,
		ActiveDirectory:         instance.Directory,
		ActiveLanguageProfileID: 1,
		EnableSeasonFolders:     true,
		IsDefault:               len(existing) == 0,
		SyncEnabled:             true,
	}
	if err := c.doRequest(ctx, http.MethodPost, "/settings/sonarr", nil, body, nil); err != nil {
		return fmt.Errorf("failed to register sonarr server %s: %w", instance.Name, err)
	}

	c.logger.Info().Str("name", instance.Name).Msg("Registered Sonarr server")
	return nil
}

// Finalize flips the initialized flag so Overseerr leaves its setup wizard.
func (c *Client) Finalize(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodPost, "/settings/initialize", nil, nil, nil); err != nil {
		return fmt.Errorf("failed to finalize setup: %w", err)
	}

	c.logger.Info().Msg("Finalized Overseerr setup")
	return nil
}

// APIKey returns the instance API key for dashboard widgets.
func (c *Client) APIKey(ctx context.Context) (string, error) {
	var settings mainSettings
	if err := c.doRequest(ctx, http.MethodGet, "/settings/main", nil, nil, &settings); err != nil {
		return "", fmt.Errorf("failed to get main settings: %w", err)
	}
	return settings.APIKey, nil
}

// doRequest performs an HTTP request against the v1 API.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, params url.Values, body, out any) error {
	u := c.baseURL + "/api/v1" + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &clients.APIError{App: "overseerr", StatusCode: resp.StatusCode, Message: clients.Snippet(raw)}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
