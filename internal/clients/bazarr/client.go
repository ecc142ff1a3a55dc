// Package bazarr configures a Bazarr instance: subtitle languages and the
// Sonarr and Radarr connections it pulls its library from.
package bazarr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/easiarr/easiarr/internal/clients"
)

// ArrConnection points Bazarr at one *arr instance.
type ArrConnection struct {
	Host   string
	Port   int
	APIKey string
}

// Settings carries everything Configure needs. A nil connection leaves that
// side disabled.
type Settings struct {
	Radarr    *ArrConnection
	Sonarr    *ArrConnection
	Languages []string
}

// Client is a Bazarr API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

type systemStatus struct {
	Data struct {
		BazarrVersion string `json:"bazarr_version"`
	} `json:"data"`
}

type systemSettings struct {
	General struct {
		UseRadarr bool `json:"use_radarr"`
		UseSonarr bool `json:"use_sonarr"`
	} `json:"general"`
}

// NewClient creates a Bazarr client without touching the network.
func NewClient(baseURL, apiKey string, httpClient *http.Client, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Health checks that Bazarr answers its status endpoint.
func (c *Client) Health(ctx context.Context) error {
	var status systemStatus
	if err := c.doRequest(ctx, http.MethodGet, "/api/system/status", nil, &status); err != nil {
		return fmt.Errorf("failed to get system status: %w", err)
	}

	c.logger.Debug().Str("version", status.Data.BazarrVersion).Msg("Bazarr is healthy")
	return nil
}

// Initialized reports whether a *arr connection has been configured yet.
func (c *Client) Initialized(ctx context.Context) (bool, error) {
	var settings systemSettings
	if err := c.doRequest(ctx, http.MethodGet, "/api/system/settings", nil, &settings); err != nil {
		return false, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings.General.UseRadarr || settings.General.UseSonarr, nil
}

// Configure pushes languages and *arr connections in one settings write.
// Bazarr takes its settings form as a flat key map, section and name
// joined with dashes.
func (c *Client) Configure(ctx context.Context, settings Settings) error {
	languages := settings.Languages
	if len(languages) == 0 {
		languages = []string{"en"}
	}

	payload := map[string]any{
		"languages-enabled": languages,
	}
	if settings.Sonarr != nil {
		payload["settings-general-use_sonarr"] = true
		payload["settings-sonarr-ip"] = settings.Sonarr.Host
		payload["settings-sonarr-port"] = settings.Sonarr.Port
		payload["settings-sonarr-apikey"] = settings.Sonarr.APIKey
		payload["settings-sonarr-base_url"] = "/"
		payload["settings-sonarr-ssl"] = false
	}
	if settings.Radarr != nil {
		payload["settings-general-use_radarr"] = true
		payload["settings-radarr-ip"] = settings.Radarr.Host
		payload["settings-radarr-port"] = settings.Radarr.Port
		payload["settings-radarr-apikey"] = settings.Radarr.APIKey
		payload["settings-radarr-base_url"] = "/"
		payload["settings-radarr-ssl"] = false
	}

	if err := c.doRequest(ctx, http.MethodPost, "/api/system/settings", payload, nil); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	c.logger.Info().
		Bool("sonarr", settings.Sonarr != nil).
		Bool("radarr", settings.Radarr != nil).
		Strs("languages", languages).
		Msg("Configured Bazarr")
	return nil
}

// doRequest performs an HTTP request with API key auth.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
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
		return &clients.APIError{App: "bazarr", StatusCode: resp.StatusCode, Message: clients.Snippet(raw)}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
