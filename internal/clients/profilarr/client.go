// Package profilarr configures a Profilarr instance: connecting the git
// database its quality profiles are pulled from.
package profilarr

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

// DefaultDatabaseURL is the public Dictionarry profile database.
const DefaultDatabaseURL = "https://github.com/Dictionarry-Hub/database"

// Settings carries everything Configure needs.
type Settings struct {
	DatabaseURL string
}

// Client is a Profilarr API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

type settingsResponse struct {
	DatabaseURL string `json:"database_url"`
}

type connectDatabaseRequest struct {
	URL string `json:"url"`
}

// NewClient creates a Profilarr client without touching the network.
func NewClient(baseURL string, httpClient *http.Client, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Health checks that Profilarr answers its health endpoint.
func (c *Client) Health(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodGet, "/api/health", nil, nil); err != nil {
		return fmt.Errorf("failed to get health: %w", err)
	}

	c.logger.Debug().Msg("Profilarr is healthy")
	return nil
}

// Initialized reports whether a profile database is connected.
func (c *Client) Initialized(ctx context.Context) (bool, error) {
	var settings settingsResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/settings", nil, &settings); err != nil {
		return false, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings.DatabaseURL != "", nil
}

// Configure connects the profile database if none is connected yet.
func (c *Client) Configure(ctx context.Context, settings Settings) error {
	done, err := c.Initialized(ctx)
	if err != nil {
		return err
	}
	if done {
		c.logger.Debug().Msg("Profile database already connected")
		return nil
	}

	databaseURL := settings.DatabaseURL
	if databaseURL == "" {
		databaseURL = DefaultDatabaseURL
	}

	body := connectDatabaseRequest{URL: databaseURL}
	if err := c.doRequest(ctx, http.MethodPost, "/api/settings/database", body, nil); err != nil {
		return fmt.Errorf("failed to connect profile database: %w", err)
	}

	c.logger.Info().Str("database", databaseURL).Msg("Connected profile database")
	return nil
}

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
		return &clients.APIError{App: "profilarr", StatusCode: resp.StatusCode, Message: clients.Snippet(raw)}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
