// Package tautulli talks to a Tautulli instance through its single-endpoint
// command API. Tautulli's first-run wizard has no API surface, so setup here
// means verifying the Plex link rather than creating it.
package tautulli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/easiarr/easiarr/internal/clients"
)

// Client is a Tautulli API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// apiResponse is the envelope every command answers with.
type apiResponse struct {
	Response struct {
		Result  string          `json:"result"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	} `json:"response"`
}

type serverInfo struct {
	PMSName       string `json:"pms_name"`
	PMSVersion    string `json:"pms_version"`
	PMSIdentifier string `json:"pms_identifier"`
}

// NewClient creates a Tautulli client without touching the network.
func NewClient(baseURL, apiKey string, httpClient *http.Client, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Health checks that Tautulli answers the status command.
func (c *Client) Health(ctx context.Context) error {
	if err := c.call(ctx, "status", nil, nil); err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	c.logger.Debug().Msg("Tautulli is healthy")
	return nil
}

// Initialized reports whether Tautulli is linked to a Plex server.
func (c *Client) Initialized(ctx context.Context) (bool, error) {
	info, err := c.ServerInfo(ctx)
	if err != nil {
		return false, err
	}
	return info.PMSIdentifier != "", nil
}

// Configure verifies the Plex link. Linking itself only exists in the web
// wizard, so an unlinked instance is reported back to the operator.
func (c *Client) Configure(ctx context.Context) error {
	info, err := c.ServerInfo(ctx)
	if err != nil {
		return err
	}
	if info.PMSIdentifier == "" {
		return fmt.Errorf("tautulli is not linked to a Plex server yet, finish its web wizard first")
	}

	c.logger.Info().Str("server", info.PMSName).Msg("Tautulli is linked to Plex")
	return nil
}

// ServerInfo returns the linked Plex server description.
func (c *Client) ServerInfo(ctx context.Context) (*serverInfo, error) {
	var info serverInfo
	if err := c.call(ctx, "get_server_info", nil, &info); err != nil {
		return nil, fmt.Errorf("failed to get server info: %w", err)
	}
	return &info, nil
}

// call issues one command and unwraps the response envelope.
func (c *Client) call(ctx context.Context, cmd string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)
	params.Set("cmd", cmd)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v2?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &clients.APIError{App: "tautulli", StatusCode: resp.StatusCode, Message: clients.Snippet(raw)}
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if envelope.Response.Result != "success" {
		return fmt.Errorf("command %s failed: %s", cmd, envelope.Response.Message)
	}

	if out != nil && len(envelope.Response.Data) > 0 {
		if err := json.Unmarshal(envelope.Response.Data, out); err != nil {
			return fmt.Errorf("failed to decode %s data: %w", cmd, err)
		}
	}
	return nil
}
