// Package portainer configures a Portainer instance: first-run admin user,
// JWT auth, and the local Docker endpoint.
package portainer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/easiarr/easiarr/internal/clients"
)

// Settings carries everything Configure needs.
type Settings struct {
	Username string
	Password string
}

// Client is a Portainer API client.
type Client struct {
	baseURL    string
	jwt        string
	httpClient *http.Client
	logger     zerolog.Logger
}

type systemStatus struct {
	Version string `json:"Version"`
}

type adminInitRequest struct {
	Username string `json:"Username"`
	Password string `json:"Password"`
}

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	JWT string `json:"jwt"`
}

type endpoint struct {
	ID   int64  `json:"Id"`
	Name string `json:"Name"`
}

// NewClient creates a Portainer client without touching the network.
func NewClient(baseURL string, httpClient *http.Client, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Health checks that Portainer answers its status endpoint.
func (c *Client) Health(ctx context.Context) error {
	var status systemStatus
	if err := c.doRequest(ctx, http.MethodGet, "/api/system/status", nil, &status); err != nil {
		return fmt.Errorf("failed to get system status: %w", err)
	}

	c.logger.Debug().Str("version", status.Version).Msg("Portainer is healthy")
	return nil
}

// Initialized reports whether the admin user has been created. Portainer
// answers 204 when it exists and 404 while first-run setup is pending.
func (c *Client) Initialized(ctx context.Context) (bool, error) {
	err := c.doRequest(ctx, http.MethodGet, "/api/users/admin/check", nil, nil)
	if err == nil {
		return true, nil
	}

	var apiErr *clients.APIError
	if errors.As(err, &apiErr) && apiErr.IsNotFound() {
		return false, nil
	}
	return false, fmt.Errorf("failed to check admin user: %w", err)
}

// Configure runs the full setup in order, each step idempotent.
func (c *Client) Configure(ctx context.Context, settings Settings) error {
	done, err := c.Initialized(ctx)
	if err != nil {
		return err
	}
	if !done {
		if err := c.InitAdmin(ctx, settings.Username, settings.Password); err != nil {
			return err
		}
	}

	if err := c.Authenticate(ctx, settings.Username, settings.Password); err != nil {
		return err
	}
	return c.EnsureLocalEndpoint(ctx)
}

// InitAdmin creates the first admin user. Portainer only allows this once;
// a conflict means someone beat us to it, which is fine.
func (c *Client) InitAdmin(ctx context.Context, username, password string) error {
	body := adminInitRequest{Username: username, Password: password}
	err := c.doRequest(ctx, http.MethodPost, "/api/users/admin/init", body, nil)
	if err != nil {
		var apiErr *clients.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
			c.logger.Debug().Msg("Admin user already exists")
			return nil
		}
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	c.logger.Info().Str("username", username).Msg("Created Portainer admin user")
	return nil
}

// Authenticate signs in and keeps the JWT for later calls.
func (c *Client) Authenticate(ctx context.Context, username, password string) error {
	var auth authResponse
	body := authRequest{Username: username, Password: password}
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth", body, &auth); err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}
	if auth.JWT == "" {
		return fmt.Errorf("portainer: %w", clients.ErrUnauthorized)
	}

	c.jwt = auth.JWT
	return nil
}

// EnsureLocalEndpoint registers the local Docker socket as an environment
// unless one is already present.
func (c *Client) EnsureLocalEndpoint(ctx context.Context) error {
	var endpoints []endpoint
	if err := c.doRequest(ctx, http.MethodGet, "/api/endpoints", nil, &endpoints); err != nil {
		return fmt.Errorf("failed to list endpoints: %w", err)
	}
	if len(endpoints) > 0 {
		c.logger.Debug().Str("endpoint", endpoints[0].Name).Msg("Docker endpoint already present")
		return nil
	}

	// Endpoint creation is a multipart form, not JSON. Type 1 is the local
	// Docker socket.
	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	if err := writer.WriteField("Name", "local"); err != nil {
		return fmt.Errorf("failed to build form: %w", err)
	}
	if err := writer.WriteField("EndpointCreationType", "1"); err != nil {
		return fmt.Errorf("failed to build form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/endpoints", &form)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.jwt)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &clients.APIError{App: "portainer", StatusCode: resp.StatusCode, Message: clients.Snippet(raw)}
	}

	c.logger.Info().Msg("Registered local Docker endpoint")
	return nil
}

// doRequest performs a JSON request, attaching the JWT once one exists.
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
	if c.jwt != "" {
		req.Header.Set("Authorization", "Bearer "+c.jwt)
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
		return &clients.APIError{App: "portainer", StatusCode: resp.StatusCode, Message: clients.Snippet(raw)}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
