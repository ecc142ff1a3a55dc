// Package jellyfin drives a Jellyfin instance through its first-run wizard
// and library setup: startup configuration, first user, remote access,
// media libraries, and an API key for the other services.
package jellyfin

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/easiarr/easiarr/internal/clients"
	"github.com/easiarr/easiarr/internal/version"
)

const appName = "easiarr"

// Settings carries everything Configure needs.
type Settings struct {
	Username  string
	Password  string
	Libraries []Library
}

// Client is a Jellyfin API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a Jellyfin client. No credentials yet: before the
// startup wizard has run there is nothing to authenticate with.
func NewClient(baseURL string, httpClient *http.Client, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Health checks that Jellyfin answers its public system endpoint.
func (c *Client) Health(ctx context.Context) error {
	info, err := c.systemInfo(ctx)
	if err != nil {
		return err
	}

	c.logger.Debug().Str("version", info.Version).Str("server", info.ServerName).Msg("Jellyfin is healthy")
	return nil
}

// Initialized reports whether the startup wizard has been completed.
func (c *Client) Initialized(ctx context.Context) (bool, error) {
	info, err := c.systemInfo(ctx)
	if err != nil {
		return false, err
	}
	return info.StartupWizardCompleted, nil
}

// Configure completes the startup wizard if needed, signs in, creates the
// media libraries, and returns an API key for the other services to use.
func (c *Client) Configure(ctx context.Context, settings Settings) (string, error) {
	done, err := c.Initialized(ctx)
	if err != nil {
		return "", err
	}
	if !done {
		if err := c.CompleteStartupWizard(ctx, settings.Username, settings.Password); err != nil {
			return "", err
		}
	}

	if err := c.Authenticate(ctx, settings.Username, settings.Password); err != nil {
		return "", err
	}
	if err := c.EnsureLibraries(ctx, settings.Libraries); err != nil {
		return "", err
	}
	return c.EnsureAPIKey(ctx)
}

// CompleteStartupWizard walks the first-run chain: culture, first user,
// remote access, complete. The wizard endpoints only answer until the
// wizard is done, so this is inherently a one-shot.
func (c *Client) CompleteStartupWizard(ctx context.Context, username, password string) error {
	culture := startupConfiguration{
		UICulture:                 "en-US",
		MetadataCountryCode:       "US",
		PreferredMetadataLanguage: "en",
	}
	if err := c.doRequest(ctx, http.MethodPost, "/Startup/Configuration", nil, culture, nil); err != nil {
		return fmt.Errorf("failed to set startup configuration: %w", err)
	}

	// The wizard materializes the first user on this read.
	if err := c.doRequest(ctx, http.MethodGet, "/Startup/User", nil, nil, nil); err != nil {
		return fmt.Errorf("failed to read startup user: %w", err)
	}
	user := startupUser{Name: username, Password: password}
	if err := c.doRequest(ctx, http.MethodPost, "/Startup/User", nil, user, nil); err != nil {
		return fmt.Errorf("failed to create first user: %w", err)
	}

	remote := startupRemoteAccess{EnableRemoteAccess: true, EnableAutomaticPortMapping: false}
	if err := c.doRequest(ctx, http.MethodPost, "/Startup/RemoteAccess", nil, remote, nil); err != nil {
		return fmt.Errorf("failed to set remote access: %w", err)
	}

	if err := c.doRequest(ctx, http.MethodPost, "/Startup/Complete", nil, nil, nil); err != nil {
		return fmt.Errorf("failed to complete startup wizard: %w", err)
	}

	c.logger.Info().Str("username", username).Msg("Completed Jellyfin startup wizard")
	return nil
}

// Authenticate signs in and keeps the session token for later calls.
func (c *Client) Authenticate(ctx context.Context, username, password string) error {
	var auth authResponse
	body := authRequest{Username: username, Pw: password}
	if err := c.doRequest(ctx, http.MethodPost, "/Users/AuthenticateByName", nil, body, &auth); err != nil {
		return fmt.Errorf("failed to authenticate: %w", err)
	}
	if auth.AccessToken == "" {
		return fmt.Errorf("jellyfin: %w", clients.ErrUnauthorized)
	}

	c.token = auth.AccessToken
	c.logger.Debug().Str("user", auth.User.Name).Msg("Authenticated with Jellyfin")
	return nil
}

// EnsureAPIKey returns the easiarr API key, creating it if absent. The
// create endpoint returns no body, so the list is re-read afterwards.
func (c *Client) EnsureAPIKey(ctx context.Context) (string, error) {
	key, err := c.findAPIKey(ctx)
	if err != nil {
		return "", err
	}
	if key != "" {
		return key, nil
	}

	params := url.Values{}
	params.Set("app", appName)
	if err := c.doRequest(ctx, http.MethodPost, "/Auth/Keys", params, nil, nil); err != nil {
		return "", fmt.Errorf("failed to create API key: %w", err)
	}

	key, err = c.findAPIKey(ctx)
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", fmt.Errorf("jellyfin did not list the API key it just created")
	}

	c.logger.Info().Msg("Created Jellyfin API key")
	return key, nil
}

func (c *Client) findAPIKey(ctx context.Context) (string, error) {
	var list apiKeyList
	if err := c.doRequest(ctx, http.MethodGet, "/Auth/Keys", nil, nil, &list); err != nil {
		return "", fmt.Errorf("failed to list API keys: %w", err)
	}

	for _, item := range list.Items {
		if item.AppName == appName {
			return item.AccessToken, nil
		}
	}
	return "", nil
}

// EnsureLibraries creates the wanted media libraries, matching existing
// ones by name.
func (c *Client) EnsureLibraries(ctx context.Context, libraries []Library) error {
	var existing []virtualFolder
	if err := c.doRequest(ctx, http.MethodGet, "/Library/VirtualFolders", nil, nil, &existing); err != nil {
		return fmt.Errorf("failed to list libraries: %w", err)
	}

	present := make(map[string]bool, len(existing))
	for _, folder := range existing {
		present[folder.Name] = true
	}

	for _, library := range libraries {
		if present[library.Name] {
			c.logger.Debug().Str("library", library.Name).Msg("Library already present")
			continue
		}

		params := url.Values{}
		params.Set("name", library.Name)
		params.Set("collectionType", library.CollectionType)
		params.Set("refreshLibrary", "true")
		body := addVirtualFolderRequest{
			LibraryOptions: libraryOptions{
				PathInfos: []pathInfo{{Path: library.Path}},
			},
		}
		if err := c.doRequest(ctx, http.MethodPost, "/Library/VirtualFolders", params, body, nil); err != nil {
			return fmt.Errorf("failed to add library %s: %w", library.Name, err)
		}

		c.logger.Info().Str("library", library.Name).Str("path", library.Path).Msg("Added media library")
	}

	return nil
}

func (c *Client) systemInfo(ctx context.Context) (*PublicSystemInfo, error) {
	var info PublicSystemInfo
	if err := c.doRequest(ctx, http.MethodGet, "/System/Info/Public", nil, nil, &info); err != nil {
		return nil, fmt.Errorf("failed to get system info: %w", err)
	}
	return &info, nil
}

// doRequest performs an HTTP request with the MediaBrowser auth scheme.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, params url.Values, body, out any) error {
	u := c.baseURL + endpoint
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
	req.Header.Set("Authorization", c.authHeader())

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
		return &clients.APIError{App: "jellyfin", StatusCode: resp.StatusCode, Message: clients.Snippet(raw)}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// authHeader builds the MediaBrowser authorization header, with the session
// token appended once one exists.
func (c *Client) authHeader() string {
	header := fmt.Sprintf("MediaBrowser Client=%q, Device=%q, DeviceId=%q, Version=%q",
		appName, appName, appName, version.Version)
	if c.token != "" {
		header += fmt.Sprintf(", Token=%q", c.token)
	}
	return header
}
