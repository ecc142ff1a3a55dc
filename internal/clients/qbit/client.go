// Package qbit configures a qBittorrent instance: WebUI credentials, one
// download category per library app, and transfer preferences.
package qbit

import (
	"context"
	"fmt"
	"path"

	"github.com/autobrr/go-qbittorrent"
	"github.com/rs/zerolog"
)

// Category is one download category and where its payloads land.
type Category struct {
	Name     string
	SavePath string
}

// Settings carries everything Configure needs. Username and Password are
// the credentials the WebUI should end up with.
type Settings struct {
	Username           string
	Password           string
	SavePath           string
	Categories         []Category
	MaxActiveDownloads int
	MaxActiveTorrents  int
}

// Client wraps the qBittorrent API client with easiarr's setup operations.
type Client struct {
	client *qbittorrent.Client
	logger zerolog.Logger
}

// NewClient creates a qBittorrent client without logging in. The login
// happens lazily on the first call so the container does not need to be
// running yet.
func NewClient(url, username, password string, logger zerolog.Logger) *Client {
	client := qbittorrent.NewClient(qbittorrent.Config{
		Host:     url,
		Username: username,
		Password: password,
	})

	return &Client{
		client: client,
		logger: logger,
	}
}

// Health checks that qBittorrent is reachable and the credentials work.
func (c *Client) Health(ctx context.Context) error {
	if err := c.client.LoginCtx(ctx); err != nil {
		return fmt.Errorf("failed to log in to qBittorrent: %w", err)
	}

	version, err := c.client.GetAppVersionCtx(ctx)
	if err != nil {
		return fmt.Errorf("failed to get app version: %w", err)
	}

	c.logger.Debug().Str("version", version).Msg("qBittorrent is healthy")
	return nil
}

// Initialized reports whether every wanted category already exists.
func (c *Client) Initialized(ctx context.Context, want []Category) (bool, error) {
	if err := c.client.LoginCtx(ctx); err != nil {
		return false, fmt.Errorf("failed to log in to qBittorrent: %w", err)
	}

	existing, err := c.client.GetCategoriesCtx(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get categories: %w", err)
	}

	for _, category := range want {
		if _, ok := existing[category.Name]; !ok {
			return false, nil
		}
	}
	return true, nil
}

// Configure runs the full setup in order, each step idempotent.
func (c *Client) Configure(ctx context.Context, settings Settings) error {
	if err := c.client.LoginCtx(ctx); err != nil {
		return fmt.Errorf("failed to log in to qBittorrent: %w", err)
	}

	if err := c.EnsureCategories(ctx, settings.Categories); err != nil {
		return err
	}
	if err := c.ApplyPreferences(ctx, settings); err != nil {
		return err
	}
	return c.SetWebUICredentials(ctx, settings.Username, settings.Password)
}

// EnsureCategories creates the wanted categories, fixing the save path of
// any that exist but point elsewhere.
func (c *Client) EnsureCategories(ctx context.Context, categories []Category) error {
	existing, err := c.client.GetCategoriesCtx(ctx)
	if err != nil {
		return fmt.Errorf("failed to get categories: %w", err)
	}

	for _, category := range categories {
		current, ok := existing[category.Name]
		if ok && current.SavePath == category.SavePath {
			c.logger.Debug().Str("category", category.Name).Msg("Category already present")
			continue
		}

		if ok {
			if err := c.client.EditCategoryCtx(ctx, category.Name, category.SavePath); err != nil {
				return fmt.Errorf("failed to edit category %s: %w", category.Name, err)
			}
			c.logger.Info().Str("category", category.Name).Str("path", category.SavePath).Msg("Updated category save path")
			continue
		}

		if err := c.client.CreateCategoryCtx(ctx, category.Name, category.SavePath); err != nil {
			return fmt.Errorf("failed to create category %s: %w", category.Name, err)
		}
		c.logger.Info().Str("category", category.Name).Str("path", category.SavePath).Msg("Created category")
	}

	return nil
}

// ApplyPreferences sets the save path, queueing limits, and automatic
// torrent management.
func (c *Client) ApplyPreferences(ctx context.Context, settings Settings) error {
	maxDownloads := settings.MaxActiveDownloads
	if maxDownloads == 0 {
		maxDownloads = 5
	}
	maxTorrents := settings.MaxActiveTorrents
	if maxTorrents == 0 {
		maxTorrents = 10
	}

	prefs := map[string]interface{}{
		"auto_tmm_enabled":     true,
		"queueing_enabled":     true,
		"max_active_downloads": maxDownloads,
		"max_active_torrents":  maxTorrents,
	}
	if settings.SavePath != "" {
		prefs["save_path"] = settings.SavePath
		prefs["temp_path"] = path.Join(settings.SavePath, "incomplete")
		prefs["temp_path_enabled"] = true
	}

	if err := c.client.SetPreferencesCtx(ctx, prefs); err != nil {
		return fmt.Errorf("failed to set preferences: %w", err)
	}

	c.logger.Info().Msg("Applied transfer preferences")
	return nil
}

// SetWebUICredentials rotates the WebUI login. qBittorrent hashes the
// password server side, so it is sent in the clear over the API.
func (c *Client) SetWebUICredentials(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	prefs := map[string]interface{}{
		"web_ui_username": username,
		"web_ui_password": password,
	}
	if err := c.client.SetPreferencesCtx(ctx, prefs); err != nil {
		return fmt.Errorf("failed to set WebUI credentials: %w", err)
	}

	c.logger.Info().Str("username", username).Msg("Set WebUI credentials")
	return nil
}
