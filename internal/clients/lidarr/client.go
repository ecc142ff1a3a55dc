// Package lidarr configures a Lidarr instance: music root folder with
// default profiles and the qBittorrent download client.
package lidarr

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"golift.io/starr"
	"golift.io/starr/lidarr"

	"github.com/easiarr/easiarr/internal/clients"
	"github.com/easiarr/easiarr/internal/httpx"
)

const (
	minimumVersion = "1.0.0"

	managedTag = "easiarr"
)

// Settings carries everything Configure needs.
type Settings struct {
	RootFolder string
	Qbit       clients.QbitConnection
}

// Client wraps the starr Lidarr client with easiarr's setup operations.
type Client struct {
	client *lidarr.Lidarr
	logger zerolog.Logger
}

// NewClient creates a Lidarr client without touching the network.
func NewClient(url, apiKey string, httpClient *http.Client, logger zerolog.Logger) *Client {
	config := starr.New(apiKey, url, httpx.DefaultTimeout)
	if httpClient != nil {
		config.Client = httpClient
	}

	return &Client{
		client: lidarr.New(config),
		logger: logger,
	}
}

// Health checks that Lidarr is reachable and recent enough to configure.
func (c *Client) Health(ctx context.Context) error {
	if err := c.client.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to reach Lidarr: %w", err)
	}

	status, err := c.client.GetSystemStatusContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to get system status: %w", err)
	}

	if err := clients.CheckMinimum(status.Version, minimumVersion); err != nil {
		return fmt.Errorf("unsupported Lidarr: %w", err)
	}

	c.logger.Debug().Str("version", status.Version).Msg("Lidarr is healthy")
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

	c.logger.Info().Msg("Marked Lidarr as configured")
	return nil
}

// Configure runs the full setup in order, each step idempotent.
func (c *Client) Configure(ctx context.Context, settings Settings) error {
	if err := c.EnsureRootFolder(ctx, settings.RootFolder); err != nil {
		return err
	}
	if err := c.EnsureDownloadClient(ctx, settings.Qbit); err != nil {
		return err
	}
	return c.MarkInitialized(ctx)
}

// EnsureRootFolder adds path as the music root folder. Lidarr requires a
// default quality and metadata profile on the folder itself, so the lowest
// numbered profile of each kind is used.
func (c *Client) EnsureRootFolder(ctx context.Context, path string) error {
	folders, err := c.client.GetRootFoldersContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to get root folders: %w", err)
	}

	for _, folder := range folders {
		if folder.Path == path {
			c.logger.Debug().Str("path", path).Msg("Root folder already present")
			return nil
		}
	}

	qualityID, err := c.defaultQualityProfileID(ctx)
	if err != nil {
		return err
	}
	metadataID, err := c.defaultMetadataProfileID(ctx)
	if err != nil {
		return err
	}

	folder := &lidarr.RootFolder{
		Name:                     "Music",
		Path:                     path,
		DefaultQualityProfileID:  qualityID,
		DefaultMetadataProfileID: metadataID,
		DefaultMonitorOption:     "all",
		DefaultTags:              []int{},
	}
	if _, err := c.client.AddRootFolderContext(ctx, folder); err != nil {
		return fmt.Errorf("failed to add root folder %s: %w", path, err)
	}

	c.logger.Info().Str("path", path).Msg("Added root folder")
	return nil
}

func (c *Client) defaultQualityProfileID(ctx context.Context) (int64, error) {
	profiles, err := c.client.GetQualityProfilesContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get quality profiles: %w", err)
	}
	if len(profiles) == 0 {
		return 0, fmt.Errorf("lidarr has no quality profiles")
	}

	id := profiles[0].ID
	for _, profile := range profiles {
		if profile.ID < id {
			id = profile.ID
		}
	}
	return id, nil
}

func (c *Client) defaultMetadataProfileID(ctx context.Context) (int64, error) {
	profiles, err := c.client.GetMetadataProfilesContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get metadata profiles: %w", err)
	}
	if len(profiles) == 0 {
		return 0, fmt.Errorf("lidarr has no metadata profiles")
	}

	id := profiles[0].ID
	for _, profile := range profiles {
		if profile.ID < id {
			id = profile.ID
		}
	}
	return id, nil
}

// EnsureDownloadClient points Lidarr at qBittorrent unless one is already
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

	input := &lidarr.DownloadClientInput{
		Enable:                   true,
		RemoveCompletedDownloads: true,
		RemoveFailedDownloads:    true,
		Priority:                 1,
		Name:                     "qBittorrent",
		Implementation:           "QBittorrent",
		ConfigContract:           "QBittorrentSettings",
		Protocol:                 "torrent",
		Fields: []*starr.FieldInput{
			{Name: "host", Value: qbit.Host},
			{Name: "port", Value: qbit.Port},
			{Name: "useSsl", Value: false},
			{Name: "username", Value: qbit.Username},
			{Name: "password", Value: qbit.Password},
			{Name: "musicCategory", Value: qbit.Category},
		},
	}

	if _, err := c.client.AddDownloadClientContext(ctx, input); err != nil {
		return fmt.Errorf("failed to add download client: %w", err)
	}

	c.logger.Info().Str("host", qbit.Host).Int("port", qbit.Port).Msg("Added qBittorrent download client")
	return nil
}
