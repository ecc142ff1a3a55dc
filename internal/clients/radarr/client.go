// Package radarr configures a Radarr instance: root folder, naming scheme,
// unwanted-release custom formats, and the qBittorrent download client.
package radarr

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"golift.io/starr"
	"golift.io/starr/radarr"

	"github.com/easiarr/easiarr/internal/clients"
	"github.com/easiarr/easiarr/internal/httpx"
	"github.com/easiarr/easiarr/internal/trash"
)

const (
	// minimumVersion gates configuration: custom format scoring needs v4.
	minimumVersion = "4.0.0"

	// managedTag marks an instance easiarr has finished configuring.
	managedTag = "easiarr"
)

// Settings carries everything Configure needs.
type Settings struct {
	RootFolder string
	Qbit       clients.QbitConnection
}

// Client wraps the starr Radarr client with easiarr's setup operations.
type Client struct {
	client *radarr.Radarr
	logger zerolog.Logger
}

// NewClient creates a Radarr client. It does not touch the network: the
// container may not be running yet, Health is the probe for that.
func NewClient(url, apiKey string, httpClient *http.Client, logger zerolog.Logger) *Client {
	config := starr.New(apiKey, url, httpx.DefaultTimeout)
	if httpClient != nil {
		config.Client = httpClient
	}

	return &Client{
		client: radarr.New(config),
		logger: logger,
	}
}

// Health checks that Radarr is reachable and recent enough to configure.
func (c *Client) Health(ctx context.Context) error {
	if err := c.client.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to reach Radarr: %w", err)
	}

	status, err := c.client.GetSystemStatusContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to get system status: %w", err)
	}

	if err := clients.CheckMinimum(status.Version, minimumVersion); err != nil {
		return fmt.Errorf("unsupported Radarr: %w", err)
	}

	c.logger.Debug().Str("version", status.Version).Msg("Radarr is healthy")
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

	c.logger.Info().Msg("Marked Radarr as configured")
	return nil
}

// Configure runs the full setup in order. Every step is idempotent, so a
// partially configured instance can be run through again.
func (c *Client) Configure(ctx context.Context, settings Settings) error {
	if err := c.EnsureRootFolder(ctx, settings.RootFolder); err != nil {
		return err
	}
	if err := c.ApplyNaming(ctx); err != nil {
		return err
	}
	if err := c.ApplyCustomFormats(ctx); err != nil {
		return err
	}
	if err := c.EnsureDownloadClient(ctx, settings.Qbit); err != nil {
		return err
	}
	return c.MarkInitialized(ctx)
}

// EnsureRootFolder adds path as a root folder unless it already is one.
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

	if _, err := c.client.AddRootFolderContext(ctx, &radarr.RootFolder{Path: path}); err != nil {
		return fmt.Errorf("failed to add root folder %s: %w", path, err)
	}

	c.logger.Info().Str("path", path).Msg("Added root folder")
	return nil
}

// ApplyNaming sets the recommended movie naming scheme.
func (c *Client) ApplyNaming(ctx context.Context) error {
	naming, err := c.client.GetNamingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to get naming config: %w", err)
	}

	want := trash.RadarrNamingConfig()
	naming.RenameMovies = want.RenameMovies
	naming.ReplaceIllegalCharacters = want.ReplaceIllegalCharacters
	naming.ColonReplacementFormat = radarr.CRF(want.ColonReplacement)
	naming.StandardMovieFormat = want.StandardMovieFormat
	naming.MovieFolderFormat = want.MovieFolderFormat

	if _, err := c.client.UpdateNamingContext(ctx, naming); err != nil {
		return fmt.Errorf("failed to update naming config: %w", err)
	}

	c.logger.Info().Msg("Applied naming scheme")
	return nil
}

type formatScore struct {
	name  string
	score int64
}

// ApplyCustomFormats creates the unwanted-release custom formats and scores
// them in every quality profile. Existing formats are matched by name so a
// hand-configured instance is left alone.
func (c *Client) ApplyCustomFormats(ctx context.Context) error {
	existing, err := c.client.GetCustomFormatsContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to get custom formats: %w", err)
	}

	byName := make(map[string]int64, len(existing))
	for _, cf := range existing {
		byName[cf.Name] = cf.ID
	}

	scores := make(map[int64]formatScore)
	for _, format := range trash.RadarrFormats() {
		id, ok := byName[format.Name]
		if !ok {
			created, err := c.client.AddCustomFormatContext(ctx, customFormatInput(format))
			if err != nil {
				return fmt.Errorf("failed to add custom format %s: %w", format.Name, err)
			}
			id = created.ID
			c.logger.Info().Str("format", format.Name).Msg("Added custom format")
		}
		scores[id] = formatScore{name: format.Name, score: format.Score}
	}

	return c.applyFormatScores(ctx, scores)
}

// applyFormatScores pushes the wanted scores into each quality profile,
// appending format items the server has not materialized yet.
func (c *Client) applyFormatScores(ctx context.Context, scores map[int64]formatScore) error {
	profiles, err := c.client.GetQualityProfilesContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to get quality profiles: %w", err)
	}

	for _, profile := range profiles {
		changed := false
		seen := make(map[int64]bool, len(profile.FormatItems))

		for _, item := range profile.FormatItems {
			seen[item.Format] = true
			if want, ok := scores[item.Format]; ok && item.Score != want.score {
				item.Score = want.score
				changed = true
			}
		}
		for id, want := range scores {
			if !seen[id] {
				profile.FormatItems = append(profile.FormatItems, &starr.FormatItem{
					Format: id,
					Name:   want.name,
					Score:  want.score,
				})
				changed = true
			}
		}

		if !changed {
			continue
		}
		if _, err := c.client.UpdateQualityProfileContext(ctx, profile); err != nil {
			return fmt.Errorf("failed to update quality profile %s: %w", profile.Name, err)
		}
		c.logger.Info().Str("profile", profile.Name).Msg("Updated custom format scores")
	}

	return nil
}

// EnsureDownloadClient points Radarr at qBittorrent unless a qBittorrent
// client is already configured.
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

	input := &radarr.DownloadClientInput{
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
			{Name: "movieCategory", Value: qbit.Category},
		},
	}

	if _, err := c.client.AddDownloadClientContext(ctx, input); err != nil {
		return fmt.Errorf("failed to add download client: %w", err)
	}

	c.logger.Info().Str("host", qbit.Host).Int("port", qbit.Port).Msg("Added qBittorrent download client")
	return nil
}

// DefaultQualityProfile returns the lowest numbered quality profile, which
// Overseerr registration needs by id and name.
func (c *Client) DefaultQualityProfile(ctx context.Context) (int64, string, error) {
	profiles, err := c.client.GetQualityProfilesContext(ctx)
	if err != nil {
		return 0, "", fmt.Errorf("failed to get quality profiles: %w", err)
	}
	if len(profiles) == 0 {
		return 0, "", fmt.Errorf("radarr has no quality profiles")
	}

	pick := profiles[0]
	for _, profile := range profiles {
		if profile.ID < pick.ID {
			pick = profile
		}
	}
	return pick.ID, pick.Name, nil
}

// FirstRootFolder returns the first configured root folder path.
func (c *Client) FirstRootFolder(ctx context.Context) (string, error) {
	folders, err := c.client.GetRootFoldersContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get root folders: %w", err)
	}
	if len(folders) == 0 {
		return "", fmt.Errorf("radarr has no root folders")
	}
	return folders[0].Path, nil
}

// customFormatInput converts a guide entry to the API shape.
func customFormatInput(format trash.Format) *radarr.CustomFormatInput {
	input := &radarr.CustomFormatInput{
		Name:                  format.Name,
		IncludeCFWhenRenaming: false,
	}

	for _, spec := range format.Specifications {
		inputSpec := &radarr.CustomFormatInputSpec{
			Name:           spec.Name,
			Implementation: spec.Implementation,
			Negate:         spec.Negate,
			Required:       spec.Required,
		}
		for name, value := range spec.Fields {
			inputSpec.Fields = append(inputSpec.Fields, &starr.FieldInput{Name: name, Value: value})
		}
		input.Specifications = append(input.Specifications, inputSpec)
	}

	return input
}
