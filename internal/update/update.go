// Package update checks GitHub releases for a newer easiarr and replaces the
// running binary in place.
package update

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/rs/zerolog"

	"github.com/easiarr/easiarr/internal/version"
)

const repoSlug = "easiarr/easiarr"

// Status is the outcome of a release check.
type Status struct {
	Current   string
	Latest    string
	Available bool
}

// Channel returns the update channel the running build follows: the version
// suffix after the first dash, or "stable" for plain releases.
func Channel() string {
	return channelOf(version.Version)
}

func channelOf(v string) string {
	if _, suffix, found := strings.Cut(v, "-"); found {
		return suffix
	}
	return "stable"
}

func updater(channel string) (*selfupdate.Updater, error) {
	cfg := selfupdate.Config{
		Prerelease: !strings.EqualFold(channel, "stable"),
	}
	return selfupdate.NewUpdater(cfg)
}

// Check looks up the newest release without touching the binary. A release
// only counts as available on the channel the running build follows, so a
// dev build never flags a stable release.
func Check(ctx context.Context) (Status, error) {
	status := Status{Current: version.Version}

	current, err := semver.NewVersion(strings.TrimPrefix(version.Version, "v"))
	if err != nil {
		return status, nil
	}

	up, err := updater(Channel())
	if err != nil {
		return status, fmt.Errorf("failed to create updater: %w", err)
	}
	latest, found, err := up.DetectLatest(ctx, selfupdate.ParseSlug(repoSlug))
	if err != nil {
		return status, fmt.Errorf("failed to check releases: %w", err)
	}
	if !found {
		return status, nil
	}

	status.Latest = latest.Version()
	remote, err := semver.NewVersion(strings.TrimPrefix(status.Latest, "v"))
	if err != nil {
		return status, nil
	}
	status.Available = remote.GreaterThan(current) && channelOf(status.Latest) == Channel()
	return status, nil
}

// Apply replaces the running binary. An empty target takes the newest
// release on the current channel; a "vX.Y.Z" target pins that release.
func Apply(ctx context.Context, log zerolog.Logger, target string) error {
	if target != "" {
		log.Info().Str("from", version.Version).Str("to", target).Msg("updating")
		if err := selfupdate.UpdateTo(ctx, version.Version, target, repoSlug); err != nil {
			return fmt.Errorf("failed to update to %s: %w", target, err)
		}
		return nil
	}

	up, err := updater(Channel())
	if err != nil {
		return fmt.Errorf("failed to create updater: %w", err)
	}
	release, err := up.UpdateSelf(ctx, version.Version, selfupdate.ParseSlug(repoSlug))
	if err != nil {
		return fmt.Errorf("failed to update: %w", err)
	}
	log.Info().Str("from", version.Version).Str("to", release.Version()).Msg("updated")
	return nil
}
