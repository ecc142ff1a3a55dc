// Package artifacts runs the generate flow: it lays out the stack directory,
// seeds the .env store, and writes docker-compose.yml with its companion
// files. Every write is compared against what is already on disk, so a
// repeated run reports unchanged artifacts instead of churning them, and
// changed files leave a .bak sibling behind.
package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/easiarr/easiarr/internal/bookmarks"
	"github.com/easiarr/easiarr/internal/compose"
	"github.com/easiarr/easiarr/internal/config"
	"github.com/easiarr/easiarr/internal/envfile"
	"github.com/easiarr/easiarr/internal/homepage"
	"github.com/easiarr/easiarr/internal/paths"
	"github.com/easiarr/easiarr/internal/registry"
	"github.com/easiarr/easiarr/internal/secrets"
	"github.com/easiarr/easiarr/internal/soularr"
	"github.com/easiarr/easiarr/internal/system"
)

// plexTokenKey is seeded as an empty placeholder when Plex or Overseerr is in
// the plan; the operator fills it in from plex.tv.
const plexTokenKey = "PLEX__TOKEN"

// legacyEnvRenames maps pre-1.0 key spellings to their current names. Early
// versions joined app and suffix with a single underscore, which made keys
// like UPTIME_KUMA_PASSWORD ambiguous. Credentials found under the old
// names move, so a rerun never regenerates them.
func legacyEnvRenames(apps []registry.App) map[string]string {
	renames := map[string]string{"TIMEZONE": "TZ"}
	for _, app := range apps {
		for _, suffix := range app.Secrets {
			renames[app.EnvPrefix()+"_"+strings.ToUpper(suffix)] = app.EnvKey(suffix)
		}
	}
	return renames
}

// Action says what Run did to one artifact.
type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
)

// Artifact is one generated file. Diff is only populated when the Generator
// runs with WithDiff, and never for files carrying credentials.
type Artifact struct {
	Path   string
	Action Action
	Diff   string
}

// Generator writes the stack directory for the current settings.
type Generator struct {
	Settings config.Settings

	// Env is the .env store next to the compose file.
	Env *envfile.Store

	Logger zerolog.Logger

	// WithDiff attaches line diffs to updated artifacts for the preview.
	WithDiff bool

	// Force regenerates artifacts that are normally left alone once they
	// exist, currently the qBittorrent preseed.
	Force bool
}

// New returns a Generator rooted at the settings' stack directory.
func New(settings config.Settings, logger zerolog.Logger) *Generator {
	root := paths.Expand(settings.RootDir)
	return &Generator{
		Settings: settings,
		Env:      envfile.New(filepath.Join(root, ".env")),
		Logger:   logger,
	}
}

// Run generates everything: directories, .env, docker-compose.yml,
// bookmarks.html, and the per-app companion configs. The compose topology is
// validated before the first byte is written, so an invalid selection leaves
// the stack directory untouched.
func (g *Generator) Run(ctx context.Context) ([]Artifact, error) {
	apps := g.Settings.EnabledApps()
	enabled := make(map[string]registry.App, len(apps))
	for _, app := range apps {
		enabled[app.ID] = app
	}

	project, err := compose.NewBuilder(g.Settings).Project()
	if err != nil {
		return nil, err
	}

	if err := g.ensureDirs(apps); err != nil {
		return nil, err
	}

	var arts []Artifact
	record := func(art Artifact, err error) error {
		if err != nil {
			return err
		}
		g.Logger.Debug().Str("path", art.Path).Str("action", string(art.Action)).Msg("artifact")
		arts = append(arts, art)
		return nil
	}

	envArt, err := g.ensureEnv(apps)
	if err := record(envArt, err); err != nil {
		return arts, err
	}

	composeData, err := compose.Render(project)
	if err != nil {
		return arts, err
	}
	if err := compose.Verify(ctx, composeData); err != nil {
		return arts, err
	}
	art, err := g.write(g.rootPath("docker-compose.yml"), composeData)
	if err := record(art, err); err != nil {
		return arts, err
	}

	art, err = g.write(g.rootPath("bookmarks.html"), bookmarks.Render(g.Settings))
	if err := record(art, err); err != nil {
		return arts, err
	}

	if _, ok := enabled["homepage"]; ok {
		data, err := homepage.Render(g.Settings)
		if err != nil {
			return arts, err
		}
		art, err = g.write(g.rootPath("homepage", "services.yaml"), data)
		if err := record(art, err); err != nil {
			return arts, err
		}
	}

	if soularr.Wanted(g.Settings) {
		art, err = g.soularrConfig(enabled)
		if err := record(art, err); err != nil {
			return arts, err
		}
	}

	if qb, ok := enabled["qbittorrent"]; ok {
		art, err = g.qbitPreseed(qb)
		if err := record(art, err); err != nil {
			return arts, err
		}
	}

	g.Logger.Info().Int("artifacts", len(arts)).Str("dir", paths.Expand(g.Settings.RootDir)).Msg("stack generated")
	return arts, nil
}

func (g *Generator) rootPath(parts ...string) string {
	elems := append([]string{paths.Expand(g.Settings.RootDir)}, parts...)
	return filepath.Join(elems...)
}

// ensureDirs creates the stack layout up front: per-app config dirs plus the
// library and download subfolders the containers expect to find mounted.
// Pre-creating them here keeps docker from making them root-owned.
func (g *Generator) ensureDirs(apps []registry.App) error {
	root := paths.Expand(g.Settings.RootDir)
	media := paths.Expand(g.Settings.MediaDir)
	downloads := paths.Expand(g.Settings.DownloadsDir)

	dirs := []string{root, media, downloads}
	for _, app := range apps {
		if compose.NeedsConfigDir(app) {
			dirs = append(dirs, filepath.Join(root, app.ID))
		}
		if app.MediaFolder != "" {
			dirs = append(dirs,
				filepath.Join(media, app.MediaFolder),
				filepath.Join(downloads, app.MediaFolder))
		}
		switch app.ID {
		case "prowlarr":
			dirs = append(dirs, filepath.Join(downloads, "prowlarr"))
		case "qbittorrent":
			dirs = append(dirs, filepath.Join(downloads, "incomplete"))
		}
	}

	for _, dir := range dirs {
		if err := g.makeDir(dir); err != nil {
			return err
		}
	}
	return nil
}

// makeDir creates dir if it is missing and hands a fresh one to the stack
// user. Directories that already exist are left exactly as found, so media
// libraries the operator owns are never re-chowned.
func (g *Generator) makeDir(dir string) error {
	if _, err := os.Stat(dir); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return system.Chown(g.Logger, dir, g.Settings.PUID, g.Settings.PGID)
}

// ensureEnv backs up and reseeds the .env store. The artifact entry never
// carries a diff: the file is all credentials.
func (g *Generator) ensureEnv(apps []registry.App) (Artifact, error) {
	path := g.Env.Path()
	before, err := os.ReadFile(path)
	existed := err == nil
	if err != nil && !os.IsNotExist(err) {
		return Artifact{}, err
	}

	if _, err := g.Env.Backup(time.Now()); err != nil {
		return Artifact{}, err
	}
	if !existed {
		if err := g.restoreEnvBackup(); err != nil {
			return Artifact{}, err
		}
	}
	renamed, err := g.Env.Migrate(legacyEnvRenames(apps))
	if err != nil {
		return Artifact{}, err
	}
	if len(renamed) > 0 {
		g.Logger.Info().Strs("renamed", renamed).Msg("migrated legacy .env keys")
	}
	if err := g.seedEnv(apps); err != nil {
		return Artifact{}, err
	}

	after, err := os.ReadFile(path)
	if err != nil {
		return Artifact{}, err
	}

	art := Artifact{Path: path, Action: ActionCreated}
	switch {
	case existed && bytes.Equal(before, after):
		art.Action = ActionUnchanged
	case existed:
		art.Action = ActionUpdated
	}
	return art, nil
}

// restoreEnvBackup folds the newest backup's keys into a missing .env, so a
// deleted file does not cause fresh credentials to be minted for apps that
// were already provisioned with the old ones.
func (g *Generator) restoreEnvBackup() error {
	backup, err := g.Env.LatestBackup()
	if err != nil || backup == "" {
		return err
	}
	restored, err := g.Env.MergeMissing(envfile.New(backup))
	if err != nil {
		return err
	}
	if len(restored) > 0 {
		g.Logger.Warn().Str("backup", backup).Int("keys", len(restored)).Msg(".env was missing, restored from backup")
	}
	return nil
}

// seedEnv writes the .env keys the compose file interpolates. Values the
// settings own (ports, directories, identity) are rewritten every run;
// generated credentials and captured API keys are only filled in when absent,
// so a re-run never rotates what provisioning already pushed to the apps.
func (g *Generator) seedEnv(apps []registry.App) error {
	s := g.Settings

	globals := [][2]string{
		{"TZ", s.Timezone},
		{"PUID", s.PUID},
		{"PGID", s.PGID},
		{"ROOT_DIR", paths.Expand(s.RootDir)},
		{"MEDIA_DIR", paths.Expand(s.MediaDir)},
		{"DOWNLOADS_DIR", paths.Expand(s.DownloadsDir)},
	}
	for _, kv := range globals {
		if err := g.Env.Set(kv[0], kv[1]); err != nil {
			return err
		}
	}

	enabled := make(map[string]bool, len(apps))
	for _, app := range apps {
		enabled[app.ID] = true
		if app.HasWebUI() {
			if err := g.Env.Set(app.EnvKey("PORT"), strconv.Itoa(s.PortFor(app))); err != nil {
				return err
			}
		}
		for _, suffix := range app.Secrets {
			if err := g.seedSecret(app, suffix); err != nil {
				return err
			}
		}
	}

	if enabled["gluetun"] {
		provider := s.VPN.Provider
		if provider == "" {
			provider = "custom"
		}
		if err := g.Env.Set("GLUETUN__PROVIDER", provider); err != nil {
			return err
		}
	}
	if enabled["plex"] || enabled["overseerr"] {
		if _, err := g.Env.SetDefault(plexTokenKey, ""); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) seedSecret(app registry.App, suffix string) error {
	key := app.EnvKey(suffix)
	switch suffix {
	case "USER":
		_, err := g.Env.SetDefault(key, "admin")
		return err
	case "PASSWORD":
		pass, err := secrets.NewPassword(16)
		if err != nil {
			return err
		}
		_, err = g.Env.SetDefault(key, pass)
		return err
	case "API_KEY":
		// slskd reads its key from the environment at boot, so it is the
		// one app whose key easiarr mints instead of capturing.
		if app.ID == "slskd" {
			k, err := secrets.NewAPIKey()
			if err != nil {
				return err
			}
			_, err = g.Env.SetDefault(key, k)
			return err
		}
		_, err := g.Env.SetDefault(key, "")
		return err
	case "WIREGUARD_PRIVATE_KEY":
		if g.Settings.VPN.WireguardKey != "" {
			return g.Env.Set(key, g.Settings.VPN.WireguardKey)
		}
		_, err := g.Env.SetDefault(key, "")
		return err
	default:
		_, err := g.Env.SetDefault(key, "")
		return err
	}
}

// soularrConfig writes the bridge config with whatever keys .env has right
// now. Lidarr's key is usually still empty here; the provisioning step
// rewrites the file once it is captured.
func (g *Generator) soularrConfig(enabled map[string]registry.App) (Artifact, error) {
	var lidarrKey, slskdKey string
	if lid, ok := enabled["lidarr"]; ok {
		k, err := g.Env.Get(lid.EnvKey("API_KEY"))
		if err != nil {
			return Artifact{}, err
		}
		lidarrKey = k
	}
	if sl, ok := enabled["slskd"]; ok {
		k, err := g.Env.Get(sl.EnvKey("API_KEY"))
		if err != nil {
			return Artifact{}, err
		}
		slskdKey = k
	}

	data, err := soularr.Render(g.Settings, lidarrKey, slskdKey)
	if err != nil {
		return Artifact{}, err
	}
	return g.write(g.rootPath("soularr", "config.ini"), data)
}

// qbitPreseed drops a first-boot qBittorrent.conf so the generated WebUI
// credentials work immediately. An existing file is never touched unless
// Force is set: qBittorrent rewrites its config at runtime and owns it from
// first boot on.
func (g *Generator) qbitPreseed(qb registry.App) (Artifact, error) {
	path := g.rootPath(qb.ID, "qBittorrent", "qBittorrent.conf")
	if !g.Force {
		if _, err := os.Stat(path); err == nil {
			return Artifact{Path: path, Action: ActionUnchanged}, nil
		} else if !os.IsNotExist(err) {
			return Artifact{}, err
		}
	}

	user, err := g.Env.Get(qb.EnvKey("USER"))
	if err != nil {
		return Artifact{}, err
	}
	pass, err := g.Env.Get(qb.EnvKey("PASSWORD"))
	if err != nil {
		return Artifact{}, err
	}
	if user == "" || pass == "" {
		return Artifact{}, fmt.Errorf("qbittorrent credentials are missing from %s", g.Env.Path())
	}

	hash, err := secrets.QbitPasswordHash(pass)
	if err != nil {
		return Artifact{}, err
	}

	art, err := g.write(path, renderQbitConf(user, hash, qb.WebPort()))
	if err != nil {
		return Artifact{}, err
	}
	// The PBKDF2 entry is still a credential; keep it out of the preview.
	art.Diff = ""
	return art, nil
}

// write lands data at path: unchanged content is left alone, changed content
// is backed up to a .bak sibling and replaced through a temp file and rename.
func (g *Generator) write(path string, data []byte) (Artifact, error) {
	old, err := os.ReadFile(path)
	existed := err == nil
	if err != nil && !os.IsNotExist(err) {
		return Artifact{}, err
	}

	if existed && bytes.Equal(old, data) {
		return Artifact{Path: path, Action: ActionUnchanged}, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Artifact{}, err
	}

	art := Artifact{Path: path, Action: ActionCreated}
	if existed {
		art.Action = ActionUpdated
		if err := os.WriteFile(path+".bak", old, 0o644); err != nil {
			return Artifact{}, fmt.Errorf("failed to back up %s: %w", path, err)
		}
	}
	if g.WithDiff {
		art.Diff = compose.Diff(string(old), string(data))
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return Artifact{}, err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return Artifact{}, err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return Artifact{}, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return Artifact{}, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return Artifact{}, err
	}
	return art, nil
}
