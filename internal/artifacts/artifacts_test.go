package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/ini.v1"

	"github.com/easiarr/easiarr/internal/config"
	"github.com/easiarr/easiarr/internal/secrets"
)

func testGenerator(t *testing.T, apps ...string) *Generator {
	t.Helper()

	base := t.TempDir()
	s := config.Defaults()
	s.Apps = apps
	s.RootDir = filepath.Join(base, "stack")
	s.MediaDir = filepath.Join(base, "media")
	s.DownloadsDir = filepath.Join(base, "downloads")
	return New(s, zerolog.Nop())
}

func findArtifact(t *testing.T, arts []Artifact, name string) Artifact {
	t.Helper()
	for _, a := range arts {
		if filepath.Base(a.Path) == name {
			return a
		}
	}
	t.Fatalf("no artifact named %s in %v", name, arts)
	return Artifact{}
}

func TestRunCreatesStack(t *testing.T) {
	t.Parallel()

	g := testGenerator(t, "radarr", "homepage")
	arts, err := g.Run(context.Background())
	require.NoError(t, err)

	for _, name := range []string{".env", "docker-compose.yml", "bookmarks.html", "services.yaml", "qBittorrent.conf"} {
		art := findArtifact(t, arts, name)
		assert.Equal(t, ActionCreated, art.Action, name)
		assert.FileExists(t, art.Path)
	}

	root := g.Settings.RootDir
	assert.DirExists(t, filepath.Join(root, "radarr"))
	assert.DirExists(t, filepath.Join(root, "qbittorrent"))
	assert.DirExists(t, filepath.Join(g.Settings.MediaDir, "movies"))
	assert.DirExists(t, filepath.Join(g.Settings.DownloadsDir, "movies"))
	assert.DirExists(t, filepath.Join(g.Settings.DownloadsDir, "incomplete"))

	tz, err := g.Env.Get("TZ")
	require.NoError(t, err)
	assert.Equal(t, "Etc/UTC", tz)

	port, err := g.Env.Get("RADARR__PORT")
	require.NoError(t, err)
	assert.Equal(t, "7878", port)

	user, err := g.Env.Get("QBITTORRENT__USER")
	require.NoError(t, err)
	assert.Equal(t, "admin", user)

	pass, err := g.Env.Get("QBITTORRENT__PASSWORD")
	require.NoError(t, err)
	assert.Len(t, pass, 16)

	// Captured keys start out as empty placeholders.
	has, err := g.Env.Has("RADARR__API_KEY")
	require.NoError(t, err)
	assert.True(t, has)
	key, err := g.Env.Get("RADARR__API_KEY")
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	g := testGenerator(t, "radarr", "homepage")
	_, err := g.Run(context.Background())
	require.NoError(t, err)

	passBefore, err := g.Env.Get("QBITTORRENT__PASSWORD")
	require.NoError(t, err)

	arts, err := g.Run(context.Background())
	require.NoError(t, err)
	for _, art := range arts {
		assert.Equal(t, ActionUnchanged, art.Action, art.Path)
	}

	passAfter, err := g.Env.Get("QBITTORRENT__PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, passBefore, passAfter)
}

func TestRunKeepsExistingCredentials(t *testing.T) {
	t.Parallel()

	g := testGenerator(t, "radarr")
	require.NoError(t, g.Env.Set("QBITTORRENT__PASSWORD", "keepthisone12345"))
	require.NoError(t, g.Env.Set("RADARR__API_KEY", "abc123"))

	_, err := g.Run(context.Background())
	require.NoError(t, err)

	pass, err := g.Env.Get("QBITTORRENT__PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, "keepthisone12345", pass)

	key, err := g.Env.Get("RADARR__API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "abc123", key)
}

func TestRunRestoresMissingEnvFromBackup(t *testing.T) {
	t.Parallel()

	g := testGenerator(t, "radarr")
	require.NoError(t, g.Env.Set("RADARR__API_KEY", "abc123"))
	_, err := g.Env.Backup(time.Now())
	require.NoError(t, err)
	require.NoError(t, os.Remove(g.Env.Path()))

	_, err = g.Run(context.Background())
	require.NoError(t, err)

	key, err := g.Env.Get("RADARR__API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "abc123", key)
}

func TestRunMigratesLegacyCredentialKeys(t *testing.T) {
	t.Parallel()

	g := testGenerator(t, "radarr")
	require.NoError(t, g.Env.Set("QBITTORRENT_PASSWORD", "legacysecret1234"))

	_, err := g.Run(context.Background())
	require.NoError(t, err)

	pass, err := g.Env.Get("QBITTORRENT__PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, "legacysecret1234", pass)

	has, err := g.Env.Has("QBITTORRENT_PASSWORD")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRunUpdatesComposeWithBackupAndDiff(t *testing.T) {
	t.Parallel()

	g := testGenerator(t, "radarr")
	_, err := g.Run(context.Background())
	require.NoError(t, err)

	g.Settings.Ports = map[string]int{"radarr": 17878}
	g.WithDiff = true
	arts, err := g.Run(context.Background())
	require.NoError(t, err)

	env := findArtifact(t, arts, ".env")
	assert.Equal(t, ActionUpdated, env.Action)
	assert.Empty(t, env.Diff)

	composeFile := findArtifact(t, arts, "docker-compose.yml")
	assert.Equal(t, ActionUnchanged, composeFile.Action)

	bm := findArtifact(t, arts, "bookmarks.html")
	assert.Equal(t, ActionUpdated, bm.Action)
	assert.Contains(t, bm.Diff, "17878")

	backup, err := os.ReadFile(bm.Path + ".bak")
	require.NoError(t, err)
	assert.Contains(t, string(backup), "7878")
	assert.NotContains(t, string(backup), "17878")
}

func TestRunNeverRewritesQbitConf(t *testing.T) {
	t.Parallel()

	g := testGenerator(t, "radarr")
	_, err := g.Run(context.Background())
	require.NoError(t, err)

	conf := filepath.Join(g.Settings.RootDir, "qbittorrent", "qBittorrent", "qBittorrent.conf")
	require.NoError(t, os.WriteFile(conf, []byte("edited by the app\n"), 0o644))

	arts, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ActionUnchanged, findArtifact(t, arts, "qBittorrent.conf").Action)

	data, err := os.ReadFile(conf)
	require.NoError(t, err)
	assert.Equal(t, "edited by the app\n", string(data))
}

func TestRunForceRewritesQbitConf(t *testing.T) {
	t.Parallel()

	g := testGenerator(t, "radarr")
	_, err := g.Run(context.Background())
	require.NoError(t, err)

	conf := filepath.Join(g.Settings.RootDir, "qbittorrent", "qBittorrent", "qBittorrent.conf")
	require.NoError(t, os.WriteFile(conf, []byte("edited by the app\n"), 0o644))

	g.Force = true
	arts, err := g.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ActionUpdated, findArtifact(t, arts, "qBittorrent.conf").Action)

	backup, err := os.ReadFile(conf + ".bak")
	require.NoError(t, err)
	assert.Equal(t, "edited by the app\n", string(backup))
}

func TestRunQbitConfMatchesCredentials(t *testing.T) {
	t.Parallel()

	g := testGenerator(t, "qbittorrent")
	_, err := g.Run(context.Background())
	require.NoError(t, err)

	pass, err := g.Env.Get("QBITTORRENT__PASSWORD")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(g.Settings.RootDir, "qbittorrent", "qBittorrent", "qBittorrent.conf"))
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "[Preferences]\n")
	assert.Contains(t, text, "WebUI\\Username=admin\n")
	assert.Contains(t, text, "WebUI\\Port=8080\n")
	assert.Contains(t, text, "Session\\DefaultSavePath=/downloads\n")

	var stored string
	for _, line := range strings.Split(text, "\n") {
		if rest, ok := strings.CutPrefix(line, "WebUI\\Password_PBKDF2="); ok {
			stored = strings.Trim(rest, `"`)
		}
	}
	require.NotEmpty(t, stored)
	assert.True(t, secrets.VerifyQbitPassword(pass, stored))
}

func TestRunWritesSoularrConfig(t *testing.T) {
	t.Parallel()

	g := testGenerator(t, "soularr")
	_, err := g.Run(context.Background())
	require.NoError(t, err)

	f, err := ini.Load(filepath.Join(g.Settings.RootDir, "soularr", "config.ini"))
	require.NoError(t, err)

	// slskd's key is minted at generate time; Lidarr's is captured later.
	slskdKey, err := g.Env.Get("SLSKD__API_KEY")
	require.NoError(t, err)
	require.NotEmpty(t, slskdKey)
	assert.Equal(t, slskdKey, f.Section("Slskd").Key("api_key").String())
	assert.Empty(t, f.Section("Lidarr").Key("api_key").String())
}

func TestRunSeedsVPNAndPlexKeys(t *testing.T) {
	t.Parallel()

	g := testGenerator(t, "qbittorrent", "gluetun", "overseerr")
	g.Settings.VPN = config.VPNSettings{Enabled: true, Provider: "mullvad", WireguardKey: "wgkey123"}

	_, err := g.Run(context.Background())
	require.NoError(t, err)

	provider, err := g.Env.Get("GLUETUN__PROVIDER")
	require.NoError(t, err)
	assert.Equal(t, "mullvad", provider)

	wg, err := g.Env.Get("GLUETUN__WIREGUARD_PRIVATE_KEY")
	require.NoError(t, err)
	assert.Equal(t, "wgkey123", wg)

	has, err := g.Env.Has("PLEX__TOKEN")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestRunInvalidSettingsWriteNothing(t *testing.T) {
	t.Parallel()

	g := testGenerator(t, "radarr")
	g.Settings.Traefik.Enabled = true
	g.Settings.Traefik.Domain = ""

	_, err := g.Run(context.Background())
	require.Error(t, err)
	assert.NoDirExists(t, g.Settings.RootDir)
}
