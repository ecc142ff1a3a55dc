package homepage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/easiarr/easiarr/internal/config"
)

func testSettings(apps ...string) config.Settings {
	s := config.Defaults()
	s.Apps = apps
	return s
}

// parse decodes the rendered YAML into the loose shape gethomepage reads.
func parse(t *testing.T, data []byte) []map[string][]map[string]map[string]any {
	t.Helper()
	var doc []map[string][]map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	return doc
}

func findService(t *testing.T, doc []map[string][]map[string]map[string]any, group, name string) map[string]any {
	t.Helper()
	for _, g := range doc {
		services, ok := g[group]
		if !ok {
			continue
		}
		for _, svc := range services {
			if entry, ok := svc[name]; ok {
				return entry
			}
		}
	}
	t.Fatalf("service %s not found in group %s", name, group)
	return nil
}

func TestRenderGroupsAndTiles(t *testing.T) {
	t.Parallel()

	data, err := Render(testSettings("radarr", "jellyfin"))
	require.NoError(t, err)
	doc := parse(t, data)

	radarr := findService(t, doc, "Media Managers", "Radarr")
	assert.Equal(t, "radarr.png", radarr["icon"])
	assert.Equal(t, "http://localhost:7878", radarr["href"])
	assert.Equal(t, "Movie collection manager", radarr["description"])

	widget, ok := radarr["widget"].(map[string]any)
	require.True(t, ok, "radarr tile should carry a widget")
	assert.Equal(t, "radarr", widget["type"])
	assert.Equal(t, "http://radarr:7878", widget["url"])
	assert.Equal(t, "{{HOMEPAGE_VAR_RADARR__API_KEY}}", widget["key"])

	findService(t, doc, "Media Servers", "Jellyfin")
	findService(t, doc, "Download Clients", "qBittorrent")
}

func TestRenderQbitWidgetUsesCredentials(t *testing.T) {
	t.Parallel()

	data, err := Render(testSettings("qbittorrent"))
	require.NoError(t, err)
	doc := parse(t, data)

	qb := findService(t, doc, "Download Clients", "qBittorrent")
	widget, ok := qb["widget"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "{{HOMEPAGE_VAR_QBITTORRENT__USER}}", widget["username"])
	assert.Equal(t, "{{HOMEPAGE_VAR_QBITTORRENT__PASSWORD}}", widget["password"])
	_, hasKey := widget["key"]
	assert.False(t, hasKey)
}

func TestRenderQbitWidgetBehindVPN(t *testing.T) {
	t.Parallel()

	s := testSettings("qbittorrent", "gluetun")
	s.VPN.Enabled = true

	data, err := Render(s)
	require.NoError(t, err)
	doc := parse(t, data)

	qb := findService(t, doc, "Download Clients", "qBittorrent")
	widget := qb["widget"].(map[string]any)
	assert.Equal(t, "http://gluetun:8080", widget["url"])
}

func TestRenderSkipsUnwireableWidgets(t *testing.T) {
	t.Parallel()

	data, err := Render(testSettings("uptime-kuma", "portainer"))
	require.NoError(t, err)
	doc := parse(t, data)

	kuma := findService(t, doc, "Monitoring", "Uptime Kuma")
	_, hasWidget := kuma["widget"]
	assert.False(t, hasWidget)

	pt := findService(t, doc, "Monitoring", "Portainer")
	_, hasWidget = pt["widget"]
	assert.False(t, hasWidget)
}

func TestRenderOmitsSelfAndHeadless(t *testing.T) {
	t.Parallel()

	data, err := Render(testSettings("homepage", "watchtower", "radarr"))
	require.NoError(t, err)

	assert.NotContains(t, string(data), "Homepage:")
	assert.NotContains(t, string(data), "Watchtower")
}

func TestVars(t *testing.T) {
	t.Parallel()

	got := Vars(testSettings("radarr", "qbittorrent", "plex"))
	assert.Equal(t, []string{
		"PLEX__TOKEN",
		"QBITTORRENT__PASSWORD",
		"QBITTORRENT__USER",
		"RADARR__API_KEY",
	}, got)
}

func TestRenderDeterministic(t *testing.T) {
	t.Parallel()

	s := testSettings("radarr", "sonarr", "jellyfin", "overseerr", "tautulli", "plex")
	first, err := Render(s)
	require.NoError(t, err)
	second, err := Render(s)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}
