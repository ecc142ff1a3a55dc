package bookmarks

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/easiarr/easiarr/internal/config"
)

func testSettings(apps ...string) config.Settings {
	s := config.Defaults()
	s.Apps = apps
	return s
}

func TestRenderLinksAndFolders(t *testing.T) {
	t.Parallel()

	out := string(Render(testSettings("radarr", "jellyfin")))

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE NETSCAPE-Bookmark-file-1>"))
	assert.Contains(t, out, "<H3>Media Servers</H3>")
	assert.Contains(t, out, "<H3>Media Managers</H3>")
	assert.Contains(t, out, "<H3>Download Clients</H3>")
	assert.Contains(t, out, `<A HREF="http://localhost:7878">Radarr</A>`)
	assert.Contains(t, out, `<A HREF="http://localhost:8096">Jellyfin</A>`)
	// The download client rides in as a dependency.
	assert.Contains(t, out, `<A HREF="http://localhost:8080">qBittorrent</A>`)
}

func TestRenderHonorsPortOverrides(t *testing.T) {
	t.Parallel()

	s := testSettings("radarr")
	s.Ports = map[string]int{"radarr": 17878}

	out := string(Render(s))
	assert.Contains(t, out, `<A HREF="http://localhost:17878">Radarr</A>`)
}

func TestRenderTraefikURLs(t *testing.T) {
	t.Parallel()

	s := testSettings("radarr")
	s.Traefik.Enabled = true
	s.Traefik.Domain = "media.example.com"

	out := string(Render(s))
	assert.Contains(t, out, `<A HREF="https://radarr.media.example.com">Radarr</A>`)
	assert.NotContains(t, out, "localhost")
}

func TestRenderSkipsHeadlessApps(t *testing.T) {
	t.Parallel()

	out := string(Render(testSettings("radarr", "watchtower")))
	assert.NotContains(t, out, "Watchtower")
	assert.NotContains(t, out, "<H3>Utilities</H3>")
}

func TestRenderEmptySelection(t *testing.T) {
	t.Parallel()

	out := string(Render(testSettings()))
	assert.Contains(t, out, "<H3>easiarr</H3>")
	assert.NotContains(t, out, "<A HREF")
}

func TestRenderDeterministic(t *testing.T) {
	t.Parallel()

	s := testSettings("radarr", "sonarr", "prowlarr", "jellyfin", "overseerr")
	assert.Equal(t, Render(s), Render(s))
}
