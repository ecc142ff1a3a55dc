// Package soularr renders the config.ini for the Soularr bridge, which
// feeds Lidarr's wanted list into slskd searches.
package soularr

import (
	"bytes"
	"fmt"

	"gopkg.in/ini.v1"

	"github.com/easiarr/easiarr/internal/config"
	"github.com/easiarr/easiarr/internal/registry"
)

// Wanted reports whether the bridge is part of the selection. Selecting
// soularr pulls lidarr and slskd in as dependencies, so one check covers
// all three.
func Wanted(settings config.Settings) bool {
	for _, app := range settings.EnabledApps() {
		if app.ID == "soularr" {
			return true
		}
	}
	return false
}

// Configured reports whether the config at path already carries this
// Lidarr API key.
func Configured(path, lidarrKey string) bool {
	f, err := ini.Load(path)
	if err != nil {
		return false
	}
	return f.Section("Lidarr").Key("api_key").String() == lidarrKey
}

// Render produces config.ini. The API keys may still be empty at generate
// time; provisioning rewrites the file once Lidarr's key is captured.
func Render(settings config.Settings, lidarrKey, slskdKey string) ([]byte, error) {
	lidarr, ok := registry.Get("lidarr")
	if !ok {
		return nil, fmt.Errorf("lidarr missing from catalog")
	}
	slskd, ok := registry.Get("slskd")
	if !ok {
		return nil, fmt.Errorf("slskd missing from catalog")
	}

	f := ini.Empty()

	ls := f.Section("Lidarr")
	ls.Key("host_url").SetValue(settings.ServiceURL(lidarr))
	ls.Key("api_key").SetValue(lidarrKey)
	ls.Key("download_dir").SetValue("/downloads")

	sk := f.Section("Slskd")
	sk.Key("host_url").SetValue(settings.ServiceURL(slskd))
	sk.Key("api_key").SetValue(slskdKey)
	sk.Key("download_dir").SetValue("/downloads")
	sk.Key("delete_searches").SetValue("False")

	search := f.Section("Search Settings")
	search.Key("search_timeout").SetValue("5000")
	search.Key("maximum_peer_queue").SetValue("50")
	search.Key("search_type").SetValue("incrementing_page")

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("rendering soularr config: %w", err)
	}
	return buf.Bytes(), nil
}
