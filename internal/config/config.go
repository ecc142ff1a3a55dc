// Package config loads and persists easiarr's own settings file,
// ~/.easiarr/config.json. Loading is layered: compiled defaults, then the
// file, then EASIARR_* environment overrides. The file is version-tagged and
// migrated in place, with a timestamped backup taken before every rewrite.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/easiarr/easiarr/internal/paths"
	"github.com/easiarr/easiarr/internal/registry"
	"github.com/easiarr/easiarr/internal/sysinfo"
)

// CurrentVersion is the settings schema version this build reads and writes.
const CurrentVersion = 2

// envPrefix is the prefix for environment overrides, e.g.
// EASIARR_TRAEFIK__DOMAIN overrides traefik.domain.
const envPrefix = "EASIARR_"

// Settings is everything the user decides once and easiarr remembers.
type Settings struct {
	Version int `koanf:"version" json:"version"`

	// Apps holds the enabled registry IDs.
	Apps []string `koanf:"apps" json:"apps"`

	// Ports maps registry IDs to host ports where the user overrode the
	// default.
	Ports map[string]int `koanf:"ports" json:"ports,omitempty"`

	// RootDir is where per-app config volumes live. MediaDir and
	// DownloadsDir are the shared library and download areas.
	RootDir      string `koanf:"root_dir" json:"root_dir"`
	MediaDir     string `koanf:"media_dir" json:"media_dir"`
	DownloadsDir string `koanf:"downloads_dir" json:"downloads_dir"`

	Timezone string `koanf:"timezone" json:"timezone"`
	PUID     string `koanf:"puid" json:"puid"`
	PGID     string `koanf:"pgid" json:"pgid"`

	Network NetworkSettings `koanf:"network" json:"network"`
	Traefik TraefikSettings `koanf:"traefik" json:"traefik"`
	VPN     VPNSettings     `koanf:"vpn" json:"vpn"`
}

// NetworkSettings describe the LAN easiarr deploys into.
type NetworkSettings struct {
	LANCIDR string `koanf:"lan_cidr" json:"lan_cidr"`
	Domain  string `koanf:"domain" json:"domain,omitempty"`
}

// TraefikSettings enable reverse-proxy routing for the stack.
type TraefikSettings struct {
	Enabled      bool   `koanf:"enabled" json:"enabled"`
	Domain       string `koanf:"domain" json:"domain,omitempty"`
	CertResolver string `koanf:"cert_resolver" json:"cert_resolver,omitempty"`
	Email        string `koanf:"email" json:"email,omitempty"`
}

// VPNSettings route download traffic through a VPN container.
type VPNSettings struct {
	Enabled      bool   `koanf:"enabled" json:"enabled"`
	Provider     string `koanf:"provider" json:"provider,omitempty"`
	WireguardKey string `koanf:"wireguard_key" json:"wireguard_key,omitempty"`
}

// Defaults returns the compiled-in baseline.
func Defaults() Settings {
	return Settings{
		Version:      CurrentVersion,
		Apps:         registry.Defaults(),
		Ports:        map[string]int{},
		RootDir:      "~/easiarr",
		MediaDir:     "~/easiarr/media",
		DownloadsDir: "~/easiarr/downloads",
		Timezone:     "Etc/UTC",
		PUID:         "1000",
		PGID:         "1000",
		Network: NetworkSettings{
			LANCIDR: "192.168.1.0/24",
		},
		Traefik: TraefikSettings{
			CertResolver: "letsencrypt",
		},
	}
}

// FromHost seeds defaults from detected host facts. The wizard calls this on
// first run so the settings form starts out sensible.
func FromHost(info sysinfo.Info) Settings {
	s := Defaults()
	root := info.SuggestedRoot()
	s.RootDir = root
	s.MediaDir = root + "/media"
	s.DownloadsDir = root + "/downloads"
	s.Timezone = info.Timezone
	s.PUID = info.PUID
	s.PGID = info.PGID
	s.Network.LANCIDR = info.LANCIDR
	return s
}

// Load reads the settings: defaults, then config.json if present, then
// EASIARR_* environment overrides. An on-disk file older than
// CurrentVersion is migrated and rewritten (after a backup).
func Load() (Settings, error) {
	return LoadFrom(paths.ConfigFile())
}

// LoadFrom is Load against an explicit path, used by --config and tests.
func LoadFrom(path string) (Settings, error) {
	if _, err := os.Stat(path); err == nil {
		if _, err := migrateFile(path); err != nil {
			return Settings{}, err
		}
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return Settings{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
			return Settings{}, fmt.Errorf("failed to parse %s (restore a backup from %s if the file is damaged): %w",
				path, paths.BackupsDir(), err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return Settings{}, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	if s.Ports == nil {
		s.Ports = map[string]int{}
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// envTransform maps EASIARR_TRAEFIK__DOMAIN to traefik.domain: the prefix is
// stripped, double underscores nest, and the rest is lowercased.
func envTransform(key string) string {
	key = strings.TrimPrefix(key, envPrefix)
	key = strings.ToLower(key)
	return strings.ReplaceAll(key, "__", ".")
}

// Validate rejects settings the rest of the pipeline cannot work with.
func (s Settings) Validate() error {
	for _, id := range s.Apps {
		if _, ok := registry.Get(id); !ok {
			return fmt.Errorf("unknown app %q in settings", id)
		}
	}
	for id, port := range s.Ports {
		if _, ok := registry.Get(id); !ok {
			return fmt.Errorf("port override for unknown app %q", id)
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("port override for %q out of range: %d", id, port)
		}
	}
	if s.PUID != "" {
		if _, err := strconv.Atoi(s.PUID); err != nil {
			return fmt.Errorf("puid must be numeric, got %q", s.PUID)
		}
	}
	if s.PGID != "" {
		if _, err := strconv.Atoi(s.PGID); err != nil {
			return fmt.Errorf("pgid must be numeric, got %q", s.PGID)
		}
	}
	if s.Traefik.Enabled && s.Traefik.Domain == "" {
		return fmt.Errorf("traefik is enabled but no domain is set")
	}
	return nil
}

// PortFor returns the host port for an app, honoring overrides.
func (s Settings) PortFor(app registry.App) int {
	if p, ok := s.Ports[app.ID]; ok {
		return p
	}
	return app.Port
}

// URLFor returns the address the operator reaches the app at: the Traefik
// hostname when routing is enabled, the published localhost port otherwise.
func (s Settings) URLFor(app registry.App) string {
	if s.Traefik.Enabled && s.Traefik.Domain != "" {
		return fmt.Sprintf("https://%s.%s", app.ID, s.Traefik.Domain)
	}
	return fmt.Sprintf("http://localhost:%d", s.PortFor(app))
}

// ServiceHost returns the hostname other containers reach the app at.
// Normally that is the compose service name, but an app routed through the
// VPN answers on the gluetun container instead.
func (s Settings) ServiceHost(app registry.App) string {
	if app.ID == "qbittorrent" && s.VPN.Enabled {
		return "gluetun"
	}
	return app.ID
}

// ServiceURL returns the container-to-container base URL for the app.
func (s Settings) ServiceURL(app registry.App) string {
	return fmt.Sprintf("http://%s:%d", s.ServiceHost(app), app.WebPort())
}

// Enabled reports whether the app ID is in the selection.
func (s Settings) Enabled(id string) bool {
	for _, a := range s.Apps {
		if a == id {
			return true
		}
	}
	return false
}

// EnabledApps resolves the selection against the registry, dependencies
// included, sorted by ID.
func (s Settings) EnabledApps() []registry.App {
	ids := registry.WithDependencies(s.Apps)
	out := make([]registry.App, 0, len(ids))
	for _, id := range ids {
		if a, ok := registry.Get(id); ok {
			out = append(out, a)
		}
	}
	return out
}

// Save writes the settings. The previous file, if any, is first copied into
// the backups directory; the write itself goes through a temp file and
// rename so a crash cannot leave a truncated config.
func (s Settings) Save() error {
	return s.SaveTo(paths.ConfigFile())
}

// SaveTo is Save against an explicit path.
func (s Settings) SaveTo(path string) error {
	s.Version = CurrentVersion
	if err := s.Validate(); err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := backupFile(path); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	data = append(data, '\n')
	return atomicWrite(path, data, 0o600)
}
