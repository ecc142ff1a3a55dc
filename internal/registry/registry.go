package registry

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Category groups applications for selection screens, bookmarks folders and
// the dashboard layout.
type Category string

const (
	CategoryMediaManager   Category = "media-manager"
	CategoryIndexer        Category = "indexer"
	CategoryDownloadClient Category = "download-client"
	CategoryMediaServer    Category = "media-server"
	CategoryRequest        Category = "request"
	CategoryMonitoring     Category = "monitoring"
	CategoryDashboard      Category = "dashboard"
	CategoryUtility        Category = "utility"
)

// Categories returns all categories in display order.
func Categories() []Category {
	return []Category{
		CategoryMediaServer,
		CategoryMediaManager,
		CategoryIndexer,
		CategoryDownloadClient,
		CategoryRequest,
		CategoryMonitoring,
		CategoryDashboard,
		CategoryUtility,
	}
}

// Title returns the category's human-readable name.
func (c Category) Title() string {
	switch c {
	case CategoryMediaManager:
		return "Media Managers"
	case CategoryIndexer:
		return "Indexers"
	case CategoryDownloadClient:
		return "Download Clients"
	case CategoryMediaServer:
		return "Media Servers"
	case CategoryRequest:
		return "Requests"
	case CategoryMonitoring:
		return "Monitoring"
	case CategoryDashboard:
		return "Dashboards"
	case CategoryUtility:
		return "Utilities"
	default:
		return string(c)
	}
}

// App describes one deployable application.
type App struct {
	// ID is the canonical lowercase identifier, also used as the compose
	// service name and container name.
	ID          string
	Name        string
	Description string
	Image       string
	Category    Category

	// Port is the default host port. InternalPort is the container port
	// when it differs from Port; zero means same as Port. Apps without a
	// web UI carry Port zero.
	Port         int
	InternalPort int

	// Media mounts the media library, Downloads the download area.
	Media     bool
	Downloads bool

	// MediaFolder is the library subfolder a manager owns under the media
	// mount, e.g. "movies". It doubles as the app's download category.
	MediaFolder string

	// Secrets are .env key suffixes generated for this app, e.g. API_KEY
	// becomes RADARR__API_KEY.
	Secrets []string

	// DependsOn lists registry IDs this app needs running first.
	DependsOn []string

	// HealthPath is an HTTP path answering on the web port once the app
	// is up. Empty disables the generic probe.
	HealthPath string

	// Widget is the gethomepage widget type, empty when none exists.
	Widget string

	// Default marks the recommended starter selection.
	Default bool
}

// EnvPrefix returns the app's .env key prefix, e.g. uptime-kuma yields
// UPTIME_KUMA.
func (a App) EnvPrefix() string {
	return strings.ToUpper(strings.ReplaceAll(a.ID, "-", "_"))
}

// EnvKey returns the full .env key for one of the app's values: RADARR__PORT,
// RADARR__API_KEY and so on.
func (a App) EnvKey(suffix string) string {
	return a.EnvPrefix() + "__" + strings.ToUpper(suffix)
}

// WebPort reports the container-side web port.
func (a App) WebPort() int {
	if a.InternalPort != 0 {
		return a.InternalPort
	}
	return a.Port
}

// HasWebUI reports whether the app exposes a browsable page.
func (a App) HasWebUI() bool {
	return a.Port != 0
}

var catalog = []App{
	{
		ID: "radarr", Name: "Radarr", Category: CategoryMediaManager,
		Description: "Movie collection manager",
		Image:       "lscr.io/linuxserver/radarr:latest",
		Port:        7878, Media: true, Downloads: true,
		MediaFolder: "movies",
		Secrets:     []string{"API_KEY"},
		DependsOn:   []string{"qbittorrent"},
		HealthPath:  "/ping",
		Widget:      "radarr",
		Default:     true,
	},
	{
		ID: "sonarr", Name: "Sonarr", Category: CategoryMediaManager,
		Description: "TV series collection manager",
		Image:       "lscr.io/linuxserver/sonarr:latest",
		Port:        8989, Media: true, Downloads: true,
		MediaFolder: "tv",
		Secrets:     []string{"API_KEY"},
		DependsOn:   []string{"qbittorrent"},
		HealthPath:  "/ping",
		Widget:      "sonarr",
		Default:     true,
	},
	{
		ID: "lidarr", Name: "Lidarr", Category: CategoryMediaManager,
		Description: "Music collection manager",
		Image:       "lscr.io/linuxserver/lidarr:latest",
		Port:        8686, Media: true, Downloads: true,
		MediaFolder: "music",
		Secrets:     []string{"API_KEY"},
		DependsOn:   []string{"qbittorrent"},
		HealthPath:  "/ping",
		Widget:      "lidarr",
	},
	{
		ID: "readarr", Name: "Readarr", Category: CategoryMediaManager,
		Description: "Book and audiobook collection manager",
		Image:       "lscr.io/linuxserver/readarr:develop",
		Port:        8787, Media: true, Downloads: true,
		MediaFolder: "books",
		Secrets:     []string{"API_KEY"},
		DependsOn:   []string{"qbittorrent"},
		HealthPath:  "/ping",
		Widget:      "readarr",
	},
	{
		ID: "prowlarr", Name: "Prowlarr", Category: CategoryIndexer,
		Description: "Indexer manager and proxy",
		Image:       "lscr.io/linuxserver/prowlarr:latest",
		Port:        9696,
		Secrets:     []string{"API_KEY"},
		HealthPath:  "/ping",
		Widget:      "prowlarr",
		Default:     true,
	},
	{
		ID: "flaresolverr", Name: "FlareSolverr", Category: CategoryIndexer,
		Description: "Proxy that solves browser challenges for indexers",
		Image:       "ghcr.io/flaresolverr/flaresolverr:latest",
		Port:        8191,
		HealthPath:  "/health",
	},
	{
		ID: "bazarr", Name: "Bazarr", Category: CategoryMediaManager,
		Description: "Subtitle manager for Radarr and Sonarr",
		Image:       "lscr.io/linuxserver/bazarr:latest",
		Port:        6767, Media: true,
		Secrets:    []string{"API_KEY"},
		DependsOn:  []string{"radarr", "sonarr"},
		HealthPath: "/",
		Widget:     "bazarr",
	},
	{
		ID: "qbittorrent", Name: "qBittorrent", Category: CategoryDownloadClient,
		Description: "BitTorrent client with web UI",
		Image:       "lscr.io/linuxserver/qbittorrent:latest",
		Port:        8080, Downloads: true,
		Secrets:    []string{"USER", "PASSWORD"},
		HealthPath: "/",
		Widget:     "qbittorrent",
		Default:    true,
	},
	{
		ID: "slskd", Name: "slskd", Category: CategoryDownloadClient,
		Description: "Soulseek daemon with web UI",
		Image:       "slskd/slskd:latest",
		Port:        5030, Downloads: true,
		Secrets:    []string{"API_KEY"},
		HealthPath: "/health",
	},
	{
		ID: "soularr", Name: "Soularr", Category: CategoryUtility,
		Description: "Bridges Lidarr wanted lists to slskd searches",
		Image:       "mrusse08/soularr:latest",
		Downloads:   true,
		DependsOn:   []string{"lidarr", "slskd"},
	},
	{
		ID: "jellyfin", Name: "Jellyfin", Category: CategoryMediaServer,
		Description: "Free software media server",
		Image:       "lscr.io/linuxserver/jellyfin:latest",
		Port:        8096, Media: true,
		Secrets:    []string{"API_KEY", "USER", "PASSWORD"},
		HealthPath: "/health",
		Widget:     "jellyfin",
		Default:    true,
	},
	{
		ID: "plex", Name: "Plex", Category: CategoryMediaServer,
		Description: "Plex media server",
		Image:       "lscr.io/linuxserver/plex:latest",
		Port:        32400, Media: true,
		HealthPath: "/identity",
		Widget:     "plex",
	},
	{
		ID: "overseerr", Name: "Overseerr", Category: CategoryRequest,
		Description: "Request management for Plex and the *arr stack",
		Image:       "lscr.io/linuxserver/overseerr:latest",
		Port:        5055,
		Secrets:     []string{"API_KEY"},
		DependsOn:   []string{"radarr", "sonarr"},
		HealthPath:  "/api/v1/status",
		Widget:      "overseerr",
	},
	{
		ID: "tautulli", Name: "Tautulli", Category: CategoryMonitoring,
		Description: "Monitoring and statistics for Plex",
		Image:       "lscr.io/linuxserver/tautulli:latest",
		Port:        8181,
		Secrets:     []string{"API_KEY"},
		DependsOn:   []string{"plex"},
		HealthPath:  "/status",
		Widget:      "tautulli",
	},
	{
		ID: "uptime-kuma", Name: "Uptime Kuma", Category: CategoryMonitoring,
		Description: "Self-hosted uptime monitoring",
		Image:       "louislam/uptime-kuma:1",
		Port:        3001,
		Secrets:     []string{"USER", "PASSWORD"},
		HealthPath:  "/",
		Widget:      "uptimekuma",
	},
	{
		ID: "portainer", Name: "Portainer", Category: CategoryMonitoring,
		Description: "Container management UI",
		Image:       "portainer/portainer-ce:latest",
		Port:        9000,
		Secrets:     []string{"USER", "PASSWORD"},
		HealthPath:  "/api/system/status",
		Widget:      "portainer",
	},
	{
		ID: "profilarr", Name: "Profilarr", Category: CategoryUtility,
		Description: "Quality profile and custom format sync for the *arr apps",
		Image:       "santiagosayshey/profilarr:latest",
		Port:        6868,
		DependsOn:   []string{"radarr", "sonarr"},
		HealthPath:  "/",
	},
	{
		ID: "homepage", Name: "Homepage", Category: CategoryDashboard,
		Description: "Application dashboard",
		Image:       "ghcr.io/gethomepage/homepage:latest",
		Port:        3000,
		HealthPath:  "/",
	},
	{
		ID: "watchtower", Name: "Watchtower", Category: CategoryUtility,
		Description: "Automatic container image updates",
		Image:       "containrrr/watchtower:latest",
	},
	{
		ID: "gluetun", Name: "Gluetun", Category: CategoryUtility,
		Description: "VPN client container other services can route through",
		Image:       "qmcgaw/gluetun:latest",
		Secrets:     []string{"WIREGUARD_PRIVATE_KEY"},
	},
	{
		ID: "traefik", Name: "Traefik", Category: CategoryUtility,
		Description: "Reverse proxy and TLS termination",
		Image:       "traefik:v3.1",
		Port:        443,
	},
}

var byID = func() map[string]App {
	m := make(map[string]App, len(catalog))
	for _, a := range catalog {
		m[a.ID] = a
	}
	return m
}()

// All returns every app in the catalog, sorted by ID.
func All() []App {
	out := make([]App, len(catalog))
	copy(out, catalog)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get looks up an app by ID.
func Get(id string) (App, bool) {
	a, ok := byID[id]
	return a, ok
}

// ByCategory returns the apps in one category, sorted by name.
func ByCategory(c Category) []App {
	var out []App
	for _, a := range catalog {
		if a.Category == c {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Defaults returns the IDs of the recommended starter selection.
func Defaults() []string {
	var out []string
	for _, a := range catalog {
		if a.Default {
			out = append(out, a.ID)
		}
	}
	sort.Strings(out)
	return out
}

// WithDependencies expands ids so that every transitive dependency is
// included, preserving no particular order.
func WithDependencies(ids []string) []string {
	seen := make(map[string]bool)
	var visit func(id string)
	visit = func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		if a, ok := byID[id]; ok {
			for _, dep := range a.DependsOn {
				visit(dep)
			}
		}
	}
	for _, id := range ids {
		visit(id)
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

var idPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Validate checks catalog integrity. It runs from tests and from program
// startup in debug builds.
func Validate() error {
	ids := make(map[string]bool, len(catalog))
	ports := make(map[int]string, len(catalog))

	for _, a := range catalog {
		if !idPattern.MatchString(a.ID) {
			return fmt.Errorf("app %q: id is not lowercase dns-safe", a.ID)
		}
		if ids[a.ID] {
			return fmt.Errorf("app %q: duplicate id", a.ID)
		}
		ids[a.ID] = true

		if a.Name == "" || a.Image == "" {
			return fmt.Errorf("app %q: missing name or image", a.ID)
		}
		if a.Port != 0 {
			if owner, taken := ports[a.Port]; taken {
				return fmt.Errorf("app %q: default port %d already used by %q", a.ID, a.Port, owner)
			}
			ports[a.Port] = a.ID
		}
	}

	for _, a := range catalog {
		for _, dep := range a.DependsOn {
			if !ids[dep] {
				return fmt.Errorf("app %q: unknown dependency %q", a.ID, dep)
			}
		}
	}

	// Dependency cycles would deadlock provisioning ordering.
	state := make(map[string]int, len(catalog))
	var walk func(id string) error
	walk = func(id string) error {
		switch state[id] {
		case 1:
			return fmt.Errorf("dependency cycle through %q", id)
		case 2:
			return nil
		}
		state[id] = 1
		for _, dep := range byID[id].DependsOn {
			if err := walk(dep); err != nil {
				return err
			}
		}
		state[id] = 2
		return nil
	}
	for _, a := range catalog {
		if err := walk(a.ID); err != nil {
			return err
		}
	}
	return nil
}
