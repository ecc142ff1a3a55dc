// Package compose builds the docker-compose.yml for the enabled apps.
//
// The file is generated from the registry and the user's settings through
// compose-go's typed model, so what easiarr writes is exactly what docker
// compose will parse. Credentials and ports are referenced as ${VAR}
// interpolations against the .env next to the file; host paths are written
// out literally so the diff preview shows real moves.
package compose

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/compose-spec/compose-go/v2/types"

	"github.com/easiarr/easiarr/internal/config"
	"github.com/easiarr/easiarr/internal/homepage"
	"github.com/easiarr/easiarr/internal/paths"
	"github.com/easiarr/easiarr/internal/registry"
)

// ProjectName names the compose project and its shared bridge network.
const ProjectName = "easiarr"

const (
	networkName = "easiarr"

	mediaTarget     = "/media"
	downloadsTarget = "/downloads"

	dockerSocket = "/var/run/docker.sock"
)

// configTargets overrides the container-side config mount for images that
// do not follow the /config convention.
var configTargets = map[string]string{
	"homepage":    "/app/config",
	"uptime-kuma": "/app/data",
	"portainer":   "/data",
	"traefik":     "/etc/traefik",
	"gluetun":     "/gluetun",
	"slskd":       "/app",
	"soularr":     "/data",
}

// noConfigVolume lists apps that keep no state worth a config volume.
var noConfigVolume = map[string]bool{
	"watchtower": true,
}

// Builder turns settings into a compose project.
type Builder struct {
	settings config.Settings
}

// NewBuilder returns a Builder for the given settings.
func NewBuilder(settings config.Settings) *Builder {
	return &Builder{settings: settings}
}

// Project builds the typed compose model for the enabled apps, dependencies
// included.
func (b *Builder) Project() (*types.Project, error) {
	apps := b.settings.EnabledApps()
	if err := b.validate(apps); err != nil {
		return nil, err
	}

	services := types.Services{}
	for _, app := range apps {
		services[app.ID] = b.service(app)
	}

	return &types.Project{
		Name:     ProjectName,
		Services: services,
		Networks: types.Networks{
			networkName: types.NetworkConfig{Name: networkName, Driver: "bridge"},
		},
	}, nil
}

// validate catches topology problems before anything is written.
func (b *Builder) validate(apps []registry.App) error {
	if err := b.settings.Validate(); err != nil {
		return err
	}

	enabled := make(map[string]bool, len(apps))
	for _, app := range apps {
		enabled[app.ID] = true
	}

	owners := map[int]string{}
	for _, app := range apps {
		if !app.HasWebUI() {
			continue
		}
		port := b.settings.PortFor(app)
		if other, taken := owners[port]; taken {
			return fmt.Errorf("port %d is mapped for both %s and %s", port, other, app.ID)
		}
		owners[port] = app.ID
	}

	if b.settings.VPN.Enabled && !enabled["gluetun"] {
		return fmt.Errorf("vpn routing is enabled but gluetun is not in the selection")
	}
	return nil
}

func (b *Builder) service(app registry.App) types.ServiceConfig {
	s := types.ServiceConfig{
		Name:          app.ID,
		ContainerName: app.ID,
		Image:         app.Image,
		Restart:       "unless-stopped",
		Environment:   b.environment(app),
		Volumes:       b.volumes(app),
		Networks:      map[string]*types.ServiceNetworkConfig{networkName: nil},
	}

	if app.HasWebUI() {
		s.Ports = []types.ServicePortConfig{{
			Target:    uint32(app.WebPort()),
			Published: fmt.Sprintf("${%s}", app.EnvKey("PORT")),
		}}
	}

	if len(app.DependsOn) > 0 {
		s.DependsOn = types.DependsOnConfig{}
		for _, dep := range app.DependsOn {
			s.DependsOn[dep] = types.ServiceDependency{
				Condition: types.ServiceConditionStarted,
				Required:  true,
			}
		}
	}

	if b.settings.Traefik.Enabled && app.HasWebUI() && app.ID != "traefik" {
		s.Labels = b.traefikLabels(app)
	}

	b.customize(&s, app)
	return s
}

func (b *Builder) environment(app registry.App) types.MappingWithEquals {
	env := types.MappingWithEquals{
		"TZ": strPtr("${TZ}"),
	}
	// Only the linuxserver images honor the PUID/PGID convention.
	if strings.HasPrefix(app.Image, "lscr.io/") {
		env["PUID"] = strPtr("${PUID}")
		env["PGID"] = strPtr("${PGID}")
	}
	return env
}

func (b *Builder) volumes(app registry.App) []types.ServiceVolumeConfig {
	var vols []types.ServiceVolumeConfig

	if !noConfigVolume[app.ID] {
		target := configTargets[app.ID]
		if target == "" {
			target = "/config"
		}
		root := paths.Expand(b.settings.RootDir)
		vols = append(vols, bind(filepath.Join(root, app.ID), target, false))
	}
	if app.Media {
		vols = append(vols, bind(paths.Expand(b.settings.MediaDir), mediaTarget, false))
	}
	if app.Downloads {
		vols = append(vols, bind(paths.Expand(b.settings.DownloadsDir), downloadsTarget, false))
	}
	return vols
}

func (b *Builder) traefikLabels(app registry.App) types.Labels {
	domain := b.settings.Traefik.Domain
	resolver := b.settings.Traefik.CertResolver
	return types.Labels{
		"traefik.enable": "true",
		fmt.Sprintf("traefik.http.routers.%s.rule", app.ID):                      fmt.Sprintf("Host(`%s.%s`)", app.ID, domain),
		fmt.Sprintf("traefik.http.routers.%s.entrypoints", app.ID):               "websecure",
		fmt.Sprintf("traefik.http.routers.%s.tls.certresolver", app.ID):          resolver,
		fmt.Sprintf("traefik.http.services.%s.loadbalancer.server.port", app.ID): strconv.Itoa(app.WebPort()),
	}
}

// customize applies the per-app quirks the generic shape cannot express.
func (b *Builder) customize(s *types.ServiceConfig, app registry.App) {
	switch app.ID {
	case "qbittorrent":
		s.Environment["WEBUI_PORT"] = strPtr(strconv.Itoa(app.WebPort()))
		if b.settings.VPN.Enabled {
			// Torrent traffic rides the VPN container's network
			// namespace; the WebUI port is published by gluetun.
			s.NetworkMode = "service:gluetun"
			s.Networks = nil
			s.Ports = nil
			s.Labels = nil
			s.DependsOn = types.DependsOnConfig{
				"gluetun": {Condition: types.ServiceConditionStarted, Required: true},
			}
		}

	case "gluetun":
		s.CapAdd = []string{"NET_ADMIN"}
		s.Environment["VPN_SERVICE_PROVIDER"] = strPtr("${GLUETUN__PROVIDER}")
		s.Environment["VPN_TYPE"] = strPtr("wireguard")
		s.Environment["WIREGUARD_PRIVATE_KEY"] = strPtr("${GLUETUN__WIREGUARD_PRIVATE_KEY}")
		if b.settings.VPN.Enabled && b.inPlan("qbittorrent") {
			qb, _ := registry.Get("qbittorrent")
			s.Ports = append(s.Ports, types.ServicePortConfig{
				Target:    uint32(qb.WebPort()),
				Published: fmt.Sprintf("${%s}", qb.EnvKey("PORT")),
			})
		}

	case "plex":
		s.Environment["VERSION"] = strPtr("docker")

	case "slskd":
		s.Environment["SLSKD_API_KEY"] = strPtr("${SLSKD__API_KEY}")

	case "homepage":
		s.Environment["HOMEPAGE_ALLOWED_HOSTS"] = strPtr("*")
		// Widget credentials flow .env -> container env -> HOMEPAGE_VAR_*
		// references in services.yaml, so a restart picks up captured keys.
		for _, key := range homepage.Vars(b.settings) {
			s.Environment["HOMEPAGE_VAR_"+key] = strPtr(fmt.Sprintf("${%s}", key))
		}

	case "watchtower":
		s.Environment["WATCHTOWER_CLEANUP"] = strPtr("true")
		s.Volumes = append(s.Volumes, bind(dockerSocket, dockerSocket, false))

	case "portainer":
		s.Volumes = append(s.Volumes, bind(dockerSocket, dockerSocket, false))

	case "traefik":
		resolver := b.settings.Traefik.CertResolver
		s.Command = types.ShellCommand{
			"--providers.docker=true",
			"--providers.docker.exposedbydefault=false",
			"--entrypoints.web.address=:80",
			"--entrypoints.websecure.address=:443",
			"--entrypoints.web.http.redirections.entrypoint.to=websecure",
			fmt.Sprintf("--certificatesresolvers.%s.acme.email=%s", resolver, b.settings.Traefik.Email),
			fmt.Sprintf("--certificatesresolvers.%s.acme.storage=/etc/traefik/acme.json", resolver),
			fmt.Sprintf("--certificatesresolvers.%s.acme.httpchallenge.entrypoint=web", resolver),
		}
		s.Ports = []types.ServicePortConfig{
			{Target: 80, Published: "80"},
			{Target: 443, Published: "443"},
		}
		s.Volumes = append(s.Volumes, bind(dockerSocket, dockerSocket, true))
	}
}

// inPlan reports whether the app ends up in the project, directly or as a
// dependency of something selected.
func (b *Builder) inPlan(id string) bool {
	for _, app := range b.settings.EnabledApps() {
		if app.ID == id {
			return true
		}
	}
	return false
}

// NeedsConfigDir reports whether the app gets a config volume under the
// stack root.
func NeedsConfigDir(app registry.App) bool {
	return !noConfigVolume[app.ID]
}

// Render serializes the project. Output is deterministic: the model is
// map-based and the YAML encoder sorts keys.
func Render(project *types.Project) ([]byte, error) {
	return project.MarshalYAML()
}

func bind(source, target string, readOnly bool) types.ServiceVolumeConfig {
	return types.ServiceVolumeConfig{
		Type:     types.VolumeTypeBind,
		Source:   source,
		Target:   target,
		ReadOnly: readOnly,
		Bind:     &types.ServiceVolumeBind{CreateHostPath: true},
	}
}

func strPtr(s string) *string {
	return &s
}
