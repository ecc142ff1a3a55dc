package provision

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/easiarr/easiarr/internal/appkeys"
	"github.com/easiarr/easiarr/internal/clients"
	"github.com/easiarr/easiarr/internal/clients/bazarr"
	"github.com/easiarr/easiarr/internal/clients/jellyfin"
	"github.com/easiarr/easiarr/internal/clients/kuma"
	"github.com/easiarr/easiarr/internal/clients/lidarr"
	"github.com/easiarr/easiarr/internal/clients/overseerr"
	"github.com/easiarr/easiarr/internal/clients/portainer"
	"github.com/easiarr/easiarr/internal/clients/profilarr"
	"github.com/easiarr/easiarr/internal/clients/prowlarr"
	"github.com/easiarr/easiarr/internal/clients/qbit"
	"github.com/easiarr/easiarr/internal/clients/radarr"
	"github.com/easiarr/easiarr/internal/clients/readarr"
	"github.com/easiarr/easiarr/internal/clients/sonarr"
	"github.com/easiarr/easiarr/internal/clients/tautulli"
	"github.com/easiarr/easiarr/internal/config"
	"github.com/easiarr/easiarr/internal/envfile"
	"github.com/easiarr/easiarr/internal/paths"
	"github.com/easiarr/easiarr/internal/registry"
	"github.com/easiarr/easiarr/internal/secrets"
	"github.com/easiarr/easiarr/internal/soularr"
)

// Container-side mount points fixed by the compose layout.
const (
	mediaMount     = "/media"
	downloadsMount = "/downloads"
)

// plexTokenKey is where the operator's plex.tv token is expected in .env.
// Overseerr and Plex itself have no other bootstrap path.
const plexTokenKey = "PLEX__TOKEN"

// Minimum password lengths enforced at the services' API layer.
const (
	portainerMinPassword = 12
	kumaMinPassword      = 6
)

// Planner assembles the provisioning steps for the enabled apps.
type Planner struct {
	Settings config.Settings

	// Env is the .env store credentials and captured API keys live in.
	Env *envfile.Store

	// Client is shared by the HTTP API clients. nil lets each library
	// use its own default.
	Client *http.Client

	Logger zerolog.Logger

	// Host is where the published ports are reachable from easiarr's
	// side, "localhost" when empty. URLs handed to one app about another
	// use compose service names instead and ignore it.
	Host string
}

// Plan returns the provisioning steps for the enabled apps with their
// dependency edges. Edges pointing at apps that are not enabled are
// dropped, so a partial selection still yields a runnable plan.
func (p *Planner) Plan() []*Step {
	apps := p.Settings.EnabledApps()
	enabled := make(map[string]registry.App, len(apps))
	for _, app := range apps {
		enabled[app.ID] = app
	}

	var steps []*Step
	for _, app := range apps {
		switch app.ID {
		case "qbittorrent":
			steps = append(steps, p.qbittorrentStep(app, enabled))
		case "radarr", "sonarr", "lidarr", "readarr":
			steps = append(steps, p.apiKeyStep(app), p.arrStep(app, enabled))
		case "prowlarr":
			steps = append(steps, p.apiKeyStep(app), p.prowlarrStep(app, enabled))
		case "bazarr":
			steps = append(steps, p.bazarrKeyStep(app), p.bazarrStep(app, enabled))
		case "jellyfin":
			steps = append(steps, p.jellyfinStep(app, enabled))
		case "overseerr":
			steps = append(steps, p.overseerrStep(app, enabled))
		case "tautulli":
			steps = append(steps, p.tautulliKeyStep(app), p.tautulliStep(app))
		case "soularr":
			steps = append(steps, p.soularrStep(app, enabled))
		case "portainer":
			steps = append(steps, p.portainerStep(app))
		case "uptime-kuma":
			steps = append(steps, p.kumaStep(app, apps))
		case "profilarr":
			steps = append(steps, p.profilarrStep(app))
		}
	}

	present := make(map[string]bool, len(steps))
	for _, s := range steps {
		present[s.ID] = true
	}
	for _, s := range steps {
		kept := s.Needs[:0]
		for _, need := range s.Needs {
			if present[need] {
				kept = append(kept, need)
			}
		}
		s.Needs = kept
	}
	return steps
}

// hostURL is app's address from easiarr's side of the port mapping.
func (p *Planner) hostURL(app registry.App) string {
	host := p.Host
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, p.Settings.PortFor(app))
}

// serviceURL is app's address inside the compose network, where service
// names resolve and container ports apply.
func (p *Planner) serviceURL(app registry.App) string {
	return p.Settings.ServiceURL(app)
}

// appConfigPath resolves a file inside the app's config volume on the host.
func (p *Planner) appConfigPath(appID string, parts ...string) string {
	elems := append([]string{paths.Expand(p.Settings.RootDir), appID}, parts...)
	return filepath.Join(elems...)
}

// apiKey fetches a captured API key, failing when the capture step has not
// run yet.
func (p *Planner) apiKey(app registry.App) (string, error) {
	key, err := p.Env.Get(app.EnvKey("API_KEY"))
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", fmt.Errorf("%s is not in %s yet", app.EnvKey("API_KEY"), p.Env.Path())
	}
	return key, nil
}

// secret fetches a credential the generate step should have written.
func (p *Planner) secret(app registry.App, suffix string) (string, error) {
	v, err := p.Env.Get(app.EnvKey(suffix))
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("%s is missing from %s, run generate first", app.EnvKey(suffix), p.Env.Path())
	}
	return v, nil
}

// password fetches the app's password padded to the service's minimum. A
// hand-edited short password is padded and written back, so .env always
// records what was actually pushed.
func (p *Planner) password(app registry.App, min int) (string, error) {
	pass, err := p.secret(app, "PASSWORD")
	if err != nil {
		return "", err
	}
	padded := secrets.Pad(pass, min)
	if padded != pass {
		if err := p.Env.Set(app.EnvKey("PASSWORD"), padded); err != nil {
			return "", err
		}
		p.Logger.Warn().Str("app", app.ID).Int("min", min).Msg("password was below the service minimum, padded")
	}
	return padded, nil
}

// qbitConnection describes qBittorrent as the other containers reach it.
func (p *Planner) qbitConnection(enabled map[string]registry.App, category string) clients.QbitConnection {
	conn := clients.QbitConnection{Category: category}
	qb, ok := enabled["qbittorrent"]
	if !ok {
		return conn
	}
	conn.Host = p.Settings.ServiceHost(qb)
	conn.Port = qb.WebPort()
	conn.Username, _ = p.Env.Get(qb.EnvKey("USER"))
	conn.Password, _ = p.Env.Get(qb.EnvKey("PASSWORD"))
	return conn
}

// apiKeyStep lifts the API key a *arr app minted on first boot into the
// .env store. The container writes config.xml moments after it starts, so
// the retry policy covers the race.
func (p *Planner) apiKeyStep(app registry.App) *Step {
	envKey := app.EnvKey("API_KEY")
	configPath := p.appConfigPath(app.ID, "config.xml")

	return &Step{
		ID:    app.ID + "-apikey",
		App:   app.ID,
		Title: "Capture " + app.Name + " API key",
		Probe: func(ctx context.Context) (bool, error) {
			key, err := p.Env.Get(envKey)
			return key != "", err
		},
		Apply: func(ctx context.Context) error {
			key, err := appkeys.Starr(configPath)
			if err != nil {
				return err
			}
			return p.Env.Set(envKey, key)
		},
	}
}

func (p *Planner) qbittorrentStep(app registry.App, enabled map[string]registry.App) *Step {
	categories := p.qbitCategories(enabled)

	client := func() (*qbit.Client, error) {
		user, err := p.secret(app, "USER")
		if err != nil {
			return nil, err
		}
		pass, err := p.secret(app, "PASSWORD")
		if err != nil {
			return nil, err
		}
		return qbit.NewClient(p.hostURL(app), user, pass, p.Logger), nil
	}

	return &Step{
		ID:    "qbittorrent-setup",
		App:   app.ID,
		Title: "Configure qBittorrent",
		Probe: func(ctx context.Context) (bool, error) {
			c, err := client()
			if err != nil {
				return false, err
			}
			return c.Initialized(ctx, categories)
		},
		Apply: func(ctx context.Context) error {
			c, err := client()
			if err != nil {
				return err
			}
			user, _ := p.Env.Get(app.EnvKey("USER"))
			pass, _ := p.Env.Get(app.EnvKey("PASSWORD"))
			return c.Configure(ctx, qbit.Settings{
				Username:   user,
				Password:   pass,
				SavePath:   downloadsMount,
				Categories: categories,
			})
		},
	}
}

// qbitCategories lists the download categories the stack files torrents
// under, one per library manager plus Prowlarr's own.
func (p *Planner) qbitCategories(enabled map[string]registry.App) []qbit.Category {
	var cats []qbit.Category
	for _, id := range []string{"radarr", "sonarr", "lidarr", "readarr"} {
		arr, ok := enabled[id]
		if !ok {
			continue
		}
		cats = append(cats, qbit.Category{
			Name:     arr.MediaFolder,
			SavePath: path.Join(downloadsMount, arr.MediaFolder),
		})
	}
	if _, ok := enabled["prowlarr"]; ok {
		cats = append(cats, qbit.Category{
			Name:     "prowlarr",
			SavePath: path.Join(downloadsMount, "prowlarr"),
		})
	}
	return cats
}

func (p *Planner) arrStep(app registry.App, enabled map[string]registry.App) *Step {
	s := &Step{
		ID:    app.ID + "-setup",
		App:   app.ID,
		Title: "Configure " + app.Name,
		Needs: []string{app.ID + "-apikey", "qbittorrent-setup"},
	}

	folder := app.MediaFolder
	root := path.Join(mediaMount, folder)
	url := p.hostURL(app)

	switch app.ID {
	case "radarr":
		client := func() (*radarr.Client, error) {
			key, err := p.apiKey(app)
			if err != nil {
				return nil, err
			}
			return radarr.NewClient(url, key, p.Client, p.Logger), nil
		}
		s.Probe = func(ctx context.Context) (bool, error) {
			c, err := client()
			if err != nil {
				return false, err
			}
			return c.Initialized(ctx)
		}
		s.Apply = func(ctx context.Context) error {
			c, err := client()
			if err != nil {
				return err
			}
			if err := c.Health(ctx); err != nil {
				return err
			}
			return c.Configure(ctx, radarr.Settings{
				RootFolder: root,
				Qbit:       p.qbitConnection(enabled, folder),
			})
		}
	case "sonarr":
		client := func() (*sonarr.Client, error) {
			key, err := p.apiKey(app)
			if err != nil {
				return nil, err
			}
			return sonarr.NewClient(url, key, p.Client, p.Logger), nil
		}
		s.Probe = func(ctx context.Context) (bool, error) {
			c, err := client()
			if err != nil {
				return false, err
			}
			return c.Initialized(ctx)
		}
		s.Apply = func(ctx context.Context) error {
			c, err := client()
			if err != nil {
				return err
			}
			if err := c.Health(ctx); err != nil {
				return err
			}
			return c.Configure(ctx, sonarr.Settings{
				RootFolder: root,
				Qbit:       p.qbitConnection(enabled, folder),
			})
		}
	case "lidarr":
		client := func() (*lidarr.Client, error) {
			key, err := p.apiKey(app)
			if err != nil {
				return nil, err
			}
			return lidarr.NewClient(url, key, p.Client, p.Logger), nil
		}
		s.Probe = func(ctx context.Context) (bool, error) {
			c, err := client()
			if err != nil {
				return false, err
			}
			return c.Initialized(ctx)
		}
		s.Apply = func(ctx context.Context) error {
			c, err := client()
			if err != nil {
				return err
			}
			if err := c.Health(ctx); err != nil {
				return err
			}
			return c.Configure(ctx, lidarr.Settings{
				RootFolder: root,
				Qbit:       p.qbitConnection(enabled, folder),
			})
		}
	case "readarr":
		client := func() (*readarr.Client, error) {
			key, err := p.apiKey(app)
			if err != nil {
				return nil, err
			}
			return readarr.NewClient(url, key, p.Client, p.Logger), nil
		}
		s.Probe = func(ctx context.Context) (bool, error) {
			c, err := client()
			if err != nil {
				return false, err
			}
			return c.Initialized(ctx)
		}
		s.Apply = func(ctx context.Context) error {
			c, err := client()
			if err != nil {
				return err
			}
			if err := c.Health(ctx); err != nil {
				return err
			}
			return c.Configure(ctx, readarr.Settings{
				RootFolder: root,
				Qbit:       p.qbitConnection(enabled, folder),
			})
		}
	}
	return s
}

func (p *Planner) prowlarrStep(app registry.App, enabled map[string]registry.App) *Step {
	needs := []string{app.ID + "-apikey", "qbittorrent-setup"}
	var linked []registry.App
	for _, id := range []string{"radarr", "sonarr", "lidarr", "readarr"} {
		if arr, ok := enabled[id]; ok {
			linked = append(linked, arr)
			needs = append(needs, id+"-apikey")
		}
	}

	client := func() (*prowlarr.Client, error) {
		key, err := p.apiKey(app)
		if err != nil {
			return nil, err
		}
		return prowlarr.NewClient(p.hostURL(app), key, p.Client, p.Logger), nil
	}

	return &Step{
		ID:    "prowlarr-apps",
		App:   app.ID,
		Title: "Link Prowlarr to the stack",
		Needs: needs,
		Probe: func(ctx context.Context) (bool, error) {
			c, err := client()
			if err != nil {
				return false, err
			}
			return c.Initialized(ctx)
		},
		Apply: func(ctx context.Context) error {
			c, err := client()
			if err != nil {
				return err
			}
			if err := c.Health(ctx); err != nil {
				return err
			}

			apps := make([]prowlarr.AppLink, 0, len(linked))
			for _, arr := range linked {
				key, err := p.apiKey(arr)
				if err != nil {
					return err
				}
				apps = append(apps, prowlarr.AppLink{
					Name:           arr.Name,
					Implementation: arr.Name,
					URL:            p.serviceURL(arr),
					APIKey:         key,
				})
			}
			return c.Configure(ctx, prowlarr.Settings{
				OwnURL: p.serviceURL(app),
				Apps:   apps,
				Qbit:   p.qbitConnection(enabled, "prowlarr"),
			})
		},
	}
}

// bazarrKeyStep captures Bazarr's minted API key. Bazarr keeps its config
// nested one level down in the volume.
func (p *Planner) bazarrKeyStep(app registry.App) *Step {
	envKey := app.EnvKey("API_KEY")
	configPath := p.appConfigPath(app.ID, "config", "config.yaml")

	return &Step{
		ID:    "bazarr-apikey",
		App:   app.ID,
		Title: "Capture Bazarr API key",
		Probe: func(ctx context.Context) (bool, error) {
			key, err := p.Env.Get(envKey)
			return key != "", err
		},
		Apply: func(ctx context.Context) error {
			key, err := appkeys.Bazarr(configPath)
			if err != nil {
				return err
			}
			return p.Env.Set(envKey, key)
		},
	}
}

func (p *Planner) bazarrStep(app registry.App, enabled map[string]registry.App) *Step {
	needs := []string{"bazarr-apikey"}
	for _, id := range []string{"radarr", "sonarr"} {
		if _, ok := enabled[id]; ok {
			needs = append(needs, id+"-apikey")
		}
	}

	client := func() (*bazarr.Client, error) {
		key, err := p.apiKey(app)
		if err != nil {
			return nil, err
		}
		return bazarr.NewClient(p.hostURL(app), key, p.Client, p.Logger), nil
	}

	connection := func(id string) (*bazarr.ArrConnection, error) {
		arr, ok := enabled[id]
		if !ok {
			return nil, nil
		}
		key, err := p.apiKey(arr)
		if err != nil {
			return nil, err
		}
		return &bazarr.ArrConnection{Host: arr.ID, Port: arr.WebPort(), APIKey: key}, nil
	}

	return &Step{
		ID:    "bazarr-setup",
		App:   app.ID,
		Title: "Configure Bazarr",
		Needs: needs,
		Probe: func(ctx context.Context) (bool, error) {
			c, err := client()
			if err != nil {
				return false, err
			}
			return c.Initialized(ctx)
		},
		Apply: func(ctx context.Context) error {
			c, err := client()
			if err != nil {
				return err
			}
			if err := c.Health(ctx); err != nil {
				return err
			}

			rad, err := connection("radarr")
			if err != nil {
				return err
			}
			son, err := connection("sonarr")
			if err != nil {
				return err
			}
			return c.Configure(ctx, bazarr.Settings{Radarr: rad, Sonarr: son})
		},
	}
}

func (p *Planner) jellyfinStep(app registry.App, enabled map[string]registry.App) *Step {
	libraries := p.jellyfinLibraries(enabled)

	return &Step{
		ID:    "jellyfin-setup",
		App:   app.ID,
		Title: "Configure Jellyfin",
		Probe: func(ctx context.Context) (bool, error) {
			c := jellyfin.NewClient(p.hostURL(app), p.Client, p.Logger)
			return c.Initialized(ctx)
		},
		Apply: func(ctx context.Context) error {
			user, err := p.secret(app, "USER")
			if err != nil {
				return err
			}
			pass, err := p.secret(app, "PASSWORD")
			if err != nil {
				return err
			}

			c := jellyfin.NewClient(p.hostURL(app), p.Client, p.Logger)
			key, err := c.Configure(ctx, jellyfin.Settings{
				Username:  user,
				Password:  pass,
				Libraries: libraries,
			})
			if err != nil {
				return err
			}
			return p.Env.Set(app.EnvKey("API_KEY"), key)
		},
	}
}

// jellyfinLibraries builds the library list for the enabled managers.
// Movies and shows are always worth a library; music and books only when
// something maintains them.
func (p *Planner) jellyfinLibraries(enabled map[string]registry.App) []jellyfin.Library {
	libs := []jellyfin.Library{
		{Name: "Movies", CollectionType: "movies", Path: path.Join(mediaMount, "movies")},
		{Name: "Shows", CollectionType: "tvshows", Path: path.Join(mediaMount, "tv")},
	}
	if _, ok := enabled["lidarr"]; ok {
		libs = append(libs, jellyfin.Library{Name: "Music", CollectionType: "music", Path: path.Join(mediaMount, "music")})
	}
	if _, ok := enabled["readarr"]; ok {
		libs = append(libs, jellyfin.Library{Name: "Books", CollectionType: "books", Path: path.Join(mediaMount, "books")})
	}
	return libs
}

func (p *Planner) overseerrStep(app registry.App, enabled map[string]registry.App) *Step {
	needs := make([]string, 0, 2)
	for _, id := range []string{"radarr", "sonarr"} {
		if _, ok := enabled[id]; ok {
			needs = append(needs, id+"-setup")
		}
	}

	// Overseerr registers the *arr instances with a quality profile and
	// root folder, both read back from the live servers.
	instance := func(ctx context.Context, arr registry.App) (overseerr.ArrInstance, error) {
		key, err := p.apiKey(arr)
		if err != nil {
			return overseerr.ArrInstance{}, err
		}

		inst := overseerr.ArrInstance{
			Name:     arr.Name,
			Hostname: arr.ID,
			Port:     arr.WebPort(),
			APIKey:   key,
		}
		url := p.hostURL(arr)
		switch arr.ID {
		case "radarr":
			c := radarr.NewClient(url, key, p.Client, p.Logger)
			inst.ProfileID, inst.ProfileName, err = c.DefaultQualityProfile(ctx)
			if err != nil {
				return inst, err
			}
			inst.Directory, err = c.FirstRootFolder(ctx)
		case "sonarr":
			c := sonarr.NewClient(url, key, p.Client, p.Logger)
			inst.ProfileID, inst.ProfileName, err = c.DefaultQualityProfile(ctx)
			if err != nil {
				return inst, err
			}
			inst.Directory, err = c.FirstRootFolder(ctx)
		}
		return inst, err
	}

	return &Step{
		ID:    "overseerr-setup",
		App:   app.ID,
		Title: "Configure Overseerr",
		Needs: needs,
		Probe: func(ctx context.Context) (bool, error) {
			c := overseerr.NewClient(p.hostURL(app), p.Client, p.Logger)
			return c.Initialized(ctx)
		},
		Apply: func(ctx context.Context) error {
			token, err := p.Env.Get(plexTokenKey)
			if err != nil {
				return err
			}
			if token == "" {
				return fmt.Errorf("overseerr setup needs %s in %s: sign in at https://plex.tv and add a token", plexTokenKey, p.Env.Path())
			}

			settings := overseerr.Settings{PlexToken: token}
			if arr, ok := enabled["radarr"]; ok {
				inst, err := instance(ctx, arr)
				if err != nil {
					return err
				}
				settings.Radarr = append(settings.Radarr, inst)
			}
			if arr, ok := enabled["sonarr"]; ok {
				inst, err := instance(ctx, arr)
				if err != nil {
					return err
				}
				settings.Sonarr = append(settings.Sonarr, inst)
			}

			c := overseerr.NewClient(p.hostURL(app), p.Client, p.Logger)
			if err := c.Configure(ctx, settings); err != nil {
				return err
			}

			key, err := c.APIKey(ctx)
			if err != nil {
				return err
			}
			return p.Env.Set(app.EnvKey("API_KEY"), key)
		},
	}
}

func (p *Planner) tautulliKeyStep(app registry.App) *Step {
	envKey := app.EnvKey("API_KEY")
	configPath := p.appConfigPath(app.ID, "config.ini")

	return &Step{
		ID:    "tautulli-apikey",
		App:   app.ID,
		Title: "Capture Tautulli API key",
		Probe: func(ctx context.Context) (bool, error) {
			key, err := p.Env.Get(envKey)
			return key != "", err
		},
		Apply: func(ctx context.Context) error {
			key, err := appkeys.Tautulli(configPath)
			if err != nil {
				return err
			}
			return p.Env.Set(envKey, key)
		},
	}
}

// tautulliStep verifies the Plex link. Tautulli's own wizard has no API, so
// this cannot do the linking itself; a clear failure tells the operator
// what is left to click through.
func (p *Planner) tautulliStep(app registry.App) *Step {
	client := func() (*tautulli.Client, error) {
		key, err := p.apiKey(app)
		if err != nil {
			return nil, err
		}
		return tautulli.NewClient(p.hostURL(app), key, p.Client, p.Logger), nil
	}

	return &Step{
		ID:    "tautulli-check",
		App:   app.ID,
		Title: "Verify Tautulli Plex link",
		Needs: []string{"tautulli-apikey"},
		Probe: func(ctx context.Context) (bool, error) {
			c, err := client()
			if err != nil {
				return false, err
			}
			return c.Initialized(ctx)
		},
		Apply: func(ctx context.Context) error {
			c, err := client()
			if err != nil {
				return err
			}
			return c.Configure(ctx)
		},
	}
}

// soularrStep writes the bridge config once Lidarr's API key is captured.
// Soularr has no API of its own; it reads the file on its next poll.
func (p *Planner) soularrStep(app registry.App, enabled map[string]registry.App) *Step {
	configPath := p.appConfigPath(app.ID, "config.ini")

	return &Step{
		ID:    "soularr-config",
		App:   app.ID,
		Title: "Write Soularr bridge config",
		Needs: []string{"lidarr-apikey"},
		Probe: func(ctx context.Context) (bool, error) {
			lid, ok := enabled["lidarr"]
			if !ok {
				return false, nil
			}
			key, err := p.Env.Get(lid.EnvKey("API_KEY"))
			if err != nil || key == "" {
				return false, err
			}
			return soularr.Configured(configPath, key), nil
		},
		Apply: func(ctx context.Context) error {
			lid, ok := enabled["lidarr"]
			if !ok {
				return fmt.Errorf("soularr needs lidarr in the selection")
			}
			lidarrKey, err := p.apiKey(lid)
			if err != nil {
				return err
			}
			slskd, ok := enabled["slskd"]
			if !ok {
				return fmt.Errorf("soularr needs slskd in the selection")
			}
			slskdKey, err := p.secret(slskd, "API_KEY")
			if err != nil {
				return err
			}

			data, err := soularr.Render(p.Settings, lidarrKey, slskdKey)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
				return err
			}
			return os.WriteFile(configPath, data, 0o644)
		},
	}
}

func (p *Planner) portainerStep(app registry.App) *Step {
	return &Step{
		ID:    "portainer-setup",
		App:   app.ID,
		Title: "Configure Portainer",
		Probe: func(ctx context.Context) (bool, error) {
			c := portainer.NewClient(p.hostURL(app), p.Client, p.Logger)
			return c.Initialized(ctx)
		},
		Apply: func(ctx context.Context) error {
			user, err := p.secret(app, "USER")
			if err != nil {
				return err
			}
			pass, err := p.password(app, portainerMinPassword)
			if err != nil {
				return err
			}
			c := portainer.NewClient(p.hostURL(app), p.Client, p.Logger)
			return c.Configure(ctx, portainer.Settings{Username: user, Password: pass})
		},
	}
}

func (p *Planner) kumaStep(app registry.App, apps []registry.App) *Step {
	var monitors []kuma.Monitor
	for _, a := range apps {
		if a.ID == app.ID || !a.HasWebUI() {
			continue
		}
		monitors = append(monitors, kuma.Monitor{Name: a.Name, URL: p.serviceURL(a)})
	}

	return &Step{
		ID:    "uptime-kuma-setup",
		App:   app.ID,
		Title: "Configure Uptime Kuma",
		Probe: func(ctx context.Context) (bool, error) {
			c := kuma.NewClient(p.hostURL(app), p.Logger)
			return c.Initialized(ctx)
		},
		Apply: func(ctx context.Context) error {
			user, err := p.secret(app, "USER")
			if err != nil {
				return err
			}
			pass, err := p.password(app, kumaMinPassword)
			if err != nil {
				return err
			}
			c := kuma.NewClient(p.hostURL(app), p.Logger)
			return c.Configure(ctx, kuma.Settings{
				Username: user,
				Password: pass,
				Monitors: monitors,
			})
		},
	}
}

func (p *Planner) profilarrStep(app registry.App) *Step {
	return &Step{
		ID:    "profilarr-setup",
		App:   app.ID,
		Title: "Configure Profilarr",
		Probe: func(ctx context.Context) (bool, error) {
			c := profilarr.NewClient(p.hostURL(app), p.Client, p.Logger)
			return c.Initialized(ctx)
		},
		Apply: func(ctx context.Context) error {
			c := profilarr.NewClient(p.hostURL(app), p.Client, p.Logger)
			return c.Configure(ctx, profilarr.Settings{DatabaseURL: profilarr.DefaultDatabaseURL})
		},
	}
}
