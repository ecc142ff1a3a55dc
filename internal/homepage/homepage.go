// Package homepage renders the gethomepage services.yaml for the enabled
// apps: one group per category, one tile per web UI, and a live widget
// wherever easiarr can wire credentials for it.
//
// Widget credentials are written as {{HOMEPAGE_VAR_*}} references; the
// compose service passes the matching .env values through, so the dashboard
// picks up captured API keys on its next restart instead of having secrets
// baked into the file.
package homepage

import (
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/easiarr/easiarr/internal/config"
	"github.com/easiarr/easiarr/internal/registry"
)

// Render produces services.yaml grouped by category in display order.
func Render(settings config.Settings) ([]byte, error) {
	root := sequence()
	for _, cat := range registry.Categories() {
		group := sequence()
		for _, app := range settings.EnabledApps() {
			if app.Category != cat || !listed(app) {
				continue
			}
			group.Content = append(group.Content, serviceNode(settings, app))
		}
		if len(group.Content) == 0 {
			continue
		}
		root.Content = append(root.Content, mapping(scalar(cat.Title()), group))
	}
	return yaml.Marshal(root)
}

// Vars returns the .env keys the rendered widgets read through
// HOMEPAGE_VAR_* references, sorted.
func Vars(settings config.Settings) []string {
	seen := map[string]bool{}
	for _, app := range settings.EnabledApps() {
		if !listed(app) || app.Widget == "" {
			continue
		}
		for _, c := range credentials(app) {
			seen[c.key] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// listed reports whether the app gets a tile. The dashboard does not list
// itself.
func listed(app registry.App) bool {
	return app.HasWebUI() && app.ID != "homepage"
}

func serviceNode(settings config.Settings, app registry.App) *yaml.Node {
	fields := []*yaml.Node{
		scalar("icon"), scalar(app.ID + ".png"),
		scalar("href"), scalar(settings.URLFor(app)),
		scalar("description"), scalar(app.Description),
	}
	if w := widgetNode(settings, app); w != nil {
		fields = append(fields, scalar("widget"), w)
	}
	return mapping(scalar(app.Name), mapping(fields...))
}

func widgetNode(settings config.Settings, app registry.App) *yaml.Node {
	if app.Widget == "" {
		return nil
	}
	creds := credentials(app)
	if len(creds) == 0 {
		return nil
	}
	fields := []*yaml.Node{
		scalar("type"), scalar(app.Widget),
		scalar("url"), scalar(settings.ServiceURL(app)),
	}
	for _, c := range creds {
		fields = append(fields, scalar(c.field), scalar("{{HOMEPAGE_VAR_"+c.key+"}}"))
	}
	return mapping(fields...)
}

// credential maps one widget field to the .env key backing it.
type credential struct {
	field string
	key   string
}

func credentials(app registry.App) []credential {
	switch app.ID {
	case "qbittorrent":
		return []credential{
			{"username", app.EnvKey("USER")},
			{"password", app.EnvKey("PASSWORD")},
		}
	case "plex":
		return []credential{{"key", "PLEX__TOKEN"}}
	case "uptime-kuma", "portainer":
		// Kuma wants a status-page slug and Portainer an access token;
		// neither exists at generate time, so no widget.
		return nil
	}
	for _, s := range app.Secrets {
		if s == "API_KEY" {
			return []credential{{"key", app.EnvKey("API_KEY")}}
		}
	}
	return nil
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: v}
}

func mapping(pairs ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Content: pairs}
}

func sequence(items ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Content: items}
}
