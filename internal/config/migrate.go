package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// migrateFile upgrades an on-disk settings file to CurrentVersion. The
// original is backed up before the rewrite. It reports whether a migration
// ran.
func migrateFile(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	version := 0
	if v, ok := raw["version"].(float64); ok {
		version = int(v)
	}
	if version >= CurrentVersion {
		return false, nil
	}

	if _, err := backupFile(path); err != nil {
		return false, err
	}

	for version < CurrentVersion {
		switch version {
		case 0:
			migrateV0toV1(raw)
		case 1:
			migrateV1toV2(raw)
		}
		version++
	}
	raw["version"] = CurrentVersion

	out, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return false, fmt.Errorf("failed to encode migrated settings: %w", err)
	}
	out = append(out, '\n')
	if err := atomicWrite(path, out, 0o600); err != nil {
		return false, err
	}
	return true, nil
}

// migrateV0toV1 renames the original flat keys to their current names.
func migrateV0toV1(raw map[string]any) {
	renames := map[string]string{
		"root":      "root_dir",
		"media":     "media_dir",
		"downloads": "downloads_dir",
		"tz":        "timezone",
	}
	for old, new := range renames {
		if v, ok := raw[old]; ok {
			if _, exists := raw[new]; !exists {
				raw[new] = v
			}
			delete(raw, old)
		}
	}
	// lan moved under the network section
	if v, ok := raw["lan"]; ok {
		if _, exists := raw["network"]; !exists {
			raw["network"] = map[string]any{"lan_cidr": v}
		}
		delete(raw, "lan")
	}
}

// migrateV1toV2 converts the ports list of {app, port} objects into a map.
func migrateV1toV2(raw map[string]any) {
	list, ok := raw["ports"].([]any)
	if !ok {
		return
	}
	ports := map[string]any{}
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		app, _ := entry["app"].(string)
		port, hasPort := entry["port"]
		if app != "" && hasPort {
			ports[app] = port
		}
	}
	raw["ports"] = ports
}
