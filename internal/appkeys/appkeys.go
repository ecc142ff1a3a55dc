// Package appkeys lifts the API keys applications mint on first boot out of
// their config volumes. The *arr family, Bazarr and Tautulli generate a key
// the moment the container writes its config file; reading it back is the
// only way to talk to their APIs without a manual copy-paste.
package appkeys

import (
	"encoding/xml"
	"fmt"
	"os"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Starr reads the ApiKey element from a *arr config.xml. The file appears a
// moment after the container's first start, so callers should retry on
// error.
func Starr(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg struct {
		APIKey string `xml:"ApiKey"`
	}
	if err := xml.Unmarshal(raw, &cfg); err != nil {
		return "", fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.APIKey == "" {
		return "", fmt.Errorf("%s has no api key yet", path)
	}
	return cfg.APIKey, nil
}

// Bazarr reads the auth apikey from Bazarr's config.yaml.
func Bazarr(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg struct {
		Auth struct {
			APIKey string `yaml:"apikey"`
		} `yaml:"auth"`
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return "", fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Auth.APIKey == "" {
		return "", fmt.Errorf("%s has no api key yet", path)
	}
	return cfg.Auth.APIKey, nil
}

// Tautulli reads api_key from Tautulli's config.ini.
func Tautulli(path string) (string, error) {
	f, err := ini.Load(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	key := f.Section("General").Key("api_key").String()
	if key == "" {
		return "", fmt.Errorf("%s has no api key yet", path)
	}
	return key, nil
}
