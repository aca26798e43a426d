// Package config loads and stores shell configuration in the XDG config dir.
// Only non-secret settings are kept here; AWS credentials stay in the shared
// credential chain (~/.aws, environment, instance metadata).
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"ledgershell/cli/internal/xdg"
)

// Config holds non-sensitive shell settings. Command-line flags override
// every field.
type Config struct {
	Ledger    string `json:"ledger"`
	Region    string `json:"region"`
	Profile   string `json:"profile"`
	Endpoint  string `json:"endpoint"`
	ShowStats bool   `json:"show_stats"`
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; missing file returns defaults.
func Load() (Config, error) {
	var c Config
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Defaults: the ledger name has no sensible default and must
			// come from a flag; region/profile fall through to the AWS
			// shared config chain.
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, err
	}
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
