// Package config resolves the server's external paths into an explicit
// object handed to the invoker. Nothing else reads the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"tigermcp/internal/logging"
)

// Environment variable names, kept compatible with existing tiger tooling.
const (
	EnvTigerPath = "TIGER_PATH"
	EnvModsBase  = "MODS_BASE"
)

// Config holds the resolved external paths plus logging settings.
type Config struct {
	// TigerPath is the tiger executable.
	TigerPath string `yaml:"tiger_path"`
	// ModsBase is the directory containing <name>.mod descriptor files.
	ModsBase string `yaml:"mods_base"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads the optional YAML config file at path (empty path skips the
// file), then applies TIGER_PATH and MODS_BASE environment overrides. A
// missing mods base falls back to the stock CK3 mod directory under the user
// home, with a warning.
func Load(path string) (*Config, error) {
	cfg := &Config{LogFormat: "text"}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}

	if v := os.Getenv(EnvTigerPath); v != "" {
		cfg.TigerPath = v
	}
	if v := os.Getenv(EnvModsBase); v != "" {
		cfg.ModsBase = v
	}

	if cfg.ModsBase == "" {
		cfg.ModsBase = DefaultModsBase()
		logging.New("config").Warn("mods base not set, falling back to default",
			"default", cfg.ModsBase)
	}

	return cfg, nil
}

// Validate checks the settings a tiger invocation cannot proceed without.
func (c *Config) Validate() error {
	if c.TigerPath == "" {
		return fmt.Errorf("tiger path is not set (set tiger_path in the config file or the %s environment variable)", EnvTigerPath)
	}
	return nil
}

// DefaultModsBase is the stock CK3 mod directory under the user home.
func DefaultModsBase() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Documents", "Paradox Interactive", "Crusader Kings III", "mod")
}
