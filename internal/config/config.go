package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds optional defaults loaded from ~/.config/creel/config.yaml.
type Config struct {
	DefaultProfile string `yaml:"default_profile"`
	DefaultRegion  string `yaml:"default_region"`
	EvilPrincipal  string `yaml:"evil_principal"`
	Workers        int    `yaml:"workers"`
	AuditDB        string `yaml:"audit_db"`
	LogLevel       string `yaml:"log_level"`
}

// Load reads the config file. Returns zero-value Config if the file doesn't exist.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return &Config{}, nil
	}

	path := filepath.Join(home, ".config", "creel", "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Merge applies CLI flag overrides. Flags take precedence over config defaults.
func (c *Config) Merge(profile, region string) (string, string) {
	p := c.DefaultProfile
	if profile != "" {
		p = profile
	}
	r := c.DefaultRegion
	if region != "" {
		r = region
	}
	return p, r
}

// Principal resolves the evil principal: the flag wins, then the config
// default.
func (c *Config) Principal(flag string) string {
	if flag != "" {
		return flag
	}
	return c.EvilPrincipal
}

// WorkerCount resolves the worker pool size; zero means "use the runner's
// default".
func (c *Config) WorkerCount(flag int) int {
	if flag > 0 {
		return flag
	}
	return c.Workers
}

// AuditDBPath resolves where mutation results are persisted. Empty means
// the default location under the user config directory.
func (c *Config) AuditDBPath() string {
	if c.AuditDB != "" {
		return c.AuditDB
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "creel-audit.db"
	}
	return filepath.Join(home, ".config", "creel", "audit.db")
}
