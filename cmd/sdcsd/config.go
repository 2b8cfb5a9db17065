package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config models the sdcsd config file. Flags override config values;
// config values override the built-in defaults.
type Config struct {
	// Backend names the default backend. Empty means best available.
	Backend string `yaml:"backend"`

	// Width and Height are the default framebuffer dimensions.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Isolate renders through a sandboxed child process by default.
	Isolate bool `yaml:"isolate"`
}

// DefaultConfigPath returns the standard config location,
// $HOME/.config/sdcsd/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "sdcsd", "config.yaml")
}

// LoadConfig decodes the config file. A missing or empty path yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{Width: 800, Height: 600}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Width <= 0 {
		cfg.Width = 800
	}
	if cfg.Height <= 0 {
		cfg.Height = 600
	}
	return cfg, nil
}
