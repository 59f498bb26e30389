package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	DefaultURL = "http://localhost:8080"

	// PathEnv overrides the config file location.
	PathEnv = "VRCPHOTOS_CONFIG"
	// ServerEnv and TokenEnv take precedence over the saved values so a
	// scheduled sync can run without a config file.
	ServerEnv = "VRCPHOTOS_SERVER"
	TokenEnv  = "VRCPHOTOS_TOKEN"
)

// Config is the CLI state persisted between runs.
type Config struct {
	ServerURL string `json:"server_url"`
	Token     string `json:"token"`
	PhotoDir  string `json:"photo_dir,omitempty"`
}

// Path returns the config file location, honouring PathEnv.
func Path() (string, error) {
	if p := os.Getenv(PathEnv); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "vrcphotos", "config.json"), nil
}

// Load reads the saved config and applies environment overrides. A missing
// file is not an error.
func Load() (*Config, error) {
	cfg := &Config{}
	if p, err := Path(); err == nil {
		if err := readFile(p, cfg); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv(ServerEnv); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv(TokenEnv); v != "" {
		cfg.Token = v
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultURL
	}
	return cfg, nil
}

func readFile(p string, cfg *Config) error {
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", p, err)
	}
	return nil
}

// Save writes cfg with owner-only permissions since it holds the session token.
func Save(cfg *Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o600)
}

// Clear removes the config file.
func Clear() error {
	p, err := Path()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (c *Config) HasToken() bool {
	return c.Token != ""
}
