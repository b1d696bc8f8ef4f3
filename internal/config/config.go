package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

const (
	dirName   = "edgo"
	fileName  = "config.json"
	storeName = "store.json"
	dirPerms  = 0700
	filePerms = 0600
)

// Config holds persisted CLI preferences. Credentials are never written
// here; the password comes from the environment or a prompt each run.
type Config struct {
	Username string `json:"username,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
}

// Env carries per-run overrides read from the environment.
type Env struct {
	Username string `env:"EDGO_USERNAME"`
	Password string `env:"EDGO_PASSWORD"`
	BaseURL  string `env:"EDGO_BASE_URL" validate:"omitempty,url"`
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dirName, fileName), nil
}

// StorePath returns the path of the credential cache file next to the
// config.
func StorePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dirName, storeName), nil
}

// Load reads the config from disk. A missing file yields a zero-value
// Config, not an error.
func Load() (*Config, error) {
	p, err := Path()
	if err != nil {
		return &Config{}, nil
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to disk, creating the directory if needed.
func Save(cfg *Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), dirPerms); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, filePerms)
}

// Clear removes the config file.
func Clear() error {
	p, err := Path()
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// FromEnv parses and validates the environment overrides.
func FromEnv() (*Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(&e); err != nil {
		return nil, err
	}
	return &e, nil
}
