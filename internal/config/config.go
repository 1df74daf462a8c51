package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath   = "CONFIG_PATH"
	EnvDBConnection = "DB_CONNECTION"
)

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath string
}

// LoadFromEnv loads app config from environment variables.
func LoadFromEnv() (AppConfig, error) {
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file)")

// LoadDatabaseDSN reads the database DSN from the YAML config file.
func LoadDatabaseDSN(configPath string) (string, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn, nil
	}

	// fileConfig maps the YAML fields needed for DSN resolution.
	type fileConfig struct {
		DatabaseDSN string `yaml:"database-dsn"`
		Database    struct {
			DSN string `yaml:"dsn"`
		} `yaml:"database"`
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("read config file: %w", err)
	}

	var cfg fileConfig
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return "", fmt.Errorf("parse config file: %w", errUnmarshal)
	}

	if dsn := strings.TrimSpace(cfg.DatabaseDSN); dsn != "" {
		return dsn, nil
	}
	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		return dsn, nil
	}
	return "", ErrMissingDatabaseDSN
}

// LoadCatalogPath reads the rule catalog path from the YAML config file,
// defaulting to a catalog.yaml beside the config file. Env overrides are
// applied by catalog.ResolvePath, not here.
func LoadCatalogPath(configPath string) string {
	// fileConfig maps the YAML fields needed for catalog resolution.
	type fileConfig struct {
		CatalogPath string `yaml:"catalog-path"`
	}

	if data, errRead := os.ReadFile(configPath); errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			if p := strings.TrimSpace(cfg.CatalogPath); p != "" {
				if filepath.IsAbs(p) {
					return p
				}
				return filepath.Join(filepath.Dir(configPath), p)
			}
		}
	}
	return filepath.Join(filepath.Dir(configPath), "catalog.yaml")
}

// LoadServerPort reads the server port from the YAML config file, falling
// back to the given default when absent or invalid.
func LoadServerPort(configPath string, fallback int) int {
	// fileConfig maps the YAML fields needed for server settings.
	type fileConfig struct {
		Server struct {
			Port int `yaml:"port"`
		} `yaml:"server"`
	}

	if data, errRead := os.ReadFile(configPath); errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			if cfg.Server.Port > 0 && cfg.Server.Port <= 65535 {
				return cfg.Server.Port
			}
		}
	}
	return fallback
}

// LoadForumType reads the forum type used to pick a bundled catalog when no
// catalog file is present. Defaults to "standard".
func LoadForumType(configPath string) string {
	// fileConfig maps the YAML fields needed for catalog selection.
	type fileConfig struct {
		ForumType string `yaml:"forum-type"`
	}

	if data, errRead := os.ReadFile(configPath); errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			if forumType := strings.TrimSpace(cfg.ForumType); forumType != "" {
				return forumType
			}
		}
	}
	return "standard"
}

// LoadLogLevel reads the log level from the YAML config file, defaulting to
// "info" when absent or unreadable.
func LoadLogLevel(configPath string) string {
	// fileConfig maps the YAML fields needed for logging settings.
	type fileConfig struct {
		LogLevel string `yaml:"log-level"`
	}

	if data, errRead := os.ReadFile(configPath); errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			if level := strings.TrimSpace(cfg.LogLevel); level != "" {
				return level
			}
		}
	}
	return "info"
}
