package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

var ErrNoAPIKey = errors.New("no monday.com API key configured")

type Config struct {
	Monday MondayConfig `toml:"monday"`
	Cache  CacheConfig  `toml:"cache"`
	Log    LogConfig    `toml:"log"`
}

type MondayConfig struct {
	APIKey         string `toml:"api_key"`
	APIURL         string `toml:"api_url"`
	APIVersion     string `toml:"api_version"`
	BoardID        string `toml:"board_id"`
	DefaultGroupID string `toml:"default_group_id"`
}

type CacheConfig struct {
	Dir         string `toml:"dir"`
	MaxAgeHours int    `toml:"max_age_hours"`
	RefreshDays int    `toml:"refresh_days"`
}

type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn or error
}

func DefaultConfig() Config {
	return Config{
		Monday: MondayConfig{
			APIURL:         "https://api.monday.com/v2",
			APIVersion:     "2023-10",
			BoardID:        "6500270039",
			DefaultGroupID: "new_group_mkkbbd2q",
		},
		Cache: CacheConfig{
			MaxAgeHours: 24,
			RefreshDays: 28,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("finding config directory: %w", err)
	}
	return filepath.Join(dir, "claim"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DataDir holds the journal database and the log file.
func DataDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("finding cache directory: %w", err)
	}
	return filepath.Join(dir, "claim"), nil
}

func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(&cfg)
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MONDAY_API_KEY"); v != "" {
		cfg.Monday.APIKey = v
	}
	if v := os.Getenv("MONDAY_BOARD_ID"); v != "" {
		cfg.Monday.BoardID = v
	}
	if v := os.Getenv("MONDAY_API_URL"); v != "" {
		cfg.Monday.APIURL = v
	}
	if v := os.Getenv("CLAIM_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
}

// Validate reports a missing credential as ErrNoAPIKey.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Monday.APIKey) == "" {
		return ErrNoAPIKey
	}
	return nil
}

// CacheDir is the entry cache location, with a leading ~ expanded.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir == "" {
		dir, err := DataDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "entries"), nil
	}
	dir, err := homedir.Expand(c.Cache.Dir)
	if err != nil {
		return "", fmt.Errorf("expanding cache dir: %w", err)
	}
	return dir, nil
}

func (c *Config) CacheMaxAge() time.Duration {
	return time.Duration(c.Cache.MaxAgeHours) * time.Hour
}

// LogLevel parses the configured level, falling back to info.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// SaveAPIKey persists the credential to the config file using a
// read-modify-write approach to preserve other settings.
func SaveAPIKey(key string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	cfg := make(map[string]any)

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}
	if len(data) > 0 {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	m, ok := cfg["monday"].(map[string]any)
	if !ok {
		m = make(map[string]any)
	}
	m["api_key"] = key
	cfg["monday"] = m

	if err := EnsureConfigDir(); err != nil {
		return err
	}

	out, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, out, 0600)
}

// WriteDefault creates the config file with default values unless one
// already exists, and returns its path.
func WriteDefault() (string, error) {
	path, err := ConfigPath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := EnsureConfigDir(); err != nil {
		return "", err
	}
	out, err := toml.Marshal(DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, out, 0600); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	return path, nil
}
