package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.euphonyrc, $XDG_CONFIG_HOME/euphony/config.toml, ~/.config/euphony/config.toml
func Load() (*Config, error) {
	cfg := &Config{}

	path := FindConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// FindConfigFile returns the first existing config file path, or "".
func FindConfigFile() string {
	for _, p := range candidatePaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// DefaultPath is where 'config init' writes a new file.
func DefaultPath() string {
	paths := candidatePaths()
	if len(paths) == 0 {
		return "config.toml"
	}
	return paths[len(paths)-1]
}

func candidatePaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	paths := []string{
		filepath.Join(home, ".euphonyrc"),
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	return append(paths, filepath.Join(xdgConfig, "euphony", "config.toml"))
}

// TickDuration returns the progress clock period.
func (c *PlaybackConfig) TickDuration() time.Duration {
	return time.Duration(c.TickInterval) * time.Millisecond
}

// WatchdogDuration returns the grace period added to a song's duration.
func (c *PlaybackConfig) WatchdogDuration() time.Duration {
	return time.Duration(c.WatchdogGrace) * time.Millisecond
}

// VolumeLevel returns the configured volume scaled to [0,1].
func (c *PlaybackConfig) VolumeLevel() float64 {
	return float64(c.Volume) / 100
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Catalog
	if v := os.Getenv("EUPHONY_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}

	// Storage
	if v := os.Getenv("EUPHONY_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("EUPHONY_STORAGE_DIR"); v != "" {
		cfg.Storage.Dir = v
	}
	if v := os.Getenv("EUPHONY_REDIS_ADDR"); v != "" {
		cfg.Storage.RedisAddr = v
	}

	// Playback
	if v := os.Getenv("EUPHONY_PLAYBACK_VOLUME"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Playback.Volume = i
		}
	}

	// TUI
	if v := os.Getenv("EUPHONY_TUI_THEME"); v != "" {
		cfg.TUI.Theme = v
	}

	// Log
	if v := os.Getenv("EUPHONY_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("EUPHONY_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
