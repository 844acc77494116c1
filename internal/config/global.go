package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME and XDG_DATA_HOME.
	ConfigDir = "perspectr"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
	// SnapshotFile is the default snapshot database name.
	SnapshotFile = "snapshots.db"
)

// Environment overrides, applied after the config file.
const (
	EnvAPIURL      = "PERSPECTR_API_URL"
	EnvViewerID    = "PERSPECTR_VIEWER_ID"
	EnvViewerEmail = "PERSPECTR_VIEWER_EMAIL"
	EnvLogLevel    = "PERSPECTR_LOG_LEVEL"
)

// configCache caches the loaded config.
var configCache *Config

// Path returns the path to the config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/perspectr/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// DefaultSnapshotPath returns the default snapshot database location.
// Respects XDG_DATA_HOME, defaults to ~/.local/share/perspectr/snapshots.db.
func DefaultSnapshotPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return SnapshotFile
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, ConfigDir, SnapshotFile)
}

// Load reads .env, the config file and environment overrides. A missing
// file yields the defaults. The result is cached; see ResetCache.
func Load() (*Config, error) {
	if configCache != nil {
		return configCache, nil
	}

	_ = godotenv.Load() // .env is optional

	cfg, err := LoadFrom(Path())
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)

	configCache = cfg
	return cfg, nil
}

// LoadFrom reads the config file at path over the defaults. Environment
// overrides are not applied.
func LoadFrom(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if cfg.SnapshotDB != "" {
		cfg.SnapshotDB = ExpandPath(cfg.SnapshotDB)
	}
	return cfg, nil
}

// ResetCache clears the cached config.
// Useful for testing.
func ResetCache() {
	configCache = nil
}

// Save writes the config file to path, creating its directory.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func applyEnv(c *Config) {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.APIURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv(EnvViewerID); v != "" {
		c.ViewerID = v
	}
	if v := os.Getenv(EnvViewerEmail); v != "" {
		c.ViewerEmail = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
}

// HelpfulConfigMessage explains how to set the viewer when it is missing.
func HelpfulConfigMessage() string {
	configPath := Path()
	return fmt.Sprintf(`No viewer configured.

Tip: set your user id once:
  perspectr config viewer-id <your-id>

or add it to %s:
  mkdir -p %s
  echo 'viewer_id: <your-id>' >> %s

or export %s for a single session.`,
		configPath,
		filepath.Dir(configPath),
		configPath,
		EnvViewerID)
}
