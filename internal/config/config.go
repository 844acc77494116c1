// Package config handles perspectr configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the user's configuration, stored in
// $XDG_CONFIG_HOME/perspectr/config.yml.
type Config struct {
	APIURL      string `yaml:"api_url" validate:"required,url"`
	ViewerID    string `yaml:"viewer_id,omitempty"`
	ViewerEmail string `yaml:"viewer_email,omitempty" validate:"omitempty,email"`
	ViewerName  string `yaml:"viewer_name,omitempty"`

	DefaultSpan          float64       `yaml:"default_span" validate:"gt=0"`
	RequestTimeout       time.Duration `yaml:"request_timeout" validate:"gt=0"`
	MaxConcurrentLookups int           `yaml:"max_concurrent_lookups" validate:"gt=0"`
	LookupRate           float64       `yaml:"lookup_rate" validate:"gt=0"`
	LookupBurst          int           `yaml:"lookup_burst" validate:"gt=0"`

	LogLevel   string `yaml:"log_level" validate:"oneof=debug info warn error"`
	SnapshotDB string `yaml:"snapshot_db,omitempty"`
}

// Defaults.
const (
	DefaultAPIURL               = "http://localhost:8000"
	DefaultSpan                 = 5.0
	DefaultRequestTimeout       = 15 * time.Second
	DefaultMaxConcurrentLookups = 16
	DefaultLookupRate           = 20.0
	DefaultLookupBurst          = 5
	DefaultLogLevel             = "info"
)

var (
	// ErrInvalidConfig is returned when validation fails.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrViewerNotConfigured is returned when no viewer id is set.
	ErrViewerNotConfigured = errors.New("viewer_id not configured")

	// ErrUnknownKey is returned by Get and Set for unsupported keys.
	ErrUnknownKey = errors.New("unknown configuration key")
)

var validate = validator.New()

// Defaults returns a configuration with every default applied.
func Defaults() *Config {
	return &Config{
		APIURL:               DefaultAPIURL,
		DefaultSpan:          DefaultSpan,
		RequestTimeout:       DefaultRequestTimeout,
		MaxConcurrentLookups: DefaultMaxConcurrentLookups,
		LookupRate:           DefaultLookupRate,
		LookupBurst:          DefaultLookupBurst,
		LogLevel:             DefaultLogLevel,
		SnapshotDB:           DefaultSnapshotPath(),
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// RequireViewer returns ErrViewerNotConfigured if no viewer id is set.
func (c *Config) RequireViewer() error {
	if c.ViewerID == "" {
		return ErrViewerNotConfigured
	}
	return nil
}

// field describes one settable key.
type field struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

var fields = map[string]field{
	"api-url": {
		get: func(c *Config) string { return c.APIURL },
		set: func(c *Config, v string) error { c.APIURL = strings.TrimRight(v, "/"); return nil },
	},
	"viewer-id": {
		get: func(c *Config) string { return c.ViewerID },
		set: func(c *Config, v string) error { c.ViewerID = v; return nil },
	},
	"viewer-email": {
		get: func(c *Config) string { return c.ViewerEmail },
		set: func(c *Config, v string) error { c.ViewerEmail = v; return nil },
	},
	"viewer-name": {
		get: func(c *Config) string { return c.ViewerName },
		set: func(c *Config, v string) error { c.ViewerName = v; return nil },
	},
	"default-span": {
		get: func(c *Config) string { return strconv.FormatFloat(c.DefaultSpan, 'g', -1, 64) },
		set: func(c *Config, v string) error { return parseFloat(v, &c.DefaultSpan) },
	},
	"request-timeout": {
		get: func(c *Config) string { return c.RequestTimeout.String() },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("parsing duration: %w", err)
			}
			c.RequestTimeout = d
			return nil
		},
	},
	"max-concurrent-lookups": {
		get: func(c *Config) string { return strconv.Itoa(c.MaxConcurrentLookups) },
		set: func(c *Config, v string) error { return parseInt(v, &c.MaxConcurrentLookups) },
	},
	"lookup-rate": {
		get: func(c *Config) string { return strconv.FormatFloat(c.LookupRate, 'g', -1, 64) },
		set: func(c *Config, v string) error { return parseFloat(v, &c.LookupRate) },
	},
	"lookup-burst": {
		get: func(c *Config) string { return strconv.Itoa(c.LookupBurst) },
		set: func(c *Config, v string) error { return parseInt(v, &c.LookupBurst) },
	},
	"log-level": {
		get: func(c *Config) string { return c.LogLevel },
		set: func(c *Config, v string) error { c.LogLevel = strings.ToLower(v); return nil },
	},
	"snapshot-db": {
		get: func(c *Config) string { return c.SnapshotDB },
		set: func(c *Config, v string) error { c.SnapshotDB = ExpandPath(v); return nil },
	},
}

// Keys lists the settable keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of key as a string.
func (c *Config) Get(key string) (string, error) {
	f, ok := fields[NormalizeKey(key)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return f.get(c), nil
}

// Set parses value into key and validates the result. On failure c is
// left unchanged.
func (c *Config) Set(key, value string) error {
	f, ok := fields[NormalizeKey(key)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	next := *c
	if err := f.set(&next, value); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// NormalizeKey converts key formats (api_url, API-URL) to api-url.
func NormalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}

func parseFloat(v string, dst *float64) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("parsing number: %w", err)
	}
	*dst = f
	return nil
}

func parseInt(v string, dst *int) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parsing integer: %w", err)
	}
	*dst = n
	return nil
}
