// Package config loads the spoadmin configuration: a TOML file merged
// with environment overrides. A missing tenant or credential is a fatal
// configuration error surfaced before any site is processed.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/halcyonops/spoadmin/internal/core/domain"
)

// EnvClientSecret overrides the client secret from the environment so it
// never has to live in the config file.
const EnvClientSecret = "SPOADMIN_CLIENT_SECRET"

// Config is the full spoadmin configuration.
type Config struct {
	Tenant   TenantConfig   `toml:"tenant"`
	Auth     AuthConfig     `toml:"auth"`
	Throttle ThrottleConfig `toml:"throttle"`
	Groupify GroupifyConfig `toml:"groupify"`
	Report   ReportConfig   `toml:"report"`
}

// TenantConfig identifies the tenant.
type TenantConfig struct {
	// Host is the tenant host label, e.g. "contoso" for
	// contoso.sharepoint.com.
	Host string `toml:"host"`
	// AdminURL overrides the derived admin centre URL.
	AdminURL string `toml:"admin_url"`
}

// AuthConfig holds the app registration used for app-only access.
type AuthConfig struct {
	TenantID     string `toml:"tenant_id"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// ThrottleConfig tunes the retrying invoker and the proactive limiter.
type ThrottleConfig struct {
	// MaxAttempts is the invoker's total attempt budget per call.
	MaxAttempts int `toml:"max_attempts"`
	// DefaultBackoffSeconds is the wait used when a throttling response
	// carries no Retry-After header.
	DefaultBackoffSeconds int `toml:"default_backoff_seconds"`
	// RequestsPerSecond and Burst tune the proactive limiter; zero keeps
	// the service defaults.
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// GroupifyConfig tunes the conversion pipeline.
type GroupifyConfig struct {
	// ConversionLimit caps conversions per run. Zero means no cap.
	ConversionLimit int `toml:"conversion_limit"`
	// PublicGroups creates public rather than private groups.
	PublicGroups bool `toml:"public_groups"`
}

// ReportConfig tunes the admin inventory pipeline.
type ReportConfig struct {
	// IgnoreGroups lists directory group IDs excluded from membership
	// expansion (cost control for very large groups).
	IgnoreGroups []string `toml:"ignore_groups"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Throttle: ThrottleConfig{
			MaxAttempts:           5,
			DefaultBackoffSeconds: 10,
		},
		Groupify: GroupifyConfig{
			ConversionLimit: 50,
		},
	}
}

// DefaultPath is the conventional config location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".spoadmin", "config.toml"), nil
}

// Load reads the config file, applies environment overrides, and
// validates. A missing file at the default path is not an error; flags and
// environment may supply everything.
func Load(path string) (Config, error) {
	cfg := Default()

	usedDefault := false
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
		usedDefault = true
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w: %w", path, domain.ErrConfigurationInvalid, err)
		}
	case errors.Is(err, fs.ErrNotExist) && usedDefault:
		// No config file; rely on flags and environment.
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	if secret := os.Getenv(EnvClientSecret); secret != "" {
		cfg.Auth.ClientSecret = secret
	}

	return cfg, nil
}

// Validate checks that everything a run needs is present. Errors wrap
// domain.ErrConfigurationInvalid so the CLI can map them to the
// configuration exit code.
func (c Config) Validate() error {
	switch {
	case c.Tenant.Host == "" && c.Tenant.AdminURL == "":
		return fmt.Errorf("tenant host not set: %w", domain.ErrConfigurationInvalid)
	case c.Auth.TenantID == "":
		return fmt.Errorf("auth tenant_id not set: %w", domain.ErrConfigurationInvalid)
	case c.Auth.ClientID == "":
		return fmt.Errorf("auth client_id not set: %w", domain.ErrConfigurationInvalid)
	case c.Auth.ClientSecret == "":
		return fmt.Errorf("client secret not set (config, %s, or prompt): %w",
			EnvClientSecret, domain.ErrConfigurationInvalid)
	}
	return nil
}
