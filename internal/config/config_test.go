package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonops/spoadmin/internal/core/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 5, cfg.Throttle.MaxAttempts)
	assert.Equal(t, 10, cfg.Throttle.DefaultBackoffSeconds)
	assert.Equal(t, 50, cfg.Groupify.ConversionLimit)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[tenant]
host = "contoso"

[auth]
tenant_id = "11111111-2222-4333-8444-555555555555"
client_id = "aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee"
client_secret = "s3cret"

[throttle]
max_attempts = 8
default_backoff_seconds = 30

[groupify]
conversion_limit = 5
public_groups = true

[report]
ignore_groups = ["4cb22e83-1c75-4678-ab39-5f2c9d1e0a44"]
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "contoso", cfg.Tenant.Host)
	assert.Equal(t, "s3cret", cfg.Auth.ClientSecret)
	assert.Equal(t, 8, cfg.Throttle.MaxAttempts)
	assert.Equal(t, 30, cfg.Throttle.DefaultBackoffSeconds)
	assert.Equal(t, 5, cfg.Groupify.ConversionLimit)
	assert.True(t, cfg.Groupify.PublicGroups)
	assert.Equal(t, []string{"4cb22e83-1c75-4678-ab39-5f2c9d1e0a44"}, cfg.Report.IgnoreGroups)
}

func TestLoadKeepsDefaultsForOmittedKeys(t *testing.T) {
	path := writeConfig(t, `
[tenant]
host = "contoso"
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Throttle.MaxAttempts)
	assert.Equal(t, 50, cfg.Groupify.ConversionLimit)
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))

	assert.Error(t, err, "an explicitly named file must exist")
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfig(t, "tenant = [broken")

	_, err := Load(path)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigurationInvalid)
}

func TestLoadEnvSecretOverride(t *testing.T) {
	path := writeConfig(t, `
[tenant]
host = "contoso"

[auth]
client_secret = "from-file"
`)
	t.Setenv(EnvClientSecret, "from-env")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.ClientSecret)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Tenant: TenantConfig{Host: "contoso"},
		Auth: AuthConfig{
			TenantID:     "11111111-2222-4333-8444-555555555555",
			ClientID:     "aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee",
			ClientSecret: "s3cret",
		},
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{name: "complete", mutate: func(*Config) {}, ok: true},
		{name: "admin url instead of host", mutate: func(c *Config) {
			c.Tenant.Host = ""
			c.Tenant.AdminURL = "https://contoso-admin.sharepoint.com"
		}, ok: true},
		{name: "no tenant", mutate: func(c *Config) { c.Tenant = TenantConfig{} }},
		{name: "no tenant id", mutate: func(c *Config) { c.Auth.TenantID = "" }},
		{name: "no client id", mutate: func(c *Config) { c.Auth.ClientID = "" }},
		{name: "no secret", mutate: func(c *Config) { c.Auth.ClientSecret = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfigurationInvalid)
		})
	}
}
