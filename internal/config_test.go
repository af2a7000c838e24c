package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgconfig "github.com/starford/lumen/pkg/config"
)

func TestAuthConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     AuthConfig
		wantErr string
		enabled bool
	}{
		{name: "disabled", cfg: AuthConfig{Mode: "disabled"}},
		{name: "empty mode defaults to disabled", cfg: AuthConfig{}},
		{name: "token", cfg: AuthConfig{Mode: "token", Token: "s3cret"}, enabled: true},
		{name: "token without value", cfg: AuthConfig{Mode: "token"}, wantErr: "token is empty"},
		{name: "unknown mode", cfg: AuthConfig{Mode: "magic", Token: "x"}, wantErr: "mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.enabled, tt.cfg.AuthEnabled())
			assert.NotEmpty(t, tt.cfg.Mode)
		})
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.App.HTTP.Address())
	assert.Equal(t, SourceVault, cfg.Sync.Source)
	assert.False(t, cfg.Remote.Enabled())
	assert.False(t, cfg.Chat.Enabled())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"auth token missing", func(c *Config) { c.Auth.Mode = AuthModeToken }},
		{"bad port", func(c *Config) { c.App.HTTP.Port = 70000 }},
		{"no sqlite path", func(c *Config) { c.SQLite.Path = "" }},
		{"unknown source", func(c *Config) { c.Sync.Source = "ftp" }},
		{"vault source without path", func(c *Config) { c.Vault.Path = "" }},
		{"remote source without url", func(c *Config) { c.Sync.Source = SourceRemote }},
		{"chat without model", func(c *Config) { c.Chat.BaseURL = "http://llm.local/v1" }},
		{"temperature too high", func(c *Config) { c.Chat.Temperature = 3 }},
		{"negative interval", func(c *Config) { c.Sync.Interval = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRemoteSourceNeedsNoVault(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Sync.Source = SourceRemote
	cfg.Remote.BaseURL = "http://backend.local"
	cfg.Vault.Path = ""
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("LUMEN_TEST_TOKEN", "from-env")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  http:
    port: 9090
auth:
  mode: token
  token: ${LUMEN_TEST_TOKEN}
sync:
  source: vault
  interval: 5m
  watch: false
`), 0o644))

	cfg := NewDefaultConfig()
	require.NoError(t, pkgconfig.Load(path, cfg))

	assert.Equal(t, 9090, cfg.App.HTTP.Port)
	assert.Equal(t, "from-env", cfg.Auth.Token)
	assert.Equal(t, 5*time.Minute, cfg.Sync.Interval)
	assert.False(t, cfg.Sync.Watch)
	// Untouched sections keep their defaults.
	assert.Equal(t, "./lumen.db", cfg.SQLite.Path)
	assert.Equal(t, 300*time.Millisecond, cfg.Sync.Debounce)
}

func TestLoadConfigFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  mode: token\n"), 0o644))

	err := pkgconfig.Load(path, NewDefaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}
