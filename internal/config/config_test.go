package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Empty(t, cfg.Vault.Path)
	assert.True(t, cfg.Vault.Watch)
	assert.True(t, cfg.Gateway.Enabled)
	assert.Equal(t, 7420, cfg.Gateway.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Pretty)
	assert.False(t, cfg.Audit.Enabled)

	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "invalid log level",
		},
		{
			name:    "gateway port out of range",
			mutate:  func(c *Config) { c.Gateway.Port = 70000 },
			wantErr: "invalid gateway port",
		},
		{
			name:    "gateway port zero while enabled",
			mutate:  func(c *Config) { c.Gateway.Port = 0 },
			wantErr: "invalid gateway port",
		},
		{
			name: "disabled gateway ignores port",
			mutate: func(c *Config) {
				c.Gateway.Enabled = false
				c.Gateway.Port = 0
			},
		},
		{
			name:    "audit enabled without file",
			mutate:  func(c *Config) { c.Audit.Enabled = true },
			wantErr: "no audit file",
		},
		{
			name: "audit enabled with file",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.File = "/tmp/audit.jsonl"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoader_MissingFileYieldsDefaults(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "nope.json"))

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoader_OverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "igne.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"vault": {"path": "/vaults/work"},
		"gateway": {"port": 9000},
		"logging": {"level": "debug"}
	}`), 0644))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "/vaults/work", cfg.Vault.Path)
	assert.Equal(t, 9000, cfg.Gateway.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// untouched keys keep their defaults
	assert.True(t, cfg.Vault.Watch)
	assert.True(t, cfg.Gateway.Enabled)
}

func TestLoader_RejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "igne.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"logging": {"level": "shout"}}`), 0644))

	_, err := NewLoader(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoader_RejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "igne.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, err := NewLoader(path).Load()
	assert.Error(t, err)
}

func TestConfigString(t *testing.T) {
	s := DefaultConfig().String()
	assert.Contains(t, s, `"gateway"`)
	assert.Contains(t, s, "7420")
}
