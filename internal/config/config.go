// Package config loads and validates the agent daemon configuration.
package config

import (
	"encoding/json"
	"fmt"
)

// Config represents the main Igne agent configuration
type Config struct {
	// Vault settings
	Vault VaultConfig `json:"vault" mapstructure:"vault"`

	// Gateway (UI event stream) settings
	Gateway GatewayConfig `json:"gateway" mapstructure:"gateway"`

	// Logging settings
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Audit trail settings
	Audit AuditConfig `json:"audit" mapstructure:"audit"`
}

// VaultConfig holds vault settings
type VaultConfig struct {
	// Path to the vault directory; empty means the default vault
	// (~/Documents/Igne), created on first use.
	Path string `json:"path" mapstructure:"path"`

	// Watch enables the filesystem watcher on the vault
	Watch bool `json:"watch" mapstructure:"watch"`
}

// GatewayConfig holds the websocket gateway settings
type GatewayConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	Port    int  `json:"port" mapstructure:"port"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	File   string `json:"file" mapstructure:"file"`
	Pretty bool   `json:"pretty" mapstructure:"pretty"`
}

// AuditConfig holds audit trail settings
type AuditConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	File    string `json:"file" mapstructure:"file"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Vault: VaultConfig{
			Watch: true,
		},
		Gateway: GatewayConfig{
			Enabled: true,
			Port:    7420,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
		Audit: AuditConfig{
			Enabled: false,
		},
	}
}

// Validate checks the configuration for inconsistencies
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Gateway.Enabled && (c.Gateway.Port <= 0 || c.Gateway.Port > 65535) {
		return fmt.Errorf("invalid gateway port: %d", c.Gateway.Port)
	}

	if c.Audit.Enabled && c.Audit.File == "" {
		return fmt.Errorf("audit is enabled but no audit file is configured")
	}

	return nil
}

// String returns the config as indented JSON, for diagnostics
func (c *Config) String() string {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("config marshal error: %v", err)
	}
	return string(data)
}
