// Package config loads the gateway's backend-server list and sandbox
// defaults from a config file plus environment overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// BackendServerConfig is one entry in the backend-server list, matching the
// shape of a single server inside an mcp.json-style file.
type BackendServerConfig struct {
	Type    string            `mapstructure:"type"` // "stdio", "http", or "sse"
	Command string            `mapstructure:"command,omitempty"`
	Args    []string          `mapstructure:"args,omitempty"`
	Env     map[string]string `mapstructure:"env,omitempty"`
	URL     string            `mapstructure:"url,omitempty"`
}

// SandboxConfig holds the default resource ceilings applied to every
// execute request that does not override them.
type SandboxConfig struct {
	DefaultTimeoutMS  int `mapstructure:"default_timeout_ms"`
	MinTimeoutMS      int `mapstructure:"min_timeout_ms"`
	MaxTimeoutMS      int `mapstructure:"max_timeout_ms"`
	DefaultMaxMCPCalls int `mapstructure:"default_max_mcp_calls"`
	MaxCodeLength     int `mapstructure:"max_code_length"`
}

// Config is the gateway's full configuration.
type Config struct {
	Servers map[string]BackendServerConfig `mapstructure:"mcpServers"`
	Sandbox SandboxConfig                  `mapstructure:"sandbox"`
	HTTPAddr string                        `mapstructure:"http_addr"`
}

// Default returns a Config populated with the gateway's built-in default
// limits and no backend servers configured.
func Default() Config {
	return Config{
		Servers: map[string]BackendServerConfig{},
		Sandbox: SandboxConfig{
			DefaultTimeoutMS:   30_000,
			MinTimeoutMS:       1_000,
			MaxTimeoutMS:       300_000,
			DefaultMaxMCPCalls: 100,
			MaxCodeLength:      100_000,
		},
		HTTPAddr: ":8090",
	}
}

// Load reads configuration from the given file path (if non-empty) layered
// over Default(), with GATEWAY_-prefixed environment variables overriding
// both.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("GATEWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("sandbox.default_timeout_ms", cfg.Sandbox.DefaultTimeoutMS)
	v.SetDefault("sandbox.min_timeout_ms", cfg.Sandbox.MinTimeoutMS)
	v.SetDefault("sandbox.max_timeout_ms", cfg.Sandbox.MaxTimeoutMS)
	v.SetDefault("sandbox.default_max_mcp_calls", cfg.Sandbox.DefaultMaxMCPCalls)
	v.SetDefault("sandbox.max_code_length", cfg.Sandbox.MaxCodeLength)
	v.SetDefault("http_addr", cfg.HTTPAddr)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the sandbox limits are internally consistent.
func (c Config) Validate() error {
	if c.Sandbox.MinTimeoutMS <= 0 {
		return fmt.Errorf("sandbox.min_timeout_ms must be positive")
	}
	if c.Sandbox.MaxTimeoutMS < c.Sandbox.MinTimeoutMS {
		return fmt.Errorf("sandbox.max_timeout_ms must be >= min_timeout_ms")
	}
	if c.Sandbox.DefaultTimeoutMS < c.Sandbox.MinTimeoutMS || c.Sandbox.DefaultTimeoutMS > c.Sandbox.MaxTimeoutMS {
		return fmt.Errorf("sandbox.default_timeout_ms must be within [min_timeout_ms, max_timeout_ms]")
	}
	if c.Sandbox.MaxCodeLength <= 0 {
		return fmt.Errorf("sandbox.max_code_length must be positive")
	}
	if c.Sandbox.DefaultMaxMCPCalls <= 0 {
		return fmt.Errorf("sandbox.default_max_mcp_calls must be positive")
	}
	return nil
}
