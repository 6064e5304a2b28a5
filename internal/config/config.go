package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Wire formats the stats socket can be asked for.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Config holds the plugin settings. It is loaded from an optional YAML file
// and then overridden by command-line flags.
type Config struct {
	// Socket is a unix socket path. Mutually exclusive with Address.
	Socket string `yaml:"socket"`
	// Address is a host:port the stats socket is bound to.
	Address        string `yaml:"address"`
	Server         string `yaml:"server"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	Format         string `yaml:"format"`
	LogLevel       string `yaml:"logLevel"`
}

// Default returns the settings used when no file or flag overrides them.
func Default() Config {
	hostname, _ := os.Hostname()
	return Config{
		Socket:         "/var/run/haproxy/admin.sock",
		Server:         hostname,
		TimeoutSeconds: 5,
		Format:         FormatCSV,
		LogLevel:       "warn",
	}
}

// Timeout returns the per-command timeout as a time.Duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks that the settings describe exactly one reachable socket.
func (c *Config) Validate() error {
	if c.Socket == "" && c.Address == "" {
		return fmt.Errorf("one of socket or address must be set")
	}
	if c.Socket != "" && c.Address != "" {
		return fmt.Errorf("cannot specify both socket (%s) and address (%s)", c.Socket, c.Address)
	}
	if c.Server == "" {
		return fmt.Errorf("server must be set")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeoutSeconds must be positive")
	}
	switch c.Format {
	case FormatCSV, FormatJSON:
	default:
		return fmt.Errorf("format must be %q or %q, got %q", FormatCSV, FormatJSON, c.Format)
	}
	return nil
}

// Load reads the YAML file at path on top of base.
func Load(path string, base Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file at %s: %w", path, err)
	}

	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml from %s: %w", path, err)
	}
	// A file naming a TCP address replaces the default socket path.
	if cfg.Address != "" && cfg.Socket == base.Socket {
		cfg.Socket = ""
	}

	return &cfg, nil
}
