package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "haproxystats.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, "address: 127.0.0.1:9999\nserver: lb-01\ntimeoutSeconds: 2\nformat: json\n")

	cfg, err := Load(path, Default())
	require.NoError(t, err)
	require.Equal(t, "", cfg.Socket)
	require.Equal(t, "127.0.0.1:9999", cfg.Address)
	require.Equal(t, "lb-01", cfg.Server)
	require.Equal(t, 2*time.Second, cfg.Timeout())
	require.Equal(t, FormatJSON, cfg.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoad_KeepsUnsetDefaults(t *testing.T) {
	path := writeConfig(t, "server: lb-02\n")

	cfg, err := Load(path, Default())
	require.NoError(t, err)
	require.Equal(t, Default().Socket, cfg.Socket)
	require.Equal(t, FormatCSV, cfg.Format)
	require.Equal(t, 5, cfg.TimeoutSeconds)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), Default())
	require.Error(t, err)

	_, err = Load(writeConfig(t, "server: [unterminated\n"), Default())
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) { c.Server = "lb" }, true},
		{"no endpoint", func(c *Config) { c.Socket = "" }, false},
		{"both endpoints", func(c *Config) { c.Address = "127.0.0.1:1" }, false},
		{"no server", func(c *Config) { c.Server = "" }, false},
		{"zero timeout", func(c *Config) { c.TimeoutSeconds = 0 }, false},
		{"bad format", func(c *Config) { c.Format = "xml" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Server = "lb"
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}
