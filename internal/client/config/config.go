// Package config handles configuration for the terminal client: defaults,
// optional JSON overlay, and command-line flags.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the Aqui terminal client.
//
// Fields:
//   - ServerURL: base URL of the API server (scheme://host:port).
//   - StorageFile: path of the local sqlite file holding session state.
//   - RequestTimeout: default timeout for API calls.
type Config struct {
	ServerURL      string
	StorageFile    string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults. The storage file lands
// in the user config dir so sessions survive across runs.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 15 * time.Second

	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	c.StorageFile = filepath.Join(dir, "aqui", "aqui.db")
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
