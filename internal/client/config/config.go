// Package config loads runtime settings for the moodsync client.
package config

import "time"

// Config holds runtime settings for the moodsync client.
//
// Fields:
//   - ServerEndpointURL: base URL of the backend API.
//   - CacheDSN: SQLite DSN of the durable local cache.
//   - OnlineCheckInterval: how often the client probes server reachability.
type Config struct {
	ServerEndpointURL   string
	CacheDSN            string
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointURL = "http://localhost:5000"
	c.CacheDSN = "moodsync.db"
	c.OnlineCheckInterval = 3 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment (.env supported), a JSON file (if given), and
// command-line flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
