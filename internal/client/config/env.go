package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with values from the process environment,
// loading a .env file first if one exists in the working directory.
//
// Recognized variables:
//
//	MOODSYNC_SERVER_URL       base URL of the backend API
//	MOODSYNC_CACHE_DSN        SQLite DSN of the local cache
//	MOODSYNC_ONLINE_INTERVAL  probe interval, e.g. "3s"
func parseEnv(cfg *Config) {
	// Missing .env is the normal case.
	_ = godotenv.Load()

	if v := os.Getenv("MOODSYNC_SERVER_URL"); v != "" {
		cfg.ServerEndpointURL = v
	}
	if v := os.Getenv("MOODSYNC_CACHE_DSN"); v != "" {
		cfg.CacheDSN = v
	}
	if v := os.Getenv("MOODSYNC_ONLINE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.OnlineCheckInterval = d
		}
	}
}
