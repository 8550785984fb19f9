package config

import (
	"fmt"
	"time"
)

const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

// Config holds runtime settings for the authkeeper CLI.
type Config struct {
	ServerURL      string
	StorePath      string
	StoreBackend   string
	RequestTimeout time.Duration
	// SessionWindow is how long after the last login an auth token is
	// considered active without a remember-me refresh.
	SessionWindow time.Duration
	// RememberWindow is how far each remember-me refresh slides the expiry.
	RememberWindow time.Duration
	WatchInterval  time.Duration
	LogFormat      string
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.StorePath = "session.db"
	c.StoreBackend = BackendSQLite
	c.RequestTimeout = 30 * time.Second
	c.SessionWindow = 2 * time.Hour
	c.RememberWindow = 7 * 24 * time.Hour
	c.WatchInterval = time.Minute
	c.LogFormat = "text"
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.StoreBackend != BackendSQLite && c.StoreBackend != BackendBolt {
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	if c.SessionWindow <= 0 || c.RememberWindow <= 0 {
		return fmt.Errorf("session and remember windows must be positive")
	}
	if c.WatchInterval <= 0 {
		return fmt.Errorf("watch interval must be positive")
	}
	return nil
}
