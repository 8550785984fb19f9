package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
	"github.com/dmitrijs2005/authkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// leave the corresponding Config field unchanged.
type JsonConfig struct {
	ServerURL      *string         `json:"server_url"`
	StorePath      *string         `json:"store_path"`
	StoreBackend   *string         `json:"store_backend"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	SessionWindow  *timex.Duration `json:"session_window"`
	RememberWindow *timex.Duration `json:"remember_window"`
	WatchInterval  *timex.Duration `json:"watch_interval"`
	LogFormat      *string         `json:"log_format"`
	LogLevel       *string         `json:"log_level"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *timex.Duration) {
	if src != nil {
		*dst = src.Duration
	}
}

func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	set(&cfg.ServerURL, jc.ServerURL)
	set(&cfg.StorePath, jc.StorePath)
	set(&cfg.StoreBackend, jc.StoreBackend)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	setDuration(&cfg.SessionWindow, jc.SessionWindow)
	setDuration(&cfg.RememberWindow, jc.RememberWindow)
	setDuration(&cfg.WatchInterval, jc.WatchInterval)
	set(&cfg.LogFormat, jc.LogFormat)
	set(&cfg.LogLevel, jc.LogLevel)
	return nil
}
