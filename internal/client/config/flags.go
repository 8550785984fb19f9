package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
)

// parseFlags overlays flag values onto cfg. Only flags defined here are
// considered; anything else in args is ignored.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "server base URL")
	fs.StringVar(&cfg.StorePath, "p", cfg.StorePath, "session store path")
	fs.StringVar(&cfg.StoreBackend, "b", cfg.StoreBackend, "session store backend (sqlite|bolt)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	window := fs.Int("w", int(cfg.SessionWindow.Minutes()), "session window (in minutes)")
	remember := fs.Int("r", int(cfg.RememberWindow.Hours()), "remember-me window (in hours)")
	interval := fs.Int("i", int(cfg.WatchInterval.Seconds()), "session watcher interval (in seconds)")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := flagx.Parse(fs, args); err != nil {
		return err
	}

	// Only touch durations that were given explicitly so sub-unit values
	// from JSON survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		case "w":
			cfg.SessionWindow = time.Duration(*window) * time.Minute
		case "r":
			cfg.RememberWindow = time.Duration(*remember) * time.Hour
		case "i":
			cfg.WatchInterval = time.Duration(*interval) * time.Second
		}
	})
	return nil
}
