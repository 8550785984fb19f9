// Package config loads runtime configuration for the authkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the authkeeper server
//	-p string   path of the local session store
//	-b string   session store backend (sqlite|bolt)
//	-t int      request timeout (seconds)
//	-w int      sliding session window (minutes)
//	-r int      remember-me window (hours)
//	-i int      session watcher interval (seconds)
//	-n int      minimum password length
//	-m float    minimum password entropy bits (0 disables)
//	-f string   log format (json|text)
//	-l string   log level
//
// # JSON schema
//
// Durations accept strings like "2h" or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "store_backend": "bolt",
//	  "session_window": "2h",
//	  "remember_window": "168h"
//	}
package config
