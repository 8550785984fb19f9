package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
)

// parseFlags overlays flag values onto config.
//
//	-a string   HTTP bind address
//	-d string   PostgreSQL DSN
//	-s string   token signing key
//	-g string   hash algorithm (bcrypt|argon2id)
//	-b int      bcrypt cost
//	-n int      minimum password length
//	-m float    minimum password entropy bits (0 disables)
//	-v int      verification token validity, minutes
//	-t int      request timeout, seconds
//	-f string   log format (json|text)
//	-l string   log level
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.HashAlgorithm, "g", config.HashAlgorithm, "password hash algorithm")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.IntVar(&config.PasswordMinLength, "n", config.PasswordMinLength, "minimum password length")
	fs.Float64Var(&config.PasswordMinEntropy, "m", config.PasswordMinEntropy, "minimum password entropy bits")
	verification := fs.Int("v", int(config.VerificationTokenTTL.Minutes()), "verification token validity (in minutes)")
	timeout := fs.Int("t", int(config.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := flagx.Parse(fs, args); err != nil {
		return err
	}

	config.VerificationTokenTTL = time.Duration(*verification) * time.Minute
	config.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
