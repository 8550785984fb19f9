package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
	"github.com/dmitrijs2005/authkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields let
// a file override only the keys it mentions.
type JsonConfig struct {
	HTTPAddr             *string         `json:"http_addr"`
	DatabaseDSN          *string         `json:"database_dsn"`
	SecretKey            *string         `json:"secret_key"`
	HashAlgorithm        *string         `json:"hash_algorithm"`
	BcryptCost           *int            `json:"bcrypt_cost"`
	PasswordMinLength    *int            `json:"password_min_length"`
	PasswordMinEntropy   *float64        `json:"password_min_entropy"`
	VerificationTokenTTL *timex.Duration `json:"verification_token_ttl"`
	RequestTimeout       *timex.Duration `json:"request_timeout"`
	LogFormat            *string         `json:"log_format"`
	LogLevel             *string         `json:"log_level"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// parseJSON loads the file named by -c/-config, if any, over config.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	set(&config.HTTPAddr, c.HTTPAddr)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.SecretKey, c.SecretKey)
	set(&config.HashAlgorithm, c.HashAlgorithm)
	set(&config.BcryptCost, c.BcryptCost)
	set(&config.PasswordMinLength, c.PasswordMinLength)
	set(&config.PasswordMinEntropy, c.PasswordMinEntropy)
	if c.VerificationTokenTTL != nil {
		config.VerificationTokenTTL = c.VerificationTokenTTL.Duration
	}
	if c.RequestTimeout != nil {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	set(&config.LogFormat, c.LogFormat)
	set(&config.LogLevel, c.LogLevel)
	return nil
}
