// Copyright (c) 2026 Urban Atelier. All rights reserved.

/*
Package config handles the catalog engine's session configuration.

Connection parameters live in a key/value session file (dotenv format) that
'joho/godotenv' loads into the process environment, after which 'caarlos0/env'
maps the variables into a strongly-typed struct with early validation.

Usage:

	cfg, err := config.Load("./sessions/database.env")
	if err != nil {
	    log.Fatal(err)
	}

Once loaded, configuration is read-only and is passed to core components via
constructors. No global state.
*/
package config

import (
	"errors"
	"io/fs"
	"net/url"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/urbanatelier/catalog/internal/platform/apperr"
)

// # Configuration Schema

// Config holds all runtime configuration for the catalog engine.
type Config struct {

	// Relational Database (PostgreSQL)
	DatabaseName     string `env:"DATABASE_NAME,required"`
	DatabaseUser     string `env:"DATABASE_USER,required"`
	DatabasePassword string `env:"DATABASE_PASSWORD,required"`
	DatabaseHost     string `env:"DATABASE_HOST"    envDefault:"localhost"`
	DatabasePort     string `env:"DATABASE_PORT"    envDefault:"5432"`
	DatabaseSSLMode  string `env:"DATABASE_SSLMODE" envDefault:"disable"`

	// Optional reference-data cache (disabled when empty)
	RedisURL string `env:"REDIS_URL"`

	// Verbose logging
	Debug bool `env:"DEBUG" envDefault:"false"`
}

// # Configuration Loading

// Load reads the session file (when non-empty) into the environment and
// parses the environment into a [Config].
//
// A missing or unreadable session file, or a missing required variable, is a
// CONFIGURATION_ERROR — fatal before any connection attempt.
func Load(sessionFile string) (*Config, error) {
	if sessionFile != "" {
		if err := godotenv.Load(sessionFile); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, apperr.Configuration("session file not found: "+sessionFile, err)
			}
			return nil, apperr.Configuration("malformed session file: "+sessionFile, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, apperr.Configuration("incomplete database configuration", err)
	}

	return cfg, nil
}

// DSN assembles a postgresql:// connection URL from the individual settings.
// The password is URL-escaped so special characters survive the round trip.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(c.DatabaseUser, c.DatabasePassword),
		Host:     c.DatabaseHost + ":" + c.DatabasePort,
		Path:     "/" + c.DatabaseName,
		RawQuery: "sslmode=" + c.DatabaseSSLMode,
	}
	return u.String()
}
