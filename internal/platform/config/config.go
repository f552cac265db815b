// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, TokenService) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// SupportedAlgorithms lists the HMAC algorithms accepted for ALGORITHM.
var SupportedAlgorithms = []string{"HS256", "HS384", "HS512"}

// # Configuration Schema

// Config holds all runtime configuration for the Standup API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8000"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL). DATABASE_URL wins when set; otherwise
	// the URL is assembled from the individual parts.
	DatabaseURL      string `env:"DATABASE_URL"`
	DatabaseHost     string `env:"DATABASE_HOSTNAME"`
	DatabasePort     string `env:"DATABASE_PORT" envDefault:"5432"`
	DatabaseUser     string `env:"DATABASE_USERNAME"`
	DatabasePassword string `env:"DATABASE_PASSWORD"`
	DatabaseName     string `env:"DATABASE_NAME"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./migrations"`

	// Key-Value Cache (Redis). Optional; enables the identity cache.
	RedisURL         string        `env:"REDIS_URL"`
	IdentityCacheTTL time.Duration `env:"IDENTITY_CACHE_TTL" envDefault:"30s"`

	// Token signing
	SecretKey                string `env:"SECRET_KEY,required,notEmpty"`
	Algorithm                string `env:"ALGORITHM,required,notEmpty"`
	AccessTokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES,required"`

	// Password hashing work factor
	BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`

	// Seeded administrator account
	AdminUser     string `env:"ADMIN_USER,required,notEmpty"`
	AdminPassword string `env:"ADMIN_PASSWORD,required,notEmpty"`

	// Cross-Origin Resource Sharing
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// # Configuration Loading

// Load parses the process environment into a [Config] struct.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(environment map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environment})
}

func parse(options env.Options) (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.ParseWithOptions(cfg, options); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// validate applies the cross-field rules env tags cannot express.
func (c *Config) validate() error {
	var errs []error

	if !slices.Contains(SupportedAlgorithms, c.Algorithm) {
		errs = append(errs, fmt.Errorf("ALGORITHM must be one of %v, got %q", SupportedAlgorithms, c.Algorithm))
	}
	if c.AccessTokenExpireMinutes <= 0 {
		errs = append(errs, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", c.AccessTokenExpireMinutes))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost))
	}
	if c.DatabaseURL == "" && (c.DatabaseHost == "" || c.DatabaseName == "" || c.DatabaseUser == "") {
		errs = append(errs, errors.New("DATABASE_URL or DATABASE_HOSTNAME, DATABASE_NAME and DATABASE_USERNAME must be set"))
	}
	if c.IdentityCacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("IDENTITY_CACHE_TTL must be positive, got %s", c.IdentityCacheTTL))
	}

	return errors.Join(errs...)
}

// # Derived Settings

// DSN returns the PostgreSQL connection URL.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DatabaseUser, c.DatabasePassword),
		Host:   net.JoinHostPort(c.DatabaseHost, c.DatabasePort),
		Path:   "/" + c.DatabaseName,
	}
	return dsn.String()
}

// TokenTTL returns the access token lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// HasRedis reports whether a Redis URL was configured.
func (c *Config) HasRedis() bool {
	return c.RedisURL != ""
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
