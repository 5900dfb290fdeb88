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

Two binaries read the environment: the identity API ([Config]) and the web
forms server ([WebConfig]). They share nothing but the environment name.
*/
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the identity API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// PublicURL is the origin of the web forms; mailed links point there.
	PublicURL string `env:"PUBLIC_URL" envDefault:"http://localhost:3000"`

	// APIPublicURL is this server's own public origin, used for link
	// targets it serves itself and for OAuth redirect URIs.
	APIPublicURL string `env:"API_PUBLIC_URL" envDefault:"http://localhost:8080"`

	// CookieDomain scopes the session cookie so the API and the web forms
	// share it (e.g. ".yomira.app"). Empty means host-only.
	CookieDomain string `env:"COOKIE_DOMAIN"`

	// Relational Database (PostgreSQL)
	DatabaseURL        string        `env:"DATABASE_URL,required"`
	DBMaxConns         int32         `env:"DB_MAX_CONNS"         envDefault:"15"`
	DBMinConns         int32         `env:"DB_MIN_CONNS"         envDefault:"2"`
	DBStatementTimeout time.Duration `env:"DB_STATEMENT_TIMEOUT" envDefault:"30s"`

	// MigrationPath overrides the migrations embedded in the binary with a
	// directory on disk.
	MigrationPath string `env:"MIGRATION_PATH"`

	// Key-Value Cache (Redis)
	RedisURL      string `env:"REDIS_URL,required"`
	RedisPoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`

	// RS256 key pair for access tokens
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH,required"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// Outbound mail
	MailDriver   string `env:"MAIL_DRIVER"   envDefault:"log"`
	MailFrom     string `env:"MAIL_FROM"     envDefault:"Yomira ID <no-reply@yomira.app>"`
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT"     envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`

	// Object Storage for avatars (MinIO / S3-compatible)
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Bucket    string `env:"S3_BUCKET"     envDefault:"avatars"`
	S3Region    string `env:"S3_REGION"     envDefault:"auto"`
	S3UseSSL    bool   `env:"S3_USE_SSL"    envDefault:"true"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`

	// Social sign-in. A provider without credentials is not registered.
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GitHubClientID     string `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `env:"GITHUB_CLIENT_SECRET"`
}

// WebConfig holds runtime configuration for the web forms server.
type WebConfig struct {
	ServerPort  string `env:"WEB_PORT"     envDefault:"3000"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`

	// AuthAPIURL is the base URL of the identity API, e.g. http://localhost:8080.
	AuthAPIURL string `env:"AUTH_API_URL" envDefault:"http://localhost:8080"`

	// AuthAPIPublicURL is the browser-facing API origin (social sign-in links).
	AuthAPIPublicURL string `env:"AUTH_API_PUBLIC_URL" envDefault:"http://localhost:8080"`

	// CookieDomain must match the API's COOKIE_DOMAIN.
	CookieDomain string `env:"COOKIE_DOMAIN"`

	// SocialProviders lists the sign-in buttons to show; it should match the
	// providers configured on the API.
	SocialProviders []string `env:"SOCIAL_PROVIDERS" envSeparator:"," envDefault:"google,github"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	cfg.APIPublicURL = strings.TrimRight(cfg.APIPublicURL, "/")

	return cfg, nil
}

// LoadWeb parses environment variables into a [WebConfig] struct.
func LoadWeb() (*WebConfig, error) {
	cfg := &WebConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	cfg.AuthAPIURL = strings.TrimRight(cfg.AuthAPIURL, "/")
	cfg.AuthAPIPublicURL = strings.TrimRight(cfg.AuthAPIPublicURL, "/")
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.MailDriver {
	case "log":
	case "smtp":
		if c.SMTPHost == "" {
			return fmt.Errorf("config: SMTP_HOST is required when MAIL_DRIVER=smtp")
		}
	default:
		return fmt.Errorf("config: unknown MAIL_DRIVER %q", c.MailDriver)
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigin is the browser origin allowed to call the API with credentials.
func (c *Config) AllowedOrigin() string {
	return c.PublicURL
}

// StorageEnabled reports whether avatar uploads have a backing bucket.
func (c *Config) StorageEnabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != ""
}

// IsProduction reports whether the web server is running in production mode.
func (c *WebConfig) IsProduction() bool {
	return c.Environment == "production"
}
