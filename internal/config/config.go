// Package config loads the service configuration from YAML with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Logging    LoggingConfig    `yaml:"logging"`
	Production ProductionConfig `yaml:"production"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Port            int    `yaml:"port"`
	Mode            string `yaml:"mode"` // gin mode: debug, release, test
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// DatabaseConfig selects the gorm dialect and connection string
type DatabaseConfig struct {
	Dialect string `yaml:"dialect"` // sqlite3 or postgres
	URL     string `yaml:"url"`
	LogMode bool   `yaml:"log_mode"`
	Seed    bool   `yaml:"seed"`
}

// AuthConfig holds the shared secret admin tokens are signed with
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	TokenTTL  string `yaml:"token_ttl"`
}

// MetricsConfig configures the Prometheus endpoint. Port 0 serves it from
// the API server.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures zap
type LoggingConfig struct {
	Mode string `yaml:"mode"` // development or production
}

// ProductionConfig holds kitchen defaults
type ProductionConfig struct {
	DoughExpiryDays int `yaml:"dough_expiry_days"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Mode:            "release",
			ShutdownTimeout: "10s",
		},
		Database: DatabaseConfig{
			Dialect: "sqlite3",
			URL:     "bakehouse.db",
			Seed:    true,
		},
		Auth: AuthConfig{
			TokenTTL: "12h",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Mode: "development",
		},
		Production: ProductionConfig{
			DoughExpiryDays: 3,
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("BAKEHOUSE_DATABASE_URL"); url != "" {
		c.Database.URL = url
	}
	if dialect := os.Getenv("BAKEHOUSE_DATABASE_DIALECT"); dialect != "" {
		c.Database.Dialect = dialect
	}
	if secret := os.Getenv("BAKEHOUSE_JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if port := os.Getenv("BAKEHOUSE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
}

// ValidDialects lists the supported database dialects.
var ValidDialects = []string{"sqlite3", "postgres"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	valid := false
	for _, d := range ValidDialects {
		if c.Database.Dialect == d {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid database dialect: %s (valid: %v)", c.Database.Dialect, ValidDialects)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database url not configured (set BAKEHOUSE_DATABASE_URL)")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt secret not configured (set BAKEHOUSE_JWT_SECRET)")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Production.DoughExpiryDays < 0 {
		return fmt.Errorf("dough expiry days must not be negative")
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.Auth.TokenTTL); err != nil {
		return fmt.Errorf("invalid token ttl: %w", err)
	}
	return nil
}

// GetShutdownTimeout returns the graceful shutdown window as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetTokenTTL returns how long issued admin tokens stay valid.
func (c *Config) GetTokenTTL() time.Duration {
	d, err := time.ParseDuration(c.Auth.TokenTTL)
	if err != nil {
		return 12 * time.Hour
	}
	return d
}
