// Package config loads application configuration from an optional YAML file
// with environment variable overrides. The environment wins so the compose
// and CI contracts (DATABASE_URL, SECRET_KEY, ACCESS_TOKEN_EXPIRE_MINUTES)
// hold regardless of what a config file says.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig controls the Postgres connection pool.
type DatabaseConfig struct {
	Driver          string `yaml:"driver"`
	DSN             string `yaml:"dsn"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_seconds"`
}

// AuthConfig controls token issuance.
type AuthConfig struct {
	SecretKey           string `yaml:"secret_key"`
	AccessTokenMinutes  int    `yaml:"access_token_minutes"`
	RefreshTokenMinutes int    `yaml:"refresh_token_minutes"`
}

// LoggingConfig mirrors pkg/logger.LoggingConfig in YAML form.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	FilePrefix string `yaml:"file_prefix"`
}

// RateLimitConfig controls per-client request throttling.
type RateLimitConfig struct {
	RequestsPerSecond int `yaml:"requests_per_second"`
	Burst             int `yaml:"burst"`
}

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	AuditLog  string          `yaml:"audit_log"`
}

// Load reads config.yaml when present and applies environment overrides.
func Load() (*Config, error) {
	return LoadFromPath(os.Getenv("CONFIG_PATH"))
}

// LoadFromPath reads the YAML file at path (optional) and applies environment
// overrides on top of defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(cfg)

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("server port %d out of range", cfg.Server.Port)
	}
	if cfg.Auth.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY is required")
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8000},
		Database: DatabaseConfig{
			Driver:          "postgres",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Auth: AuthConfig{
			AccessTokenMinutes:  5,
			RefreshTokenMinutes: 1440,
		},
		Logging:   LoggingConfig{Level: "info", Format: "text", Output: "stdout"},
		RateLimit: RateLimitConfig{RequestsPerSecond: 50, Burst: 100},
	}
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("HOST")); v != "" {
		cfg.Server.Host = v
	}
	if v := envInt("PORT"); v != 0 {
		cfg.Server.Port = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.Database.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("SECRET_KEY")); v != "" {
		cfg.Auth.SecretKey = v
	}
	if v := envInt("ACCESS_TOKEN_EXPIRE_MINUTES"); v != 0 {
		cfg.Auth.AccessTokenMinutes = v
	}
	if v := envInt("REFRESH_TOKEN_EXPIRE_MINUTES"); v != 0 {
		cfg.Auth.RefreshTokenMinutes = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FORMAT")); v != "" {
		cfg.Logging.Format = v
	}
	if v := strings.TrimSpace(os.Getenv("AUDIT_LOG")); v != "" {
		cfg.AuditLog = v
	}
}

func envInt(name string) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
