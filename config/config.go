/*
Package config loads process configuration from the environment.

PURPOSE:
  One Config struct for the server and CLI. Values come from the process
  environment, optionally pre-populated from .env and .env.local in the
  working directory (later files do not override earlier ones or the real
  environment).

ENVIRONMENT:
  CAREPATH_PORT              HTTP port (default 8080)
  CAREPATH_DB_PATH           SQLite path, ":memory:" for in-memory (default carepath.db)
  CAREPATH_LOG_LEVEL         debug|info|warn|error (default info)
  CAREPATH_LOG_FORMAT        text|json (default text)
  CAREPATH_CORS_ORIGINS      Comma-separated allowed origins
  CAREPATH_METRICS_PATH      Prometheus endpoint (default /metrics, "" disables)
  CAREPATH_SHUTDOWN_TIMEOUT  Graceful shutdown budget (default 30s)

SEE ALSO:
  - logger.go:           Logger construction from Config
  - cmd/carepath:        Flags override these values
*/
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultEnvFiles are tried in order by Load.
var DefaultEnvFiles = []string{".env", ".env.local"}

type Config struct {
	Port            int           `env:"CAREPATH_PORT" envDefault:"8080"`
	DBPath          string        `env:"CAREPATH_DB_PATH" envDefault:"carepath.db"`
	LogLevel        string        `env:"CAREPATH_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"CAREPATH_LOG_FORMAT" envDefault:"text"`
	CORSOrigins     []string      `env:"CAREPATH_CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:8080"`
	MetricsPath     string        `env:"CAREPATH_METRICS_PATH" envDefault:"/metrics"`
	ShutdownTimeout time.Duration `env:"CAREPATH_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load reads the env files that exist, then parses the environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = DefaultEnvFiles
	}
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}

	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadEnv loads the given files that exist and returns how many were read.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Validate checks values env.Parse cannot.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("CAREPATH_PORT must be 1..65535, got %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("CAREPATH_DB_PATH must not be empty")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("CAREPATH_LOG_FORMAT must be 'text' or 'json', got '%s'", c.LogFormat)
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("CAREPATH_SHUTDOWN_TIMEOUT must be non-negative, got %s", c.ShutdownTimeout)
	}
	return nil
}
