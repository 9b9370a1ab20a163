// Package config loads the settings of the website binaries from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Fallback policies for contact submissions that could not be delivered.
const (
	PolicyLocal = "local"
	PolicyError = "error"
)

// Fallback storage backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config holds the settings shared by the backend service, the site and the client.
//
// Usage example on the command line:
// > PORT=8080 DBHOST=localhost:3306 DBUSER=dirk DBPWD=bullo92 GIN_LOGGING=OFF go run main.go
type Config struct {
	// Contact form client
	APIBaseURL     string        `env:"API_BASE_URL" envDefault:"http://localhost:8080"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"0s"`
	FallbackPolicy string        `env:"FALLBACK_POLICY" envDefault:"local"`

	// Fallback storage
	FallbackBackend string `env:"FALLBACK_BACKEND" envDefault:"file"`
	FallbackFile    string `env:"FALLBACK_FILE" envDefault:"contact-submissions.json"`
	RedisURL        string `env:"REDIS_URL"`

	// Backend service
	Port            int    `env:"PORT" envDefault:"8080"`
	DBHost          string `env:"DBHOST" envDefault:"localhost:3306"`
	DBUser          string `env:"DBUSER"`
	DBPassword      string `env:"DBPWD"`
	DBName          string `env:"DBNAME" envDefault:"test"`
	GinLogging      string `env:"GIN_LOGGING" envDefault:"on"`
	CORSAllowOrigin string `env:"CORS_ALLOW_ORIGIN" envDefault:"*"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment variables and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	c.FallbackPolicy = strings.ToLower(strings.TrimSpace(c.FallbackPolicy))
	switch c.FallbackPolicy {
	case PolicyLocal, PolicyError:
	default:
		return fmt.Errorf("invalid FALLBACK_POLICY %q", c.FallbackPolicy)
	}
	c.FallbackBackend = strings.ToLower(strings.TrimSpace(c.FallbackBackend))
	switch c.FallbackBackend {
	case BackendMemory, BackendFile:
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("FALLBACK_BACKEND=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("invalid FALLBACK_BACKEND %q", c.FallbackBackend)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	return nil
}

// DSN returns the MySQL data source name for the backend database.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true", c.DBUser, c.DBPassword, c.DBHost, c.DBName)
}

// GinLoggingEnabled reports whether gin should log every HTTP request.
func (c *Config) GinLoggingEnabled() bool {
	return !strings.EqualFold(c.GinLogging, "off")
}
