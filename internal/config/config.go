package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ElizabetLu/Online-Tech/pkg/config"
)

// Session backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config holds all runtime settings, populated from the environment.
type Config struct {
	APIBaseURL string `env:"STOREFRONT_API_BASE_URL" envDefault:"https://api.everrest.educata.dev"`
	LogLevel   string `env:"STOREFRONT_LOG_LEVEL" envDefault:"info"`

	HTTPTimeout    time.Duration `env:"STOREFRONT_HTTP_TIMEOUT" envDefault:"30s"`
	HTTPMaxRetries int           `env:"STOREFRONT_HTTP_MAX_RETRIES" envDefault:"3"`

	BreakerTimeout      time.Duration `env:"STOREFRONT_BREAKER_TIMEOUT" envDefault:"30s"`
	BreakerFailureRatio float64       `env:"STOREFRONT_BREAKER_FAILURE_RATIO" envDefault:"0.5"`

	SessionBackend string `env:"STOREFRONT_SESSION_BACKEND" envDefault:"file"`
	SessionName    string `env:"STOREFRONT_SESSION_NAME" envDefault:"default"`
	SessionFile    string `env:"STOREFRONT_SESSION_FILE"`

	RedisAddr     string `env:"STOREFRONT_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"STOREFRONT_REDIS_PASSWORD"`
	RedisDB       int    `env:"STOREFRONT_REDIS_DB" envDefault:"0"`
}

// Load reads configuration from the environment and fills in derived
// defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.SessionFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		cfg.SessionFile = filepath.Join(home, ".storefront", cfg.SessionName+".json")
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.SessionBackend {
	case BackendFile, BackendRedis:
	default:
		return fmt.Errorf("unknown session backend %q (want %q or %q)", c.SessionBackend, BackendFile, BackendRedis)
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("api base url must not be empty")
	}
	return nil
}
