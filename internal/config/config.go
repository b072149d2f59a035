package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port           int           `envconfig:"PORT" default:"8080"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL    string        `envconfig:"DATABASE_URL" required:"true"`
	Version        string        `envconfig:"VERSION" default:"dev"`
	BcryptCost     int           `envconfig:"BCRYPT_COST" default:"12"`
	StoreTimeout   time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"`
	RateLimitRPS   float64       `envconfig:"RATE_LIMIT_RPS" default:"10"`
	RateLimitBurst int           `envconfig:"RATE_LIMIT_BURST" default:"20"`
	OTelEndpoint   string        `envconfig:"OTEL_ENDPOINT" default:""`
	MigrateOnStart bool          `envconfig:"MIGRATE_ON_START" default:"true"`
}

// Load reads an optional .env file and then environment variables into a Config.
// Values already present in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.StoreTimeout < 0 {
		return nil, fmt.Errorf("STORE_TIMEOUT must not be negative")
	}
	return &cfg, nil
}
