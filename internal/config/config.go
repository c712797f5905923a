package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite3"
)

type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	StorageConfig
	AuctionConfig
}

type StorageConfig struct {
	Driver      string `env:"STORAGE_DRIVER" envDefault:"memory"`
	DatabaseURL string `env:"DATABASE_URL"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
	SeedDemo    bool   `env:"SEED_DEMO_JOBS" envDefault:"false"`
}

type AuctionConfig struct {
	SweepInterval       time.Duration `env:"SWEEP_INTERVAL" envDefault:"30s"`
	ConflictRetries     uint64        `env:"CONFLICT_RETRIES" envDefault:"3"`
	ConflictBackoff     time.Duration `env:"CONFLICT_BACKOFF" envDefault:"25ms"`
	MaxBidMessageLength int           `env:"MAX_BID_MESSAGE_LENGTH" envDefault:"500"`
	MaxAuctionHours     int           `env:"MAX_AUCTION_HOURS" envDefault:"720"`
}

// NewConfig reads the environment, applies overrides (command line flags) and validates the result
func NewConfig(overrides ...func(*Config)) (*Config, error) {
	return parse(env.Options{}, overrides...)
}

// parse reads the process environment, or opts.Environment when it is set
func parse(opts env.Options, overrides ...func(*Config)) (*Config, error) {
	config := &Config{}

	if err := env.Parse(config, opts); err != nil {
		return nil, fmt.Errorf("config.NewConfig: %w", err)
	}
	for _, override := range overrides {
		override(config)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config.NewConfig: %w", err)
	}
	return config, nil
}

// Validate checks values env parsing cannot express
func (c *Config) Validate() error {
	switch c.Driver {
	case StorageMemory:
	case StoragePostgres, StorageSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for storage driver %q", c.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Driver)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	if c.ConflictBackoff <= 0 {
		return fmt.Errorf("CONFLICT_BACKOFF must be positive, got %s", c.ConflictBackoff)
	}
	if c.MaxBidMessageLength <= 0 || c.MaxAuctionHours <= 0 {
		return fmt.Errorf("MAX_BID_MESSAGE_LENGTH and MAX_AUCTION_HOURS must be positive")
	}
	return nil
}

// Addr is the listen address of the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
