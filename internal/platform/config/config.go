package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"launchdesk"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	PostgresDSN string `env:"POSTGRES_DSN"`
	StorageRoot string `env:"STORAGE_ROOT" envDefault:"data/uploads"`

	OutboxPollInterval  int `env:"OUTBOX_POLL_INTERVAL_SECONDS" envDefault:"5"`
	OutboxBatchSize     int `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
	ProvisioningWorkers int `env:"PROVISIONING_WORKERS" envDefault:"4"`

	EnableProvisioningConsumer bool `env:"ENABLE_PROVISIONING_CONSUMER" envDefault:"true"`
	EnableUploadRouting        bool `env:"ENABLE_UPLOAD_ROUTING" envDefault:"true"`
}

// Load reads an optional .env file, then environment variables.
func Load() (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
