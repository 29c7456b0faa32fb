// Package config loads the service configuration from defaults, an optional
// .env file, environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration keys. They double as environment variable names.
const (
	KeyAppPort        = "APP_PORT"
	KeyDatabaseDriver = "DATABASE_DRIVER"
	KeyDatabaseDSN    = "DATABASE_DSN"
	KeyRabbitMQURL    = "RABBITMQ_URL"
	KeyRabbitMQQueue  = "RABBITMQ_QUEUE"
)

// DriverMemory selects the in-memory product store instead of a database.
const DriverMemory = "memory"

// Config holds everything the process entry point needs to wire the service.
type Config struct {
	AppPort        string
	DatabaseDriver string
	DatabaseDSN    string
	RabbitMQURL    string // empty when product events are disabled
	RabbitMQQueue  string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyAppPort, ":8080")
	v.SetDefault(KeyDatabaseDriver, "postgres")
	v.SetDefault(KeyDatabaseDSN, "host=127.0.0.1 user=postgres password=postgres dbname=postgres port=5432 sslmode=disable")
	v.SetDefault(KeyRabbitMQURL, "")
	v.SetDefault(KeyRabbitMQQueue, "product_events")
}

// Load reads the configuration into a Config. Variables from envFiles (".env"
// when none are given) are added to the environment unless already set; a
// missing file is not an error.
func Load(v *viper.Viper, envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}
	v.AutomaticEnv()

	cfg := Config{
		AppPort:        v.GetString(KeyAppPort),
		DatabaseDriver: v.GetString(KeyDatabaseDriver),
		DatabaseDSN:    v.GetString(KeyDatabaseDSN),
		RabbitMQURL:    v.GetString(KeyRabbitMQURL),
		RabbitMQQueue:  v.GetString(KeyRabbitMQQueue),
	}

	switch cfg.DatabaseDriver {
	case "postgres", "sqlite", DriverMemory:
	default:
		return Config{}, fmt.Errorf("invalid %s %q: must be postgres, sqlite or memory", KeyDatabaseDriver, cfg.DatabaseDriver)
	}
	if cfg.DatabaseDriver != DriverMemory && cfg.DatabaseDSN == "" {
		return Config{}, fmt.Errorf("%s is required for the %s driver", KeyDatabaseDSN, cfg.DatabaseDriver)
	}
	return cfg, nil
}

// EventsEnabled reports whether product events should be published.
func (c Config) EventsEnabled() bool {
	return c.RabbitMQURL != ""
}
