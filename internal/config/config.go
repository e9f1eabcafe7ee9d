package config

import (
	"fmt"
	"time"
	_ "time/tzdata" // BUSINESS_TIMEZONE must resolve in minimal images

	"github.com/joho/godotenv"

	"salon_backend/internal/database"
	"salon_backend/pkg/utils"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config is the full runtime configuration, read from the environment.
type Config struct {
	Port            string
	GinMode         string
	LogLevel        string
	LogPretty       bool
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	StorageDriver string
	DB            database.Config
	DBMigrate     bool

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ServiceCacheTTL time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	BusinessTimezone   string
	Location           *time.Location
	CORSAllowedOrigins []string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Port:            utils.Getenv("PORT", "8080"),
		GinMode:         utils.Getenv("GIN_MODE", "release"),
		LogLevel:        utils.Getenv("LOG_LEVEL", "info"),
		LogPretty:       utils.GetenvBool("LOG_PRETTY", false),
		ReadTimeout:     utils.GetenvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    utils.GetenvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		ShutdownTimeout: utils.GetenvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),

		StorageDriver: utils.Getenv("STORAGE_DRIVER", StorageDriverPostgres),
		DB: database.Config{
			Host:     utils.Getenv("DB_HOST", "localhost"),
			Port:     utils.Getenv("DB_PORT", "5432"),
			User:     utils.Getenv("DB_USER", "salon_user"),
			Password: utils.Getenv("DB_PASSWORD", "salon_password"),
			Name:     utils.Getenv("DB_NAME", "salon_db"),
			SSLMode:  utils.Getenv("DB_SSLMODE", "disable"),
		},
		DBMigrate: utils.GetenvBool("DB_MIGRATE", true),

		RedisAddr:       utils.Getenv("REDIS_ADDR", ""),
		RedisPassword:   utils.Getenv("REDIS_PASSWORD", ""),
		RedisDB:         utils.GetenvInt("REDIS_DB", 0),
		ServiceCacheTTL: utils.GetenvDuration("SERVICE_CACHE_TTL", 5*time.Minute),

		KafkaBrokers: utils.GetenvList("KAFKA_BROKERS", nil),
		KafkaTopic:   utils.Getenv("KAFKA_TOPIC", "salon.appointments"),

		BusinessTimezone:   utils.Getenv("BUSINESS_TIMEZONE", "UTC"),
		CORSAllowedOrigins: utils.GetenvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:3001"}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated values and resolves the business time zone.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER %q: want %q or %q", c.StorageDriver, StorageDriverPostgres, StorageDriverMemory)
	}

	loc, err := time.LoadLocation(c.BusinessTimezone)
	if err != nil {
		return fmt.Errorf("invalid BUSINESS_TIMEZONE %q: %w", c.BusinessTimezone, err)
	}
	c.Location = loc
	return nil
}
