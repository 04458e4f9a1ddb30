// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	// Runtime
	Env      string `envconfig:"ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Server
	Port                  string        `envconfig:"PORT" default:"8080"`
	ServerReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	ServerWriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`
	ServerShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	CORSAllowedOrigins    []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// Database
	DBDriver     string `envconfig:"DB_DRIVER" default:"postgres"`
	DBHost       string `envconfig:"DB_HOST" default:"localhost"`
	DBPort       string `envconfig:"DB_PORT" default:"5432"`
	DBUser       string `envconfig:"DB_USER" default:"budget"`
	DBPassword   string `envconfig:"DB_PASSWORD" default:"budget"`
	DBName       string `envconfig:"DB_NAME" default:"budget_tracker"`
	DBSSLMode    string `envconfig:"DB_SSLMODE" default:"disable"`
	DBSQLitePath string `envconfig:"DB_SQLITE_PATH" default:"budget_tracker.db"`

	// JWT
	JWTSecret     string        `envconfig:"JWT_SECRET" default:"fallback-secret-key-for-dev-only"`
	JWTAccessTTL  time.Duration `envconfig:"JWT_ACCESS_TTL" default:"15m"`
	JWTRefreshTTL time.Duration `envconfig:"JWT_REFRESH_TTL" default:"168h"`

	// Budget alerts; an empty URL disables publishing.
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"budget_tracker"`
	AMQPQueue    string `envconfig:"AMQP_QUEUE" default:"budget_alerts"`
}

var (
	appConfig *Config
	mu        sync.Mutex
)

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mu.Lock()
	appConfig = cfg
	mu.Unlock()
	return cfg, nil
}

// Validate checks values envconfig cannot express as tags.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (use postgres or sqlite)", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.JWTAccessTTL <= 0 || c.JWTRefreshTTL <= 0 {
		return fmt.Errorf("JWT token lifetimes must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Get returns the application configuration
func Get() *Config {
	mu.Lock()
	cfg := appConfig
	mu.Unlock()
	if cfg != nil {
		return cfg
	}

	cfg, err := Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return cfg
}

// Set replaces the global configuration. Intended for tests and for
// binaries that build their configuration explicitly.
func Set(cfg *Config) {
	mu.Lock()
	appConfig = cfg
	mu.Unlock()
}
