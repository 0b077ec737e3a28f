package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const VERSION = "1.2"

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Delivery  DeliveryConfig
	Retention RetentionConfig
	RateLimit RateLimitConfig

	Environment string
	LogLevel    string
	Version     string
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
}

// DSN returns the lib/pq connection string for this database.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DeliveryConfig controls the outbound delivery pipeline.
type DeliveryConfig struct {
	MaxAttempts         int
	BackoffSchedule     []time.Duration
	RequestTimeout      time.Duration
	ResponseBodyCapture int
	OutboundConcurrency int64
	WorkerConcurrency   int
	CacheTTL            time.Duration
	VisibilityTimeout   time.Duration
}

// Backoff returns the delay scheduled after the given failed attempt number
// (1-based). Attempt numbers past the end of the schedule reuse the last delay.
func (c DeliveryConfig) Backoff(attemptNumber int) time.Duration {
	if len(c.BackoffSchedule) == 0 {
		return 0
	}
	idx := attemptNumber - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(c.BackoffSchedule) {
		idx = len(c.BackoffSchedule) - 1
	}
	return c.BackoffSchedule[idx]
}

type RetentionConfig struct {
	Window          time.Duration
	CleanupInterval time.Duration
	BatchSize       int
}

type RateLimitConfig struct {
	SubscriptionsPerMinute    int
	IngestPerMinute           int
	DeliveryAttemptsPerMinute int
}

// LoadOptions contains options for loading configuration
type LoadOptions struct {
	EnvFile string // Optional environment file to load (e.g., ".env", ".env.test")
}

// Load loads the configuration with default options
func Load() (*Config, error) {
	// Try to load .env file but don't require it
	return LoadWithOptions(LoadOptions{EnvFile: ".env"})
}

// LoadWithOptions loads the configuration with the specified options
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "hookline")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ENVIRONMENT", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("VERSION", VERSION)

	// Delivery pipeline defaults
	v.SetDefault("MAX_ATTEMPTS", 5)
	v.SetDefault("BACKOFF_SCHEDULE_SECONDS", "10,30,60,300,900")
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 10)
	v.SetDefault("RESPONSE_BODY_CAPTURE_BYTES", 4096)
	v.SetDefault("OUTBOUND_CONCURRENCY", 200)
	v.SetDefault("WORKER_CONCURRENCY", 4)
	v.SetDefault("SUBSCRIPTION_CACHE_TTL_SECONDS", 300)
	v.SetDefault("QUEUE_VISIBILITY_TIMEOUT_SECONDS", 30)

	// Retention defaults
	v.SetDefault("RETENTION_HOURS", 72)
	v.SetDefault("CLEANUP_INTERVAL_MINUTES", 60)
	v.SetDefault("CLEANUP_BATCH_SIZE", 1000)

	// Rate limit defaults
	v.SetDefault("RATE_LIMIT_SUBSCRIPTIONS_PER_MINUTE", 10)
	v.SetDefault("RATE_LIMIT_INGEST_PER_MINUTE", 100)
	v.SetDefault("RATE_LIMIT_DELIVERY_ATTEMPTS_PER_MINUTE", 30)

	// Load environment file if specified
	if opts.EnvFile != "" {
		v.SetConfigName(opts.EnvFile)
		v.SetConfigType("env")

		currentPath, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("error getting current directory: %w", err)
		}

		v.AddConfigPath(currentPath)

		if err := v.ReadInConfig(); err != nil {
			// It's okay if config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	// Read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	maxAttempts := v.GetInt("MAX_ATTEMPTS")
	if maxAttempts < 1 {
		return nil, fmt.Errorf("MAX_ATTEMPTS must be at least 1, got %d", maxAttempts)
	}

	schedule, err := parseBackoffSchedule(v.GetString("BACKOFF_SCHEDULE_SECONDS"))
	if err != nil {
		return nil, fmt.Errorf("error parsing BACKOFF_SCHEDULE_SECONDS: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port: v.GetInt("SERVER_PORT"),
			Host: v.GetString("SERVER_HOST"),
		},
		Database: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			DBName:       v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Delivery: DeliveryConfig{
			MaxAttempts:         maxAttempts,
			BackoffSchedule:     schedule,
			RequestTimeout:      time.Duration(v.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
			ResponseBodyCapture: v.GetInt("RESPONSE_BODY_CAPTURE_BYTES"),
			OutboundConcurrency: v.GetInt64("OUTBOUND_CONCURRENCY"),
			WorkerConcurrency:   v.GetInt("WORKER_CONCURRENCY"),
			CacheTTL:            time.Duration(v.GetInt("SUBSCRIPTION_CACHE_TTL_SECONDS")) * time.Second,
			VisibilityTimeout:   time.Duration(v.GetInt("QUEUE_VISIBILITY_TIMEOUT_SECONDS")) * time.Second,
		},
		Retention: RetentionConfig{
			Window:          time.Duration(v.GetInt("RETENTION_HOURS")) * time.Hour,
			CleanupInterval: time.Duration(v.GetInt("CLEANUP_INTERVAL_MINUTES")) * time.Minute,
			BatchSize:       v.GetInt("CLEANUP_BATCH_SIZE"),
		},
		RateLimit: RateLimitConfig{
			SubscriptionsPerMinute:    v.GetInt("RATE_LIMIT_SUBSCRIPTIONS_PER_MINUTE"),
			IngestPerMinute:           v.GetInt("RATE_LIMIT_INGEST_PER_MINUTE"),
			DeliveryAttemptsPerMinute: v.GetInt("RATE_LIMIT_DELIVERY_ATTEMPTS_PER_MINUTE"),
		},

		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		Version:     v.GetString("VERSION"),
	}

	return config, nil
}

// parseBackoffSchedule parses a comma-separated list of second counts into
// the delay schedule applied after each failed attempt.
func parseBackoffSchedule(raw string) ([]time.Duration, error) {
	parts := strings.Split(raw, ",")
	if len(parts) == 0 || raw == "" {
		return nil, fmt.Errorf("schedule is empty")
	}

	schedule := make([]time.Duration, 0, len(parts))
	for _, part := range parts {
		seconds, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid entry %q: %w", part, err)
		}
		if seconds < 0 {
			return nil, fmt.Errorf("negative delay %d", seconds)
		}
		schedule = append(schedule, time.Duration(seconds)*time.Second)
	}

	return schedule, nil
}

// IsDevelopment returns true if the environment is set to development
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
