package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Queue backends selectable with QUEUE_BACKEND.
const (
	QueueBackendSQS   = "sqs"
	QueueBackendRedis = "redis"
	QueueBackendHTTP  = "http"
)

// Database drivers selectable with DATABASE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL and QUEUE_URL are required.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseDriver string
	DatabaseURL    string
	DBMaxConns     int32
	DBMinConns     int32
	RunMigrations  bool

	// Deal views
	DealViewDefaultLimit int

	// Queue
	QueueBackend     string
	QueueURL         string
	QueueSendTimeout time.Duration
	// QueueSendRate is the maximum sends per second; 0 disables throttling.
	QueueSendRate int

	// SQS
	AWSRegion   string
	SQSEndpoint string

	// Redis streams
	RedisAddr         string
	RedisStreamMaxLen int64
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	queueURL := os.Getenv("QUEUE_URL")
	if queueURL == "" {
		return nil, fmt.Errorf("QUEUE_URL is required")
	}

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseDriver: getEnv("DATABASE_DRIVER", DriverPostgres),
		DatabaseURL:    dbURL,
		DBMaxConns:     int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:     int32(getInt("DB_MIN_CONNS", 5)),
		RunMigrations:  getBool("RUN_MIGRATIONS", false),

		DealViewDefaultLimit: getInt("DEAL_VIEW_DEFAULT_LIMIT", 100),

		QueueBackend:     getEnv("QUEUE_BACKEND", QueueBackendSQS),
		QueueURL:         queueURL,
		QueueSendTimeout: getDuration("QUEUE_SEND_TIMEOUT", 10*time.Second),
		QueueSendRate:    getInt("QUEUE_SEND_RATE", 0),

		AWSRegion:   getEnv("AWS_REGION", "us-west-2"),
		SQSEndpoint: os.Getenv("SQS_ENDPOINT"),

		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisStreamMaxLen: int64(getInt("REDIS_STREAM_MAXLEN", 0)),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.QueueBackend {
	case QueueBackendSQS, QueueBackendRedis, QueueBackendHTTP:
	default:
		return fmt.Errorf("QUEUE_BACKEND must be sqs, redis, or http, got %q", c.QueueBackend)
	}
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", c.DatabaseDriver)
	}
	if c.DealViewDefaultLimit <= 0 {
		return fmt.Errorf("DEAL_VIEW_DEFAULT_LIMIT must be positive, got %d", c.DealViewDefaultLimit)
	}
	if c.QueueSendRate < 0 {
		return fmt.Errorf("QUEUE_SEND_RATE must not be negative, got %d", c.QueueSendRate)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
