package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/storepulse/store-uptime-worker/tools/timeparser"
)

// Config holds all application configuration
type Config struct {
	ServiceName string
	ServicePort int
	Database    DatabaseConfig
	RabbitMQ    RabbitMQConfig
	Redis       RedisConfig
	Report      ReportConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// RabbitMQConfig holds RabbitMQ connection and queue settings
type RabbitMQConfig struct {
	URL              string
	ReportExchange   string
	ReportQueue      string
	ReportRoutingKey string
	DLQQueue         string
	PrefetchCount    int
}

// RedisConfig holds the optional report row cache settings.
// An empty Addr disables caching entirely.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ReportConfig holds report computation settings
type ReportConfig struct {
	// ReferenceTimeOverride pins the report reference instant so reports
	// can be reproduced against historical data. Zero means "use real
	// current UTC time, captured at trigger".
	ReferenceTimeOverride time.Time
	WorkerCount           int
	MaxPollAgeDays        int
	DefaultTimezone       string
	RowCacheTTL           time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "store-uptime-worker"),
		ServicePort: getEnvAsInt("SERVICE_PORT", 8080),
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		RabbitMQ: RabbitMQConfig{
			URL:              getEnv("RABBITMQ_URL", ""),
			ReportExchange:   getEnv("RABBITMQ_REPORT_EXCHANGE", "store-uptime.report.exchange"),
			ReportQueue:      getEnv("RABBITMQ_REPORT_QUEUE", "store-uptime.report.queue"),
			ReportRoutingKey: getEnv("RABBITMQ_REPORT_ROUTING_KEY", "report.requested"),
			DLQQueue:         getEnv("RABBITMQ_DLQ_QUEUE", "store-uptime.report.dlq"),
			PrefetchCount:    getEnvAsInt("RABBITMQ_PREFETCH", 1),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Report: ReportConfig{
			WorkerCount:     getEnvAsInt("REPORT_WORKER_COUNT", 8),
			MaxPollAgeDays:  getEnvAsInt("MAX_POLL_AGE_DAYS", 8),
			DefaultTimezone: getEnv("DEFAULT_TIMEZONE", "America/Chicago"),
			RowCacheTTL:     time.Duration(getEnvAsInt("REPORT_CACHE_TTL_MINUTES", 60)) * time.Minute,
		},
	}

	if override := getEnv("CURRENT_TIMESTAMP_OVERRIDE", ""); override != "" {
		t, err := timeparser.ParseReferenceTime(override)
		if err != nil {
			return nil, fmt.Errorf("invalid CURRENT_TIMESTAMP_OVERRIDE: %w", err)
		}
		cfg.Report.ReferenceTimeOverride = t
	}

	// Validate required fields
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set in environment variables")
	}
	if cfg.RabbitMQ.URL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required but not set in environment variables")
	}
	if cfg.Report.WorkerCount < 1 {
		return nil, fmt.Errorf("REPORT_WORKER_COUNT must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
