package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Storage drivers
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App   AppConfig
	Redis RedisConfig
	JWT   JWTConfig
	Views ViewsConfig
	Seed  SeedConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string
	Storage     string // postgres | memory
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
}

// ViewsConfig - đếm lượt xem theo session + flush định kỳ
type ViewsConfig struct {
	SessionTTL     time.Duration
	FlushCron      string        // asynq scheduler (worker)
	FlushInterval  time.Duration // flush in-process khi APP_STORAGE=memory
	PublicCacheTTL time.Duration
	EventDelay     time.Duration // độ trễ task article:status_changed
}

// SeedConfig - tài khoản redaktur đầu tiên (cmd/seed, memory mode)
type SeedConfig struct {
	Email    string
	Password string
	FullName string
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Newsroom API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Storage:     getEnv("APP_STORAGE", StoragePostgres),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 24*60), // 1 ngày
		},
		Views: ViewsConfig{
			SessionTTL:     getEnvDuration("VIEWS_SESSION_TTL", 24*time.Hour),
			FlushCron:      getEnv("VIEWS_FLUSH_CRON", "@every 1m"),
			FlushInterval:  getEnvDuration("VIEWS_FLUSH_INTERVAL", time.Minute),
			PublicCacheTTL: getEnvDuration("PUBLIC_CACHE_TTL", 2*time.Minute),
			EventDelay:     getEnvDuration("ARTICLE_EVENT_DELAY", 2*time.Second),
		},
		Seed: SeedConfig{
			Email:    getEnv("SEED_REDAKTUR_EMAIL", "redaktur@newsroom.local"),
			Password: getEnv("SEED_REDAKTUR_PASSWORD", ""),
			FullName: getEnv("SEED_REDAKTUR_NAME", "Redaktur"),
		},
	}

	// Validate critical config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	switch c.App.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("APP_STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, c.App.Storage)
	}

	if c.JWT.AccessTokenExpiry <= 0 {
		return fmt.Errorf("JWT_ACCESS_EXPIRY must be positive")
	}
	if c.Views.SessionTTL <= 0 {
		return fmt.Errorf("VIEWS_SESSION_TTL must be positive")
	}

	// Production environment phải có JWT secret + storage thật
	if c.App.Environment == "production" {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.App.Storage == StorageMemory {
			return fmt.Errorf("APP_STORAGE=memory is not allowed in production")
		}
	}

	return nil
}

// AccessTTL returns the JWT lifetime.
func (c JWTConfig) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenExpiry) * time.Minute
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
