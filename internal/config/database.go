package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"newsroom-backend/internal/infrastructure/database"
)

// envParser gom lỗi parse để báo tất cả biến sai trong một lần
type envParser struct {
	errs []error
}

func (p *envParser) intVar(key, def string) int {
	v, err := strconv.Atoi(getEnv(key, def))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
	}
	return v
}

func (p *envParser) durationVar(key, def string) time.Duration {
	v, err := time.ParseDuration(getEnv(key, def))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %w", key, err))
	}
	return v
}

// LoadDatabaseConfig đọc DB_* env và trả về pool config cho pgx
func LoadDatabaseConfig() (*database.DBConfig, error) {
	p := &envParser{}

	cfg := &database.DBConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     p.intVar("DB_PORT", "5432"),
		Username: getEnv("DB_USER", "newsroom"),
		Password: getEnv("DB_PASSWORD", "secret"),
		DBName:   getEnv("DB_NAME", "newsroom_dev"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Pool: newsroom traffic chủ yếu là đọc public, 20 conns là đủ
		MaxConns:          int32(p.intVar("DB_MAX_CONNECTIONS", "20")),
		MinConns:          int32(p.intVar("DB_MIN_CONNECTIONS", "2")),
		MaxConnLifetime:   p.durationVar("DB_MAX_CONN_LIFETIME", "30m"),
		MaxConnIdleTime:   p.durationVar("DB_MAX_CONN_IDLE_TIME", "5m"),
		HealthCheckPeriod: p.durationVar("DB_HEALTH_CHECK_PERIOD", "1m"),

		MaxRetries:     p.intVar("DB_MAX_RETRIES", "5"),
		RetryDelay:     p.durationVar("DB_RETRY_DELAY", "1s"),
		ConnectTimeout: p.durationVar("DB_CONNECT_TIMEOUT", "10s"),
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	if cfg.MinConns > cfg.MaxConns {
		return nil, fmt.Errorf("DB_MIN_CONNECTIONS (%d) exceeds DB_MAX_CONNECTIONS (%d)", cfg.MinConns, cfg.MaxConns)
	}
	return cfg, nil
}
