package queue

import (
	"github.com/hibiken/asynq"

	"newsroom-backend/internal/config"
)

// RedisOpt - asynq dùng chung Redis với cache
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Host,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewClient tạo asynq client cho API (enqueue task)
func NewClient(cfg config.RedisConfig) *asynq.Client {
	return asynq.NewClient(RedisOpt(cfg))
}
