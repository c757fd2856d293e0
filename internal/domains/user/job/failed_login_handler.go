package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"newsroom-backend/internal/shared"
	"newsroom-backend/pkg/cache"
	"newsroom-backend/pkg/logger"
)

const (
	MaxFailedAttempts = 5
	LockoutDuration   = 15 * time.Minute
	AttemptWindow     = 15 * time.Minute
)

// =====================================================
// REPORTER (API side)
// =====================================================

type FailedLoginReporter struct {
	asynqClient *asynq.Client
}

func NewFailedLoginReporter(asynqClient *asynq.Client) *FailedLoginReporter {
	return &FailedLoginReporter{asynqClient: asynqClient}
}

func (r *FailedLoginReporter) ReportFailedLogin(ctx context.Context, payload shared.FailedLoginPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	_, err = r.asynqClient.EnqueueContext(
		ctx,
		asynq.NewTask(shared.TypeProcessFailedLogin, data),
		asynq.Queue(shared.QueueAuth),
		asynq.MaxRetry(2),
		asynq.Timeout(30*time.Second),
	)
	return err
}

// =====================================================
// HANDLER (worker side)
// =====================================================

type FailedLoginHandler struct {
	cache cache.Cache
}

func NewFailedLoginHandler(cache cache.Cache) *FailedLoginHandler {
	return &FailedLoginHandler{cache: cache}
}

func (h *FailedLoginHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.FailedLoginPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal FailedLogin payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	log.Info().
		Str("user_id", payload.UserID).
		Str("ip_address", payload.IPAddress).
		Msg("Processing failed login attempt")

	attemptKey := fmt.Sprintf(shared.CacheKeyFailedLogin, payload.UserID)
	lockKey := fmt.Sprintf(shared.CacheKeyAccountLocked, payload.UserID)

	// Check if already locked
	isLocked, err := h.cache.Exists(ctx, lockKey)
	if err != nil {
		return fmt.Errorf("check lock status: %w", err)
	}
	if isLocked {
		return nil
	}

	// Increment counter
	attempts, err := h.cache.Increment(ctx, attemptKey)
	if err != nil {
		return fmt.Errorf("increment counter: %w", err)
	}

	// Set expiry on first attempt
	if attempts == 1 {
		if err := h.cache.Expire(ctx, attemptKey, AttemptWindow); err != nil {
			logger.Error("Failed to set expiry", err)
		}
	}

	log.Info().
		Str("user_id", payload.UserID).
		Int64("attempts", attempts).
		Msg("Failed login attempts counted")

	if attempts < MaxFailedAttempts {
		return nil
	}

	// Lock account
	if err := h.cache.Set(ctx, lockKey, "1", LockoutDuration); err != nil {
		return fmt.Errorf("lock account: %w", err)
	}
	if err := h.cache.Delete(ctx, attemptKey); err != nil {
		logger.Error("Failed to clear attempt counter", err)
	}

	log.Warn().
		Str("user_id", payload.UserID).
		Str("ip_address", payload.IPAddress).
		Dur("duration", LockoutDuration).
		Msg("Account locked")
	return nil
}
