package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"newsroom-backend/internal/domains/workflow"
	"newsroom-backend/internal/shared"
	"newsroom-backend/pkg/cache"
)

// =====================================================
// PUBLISHER (API side)
// =====================================================

type AsynqPublisher struct {
	client *asynq.Client
	delay  time.Duration
}

// NewAsynqPublisher: delay > 0 để xoá cache lần 2 sau khi request đã trả về
func NewAsynqPublisher(client *asynq.Client, delay time.Duration) *AsynqPublisher {
	return &AsynqPublisher{client: client, delay: delay}
}

func (p *AsynqPublisher) StatusChanged(ctx context.Context, payload shared.ArticleStatusChangedPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeArticleStatusChanged, data)
	_, err = p.client.EnqueueContext(
		ctx,
		task,
		asynq.Queue(shared.QueueArticles),
		asynq.MaxRetry(3),
		asynq.ProcessIn(p.delay),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", shared.TypeArticleStatusChanged, err)
	}
	return nil
}

// =====================================================
// HANDLER (worker side)
// =====================================================

type StatusChangedHandler struct {
	cache cache.Cache
}

func NewStatusChangedHandler(cache cache.Cache) *StatusChangedHandler {
	return &StatusChangedHandler{cache: cache}
}

func (h *StatusChangedHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.ArticleStatusChangedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal ArticleStatusChanged payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	log.Info().
		Str("article_id", payload.ArticleID).
		Str("from", payload.From).
		Str("to", payload.To).
		Str("actor_role", payload.ActorRole).
		Msg("Processing article status change")

	// Chỉ thay đổi chạm tới published mới ảnh hưởng cache public
	published := string(workflow.StatusPublished)
	if payload.From != published && payload.To != published {
		return nil
	}

	if err := h.cache.Delete(ctx, fmt.Sprintf(shared.CacheKeyPublicArticle, payload.ArticleID)); err != nil {
		return fmt.Errorf("invalidate article cache: %w", err)
	}
	if err := h.cache.DeletePattern(ctx, shared.CacheKeyPublicListAll); err != nil {
		return fmt.Errorf("invalidate list cache: %w", err)
	}
	return nil
}
