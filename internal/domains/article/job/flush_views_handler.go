package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"newsroom-backend/internal/domains/article/repository"
	"newsroom-backend/internal/domains/workflow"
	"newsroom-backend/internal/shared"
)

// =====================================================
// FLUSH VIEWS (views:flush)
// =====================================================
// Gộp lượt xem đang buffer trong Redis xuống cột news.views.
// Mỗi bài được ack riêng nên retry không cộng trùng các bài đã ghi.

type FlushViewsHandler struct {
	repo  repository.ArticleRepository
	views repository.ViewStore
}

func NewFlushViewsHandler(repo repository.ArticleRepository, views repository.ViewStore) *FlushViewsHandler {
	return &FlushViewsHandler{
		repo:  repo,
		views: views,
	}
}

func (h *FlushViewsHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.FlushViewsPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			log.Error().Err(err).Msg("Failed to unmarshal FlushViews payload")
			return fmt.Errorf("unmarshal payload: %w", err)
		}
	}

	flushed, err := h.Flush(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Int("articles", flushed).
		Time("triggered_at", payload.TriggeredAt).
		Msg("views flushed")
	return nil
}

// Flush persists buffered views and returns the number of articles written.
func (h *FlushViewsHandler) Flush(ctx context.Context) (int, error) {
	pending, err := h.views.Drain(ctx)
	if err != nil {
		return 0, fmt.Errorf("drain views: %w", err)
	}

	flushed := 0
	for id, delta := range pending {
		if delta > 0 {
			err := h.repo.AddViews(ctx, id, delta)
			switch {
			case err == nil:
				flushed++
			case errors.Is(err, workflow.ErrNotFound):
				// bài đã bị xoá, bỏ counter
				log.Debug().Str("article_id", id.String()).Msg("dropping views of deleted article")
			default:
				return flushed, fmt.Errorf("add views for %s: %w", id, err)
			}
		}
		if err := h.views.Ack(ctx, id); err != nil {
			return flushed, fmt.Errorf("ack views for %s: %w", id, err)
		}
	}
	return flushed, nil
}

// RunEvery flushes on a ticker until ctx is cancelled (APP_STORAGE=memory, không có worker)
func (h *FlushViewsHandler) RunEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := h.Flush(ctx); err != nil {
				log.Error().Err(err).Msg("in-process views flush failed")
			}
		}
	}
}
