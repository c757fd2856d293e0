package job

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsroom-backend/internal/domains/article/model"
	"newsroom-backend/internal/domains/article/repository"
	"newsroom-backend/internal/domains/workflow"
	infraCache "newsroom-backend/internal/infrastructure/cache"
	"newsroom-backend/internal/shared"
)

func insertPublished(t *testing.T, repo repository.ArticleRepository) *model.Article {
	t.Helper()
	now := time.Now()
	a, err := repo.Insert(context.Background(), &model.Article{
		Title:           "Timnas menang",
		Category:        "Olahraga",
		AuthorID:        uuid.New(),
		Status:          workflow.StatusPublished,
		StatusChangedAt: now,
		CreatedAt:       now,
		UpdatedAt:       now,
		PublishedAt:     &now,
	})
	require.NoError(t, err)
	return a
}

func TestFlushViews_PersistsAndAcks(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryArticleRepository()
	views := repository.NewMemoryViewStore(infraCache.NewMemoryCache())
	a := insertPublished(t, repo)
	gone := uuid.New()

	require.NoError(t, views.AddPending(ctx, a.ID, 3))
	require.NoError(t, views.AddPending(ctx, gone, 5))

	h := NewFlushViewsHandler(repo, views)
	payload, _ := json.Marshal(shared.FlushViewsPayload{TriggeredAt: time.Now()})
	require.NoError(t, h.ProcessTask(ctx, asynq.NewTask(shared.TypeFlushViews, payload)))

	got, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Views)

	// snapshot fully acked, nothing flushed twice
	left, err := views.Drain(ctx)
	require.NoError(t, err)
	assert.Empty(t, left)

	n, err := h.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	got, _ = repo.Get(ctx, a.ID)
	assert.Equal(t, int64(3), got.Views)
}

func TestStatusChanged_InvalidatesPublicCache(t *testing.T) {
	ctx := context.Background()
	c := infraCache.NewMemoryCache()
	id := uuid.New().String()
	articleKey := fmt.Sprintf(shared.CacheKeyPublicArticle, id)
	listKey := fmt.Sprintf(shared.CacheKeyPublicList, "", 1, 9)

	h := NewStatusChangedHandler(c)
	run := func(from, to workflow.Status) {
		require.NoError(t, c.Set(ctx, articleKey, 1, time.Minute))
		require.NoError(t, c.Set(ctx, listKey, 1, time.Minute))
		payload, _ := json.Marshal(shared.ArticleStatusChangedPayload{ArticleID: id, From: string(from), To: string(to)})
		require.NoError(t, h.ProcessTask(ctx, asynq.NewTask(shared.TypeArticleStatusChanged, payload)))
	}

	run(workflow.StatusDraft, workflow.StatusPendingEditor)
	exists, _ := c.Exists(ctx, listKey)
	assert.True(t, exists, "internal transitions keep public cache")

	run(workflow.StatusPendingAdmin, workflow.StatusPublished)
	exists, _ = c.Exists(ctx, listKey)
	assert.False(t, exists)
	exists, _ = c.Exists(ctx, articleKey)
	assert.False(t, exists)
}

func TestStatusChanged_BadPayload(t *testing.T) {
	h := NewStatusChangedHandler(infraCache.NewMemoryCache())
	err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeArticleStatusChanged, []byte("{")))
	assert.Error(t, err)
}
