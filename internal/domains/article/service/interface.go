package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"newsroom-backend/internal/domains/article/model"
	"newsroom-backend/internal/domains/workflow"
	"newsroom-backend/internal/shared"
)

// =====================================================
// ARTICLE SERVICE INTERFACE
// =====================================================
// Mọi thao tác workflow nhận actor tường minh (resolve từ session mỗi request),
// không có "current role" toàn cục.

type ServiceInterface interface {
	// ========================================
	// WORKFLOW OPERATIONS
	// ========================================

	// CreateDraft creates a draft owned by the actor
	CreateDraft(ctx context.Context, actor workflow.Actor, req model.CreateArticleRequest) (*model.ArticleResponse, error)

	// Submit moves an authored draft to pending_editor
	Submit(ctx context.Context, actor workflow.Actor, id uuid.UUID, expected *workflow.Status) (*model.ArticleResponse, error)

	// Approve: pending_editor -> pending_admin, pending_admin -> published
	Approve(ctx context.Context, actor workflow.Actor, id uuid.UUID, expected *workflow.Status) (*model.ArticleResponse, error)

	// Reject sends a pending article back to draft with a reason
	Reject(ctx context.Context, actor workflow.Actor, id uuid.UUID, reason string, expected *workflow.Status) (*model.ArticleResponse, error)

	// Publish is approveAsRedaktur
	Publish(ctx context.Context, actor workflow.Actor, id uuid.UUID, expected *workflow.Status) (*model.ArticleResponse, error)

	// Edit updates content fields, status untouched
	Edit(ctx context.Context, actor workflow.Actor, id uuid.UUID, req model.UpdateArticleRequest) (*model.ArticleResponse, error)

	// Delete hard-deletes an article (administrative)
	Delete(ctx context.Context, actor workflow.Actor, id uuid.UUID) error

	// ========================================
	// PROJECTIONS
	// ========================================

	// Get returns one article if the actor may view it
	Get(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*model.ArticleResponse, error)

	// List lists the articles visible to the actor
	List(ctx context.Context, actor workflow.Actor, req model.ListArticlesRequest) (*model.ListArticlesResponse, error)

	// MyQueue lists the actor's own articles, newest first
	MyQueue(ctx context.Context, actor workflow.Actor) ([]*model.Article, error)

	// ReviewQueue lists the articles the actor's role must act on next
	ReviewQueue(ctx context.Context, actor workflow.Actor) ([]*model.Article, error)

	// Notes returns the review history
	Notes(ctx context.Context, actor workflow.Actor, id uuid.UUID) ([]*model.ReviewNote, error)

	// Stats returns dashboard counters
	Stats(ctx context.Context, actor workflow.Actor) (*model.DashboardStats, error)

	// ========================================
	// PUBLIC (READER) OPERATIONS
	// ========================================

	ListPublished(ctx context.Context, req model.PublicListRequest) (*model.PublicListResponse, error)
	GetPublished(ctx context.Context, id uuid.UUID) (*model.PublicArticleResponse, error)

	// RecordView counts a view at most once per reader session.
	// Returns false when the session already viewed the article.
	RecordView(ctx context.Context, id uuid.UUID, sessionID string) (bool, error)
}

// EventPublisher nhận thông báo sau mỗi transition đã commit
type EventPublisher interface {
	StatusChanged(ctx context.Context, payload shared.ArticleStatusChangedPayload) error
}

// Config - tham số runtime của service
type Config struct {
	ViewSessionTTL time.Duration // cửa sổ dedupe lượt xem theo session
	PublicCacheTTL time.Duration // TTL cache bài/list public
}

func DefaultConfig() Config {
	return Config{
		ViewSessionTTL: 24 * time.Hour,
		PublicCacheTTL: 2 * time.Minute,
	}
}
