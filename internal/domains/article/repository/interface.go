package repository

import (
	"context"

	"github.com/google/uuid"

	"newsroom-backend/internal/domains/article/model"
	"newsroom-backend/internal/domains/workflow"
)

// =====================================================
// ARTICLE REPOSITORY INTERFACE
// =====================================================

// ArticleRepository là article store của workflow.
// Lỗi trả về:
//   - *workflow.NotFoundError khi bài không tồn tại
//   - *workflow.ConcurrentModificationError khi CAS thất bại
//   - lỗi driver được wrap bằng fmt.Errorf(... %w)
type ArticleRepository interface {
	// ========================================
	// CRUD Operations
	// ========================================

	// Insert creates a new article row
	Insert(ctx context.Context, article *model.Article) (*model.Article, error)

	// Get gets article by ID
	Get(ctx context.Context, id uuid.UUID) (*model.Article, error)

	// UpdateStatus là compare-and-swap: chỉ ghi khi status hiện tại == cmd.Expected
	UpdateStatus(ctx context.Context, cmd model.StatusUpdate) (*model.Article, error)

	// UpdateContent cập nhật các field nội dung, có điều kiện status == expected
	UpdateContent(ctx context.Context, id uuid.UUID, expected workflow.Status, fields model.ContentFields) (*model.Article, error)

	// Delete hard-deletes the row (administrative, outside the workflow)
	Delete(ctx context.Context, id uuid.UUID) error

	// ========================================
	// LIST Operations
	// ========================================

	// ListByStatus lists every article in the given status
	ListByStatus(ctx context.Context, status workflow.Status) ([]*model.Article, error)

	// ListByAuthor lists every article written by authorID
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*model.Article, error)

	// List lists articles with filters and pagination
	List(ctx context.Context, filter model.ListFilter) ([]*model.Article, int, error)

	// CountByStatus returns per-status counts, optionally for one author
	CountByStatus(ctx context.Context, authorID *uuid.UUID) (model.StatusCounts, error)

	// ========================================
	// REVIEW NOTES
	// ========================================

	// ListNotes returns the workflow history of an article, oldest first
	ListNotes(ctx context.Context, articleID uuid.UUID) ([]*model.ReviewNote, error)

	// ========================================
	// VIEWS
	// ========================================

	// AddViews adds delta to the views counter (best-effort, no CAS)
	AddViews(ctx context.Context, id uuid.UUID, delta int64) error
}
