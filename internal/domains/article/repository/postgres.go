package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"newsroom-backend/internal/domains/article/model"
	"newsroom-backend/internal/domains/workflow"
	"newsroom-backend/pkg/database"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================

type postgresArticleRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresArticleRepository(pool *pgxpool.Pool) ArticleRepository {
	return &postgresArticleRepository{pool: pool}
}

// selectColumns: author_name lấy từ bảng users (LEFT JOIN vì user có thể đã bị xoá)
const selectColumns = `
	n.id, n.title, n.excerpt, n.content, n.category, n.image,
	n.author_id, COALESCE(u.full_name, ''),
	n.status, n.status_changed_at,
	n.views, n.is_featured,
	n.created_at, n.updated_at, n.published_at`

func scanArticle(row pgx.Row) (*model.Article, error) {
	a := &model.Article{}
	var status string
	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Excerpt,
		&a.Content,
		&a.Category,
		&a.Image,
		&a.AuthorID,
		&a.AuthorName,
		&status,
		&a.StatusChangedAt,
		&a.Views,
		&a.IsFeatured,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.PublishedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = workflow.Status(status)
	return a, nil
}

func scanArticles(rows pgx.Rows) ([]*model.Article, error) {
	defer rows.Close()

	out := make([]*model.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}
	return out, nil
}

// =====================================================
// INSERT
// =====================================================

func (r *postgresArticleRepository) Insert(ctx context.Context, a *model.Article) (*model.Article, error) {
	query := `
		WITH inserted AS (
			INSERT INTO news (
				id, title, excerpt, content, category, image,
				author_id, status, status_changed_at,
				views, is_featured, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10, $11, $11)
			RETURNING *
		)
		SELECT ` + selectColumns + `
		FROM inserted n
		LEFT JOIN users u ON u.id = n.author_id
	`

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	created, err := scanArticle(r.pool.QueryRow(ctx, query,
		a.ID,
		a.Title,
		a.Excerpt,
		a.Content,
		a.Category,
		a.Image,
		a.AuthorID,
		string(a.Status),
		a.StatusChangedAt,
		a.IsFeatured,
		a.CreatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert article: %w", err)
	}
	return created, nil
}

// =====================================================
// GET BY ID
// =====================================================

func (r *postgresArticleRepository) Get(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	query := `SELECT ` + selectColumns + `
		FROM news n
		LEFT JOIN users u ON u.id = n.author_id
		WHERE n.id = $1`

	a, err := scanArticle(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &workflow.NotFoundError{Kind: "article", ID: id}
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return a, nil
}

// =====================================================
// UPDATE STATUS (CAS)
// =====================================================

// UpdateStatus ghi status mới với điều kiện WHERE status = expected.
// Review note được insert trong cùng transaction nên lịch sử và status không lệch nhau.
func (r *postgresArticleRepository) UpdateStatus(ctx context.Context, cmd model.StatusUpdate) (*model.Article, error) {
	query := `
		WITH updated AS (
			UPDATE news
			SET status = $3,
				status_changed_at = $4,
				updated_at = $4,
				published_at = CASE WHEN $5::boolean THEN COALESCE(published_at, $4) ELSE published_at END
			WHERE id = $1 AND status = $2
			RETURNING *
		)
		SELECT ` + selectColumns + `
		FROM updated n
		LEFT JOIN users u ON u.id = n.author_id
	`

	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Article, error) {
		a, err := scanArticle(tx.QueryRow(ctx, query,
			cmd.ID,
			string(cmd.Expected),
			string(cmd.Next),
			cmd.At,
			cmd.SetPublishedAt,
		))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, r.casFailure(ctx, tx, cmd.ID, cmd.Expected)
			}
			return nil, fmt.Errorf("failed to update article status: %w", err)
		}

		if cmd.Note != nil {
			if err := insertNote(ctx, tx, cmd.Note); err != nil {
				return nil, err
			}
		}
		return a, nil
	})
}

// casFailure phân biệt "không tồn tại" với "đã bị người khác đổi status"
func (r *postgresArticleRepository) casFailure(ctx context.Context, tx pgx.Tx, id uuid.UUID, expected workflow.Status) error {
	var actual string
	err := tx.QueryRow(ctx, `SELECT status FROM news WHERE id = $1`, id).Scan(&actual)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &workflow.NotFoundError{Kind: "article", ID: id}
		}
		return fmt.Errorf("failed to read current status: %w", err)
	}
	return &workflow.ConcurrentModificationError{ID: id, Expected: expected, Actual: workflow.Status(actual)}
}

func insertNote(ctx context.Context, tx pgx.Tx, n *model.ReviewNote) error {
	query := `
		INSERT INTO article_review_notes (
			id, article_id, actor_id, actor_role, action,
			from_status, to_status, reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	_, err := tx.Exec(ctx, query,
		n.ID,
		n.ArticleID,
		n.ActorID,
		string(n.ActorRole),
		string(n.Action),
		string(n.From),
		string(n.To),
		n.Reason,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert review note: %w", err)
	}
	return nil
}

// =====================================================
// UPDATE CONTENT
// =====================================================

func (r *postgresArticleRepository) UpdateContent(ctx context.Context, id uuid.UUID, expected workflow.Status, f model.ContentFields) (*model.Article, error) {
	query := `
		WITH updated AS (
			UPDATE news
			SET title = COALESCE($3, title),
				excerpt = COALESCE($4, excerpt),
				content = COALESCE($5, content),
				category = COALESCE($6, category),
				image = COALESCE($7, image),
				updated_at = NOW()
			WHERE id = $1 AND status = $2
			RETURNING *
		)
		SELECT ` + selectColumns + `
		FROM updated n
		LEFT JOIN users u ON u.id = n.author_id
	`

	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Article, error) {
		a, err := scanArticle(tx.QueryRow(ctx, query,
			id, string(expected), f.Title, f.Excerpt, f.Content, f.Category, f.Image,
		))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, r.casFailure(ctx, tx, id, expected)
			}
			return nil, fmt.Errorf("failed to update article content: %w", err)
		}
		return a, nil
	})
}

// =====================================================
// DELETE
// =====================================================

func (r *postgresArticleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &workflow.NotFoundError{Kind: "article", ID: id}
	}
	return nil
}

// =====================================================
// LIST
// =====================================================

func (r *postgresArticleRepository) ListByStatus(ctx context.Context, status workflow.Status) ([]*model.Article, error) {
	query := `SELECT ` + selectColumns + `
		FROM news n
		LEFT JOIN users u ON u.id = n.author_id
		WHERE n.status = $1
		ORDER BY n.status_changed_at DESC, n.created_at DESC`

	rows, err := r.pool.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list articles by status: %w", err)
	}
	return scanArticles(rows)
}

func (r *postgresArticleRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*model.Article, error) {
	query := `SELECT ` + selectColumns + `
		FROM news n
		LEFT JOIN users u ON u.id = n.author_id
		WHERE n.author_id = $1
		ORDER BY n.created_at DESC`

	rows, err := r.pool.Query(ctx, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles by author: %w", err)
	}
	return scanArticles(rows)
}

func (r *postgresArticleRepository) List(ctx context.Context, filter model.ListFilter) ([]*model.Article, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		conditions = append(conditions, fmt.Sprintf("n.status = ANY($%d)", argPos))
		args = append(args, pq.Array(statuses))
		argPos++
	}
	if filter.AuthorID != nil {
		conditions = append(conditions, fmt.Sprintf("n.author_id = $%d", argPos))
		args = append(args, *filter.AuthorID)
		argPos++
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("n.category = $%d", argPos))
		args = append(args, filter.Category)
		argPos++
	}
	if filter.OwnOrPublished != nil {
		conditions = append(conditions, fmt.Sprintf("(n.author_id = $%d OR n.status = '%s')", argPos, workflow.StatusPublished))
		args = append(args, *filter.OwnOrPublished)
		argPos++
	}
	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM news n WHERE ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}

	orderBy := "n.created_at DESC"
	if len(filter.Statuses) == 1 && filter.Statuses[0] == workflow.StatusPublished {
		orderBy = "n.published_at DESC NULLS LAST, n.created_at DESC"
	}

	query := `SELECT ` + selectColumns + `
		FROM news n
		LEFT JOIN users u ON u.id = n.author_id
		WHERE ` + where + `
		ORDER BY ` + orderBy
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argPos, argPos+1)
		args = append(args, filter.Limit, filter.Offset())
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list articles: %w", err)
	}
	articles, err := scanArticles(rows)
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// =====================================================
// STATISTICS
// =====================================================

func (r *postgresArticleRepository) CountByStatus(ctx context.Context, authorID *uuid.UUID) (model.StatusCounts, error) {
	query := `SELECT status, COUNT(*) FROM news`
	args := []interface{}{}
	if authorID != nil {
		query += ` WHERE author_id = $1`
		args = append(args, *authorID)
	}
	query += ` GROUP BY status`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}
	defer rows.Close()

	counts := make(model.StatusCounts)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[workflow.Status(status)] = n
	}
	return counts, rows.Err()
}

// =====================================================
// REVIEW NOTES
// =====================================================

func (r *postgresArticleRepository) ListNotes(ctx context.Context, articleID uuid.UUID) ([]*model.ReviewNote, error) {
	query := `
		SELECT id, article_id, actor_id, actor_role, action,
			from_status, to_status, reason, created_at
		FROM article_review_notes
		WHERE article_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list review notes: %w", err)
	}
	defer rows.Close()

	notes := make([]*model.ReviewNote, 0)
	for rows.Next() {
		n := &model.ReviewNote{}
		var role, action, from, to string
		if err := rows.Scan(&n.ID, &n.ArticleID, &n.ActorID, &role, &action, &from, &to, &n.Reason, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review note: %w", err)
		}
		n.ActorRole = workflow.Role(role)
		n.Action = workflow.Action(action)
		n.From = workflow.Status(from)
		n.To = workflow.Status(to)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// =====================================================
// VIEWS
// =====================================================

func (r *postgresArticleRepository) AddViews(ctx context.Context, id uuid.UUID, delta int64) error {
	result, err := r.pool.Exec(ctx, `UPDATE news SET views = views + $2 WHERE id = $1`, id, delta)
	if err != nil {
		return fmt.Errorf("failed to add views: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &workflow.NotFoundError{Kind: "article", ID: id}
	}
	return nil
}
