package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"newsroom-backend/internal/domains/article/model"
	"newsroom-backend/internal/domains/workflow"
)

// =====================================================
// IN-MEMORY REPOSITORY IMPLEMENTATION
// =====================================================
// Dùng cho APP_STORAGE=memory (dev) và test. Mọi thao tác chạy dưới 1 mutex
// nên CAS trên status là nguyên tử.

type memoryArticleRepository struct {
	mu       sync.RWMutex
	articles map[uuid.UUID]*model.Article
	notes    map[uuid.UUID][]*model.ReviewNote
}

func NewMemoryArticleRepository() ArticleRepository {
	return &memoryArticleRepository{
		articles: make(map[uuid.UUID]*model.Article),
		notes:    make(map[uuid.UUID][]*model.ReviewNote),
	}
}

func (r *memoryArticleRepository) Insert(ctx context.Context, article *model.Article) (*model.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if article.ID == uuid.Nil {
		article.ID = uuid.New()
	}
	r.articles[article.ID] = article.Clone()
	return article.Clone(), nil
}

func (r *memoryArticleRepository) Get(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.articles[id]
	if !ok {
		return nil, &workflow.NotFoundError{Kind: "article", ID: id}
	}
	return a.Clone(), nil
}

func (r *memoryArticleRepository) UpdateStatus(ctx context.Context, cmd model.StatusUpdate) (*model.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.articles[cmd.ID]
	if !ok {
		return nil, &workflow.NotFoundError{Kind: "article", ID: cmd.ID}
	}
	if a.Status != cmd.Expected {
		return nil, &workflow.ConcurrentModificationError{ID: cmd.ID, Expected: cmd.Expected, Actual: a.Status}
	}

	a.Status = cmd.Next
	a.StatusChangedAt = cmd.At
	a.UpdatedAt = cmd.At
	if cmd.SetPublishedAt && a.PublishedAt == nil {
		at := cmd.At
		a.PublishedAt = &at
	}
	if cmd.Note != nil {
		note := *cmd.Note
		r.notes[cmd.ID] = append(r.notes[cmd.ID], &note)
	}
	return a.Clone(), nil
}

func (r *memoryArticleRepository) UpdateContent(ctx context.Context, id uuid.UUID, expected workflow.Status, fields model.ContentFields) (*model.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.articles[id]
	if !ok {
		return nil, &workflow.NotFoundError{Kind: "article", ID: id}
	}
	if a.Status != expected {
		return nil, &workflow.ConcurrentModificationError{ID: id, Expected: expected, Actual: a.Status}
	}
	fields.Apply(a)
	a.UpdatedAt = time.Now()
	return a.Clone(), nil
}

func (r *memoryArticleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.articles[id]; !ok {
		return &workflow.NotFoundError{Kind: "article", ID: id}
	}
	delete(r.articles, id)
	delete(r.notes, id)
	return nil
}

func (r *memoryArticleRepository) ListByStatus(ctx context.Context, status workflow.Status) ([]*model.Article, error) {
	return r.collect(func(a *model.Article) bool { return a.Status == status }), nil
}

func (r *memoryArticleRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*model.Article, error) {
	out := r.collect(func(a *model.Article) bool { return a.AuthorID == authorID })
	model.SortByCreated(out)
	return out, nil
}

func (r *memoryArticleRepository) List(ctx context.Context, filter model.ListFilter) ([]*model.Article, int, error) {
	statuses := make(map[workflow.Status]bool, len(filter.Statuses))
	for _, s := range filter.Statuses {
		statuses[s] = true
	}

	all := r.collect(func(a *model.Article) bool {
		if len(statuses) > 0 && !statuses[a.Status] {
			return false
		}
		if filter.AuthorID != nil && a.AuthorID != *filter.AuthorID {
			return false
		}
		if filter.Category != "" && a.Category != filter.Category {
			return false
		}
		if filter.OwnOrPublished != nil && a.AuthorID != *filter.OwnOrPublished && a.Status != workflow.StatusPublished {
			return false
		}
		return true
	})

	if len(filter.Statuses) == 1 && filter.Statuses[0] == workflow.StatusPublished {
		model.SortByPublished(all)
	} else {
		model.SortByCreated(all)
	}

	total := len(all)
	if filter.Limit <= 0 {
		return all, total, nil
	}
	start := filter.Offset()
	if start >= total {
		return []*model.Article{}, total, nil
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (r *memoryArticleRepository) CountByStatus(ctx context.Context, authorID *uuid.UUID) (model.StatusCounts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(model.StatusCounts)
	for _, a := range r.articles {
		if authorID != nil && a.AuthorID != *authorID {
			continue
		}
		counts[a.Status]++
	}
	return counts, nil
}

func (r *memoryArticleRepository) ListNotes(ctx context.Context, articleID uuid.UUID) ([]*model.ReviewNote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notes := r.notes[articleID]
	out := make([]*model.ReviewNote, 0, len(notes))
	for _, n := range notes {
		c := *n
		out = append(out, &c)
	}
	return out, nil
}

func (r *memoryArticleRepository) AddViews(ctx context.Context, id uuid.UUID, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.articles[id]
	if !ok {
		return &workflow.NotFoundError{Kind: "article", ID: id}
	}
	a.Views += delta
	return nil
}

func (r *memoryArticleRepository) collect(keep func(*model.Article) bool) []*model.Article {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Article, 0)
	for _, a := range r.articles {
		if keep(a) {
			out = append(out, a.Clone())
		}
	}
	return out
}
