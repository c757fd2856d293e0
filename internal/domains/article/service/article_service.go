package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"newsroom-backend/internal/domains/article/model"
	"newsroom-backend/internal/domains/article/repository"
	"newsroom-backend/internal/domains/workflow"
	"newsroom-backend/internal/shared"
	"newsroom-backend/pkg/cache"
)

// =====================================================
// SERVICE IMPLEMENTATION
// =====================================================

type articleService struct {
	repo   repository.ArticleRepository
	views  repository.ViewStore // optional
	cache  cache.Cache          // optional, cache-aside cho public API
	events EventPublisher       // optional
	cfg    Config
	now    func() time.Time
}

func NewArticleService(
	repo repository.ArticleRepository,
	views repository.ViewStore,
	cache cache.Cache,
	events EventPublisher,
	cfg Config,
) ServiceInterface {
	return &articleService{
		repo:   repo,
		views:  views,
		cache:  cache,
		events: events,
		cfg:    cfg,
		now:    time.Now,
	}
}

// =====================================================
// CREATE DRAFT
// =====================================================

func (s *articleService) CreateDraft(
	ctx context.Context,
	actor workflow.Actor,
	req model.CreateArticleRequest,
) (*model.ArticleResponse, error) {
	// Step 1: role gate (guest/editor bị từ chối)
	status, err := workflow.Create(actor.Role)
	if err != nil {
		return nil, err
	}

	// Step 2: Validate request
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	// Step 3: Build entity
	now := s.now()
	article := &model.Article{
		ID:              uuid.New(),
		AuthorID:        actor.ID,
		Status:          status,
		StatusChangedAt: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	req.Fields().Apply(article)

	// Step 4: Save
	created, err := s.repo.Insert(ctx, article)
	if err != nil {
		log.Error().Err(err).Str("actor_id", actor.ID.String()).Msg("failed to insert article")
		return nil, workflow.Storage("insert article", err)
	}

	log.Info().
		Str("article_id", created.ID.String()).
		Str("actor_id", actor.ID.String()).
		Str("actor_role", actor.Role.String()).
		Msg("draft created")

	return s.buildResponse(actor, created, nil), nil
}

// =====================================================
// TRANSITIONS
// =====================================================

func (s *articleService) Submit(ctx context.Context, actor workflow.Actor, id uuid.UUID, expected *workflow.Status) (*model.ArticleResponse, error) {
	return s.transition(ctx, actor, id, expected, func(workflow.Status) workflow.Action {
		return workflow.ActionSubmitForEditorReview
	}, nil)
}

// Approve chọn action theo status: pending_admin -> approveAsRedaktur, còn lại -> approveAsEditor
func (s *articleService) Approve(ctx context.Context, actor workflow.Actor, id uuid.UUID, expected *workflow.Status) (*model.ArticleResponse, error) {
	return s.transition(ctx, actor, id, expected, func(from workflow.Status) workflow.Action {
		if from == workflow.StatusPendingAdmin {
			return workflow.ActionApproveAsRedaktur
		}
		return workflow.ActionApproveAsEditor
	}, nil)
}

func (s *articleService) Reject(ctx context.Context, actor workflow.Actor, id uuid.UUID, reason string, expected *workflow.Status) (*model.ArticleResponse, error) {
	reason = strings.TrimSpace(reason)
	return s.transition(ctx, actor, id, expected, func(workflow.Status) workflow.Action {
		return workflow.ActionReject
	}, &reason)
}

func (s *articleService) Publish(ctx context.Context, actor workflow.Actor, id uuid.UUID, expected *workflow.Status) (*model.ArticleResponse, error) {
	return s.transition(ctx, actor, id, expected, func(workflow.Status) workflow.Action {
		return workflow.ActionApproveAsRedaktur
	}, nil)
}

// transition: đọc bài -> kiểm tra edge/role/tác giả -> CAS update (+ note cùng tx).
// Không retry: thua CAS trả ConcurrentModification cho caller quyết định.
func (s *articleService) transition(
	ctx context.Context,
	actor workflow.Actor,
	id uuid.UUID,
	expected *workflow.Status,
	resolve func(from workflow.Status) workflow.Action,
	reason *string,
) (*model.ArticleResponse, error) {
	// Step 1: Load current state
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, workflow.Storage("get article", err)
	}

	from := current.Status
	if expected != nil {
		from = *expected
	}
	action := resolve(from)

	// Step 2: Edge -> role -> authorship
	next, err := workflow.Transition(from, action, actor.Role, actor.Owns(current.AuthorID))
	if err != nil {
		log.Info().
			Err(err).
			Str("article_id", id.String()).
			Str("action", action.String()).
			Str("from", from.String()).
			Str("actor_role", actor.Role.String()).
			Msg("transition refused")
		return nil, err
	}

	// Step 3: Reason bắt buộc khi reject
	if workflow.RequiresReason(from, action) && (reason == nil || *reason == "") {
		return nil, model.NewReasonRequiredError()
	}

	// Step 4: CAS update, note ghi cùng transaction
	now := s.now()
	note := &model.ReviewNote{
		ID:        uuid.New(),
		ArticleID: id,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		Action:    action,
		From:      from,
		To:        next,
		CreatedAt: now,
	}
	if reason != nil && *reason != "" {
		note.Reason = reason
	}

	updated, err := s.repo.UpdateStatus(ctx, model.StatusUpdate{
		ID:             id,
		Expected:       from,
		Next:           next,
		At:             now,
		SetPublishedAt: workflow.SetsPublishedAt(from, action),
		Note:           note,
	})
	if err != nil {
		if errors.Is(err, workflow.ErrConcurrentModification) {
			log.Warn().
				Err(err).
				Str("article_id", id.String()).
				Str("action", action.String()).
				Msg("lost status race")
			return nil, err
		}
		if !workflow.IsWorkflowError(err) {
			log.Error().Err(err).Str("article_id", id.String()).Msg("failed to update article status")
		}
		return nil, workflow.Storage("update article status", err)
	}

	log.Info().
		Str("article_id", id.String()).
		Str("action", action.String()).
		Str("from", from.String()).
		Str("to", next.String()).
		Str("actor_id", actor.ID.String()).
		Str("actor_role", actor.Role.String()).
		Msg("article transitioned")

	// Step 5: Side effects (best-effort, đã commit)
	if from == workflow.StatusPublished || next == workflow.StatusPublished {
		s.invalidatePublic(ctx, id)
	}
	s.publish(ctx, shared.ArticleStatusChangedPayload{
		ArticleID: id.String(),
		From:      from.String(),
		To:        next.String(),
		ActorID:   actor.ID.String(),
		ActorRole: actor.Role.String(),
		At:        now,
	})

	return s.buildResponse(actor, updated, []*model.ReviewNote{note}), nil
}

// =====================================================
// EDIT CONTENT
// =====================================================

func (s *articleService) Edit(
	ctx context.Context,
	actor workflow.Actor,
	id uuid.UUID,
	req model.UpdateArticleRequest,
) (*model.ArticleResponse, error) {
	// Step 1: Validate
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}
	fields := req.Fields()
	if fields.IsEmpty() {
		return nil, model.NewValidationError(model.ErrNothingToUpdate)
	}
	expected, err := model.ParseExpected(req.ExpectedStatus)
	if err != nil {
		return nil, model.NewValidationError(err)
	}

	// Step 2: Load + authorize (editContent là self-loop)
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, workflow.Storage("get article", err)
	}
	from := current.Status
	if expected != nil {
		from = *expected
	}
	if _, err := workflow.Transition(from, workflow.ActionEditContent, actor.Role, actor.Owns(current.AuthorID)); err != nil {
		return nil, err
	}

	// Step 3: Update, guarded on status
	updated, err := s.repo.UpdateContent(ctx, id, from, fields)
	if err != nil {
		return nil, workflow.Storage("update article content", err)
	}

	log.Info().
		Str("article_id", id.String()).
		Str("status", updated.Status.String()).
		Str("actor_id", actor.ID.String()).
		Msg("article content edited")

	if updated.IsPublished() {
		s.invalidatePublic(ctx, id)
	}

	return s.buildResponse(actor, updated, nil), nil
}

// =====================================================
// DELETE
// =====================================================

func (s *articleService) Delete(ctx context.Context, actor workflow.Actor, id uuid.UUID) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return workflow.Storage("get article", err)
	}
	if err := workflow.Authorize(actor.Role, workflow.ActionDeleteAny, current.Status, actor.Owns(current.AuthorID)); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return workflow.Storage("delete article", err)
	}

	log.Info().
		Str("article_id", id.String()).
		Str("status", current.Status.String()).
		Str("actor_id", actor.ID.String()).
		Str("actor_role", actor.Role.String()).
		Msg("article deleted")

	if current.IsPublished() {
		s.invalidatePublic(ctx, id)
	}
	return nil
}

// =====================================================
// PROJECTIONS
// =====================================================

func (s *articleService) Get(ctx context.Context, actor workflow.Actor, id uuid.UUID) (*model.ArticleResponse, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, workflow.Storage("get article", err)
	}
	if err := workflow.Authorize(actor.Role, workflow.ActionViewAny, a.Status, actor.Owns(a.AuthorID)); err != nil {
		return nil, err
	}

	notes, err := s.repo.ListNotes(ctx, id)
	if err != nil {
		return nil, workflow.Storage("list review notes", err)
	}
	return s.buildResponse(actor, a, notes), nil
}

func (s *articleService) List(
	ctx context.Context,
	actor workflow.Actor,
	req model.ListArticlesRequest,
) (*model.ListArticlesResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	filter := model.ListFilter{Page: req.Page, Limit: req.Limit}
	if req.Category != "" {
		filter.Category, _ = model.NormalizeCategory(req.Category)
	}
	if req.Status != "" {
		st, _ := workflow.ParseStatus(req.Status)
		filter.Statuses = []workflow.Status{st}
	}

	// Phạm vi nhìn thấy theo role
	switch actor.Role {
	case workflow.RoleEditor, workflow.RoleRedaktur:
	case workflow.RoleWartawan:
		filter.OwnOrPublished = &actor.ID
	case workflow.RoleGuest:
		filter.Statuses = []workflow.Status{workflow.StatusPublished}
	default:
		return nil, &workflow.PermissionDeniedError{Action: workflow.ActionViewAny, Role: actor.Role}
	}

	articles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, workflow.Storage("list articles", err)
	}

	return &model.ListArticlesResponse{
		Articles:   articles,
		Pagination: model.NewPaginationMeta(req.Page, req.Limit, total),
	}, nil
}

func (s *articleService) MyQueue(ctx context.Context, actor workflow.Actor) ([]*model.Article, error) {
	if !actor.IsAuthenticated() {
		return nil, model.NewUnauthenticatedError()
	}
	articles, err := s.repo.ListByAuthor(ctx, actor.ID)
	if err != nil {
		return nil, workflow.Storage("list articles by author", err)
	}
	return model.AuthoredBy(actor.ID, articles), nil
}

func (s *articleService) ReviewQueue(ctx context.Context, actor workflow.Actor) ([]*model.Article, error) {
	target, ok := workflow.ReviewTarget(actor.Role)
	if !ok {
		return []*model.Article{}, nil
	}
	articles, err := s.repo.ListByStatus(ctx, target)
	if err != nil {
		return nil, workflow.Storage("list articles by status", err)
	}
	return model.ReviewQueue(actor.Role, articles), nil
}

func (s *articleService) Notes(ctx context.Context, actor workflow.Actor, id uuid.UUID) ([]*model.ReviewNote, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, workflow.Storage("get article", err)
	}
	if err := workflow.Authorize(actor.Role, workflow.ActionViewAny, a.Status, actor.Owns(a.AuthorID)); err != nil {
		return nil, err
	}
	notes, err := s.repo.ListNotes(ctx, id)
	if err != nil {
		return nil, workflow.Storage("list review notes", err)
	}
	return notes, nil
}

func (s *articleService) Stats(ctx context.Context, actor workflow.Actor) (*model.DashboardStats, error) {
	if !actor.IsAuthenticated() {
		return nil, model.NewUnauthenticatedError()
	}

	all, err := s.repo.CountByStatus(ctx, nil)
	if err != nil {
		return nil, workflow.Storage("count articles", err)
	}
	mine, err := s.repo.CountByStatus(ctx, &actor.ID)
	if err != nil {
		return nil, workflow.Storage("count own articles", err)
	}

	stats := &model.DashboardStats{
		Role:          actor.Role,
		Published:     all[workflow.StatusPublished],
		PendingEditor: all[workflow.StatusPendingEditor],
		PendingAdmin:  all[workflow.StatusPendingAdmin],
		Draft:         all[workflow.StatusDraft],
		MyDrafts:      mine[workflow.StatusDraft],
		MyPublished:   mine[workflow.StatusPublished],
	}
	if target, ok := workflow.ReviewTarget(actor.Role); ok {
		stats.ReviewQueue = all[target]
	}
	return stats, nil
}

// =====================================================
// PUBLIC (READER)
// =====================================================

func (s *articleService) ListPublished(ctx context.Context, req model.PublicListRequest) (*model.PublicListResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}
	category := ""
	if req.Category != "" {
		category, _ = model.NormalizeCategory(req.Category)
	}

	cacheKey := fmt.Sprintf(shared.CacheKeyPublicList, category, req.Page, req.Limit)
	var cached model.PublicListResponse
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	articles, total, err := s.repo.List(ctx, model.ListFilter{
		Statuses: []workflow.Status{workflow.StatusPublished},
		Category: category,
		Page:     req.Page,
		Limit:    req.Limit,
	})
	if err != nil {
		return nil, workflow.Storage("list published articles", err)
	}

	resp := &model.PublicListResponse{
		Articles:   make([]model.PublicArticleResponse, 0, len(articles)),
		Pagination: model.NewPaginationMeta(req.Page, req.Limit, total),
	}
	for _, a := range articles {
		resp.Articles = append(resp.Articles, model.ToPublic(a))
	}

	s.cacheSet(ctx, cacheKey, resp)
	return resp, nil
}

// GetPublished: bài chưa publish trả NotFound (không lộ sự tồn tại cho độc giả)
func (s *articleService) GetPublished(ctx context.Context, id uuid.UUID) (*model.PublicArticleResponse, error) {
	cacheKey := fmt.Sprintf(shared.CacheKeyPublicArticle, id)
	var cached model.PublicArticleResponse
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	a, err := s.publishedArticle(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := model.ToPublic(a)
	s.cacheSet(ctx, cacheKey, resp)
	return &resp, nil
}

func (s *articleService) RecordView(ctx context.Context, id uuid.UUID, sessionID string) (bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return false, model.NewValidationError(errors.New("reader session is required"))
	}
	if _, err := s.publishedArticle(ctx, id); err != nil {
		return false, err
	}

	// Không có view store: ghi thẳng, không dedupe
	if s.views == nil {
		if err := s.repo.AddViews(ctx, id, 1); err != nil {
			return false, workflow.Storage("add views", err)
		}
		return true, nil
	}

	first, err := s.views.MarkSeen(ctx, id, sessionID, s.cfg.ViewSessionTTL)
	if err != nil {
		return false, workflow.Storage("mark view seen", err)
	}
	if !first {
		return false, nil
	}
	if err := s.views.AddPending(ctx, id, 1); err != nil {
		return false, workflow.Storage("buffer view", err)
	}
	return true, nil
}

func (s *articleService) publishedArticle(ctx context.Context, id uuid.UUID) (*model.Article, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, workflow.Storage("get article", err)
	}
	if !workflow.Can(workflow.RoleGuest, workflow.ActionViewAny, a.Status, false) {
		return nil, &workflow.NotFoundError{Kind: "article", ID: id}
	}
	return a, nil
}

// =====================================================
// HELPERS
// =====================================================

func (s *articleService) buildResponse(actor workflow.Actor, a *model.Article, notes []*model.ReviewNote) *model.ArticleResponse {
	resp := &model.ArticleResponse{
		Article:        a,
		AllowedActions: workflow.AllowedActions(actor, a.Status, actor.Owns(a.AuthorID)),
	}
	// Lý do từ chối chỉ có nghĩa khi bài đang nằm lại ở draft
	if a.Status == workflow.StatusDraft {
		resp.LastRejection = model.LatestRejection(notes)
	}
	return resp
}

func (s *articleService) invalidatePublic(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, fmt.Sprintf(shared.CacheKeyPublicArticle, id)); err != nil {
		log.Warn().Err(err).Str("article_id", id.String()).Msg("failed to invalidate article cache")
	}
	if err := s.cache.DeletePattern(ctx, shared.CacheKeyPublicListAll); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate list cache")
	}
}

func (s *articleService) publish(ctx context.Context, payload shared.ArticleStatusChangedPayload) {
	if s.events == nil {
		return
	}
	if err := s.events.StatusChanged(ctx, payload); err != nil {
		log.Warn().Err(err).Str("article_id", payload.ArticleID).Msg("failed to publish status change")
	}
}

func (s *articleService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		return false
	}
	return found
}

func (s *articleService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.PublicCacheTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}
