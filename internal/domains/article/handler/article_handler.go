package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"newsroom-backend/internal/domains/article/model"
	"newsroom-backend/internal/domains/article/service"
	"newsroom-backend/internal/domains/workflow"
	"newsroom-backend/internal/shared/response"
)

const (
	SessionCookie = "reader_session"
	SessionHeader = "X-Session-ID"

	sessionMaxAge = 24 * 3600
)

// ArticleHandler - HTTP layer cho workflow biên tập + API đọc tin
type ArticleHandler struct {
	service service.ServiceInterface
}

func NewArticleHandler(service service.ServiceInterface) *ArticleHandler {
	return &ArticleHandler{service: service}
}

// =====================================================
// PUBLIC ENDPOINTS (reader)
// =====================================================

// ListPublished GET /news?category=&page=&limit=
func (h *ArticleHandler) ListPublished(c *gin.Context) {
	var req model.PublicListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	result, err := h.service.ListPublished(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, "News retrieved successfully", result.Articles, paginationMeta(result.Pagination))
}

// Categories GET /news/categories
func (h *ArticleHandler) Categories(c *gin.Context) {
	response.Success(c, http.StatusOK, "Categories retrieved successfully", model.Categories)
}

// GetPublished GET /news/:id
func (h *ArticleHandler) GetPublished(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	article, err := h.service.GetPublished(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "News retrieved successfully", article)
}

// RecordView POST /news/:id/view
// Session lấy từ cookie reader_session hoặc header X-Session-ID, tạo mới nếu thiếu
func (h *ArticleHandler) RecordView(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	session := h.readerSession(c)
	counted, err := h.service.RecordView(c.Request.Context(), id, session)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "View recorded", gin.H{
		"counted":    counted,
		"session_id": session,
	})
}

func (h *ArticleHandler) readerSession(c *gin.Context) string {
	if s, err := c.Cookie(SessionCookie); err == nil && s != "" {
		return s
	}
	if s := c.GetHeader(SessionHeader); s != "" {
		return s
	}

	s := uuid.NewString()
	c.SetCookie(SessionCookie, s, sessionMaxAge, "/", "", false, true)
	return s
}

// =====================================================
// WORKFLOW ENDPOINTS (authenticated)
// =====================================================

// Create POST /admin/articles
func (h *ArticleHandler) Create(c *gin.Context) {
	var req model.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	article, err := h.service.CreateDraft(c.Request.Context(), actorOf(c), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Location", "/api/v1/admin/articles/"+article.ID.String())
	response.Success(c, http.StatusCreated, "Draft created successfully", article)
}

// Update PUT /admin/articles/:id
func (h *ArticleHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req model.UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	article, err := h.service.Edit(c.Request.Context(), actorOf(c), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Article updated successfully", article)
}

// Delete DELETE /admin/articles/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actorOf(c), id); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Article deleted successfully", nil)
}

// Submit POST /admin/articles/:id/submit
func (h *ArticleHandler) Submit(c *gin.Context) {
	h.runTransition(c, "Article submitted for review", h.service.Submit)
}

// Approve POST /admin/articles/:id/approve
func (h *ArticleHandler) Approve(c *gin.Context) {
	h.runTransition(c, "Article approved", h.service.Approve)
}

// Publish POST /admin/articles/:id/publish
func (h *ArticleHandler) Publish(c *gin.Context) {
	h.runTransition(c, "Article published", h.service.Publish)
}

// Reject POST /admin/articles/:id/reject {reason, expected_status?}
func (h *ArticleHandler) Reject(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req model.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, http.StatusBadRequest, "Validation failed", err)
		return
	}
	expected, err := model.ParseExpected(req.ExpectedStatus)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid expected_status", err)
		return
	}

	article, err := h.service.Reject(c.Request.Context(), actorOf(c), id, req.Reason, expected)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Article rejected", article)
}

type transitionFunc func(ctx context.Context, actor workflow.Actor, id uuid.UUID, expected *workflow.Status) (*model.ArticleResponse, error)

// runTransition xử lý chung cho submit/approve/publish: body tuỳ chọn {expected_status}
func (h *ArticleHandler) runTransition(c *gin.Context, message string, fn transitionFunc) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req model.TransitionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}
	expected, err := model.ParseExpected(req.ExpectedStatus)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid expected_status", err)
		return
	}

	article, err := fn(c.Request.Context(), actorOf(c), id, expected)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, message, article)
}

// =====================================================
// PROJECTIONS
// =====================================================

// Get GET /admin/articles/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	article, err := h.service.Get(c.Request.Context(), actorOf(c), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Article retrieved successfully", article)
}

// List GET /admin/articles?status=&category=&page=&limit=
func (h *ArticleHandler) List(c *gin.Context) {
	var req model.ListArticlesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	result, err := h.service.List(c.Request.Context(), actorOf(c), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, "Articles retrieved successfully", result.Articles, paginationMeta(result.Pagination))
}

// Mine GET /admin/articles/mine
func (h *ArticleHandler) Mine(c *gin.Context) {
	articles, err := h.service.MyQueue(c.Request.Context(), actorOf(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Articles retrieved successfully", articles)
}

// ReviewQueue GET /admin/articles/review
func (h *ArticleHandler) ReviewQueue(c *gin.Context) {
	articles, err := h.service.ReviewQueue(c.Request.Context(), actorOf(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Review queue retrieved successfully", articles)
}

// Notes GET /admin/articles/:id/notes
func (h *ArticleHandler) Notes(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	notes, err := h.service.Notes(c.Request.Context(), actorOf(c), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Review notes retrieved successfully", notes)
}

// Stats GET /admin/articles/stats
func (h *ArticleHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), actorOf(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Stats retrieved successfully", stats)
}

// =====================================================
// HELPERS
// =====================================================

func actorOf(c *gin.Context) workflow.Actor {
	return workflow.ActorFrom(c.Request.Context())
}

func (h *ArticleHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid article ID", err)
		return uuid.Nil, false
	}
	return id, true
}

func paginationMeta(p model.PaginationMeta) *response.Meta {
	return &response.Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      p.Total,
		TotalPages: p.TotalPages,
	}
}

// handleError map workflow + article errors thành HTTP status codes
func (h *ArticleHandler) handleError(c *gin.Context, err error) {
	var artErr *model.ArticleError
	if errors.As(err, &artErr) {
		switch artErr.Code {
		case model.ErrCodeUnauthenticated:
			response.ErrorWithCode(c, http.StatusUnauthorized, artErr.Code, artErr.Message, nil)
		default:
			response.ErrorWithCode(c, http.StatusBadRequest, artErr.Code, artErr.Message, artErr.Error())
		}
		return
	}

	code := workflow.ErrorCode(err)
	switch {
	case errors.Is(err, workflow.ErrPermissionDenied):
		response.ErrorWithCode(c, http.StatusForbidden, code, err.Error(), nil)

	case errors.Is(err, workflow.ErrInvalidTransition):
		response.ErrorWithCode(c, http.StatusUnprocessableEntity, code, err.Error(), nil)

	case errors.Is(err, workflow.ErrConcurrentModification):
		response.ErrorWithCode(c, http.StatusConflict, code, err.Error(), concurrentDetails(err))

	case errors.Is(err, workflow.ErrNotFound):
		response.ErrorWithCode(c, http.StatusNotFound, code, err.Error(), nil)

	default:
		// StorageFailure + lỗi không xác định: log đầy đủ, không expose cho client
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.Request.URL.Path).
			Msg("article handler error")
		if code == "" {
			code = workflow.ErrCodeStorageFailure
		}
		response.ErrorWithCode(c, http.StatusInternalServerError, code, "Internal server error", nil)
	}
}

func concurrentDetails(err error) gin.H {
	var cm *workflow.ConcurrentModificationError
	if !errors.As(err, &cm) {
		return nil
	}
	return gin.H{
		"expected_status": cm.Expected,
		"actual_status":   cm.Actual,
	}
}
