package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"newsroom-backend/internal/domains/user"
	"newsroom-backend/internal/domains/workflow"
	"newsroom-backend/internal/shared/middleware"
	"newsroom-backend/internal/shared/response"
)

// UserHandler xử lý HTTP requests cho user domain
// Struct này là stateless - chỉ chứa dependencies
type UserHandler struct {
	service user.Service
}

// NewUserHandler tạo handler instance
func NewUserHandler(service user.Service) *UserHandler {
	return &UserHandler{service: service}
}

// ========================================
// AUTHENTICATION ENDPOINTS
// ========================================

// Login xử lý POST /auth/login
func (h *UserHandler) Login(c *gin.Context) {
	// STEP 1: PARSE REQUEST
	var req user.LoginRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return
	}

	// STEP 2: AUTHENTICATE (IP dùng cho đếm lần sai mật khẩu)
	res, err := h.service.Login(c.Request.Context(), req, middleware.ClientIP(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	// STEP 3: SUCCESS
	response.Success(c, http.StatusOK, "Login successful", res)
}

// Me xử lý GET /auth/me - profile + role hiện tại
func (h *UserHandler) Me(c *gin.Context) {
	actor := workflow.ActorFrom(c.Request.Context())
	if !actor.IsAuthenticated() {
		response.Error(c, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), actor.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Profile retrieved successfully", profile)
}

// ========================================
// ADMIN ENDPOINTS (redaktur)
// ========================================

// ListUsers xử lý GET /admin/users
// Example: ?page=2&limit=10&role=editor&search=budi
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req user.ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	result, err := h.service.ListUsers(c.Request.Context(), workflow.ActorFrom(c.Request.Context()), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, "Users retrieved successfully", result.Users, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

// CreateUser xử lý POST /admin/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req user.CreateUserRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return
	}

	dto, err := h.service.CreateUser(c.Request.Context(), workflow.ActorFrom(c.Request.Context()), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Location", "/api/v1/admin/users/"+dto.ID.String())
	response.Success(c, http.StatusCreated, "User created successfully", dto)
}

// SetRole xử lý PATCH /admin/users/:id/role
func (h *UserHandler) SetRole(c *gin.Context) {
	// STEP 1: GET USER ID FROM URL PATH
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid user ID", err)
		return
	}

	// STEP 2: PARSE + VALIDATE BODY
	var req user.UpdateRoleRequest
	if err := h.bindAndValidate(c, &req); err != nil {
		return
	}

	// STEP 3: UPDATE ROLE
	dto, err := h.service.SetRole(c.Request.Context(), workflow.ActorFrom(c.Request.Context()), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "User role updated successfully", dto)
}

// ========================================
// HELPERS
// ========================================

// handleError map domain errors thành HTTP status codes
func (h *UserHandler) handleError(c *gin.Context, err error) {
	var fieldErrs validation.Errors

	switch {
	case errors.As(err, &fieldErrs):
		response.Error(c, http.StatusBadRequest, "Validation failed", err)

	case errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, user.ErrCannotChangeOwnRole):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)

	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, user.ErrUserInactive),
		errors.Is(err, user.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, err.Error(), nil)

	case errors.Is(err, user.ErrAccountLocked):
		response.Error(c, http.StatusTooManyRequests, err.Error(), nil)

	case errors.Is(err, workflow.ErrPermissionDenied):
		response.ErrorWithCode(c, http.StatusForbidden, workflow.ErrCodePermissionDenied, err.Error(), nil)

	case errors.Is(err, workflow.ErrNotFound), errors.Is(err, user.ErrUserNotFound):
		response.ErrorWithCode(c, http.StatusNotFound, workflow.ErrCodeNotFound, err.Error(), nil)

	case errors.Is(err, user.ErrEmailAlreadyExists):
		response.Error(c, http.StatusConflict, err.Error(), nil)

	default:
		// Log unexpected errors, không expose chi tiết cho client
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("user handler error")
		response.Error(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}

type validatable interface {
	Validate() error
}

func (h *UserHandler) bindAndValidate(c *gin.Context, req validatable) error {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return err
	}
	if err := req.Validate(); err != nil {
		response.Error(c, http.StatusBadRequest, "Validation failed", err)
		return err
	}
	return nil
}
