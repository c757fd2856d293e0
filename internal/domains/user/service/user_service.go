package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"newsroom-backend/internal/domains/user"
	"newsroom-backend/internal/domains/workflow"
	"newsroom-backend/internal/shared"
	"newsroom-backend/pkg/cache"
	"newsroom-backend/pkg/jwt"
)

// bcryptCost = 12: balance giữa security và performance
var bcryptCost = 12

// FailedLoginReporter đẩy sự kiện sai mật khẩu sang worker (đếm + khoá tài khoản)
type FailedLoginReporter interface {
	ReportFailedLogin(ctx context.Context, payload shared.FailedLoginPayload) error
}

// userService implement user.Service interface
type userService struct {
	repo     user.Repository
	jwt      *jwt.Manager
	cache    cache.Cache         // optional: kiểm tra account_locked
	failures FailedLoginReporter // optional
}

// NewUserService tạo service instance
func NewUserService(repo user.Repository, jwtManager *jwt.Manager, cache cache.Cache, failures FailedLoginReporter) user.Service {
	return &userService{
		repo:     repo,
		jwt:      jwtManager,
		cache:    cache,
		failures: failures,
	}
}

// ========================================
// AUTHENTICATION
// ========================================

func (s *userService) Login(ctx context.Context, req user.LoginRequest, ipAddress string) (*user.LoginResponse, error) {
	// 1. VALIDATE INPUT
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. FIND USER BY EMAIL
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			// Không expose "email not found"
			return nil, user.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	// 3. CHECK LOCK + STATUS
	if s.isLocked(ctx, u.ID) {
		return nil, user.ErrAccountLocked
	}
	if !u.IsActive {
		return nil, user.ErrUserInactive
	}

	// 4. VERIFY PASSWORD
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		s.reportFailure(ctx, u.ID, ipAddress)
		return nil, user.ErrInvalidCredentials
	}

	// 5. GENERATE JWT
	token, expiresAt, err := s.jwt.GenerateAccessToken(u.ID.String(), u.Email)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	// 6. UPDATE LAST LOGIN (lỗi không chặn đăng nhập)
	if err := s.repo.UpdateLastLogin(ctx, u.ID); err != nil {
		log.Warn().Err(err).Str("user_id", u.ID.String()).Msg("failed to update last login")
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, fmt.Sprintf(shared.CacheKeyFailedLogin, u.ID)); err != nil {
			log.Warn().Err(err).Str("user_id", u.ID.String()).Msg("failed to clear failed-login counter")
		}
	}

	log.Info().
		Str("user_id", u.ID.String()).
		Str("role", u.Role.String()).
		Msg("user logged in")

	return &user.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        u.ToDTO(),
	}, nil
}

func (s *userService) ResolveActor(ctx context.Context, userID uuid.UUID) (workflow.Actor, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return workflow.Guest(), user.ErrUnauthorized
		}
		return workflow.Guest(), workflow.Storage("resolve actor", err)
	}
	if !u.IsActive {
		return workflow.Guest(), user.ErrUserInactive
	}
	if !u.Role.IsValid() {
		return workflow.Guest(), user.ErrInvalidRole
	}
	return u.Actor(), nil
}

func (s *userService) isLocked(ctx context.Context, userID uuid.UUID) bool {
	if s.cache == nil {
		return false
	}
	locked, err := s.cache.Exists(ctx, fmt.Sprintf(shared.CacheKeyAccountLocked, userID))
	if err != nil {
		log.Warn().Err(err).Msg("failed to read account lock")
		return false
	}
	return locked
}

func (s *userService) reportFailure(ctx context.Context, userID uuid.UUID, ip string) {
	if s.failures == nil {
		return
	}
	err := s.failures.ReportFailedLogin(ctx, shared.FailedLoginPayload{
		UserID:    userID.String(),
		IPAddress: ip,
		Timestamp: time.Now(),
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to report failed login")
	}
}

// ========================================
// PROFILE
// ========================================

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*user.UserDTO, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, s.notFound(userID, err)
	}
	dto := u.ToDTO()
	return &dto, nil
}

// ========================================
// ADMIN FUNCTIONS
// ========================================

func (s *userService) ListUsers(ctx context.Context, actor workflow.Actor, req user.ListUsersRequest) (*user.ListUsersResponse, error) {
	if err := workflow.Authorize(actor.Role, workflow.ActionManageUsers, "", false); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	users, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, workflow.Storage("list users", err)
	}

	dtos := make([]user.UserDTO, len(users))
	for i := range users {
		dtos[i] = users[i].ToDTO()
	}

	return &user.ListUsersResponse{
		Users:      dtos,
		Page:       req.Page,
		Limit:      req.Limit,
		Total:      total,
		TotalPages: (total + req.Limit - 1) / req.Limit,
	}, nil
}

func (s *userService) CreateUser(ctx context.Context, actor workflow.Actor, req user.CreateUserRequest) (*user.UserDTO, error) {
	if err := workflow.Authorize(actor.Role, workflow.ActionManageUsers, "", false); err != nil {
		return nil, err
	}
	dto, err := s.create(ctx, req)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", dto.ID.String()).
		Str("role", dto.Role.String()).
		Str("actor_id", actor.ID.String()).
		Msg("user created")
	return dto, nil
}

// SetRole: chỉ redaktur, không gán guest, không tự đổi role của chính mình
func (s *userService) SetRole(ctx context.Context, actor workflow.Actor, userID uuid.UUID, req user.UpdateRoleRequest) (*user.UserDTO, error) {
	if err := workflow.Authorize(actor.Role, workflow.ActionManageUsers, "", false); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if userID == actor.ID {
		return nil, user.ErrCannotChangeOwnRole
	}

	role, err := workflow.ParseRole(req.Role)
	if err != nil || !role.IsAssignable() {
		return nil, user.ErrInvalidRole
	}

	if err := s.repo.UpdateRole(ctx, userID, role); err != nil {
		return nil, s.notFound(userID, err)
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, s.notFound(userID, err)
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("role", role.String()).
		Str("actor_id", actor.ID.String()).
		Msg("user role changed")

	dto := u.ToDTO()
	return &dto, nil
}

func (s *userService) Bootstrap(ctx context.Context, req user.CreateUserRequest) (*user.UserDTO, bool, error) {
	req.Role = string(workflow.RoleRedaktur)

	n, err := s.repo.CountByRole(ctx, workflow.RoleRedaktur)
	if err != nil {
		return nil, false, workflow.Storage("count redaktur", err)
	}
	if n > 0 {
		return nil, false, nil
	}

	dto, err := s.create(ctx, req)
	if err != nil {
		return nil, false, err
	}
	return dto, true, nil
}

func (s *userService) create(ctx context.Context, req user.CreateUserRequest) (*user.UserDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	role, _ := workflow.ParseRole(req.Role)

	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, workflow.Storage("check email exists", err)
	}
	if exists {
		return nil, user.ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	u := &user.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, workflow.Storage("create user", err)
	}

	dto := u.ToDTO()
	return &dto, nil
}

func (s *userService) notFound(id uuid.UUID, err error) error {
	if errors.Is(err, user.ErrUserNotFound) {
		return &workflow.NotFoundError{Kind: "user", ID: id}
	}
	return workflow.Storage("user store", err)
}
