package user

import (
	"context"

	"github.com/google/uuid"

	"newsroom-backend/internal/domains/workflow"
)

// Repository định nghĩa contract cho data access layer.
// Postgres cho production, in-memory cho APP_STORAGE=memory, mock trong unit tests.
type Repository interface {
	// ========================================
	// BASIC CRUD
	// ========================================

	// Create tạo user mới
	// Returns: ErrEmailAlreadyExists nếu email đã tồn tại
	Create(ctx context.Context, user *User) error

	// FindByID tìm user theo ID
	// Returns: ErrUserNotFound nếu không tìm thấy
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail tìm user theo email (dùng cho login)
	// Returns: ErrUserNotFound nếu không tìm thấy
	FindByEmail(ctx context.Context, email string) (*User, error)

	// UpdateLastLogin cập nhật last_login_at
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error

	// ========================================
	// ADMIN FUNCTIONS
	// ========================================

	// List trả về danh sách users với filters và pagination
	List(ctx context.Context, req ListUsersRequest) ([]User, int, error)

	// UpdateRole cập nhật role của user
	// Returns: ErrUserNotFound nếu user không tồn tại
	UpdateRole(ctx context.Context, userID uuid.UUID, role workflow.Role) error

	// ========================================
	// UTILITY
	// ========================================

	// ExistsByEmail kiểm tra email đã tồn tại chưa
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// CountByRole đếm số user theo role
	CountByRole(ctx context.Context, role workflow.Role) (int, error)
}
