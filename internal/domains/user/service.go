package user

import (
	"context"

	"github.com/google/uuid"

	"newsroom-backend/internal/domains/workflow"
)

// Service định nghĩa business logic layer contract.
// Đây cũng là identity/role provider của workflow.
type Service interface {
	// Authentication
	Login(ctx context.Context, req LoginRequest, ipAddress string) (*LoginResponse, error)

	// ResolveActor đọc lại role từ DB cho mỗi request (không tin role trong token)
	ResolveActor(ctx context.Context, userID uuid.UUID) (workflow.Actor, error)

	// User Profile
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)

	// Admin Functions (redaktur)
	ListUsers(ctx context.Context, actor workflow.Actor, req ListUsersRequest) (*ListUsersResponse, error)
	CreateUser(ctx context.Context, actor workflow.Actor, req CreateUserRequest) (*UserDTO, error)
	SetRole(ctx context.Context, actor workflow.Actor, userID uuid.UUID, req UpdateRoleRequest) (*UserDTO, error)

	// Bootstrap tạo redaktur đầu tiên nếu hệ thống chưa có redaktur nào.
	// Returns created=false khi đã có redaktur.
	Bootstrap(ctx context.Context, req CreateUserRequest) (dto *UserDTO, created bool, err error)
}
