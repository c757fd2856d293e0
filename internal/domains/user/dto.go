package user

import (
	"errors"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"newsroom-backend/internal/domains/workflow"
)

// ========================================
// AUTH DTOs
// ========================================

// LoginRequest - đăng nhập bằng email + password
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required),
	)
}

// LoginResponse - JWT access token
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserDTO   `json:"user"`
}

// ========================================
// ADMIN DTOs (redaktur)
// ========================================

// CreateUserRequest - redaktur tạo tài khoản cho wartawan/editor/redaktur
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.EmailFormat.Error("invalid email format"),
			validation.Length(5, 255),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be 8-128 characters"),
			validation.Match(regexp.MustCompile(`[A-Za-z]`)).Error("password must contain a letter"),
			validation.Match(regexp.MustCompile(`[0-9]`)).Error("password must contain a number"),
		),
		validation.Field(&r.FullName,
			validation.Required.Error("full name is required"),
			validation.Length(2, 100),
		),
		validation.Field(&r.Role,
			validation.Required.Error("role is required"),
			validation.By(assignableRole),
		),
	)
}

// UpdateRoleRequest - đổi role (redaktur only)
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (r UpdateRoleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Role, validation.Required, validation.By(assignableRole)),
	)
}

// ListUsersRequest - filter + pagination
type ListUsersRequest struct {
	Role   string `form:"role"`
	Search string `form:"search"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

func (r *ListUsersRequest) Validate() error {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 || r.Limit > 100 {
		r.Limit = 20
	}
	r.Search = strings.TrimSpace(r.Search)
	return validation.ValidateStruct(r,
		validation.Field(&r.Role, validation.By(func(value interface{}) error {
			if s, _ := value.(string); s != "" {
				if _, err := workflow.ParseRole(s); err != nil {
					return err
				}
			}
			return nil
		})),
	)
}

// Offset computes the SQL offset.
func (r ListUsersRequest) Offset() int {
	return (r.Page - 1) * r.Limit
}

func assignableRole(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	role, err := workflow.ParseRole(s)
	if err != nil {
		return err
	}
	if !role.IsAssignable() {
		return errors.New("role cannot be assigned")
	}
	return nil
}

// ========================================
// RESPONSE DTOs
// ========================================

// UserDTO - public representation của user
type UserDTO struct {
	ID          uuid.UUID     `json:"id"`
	Email       string        `json:"email"`
	FullName    string        `json:"full_name"`
	Role        workflow.Role `json:"role"`
	IsActive    bool          `json:"is_active"`
	LastLoginAt *time.Time    `json:"last_login_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// ListUsersResponse - paginated users
type ListUsersResponse struct {
	Users      []UserDTO `json:"users"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	Total      int       `json:"total"`
	TotalPages int       `json:"total_pages"`
}
