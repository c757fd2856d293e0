package user

import (
	"time"

	"github.com/google/uuid"

	"newsroom-backend/internal/domains/workflow"
)

// User là domain entity - ánh xạ 1:1 với bảng users trong DB.
// Role ở đây là nguồn sự thật duy nhất cho quyền của user.
type User struct {
	// Identity
	ID    uuid.UUID `db:"id" json:"id"`
	Email string    `db:"email" json:"email"`

	// Authentication
	PasswordHash string `db:"password_hash" json:"-"` // Never expose in JSON

	// Profile
	FullName string `db:"full_name" json:"full_name"`

	// Authorization
	Role     workflow.Role `db:"role" json:"role"`
	IsActive bool          `db:"is_active" json:"is_active"`

	// Activity
	LastLoginAt *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`

	// Timestamps
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Actor converts the account into the workflow's actor value.
// Tài khoản bị khoá được coi như guest.
func (u *User) Actor() workflow.Actor {
	if u == nil || !u.IsActive {
		return workflow.Guest()
	}
	return workflow.Actor{ID: u.ID, Role: u.Role}
}

// ToDTO converts entity to DTO (không expose sensitive data)
func (u *User) ToDTO() UserDTO {
	return UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
