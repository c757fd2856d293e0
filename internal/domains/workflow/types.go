package workflow

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// =====================================================
// ROLE
// =====================================================

// Role là vai trò biên tập của một user. Mỗi user có đúng 1 role tại một thời điểm.
type Role string

const (
	RoleGuest    Role = "guest"    // Chưa đăng nhập
	RoleWartawan Role = "wartawan" // Reporter: tạo và gửi bài
	RoleEditor   Role = "editor"   // Duyệt vòng 1
	RoleRedaktur Role = "redaktur" // Duyệt cuối, publish, quản lý user
)

// AllRoles returns every role, guest included.
func AllRoles() []Role {
	return []Role{RoleGuest, RoleWartawan, RoleEditor, RoleRedaktur}
}

// AssignableRoles returns the roles that can be stored on a user account.
// Guest only represents an anonymous reader.
func AssignableRoles() []Role {
	return []Role{RoleWartawan, RoleEditor, RoleRedaktur}
}

func (r Role) IsValid() bool {
	switch r {
	case RoleGuest, RoleWartawan, RoleEditor, RoleRedaktur:
		return true
	}
	return false
}

func (r Role) IsAssignable() bool {
	return r.IsValid() && r != RoleGuest
}

func (r Role) String() string {
	return string(r)
}

// ParseRole chuẩn hoá chuỗi role (trim + lowercase) và kiểm tra hợp lệ
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// =====================================================
// STATUS
// =====================================================

// Status là trạng thái của bài viết trong workflow.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusPendingEditor Status = "pending_editor"
	StatusPendingAdmin  Status = "pending_admin"
	StatusPublished     Status = "published"
)

// AllStatuses returns every workflow state in pipeline order.
func AllStatuses() []Status {
	return []Status{StatusDraft, StatusPendingEditor, StatusPendingAdmin, StatusPublished}
}

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPendingEditor, StatusPendingAdmin, StatusPublished:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus accepts only the live workflow states. The legacy "rejected"
// value is refused: rejections go back to draft.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("unknown article status %q", s)
	}
	return st, nil
}

// =====================================================
// ACTION
// =====================================================

// Action là thao tác mà một actor có thể yêu cầu trên bài viết.
type Action string

const (
	ActionCreate                Action = "create"
	ActionSubmitForEditorReview Action = "submitForEditorReview"
	ActionApproveAsEditor       Action = "approveAsEditor"
	ActionApproveAsRedaktur     Action = "approveAsRedaktur"
	ActionReject                Action = "reject"
	ActionEditContent           Action = "editContent"
	ActionViewAny               Action = "viewAny"
	ActionDeleteAny             Action = "deleteAny"
	ActionManageUsers           Action = "manageUsers"
)

// AllActions returns every action known to the permission model.
func AllActions() []Action {
	return []Action{
		ActionCreate,
		ActionSubmitForEditorReview,
		ActionApproveAsEditor,
		ActionApproveAsRedaktur,
		ActionReject,
		ActionEditContent,
		ActionViewAny,
		ActionDeleteAny,
		ActionManageUsers,
	}
}

func (a Action) String() string {
	return string(a)
}

// =====================================================
// ACTOR
// =====================================================

// Actor là người đang thực hiện request, được resolve từ identity provider
// cho mỗi request. Guest có ID = uuid.Nil.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// Guest returns the anonymous actor.
func Guest() Actor {
	return Actor{ID: uuid.Nil, Role: RoleGuest}
}

func (a Actor) IsAuthenticated() bool {
	return a.ID != uuid.Nil && a.Role != RoleGuest
}

// Owns reports whether the actor authored the article.
func (a Actor) Owns(authorID uuid.UUID) bool {
	return a.IsAuthenticated() && a.ID == authorID
}
