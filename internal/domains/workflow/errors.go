package workflow

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error codes
const (
	ErrCodePermissionDenied       = "WF001"
	ErrCodeInvalidTransition      = "WF002"
	ErrCodeConcurrentModification = "WF003"
	ErrCodeNotFound               = "WF004"
	ErrCodeStorageFailure         = "WF005"
)

// Sentinels cho errors.Is
var (
	ErrPermissionDenied       = errors.New("permission denied")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrNotFound               = errors.New("not found")
	ErrStorageFailure         = errors.New("storage failure")
)

// PermissionDeniedError: actor không có quyền thực hiện action ở trạng thái hiện tại
type PermissionDeniedError struct {
	Action Action
	Role   Role
	Status Status // rỗng với các action không gắn với bài viết (create, manageUsers)
}

func (e *PermissionDeniedError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("permission denied: role %s cannot %s", e.Role, e.Action)
	}
	return fmt.Sprintf("permission denied: role %s cannot %s an article in %s", e.Role, e.Action, e.Status)
}

func (e *PermissionDeniedError) Is(target error) bool { return target == ErrPermissionDenied }
func (e *PermissionDeniedError) Code() string         { return ErrCodePermissionDenied }

// InvalidTransitionError: không có cạnh (from, action) trong state machine
type InvalidTransitionError struct {
	Action Action
	From   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s is not allowed from %s", e.Action, e.From)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }
func (e *InvalidTransitionError) Code() string         { return ErrCodeInvalidTransition }

// ConcurrentModificationError: CAS thất bại, bài viết đã bị người khác chuyển trạng thái
type ConcurrentModificationError struct {
	ID       uuid.UUID
	Expected Status
	Actual   Status
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("concurrent modification on article %s: expected %s, found %s", e.ID, e.Expected, e.Actual)
}

func (e *ConcurrentModificationError) Is(target error) bool {
	return target == ErrConcurrentModification
}
func (e *ConcurrentModificationError) Code() string { return ErrCodeConcurrentModification }

// NotFoundError: article hoặc user không tồn tại
type NotFoundError struct {
	Kind string // "article" | "user"
	ID   uuid.UUID
}

func (e *NotFoundError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "article"
	}
	return fmt.Sprintf("%s %s not found", kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
func (e *NotFoundError) Code() string         { return ErrCodeNotFound }

// StorageError wraps a collaborator failure verbatim.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error        { return e.Err }
func (e *StorageError) Is(target error) bool { return target == ErrStorageFailure }
func (e *StorageError) Code() string         { return ErrCodeStorageFailure }

// Storage wraps err as a StorageError unless it is already a workflow error.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsWorkflowError(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsWorkflowError reports whether err belongs to the workflow taxonomy.
func IsWorkflowError(err error) bool {
	return errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrConcurrentModification) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrStorageFailure)
}

// ErrorCode extracts the short code of a workflow error, "" otherwise.
func ErrorCode(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}
