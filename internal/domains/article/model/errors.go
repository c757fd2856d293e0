package model

import (
	"errors"
	"fmt"
)

// Error codes (workflow errors dùng WFxxx, xem package workflow)
const (
	ErrCodeValidation      = "ART001"
	ErrCodeUnauthenticated = "ART002"
	ErrCodeReasonRequired  = "ART003"
)

// Errors
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("authentication required")
	ErrReasonRequired  = errors.New("a rejection reason is required")
	ErrNothingToUpdate = errors.New("no content field to update")
)

// ArticleError custom error type
type ArticleError struct {
	Code    string
	Message string
	Err     error
}

func (e *ArticleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ArticleError) Unwrap() error { return e.Err }

// Error constructors
func NewValidationError(err error) *ArticleError {
	return &ArticleError{
		Code:    ErrCodeValidation,
		Message: "Invalid article data",
		Err:     fmt.Errorf("%w: %v", ErrValidation, err),
	}
}

func NewUnauthenticatedError() *ArticleError {
	return &ArticleError{
		Code:    ErrCodeUnauthenticated,
		Message: "You must be logged in",
		Err:     ErrUnauthenticated,
	}
}

func NewReasonRequiredError() *ArticleError {
	return &ArticleError{
		Code:    ErrCodeReasonRequired,
		Message: "Rejection needs a reason",
		Err:     ErrReasonRequired,
	}
}
