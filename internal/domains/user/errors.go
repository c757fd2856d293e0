package user

import "errors"

// Repository-level errors
var (
	// Not Found
	ErrUserNotFound = errors.New("user not found")

	// Conflict
	ErrEmailAlreadyExists = errors.New("email already exists")

	// Invalid State
	ErrUserInactive = errors.New("user account is inactive")
)

// Service-level (Business logic) errors
var (
	// Authentication
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account has been locked")
	ErrUnauthorized       = errors.New("unauthorized access")

	// Authorization
	ErrInvalidRole         = errors.New("invalid user role")
	ErrCannotChangeOwnRole = errors.New("cannot change your own role")
)
