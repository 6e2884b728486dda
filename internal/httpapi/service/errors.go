package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers any referenced resource that does not exist.
	ErrNotFound = errors.New("resource not found")

	// Catalog
	ErrSlugTaken = errors.New("slug already in use")

	// Reviews
	ErrAlreadyReviewed = errors.New("you have already reviewed this title")

	// Accounts
	ErrUsernameTaken  = errors.New("username already in use")
	ErrEmailTaken     = errors.New("email already in use")
	ErrInvalidCode    = errors.New("invalid or expired confirmation code")
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrInvalidRefresh = errors.New("invalid refresh token")
)

// FieldError is a validation failure tied to a single request field, so
// handlers can report per-field detail the way uniqueness conflicts and
// pattern violations require.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewFieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}
