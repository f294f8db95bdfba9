package models

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the failure category surfaced at the HTTP boundary. KindProvider
// never reaches a response: the generation layer converts provider failures
// into fallback data before the handler sees them.
type Kind string

const (
	KindValidation    Kind = "VALIDATION_ERROR"
	KindAuth          Kind = "AUTH_ERROR"
	KindNotFound      Kind = "NOT_FOUND"
	KindConflict      Kind = "CONFLICT"
	KindQuotaExceeded Kind = "QUOTA_EXCEEDED"
	KindExtraction    Kind = "EXTRACTION_ERROR"
	KindProvider      Kind = "PROVIDER_ERROR"
	KindInternal      Kind = "INTERNAL_ERROR"
)

type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func NewValidationError(format string, args ...any) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewAuthError(msg string) *AppError {
	return &AppError{Kind: KindAuth, Message: msg}
}

func NewNotFoundError(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Message: msg}
}

func NewConflictError(msg string) *AppError {
	return &AppError{Kind: KindConflict, Message: msg}
}

func NewQuotaExceededError(limit int) *AppError {
	return &AppError{
		Kind:    KindQuotaExceeded,
		Message: fmt.Sprintf("monthly limit of %d AI requests reached", limit),
	}
}

func NewExtractionError(msg string, err error) *AppError {
	return &AppError{Kind: KindExtraction, Message: msg, Err: err}
}

func NewInternalError(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "internal server error", Err: err}
}

// HTTPStatus maps an error to its response status class. Unknown errors are
// treated as internal.
func HTTPStatus(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindQuotaExceeded:
		return http.StatusTooManyRequests
	case KindExtraction:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
