// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenRevoked  = errors.New("token revoked")
	ErrTokenInvalid  = errors.New("token invalid")
)

// AppError is an error with a stable machine-readable code and an HTTP
// status, suitable for rendering directly to API clients.
type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func NewAppError(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

func BadRequestError(message string) *AppError {
	return NewAppError("BAD_REQUEST", message, http.StatusBadRequest)
}

func UnauthorizedError(message string) *AppError {
	return NewAppError("UNAUTHORIZED", message, http.StatusUnauthorized)
}

func ForbiddenError(message string) *AppError {
	return NewAppError("FORBIDDEN", message, http.StatusForbidden)
}

func NotFoundError(resource string) *AppError {
	return NewAppError("NOT_FOUND", resource+" not found", http.StatusNotFound)
}

func TokenExpiredError() *AppError {
	return NewAppError(
		"TOKEN_EXPIRED",
		"access token has expired",
		http.StatusUnauthorized,
	)
}

func TokenRevokedError() *AppError {
	return NewAppError(
		"TOKEN_REVOKED",
		"access token has been revoked",
		http.StatusUnauthorized,
	)
}

func TokenInvalidError() *AppError {
	return NewAppError(
		"TOKEN_INVALID",
		"access token is invalid",
		http.StatusUnauthorized,
	)
}
