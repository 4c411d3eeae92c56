package serverutils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type ErrorKind string

const (
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindNotFound        ErrorKind = "not_found"
	KindValidation      ErrorKind = "validation"
	KindUpstream        ErrorKind = "upstream"
	KindRateLimited     ErrorKind = "rate_limited"
	KindUnavailable     ErrorKind = "unavailable"
	KindPersistence     ErrorKind = "persistence"
)

// AppError carries the HTTP status and user-facing message of a failure.
// Err keeps the underlying cause for logs and errors.Is/As.
type AppError struct {
	Code    int
	Kind    ErrorKind
	Message string
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

func Unauthenticated(message string) *AppError {
	return &AppError{Code: fiber.StatusUnauthorized, Kind: KindUnauthenticated, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Code: fiber.StatusNotFound, Kind: KindNotFound, Message: message}
}

func Validation(message string) *AppError {
	return &AppError{Code: fiber.StatusBadRequest, Kind: KindValidation, Message: message}
}

func Upstream(message string, err error) *AppError {
	return &AppError{Code: fiber.StatusBadGateway, Kind: KindUpstream, Message: message, Err: err}
}

func TooManyRequests(message string, err error) *AppError {
	return &AppError{Code: fiber.StatusTooManyRequests, Kind: KindRateLimited, Message: message, Err: err}
}

func Unavailable(message string, err error) *AppError {
	return &AppError{Code: fiber.StatusServiceUnavailable, Kind: KindUnavailable, Message: message, Err: err}
}

func Persistence(message string, err error) *AppError {
	return &AppError{Code: fiber.StatusInternalServerError, Kind: KindPersistence, Message: message, Err: err}
}

// KindOf returns the kind of the first AppError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
