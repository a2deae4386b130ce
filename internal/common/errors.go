package common

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound   = errors.New("resource not found")
	ErrConflict   = errors.New("conflict")
	ErrInternal   = errors.New("internal error")
	ErrDatabase   = errors.New("database error")
	ErrValidation = errors.New("validation failed")
	ErrRetryable  = errors.New("retryable conflict")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ConflictError reports a state transition that is not allowed right now,
// e.g. clocking in twice.
func ConflictError(message string) error {
	return NewAppError("CONFLICT", message, ErrConflict)
}

func NotFoundError(message string) error {
	return NewAppError("NOT_FOUND", message, ErrNotFound)
}

func NotFoundErrorf(format string, args ...interface{}) error {
	return NotFoundError(fmt.Sprintf(format, args...))
}

// InternalError wraps an unexpected failure. The cause is kept for logging
// and never rendered to callers.
func InternalError(message string, cause error) error {
	return NewAppError("INTERNAL", message, errors.Join(ErrInternal, cause))
}

// DatabaseError is an InternalError raised by the storage driver.
func DatabaseError(message string, cause error) error {
	return NewAppError("DATABASE", message, errors.Join(ErrInternal, ErrDatabase, cause))
}

// RetryableError marks a transaction conflict that can succeed if attempted again.
func RetryableError(message string, cause error) error {
	return NewAppError("RETRYABLE", message, errors.Join(ErrRetryable, cause))
}

func IsRetryable(err error) bool {
	return errors.Is(err, ErrRetryable)
}

// PublicMessage is the message safe to hand back to a caller.
func PublicMessage(err error) string {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return verrs.Error()
	}
	var appErr *AppError
	if errors.As(err, &appErr) && !errors.Is(err, ErrInternal) {
		return appErr.Message
	}
	if errors.Is(err, ErrValidation) {
		return err.Error()
	}
	return "internal server error"
}

// HTTPStatus maps the error taxonomy onto HTTP status codes.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRetryable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ToStatus converts an application error into a gRPC status error.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrValidation):
		return status.Error(codes.InvalidArgument, PublicMessage(err))
	case errors.Is(err, ErrConflict):
		return status.Error(codes.FailedPrecondition, PublicMessage(err))
	case errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, PublicMessage(err))
	case errors.Is(err, ErrRetryable):
		return status.Error(codes.Aborted, PublicMessage(err))
	default:
		return status.Error(codes.Internal, PublicMessage(err))
	}
}
