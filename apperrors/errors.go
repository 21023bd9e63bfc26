package apperrors

import (
	"errors"
	"fmt"
	"math"
	"time"
)

type AppError struct {
	Code       Code          `json:"code"`
	Message    string        `json:"message"`
	RetryAfter time.Duration `json:"-"`
	Cause      error         `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// RetryAfterSeconds rounds up so a pending window never reports zero.
func (e *AppError) RetryAfterSeconds() int {
	if e.RetryAfter <= 0 {
		return 0
	}
	return int(math.Ceil(e.RetryAfter.Seconds()))
}

func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

func NotAuthorized(msg string) *AppError {
	return New(CodeNotAuthorized, msg)
}

func NotFound(msg string) *AppError {
	return New(CodeNotFound, msg)
}

func InvalidPayload(msg string) *AppError {
	return New(CodeInvalidPayload, msg)
}

func Internal(cause error) *AppError {
	return Wrap(CodeInternal, "internal error", cause)
}

func RateLimited(retryAfter time.Duration) *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    "Too many messages, slow down",
		RetryAfter: retryAfter,
	}
}

// From normalises any error into an AppError; unknown errors become INTERNAL.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
