// Package errs defines the application error kinds shared by services and
// handlers.
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

type Kind string

const (
	KindValidation     Kind = "validation_error"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindAuthentication Kind = "authentication_error"
	KindForbidden      Kind = "forbidden"
)

type AppError struct {
	Kind    Kind
	Message string
	Details string
	// Field is set for validation errors tied to one form field.
	Field string
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func Validation(field, message string) *AppError {
	return &AppError{Kind: KindValidation, Field: field, Message: message}
}

func NotFound(format string, args ...any) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(message string, cause error) *AppError {
	e := &AppError{Kind: KindConflict, Message: message}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// ErrInvalidCredentials is returned for every failed login, whether the
// username exists or not.
var ErrInvalidCredentials = &AppError{Kind: KindAuthentication, Message: "invalid username or password"}

func Forbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func is(err error, k Kind) bool {
	appErr := As(err)
	return appErr != nil && appErr.Kind == k
}

func IsValidation(err error) bool     { return is(err, KindValidation) }
func IsNotFound(err error) bool       { return is(err, KindNotFound) }
func IsConflict(err error) bool       { return is(err, KindConflict) }
func IsAuthentication(err error) bool { return is(err, KindAuthentication) }
func IsForbidden(err error) bool      { return is(err, KindForbidden) }

// StatusCode maps err to the HTTP status a handler should answer with.
func StatusCode(err error) int {
	appErr := As(err)
	if appErr == nil {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// Message is the user-facing text for err. Unknown errors are not exposed.
func Message(err error) string {
	appErr := As(err)
	if appErr == nil {
		return "internal error"
	}
	if appErr.Details != "" {
		return appErr.Message + ": " + appErr.Details
	}
	return appErr.Message
}

// IsDuplicate reports whether err is a unique-constraint violation from any
// of the supported drivers.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "violates unique constraint")
}

// FromDB converts duplicate-key failures into conflicts and leaves every
// other error untouched.
func FromDB(err error, message string) error {
	if err == nil {
		return nil
	}
	if As(err) != nil {
		return err
	}
	if IsDuplicate(err) {
		return Conflict(message, err)
	}
	return err
}
