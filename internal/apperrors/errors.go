// Package apperrors defines the error taxonomy shared by services and handlers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP layer and for logging.
type Kind string

const (
	KindValidation             Kind = "VALIDATION"
	KindUnauthenticated        Kind = "UNAUTHENTICATED"
	KindNotFoundOrUnauthorized Kind = "NOT_FOUND_OR_UNAUTHORIZED"
	KindInvalidCredentials     Kind = "INVALID_CREDENTIALS"
	KindAIService              Kind = "AI_SERVICE"
	KindAIResponse             Kind = "AI_RESPONSE"
	KindPersistence            Kind = "PERSISTENCE"
	KindRateLimited            Kind = "RATE_LIMITED"
	KindInternal               Kind = "INTERNAL"
)

// Subkind codes carried in AppError.Code.
const (
	CodeAIConfiguration = "AI_CONFIGURATION"
	CodeAIBadRequest    = "AI_BAD_REQUEST"
	CodeAIAuth          = "AI_AUTH"
	CodeAIRateLimited   = "AI_RATE_LIMITED"
	CodeAIUnavailable   = "AI_UNAVAILABLE"
	CodeAICanceled      = "AI_CANCELED"

	CodeDuplicateKey = "DUPLICATE_KEY"
	CodeStoreFailure = "STORE_FAILURE"
)

// AppError is an application error with a kind, a user-facing message and an
// optional internal cause that is logged but never sent to the client.
type AppError struct {
	Kind    Kind
	Message string
	Code    string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause attaches the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// HTTPStatus maps the error to a response status.
func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindInvalidCredentials:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFoundOrUnauthorized:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindAIService:
		if e.Code == CodeAIRateLimited {
			return http.StatusTooManyRequests
		}
		return http.StatusInternalServerError
	case KindPersistence:
		if e.Code == CodeDuplicateKey {
			return http.StatusBadRequest
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a client input error.
func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// NewUnauthenticatedError creates a missing/invalid token error.
func NewUnauthenticatedError(message string) *AppError {
	if message == "" {
		message = "Invalid token"
	}
	return &AppError{Kind: KindUnauthenticated, Message: message}
}

// NewNotFoundOrUnauthorizedError is returned both for missing entries and for
// entries owned by someone else.
func NewNotFoundOrUnauthorizedError() *AppError {
	return &AppError{Kind: KindNotFoundOrUnauthorized, Message: "Entry not found or unauthorized"}
}

// NewInvalidCredentialsError is returned for unknown email and wrong password alike.
func NewInvalidCredentialsError() *AppError {
	return &AppError{Kind: KindInvalidCredentials, Message: "Invalid email or password"}
}

// NewAIServiceError creates an upstream transport/auth/limit error with the given subkind code.
func NewAIServiceError(code, message string) *AppError {
	return &AppError{Kind: KindAIService, Code: code, Message: message}
}

// NewAIResponseError creates an error for unusable model output.
func NewAIResponseError(message string) *AppError {
	return &AppError{Kind: KindAIResponse, Message: message}
}

// NewDuplicateKeyError creates a store uniqueness violation error.
func NewDuplicateKeyError(message string) *AppError {
	return &AppError{Kind: KindPersistence, Code: CodeDuplicateKey, Message: message}
}

// NewPersistenceError wraps a store failure.
func NewPersistenceError(operation string, err error) *AppError {
	return &AppError{
		Kind:    KindPersistence,
		Code:    CodeStoreFailure,
		Message: fmt.Sprintf("database operation '%s' failed", operation),
		Cause:   err,
	}
}

// NewRateLimitedError creates a local rate limit error.
func NewRateLimitedError(message string) *AppError {
	return &AppError{Kind: KindRateLimited, Message: message}
}

// NewInternalError creates a generic server error.
func NewInternalError(message string) *AppError {
	return &AppError{Kind: KindInternal, Message: message}
}

// Get extracts an AppError from an error chain.
func Get(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsKind reports whether err carries an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr := Get(err)
	return appErr != nil && appErr.Kind == kind
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	appErr := Get(err)
	return appErr != nil && appErr.Code == code
}
