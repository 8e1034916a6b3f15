package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to callers.
const (
	CodeValidation           = "VALIDATION_FAILED"
	CodeNotFound             = "NOT_FOUND"
	CodeValidationStale      = "VALIDATION_STALE"
	CodeTransientFailure     = "TRANSIENT_FAILURE"
	CodePersistenceWarning   = "PERSISTENCE_WARNING"
	CodeAlreadyReplied       = "ALREADY_REPLIED"
	CodeActionInFlight       = "ACTION_IN_FLIGHT"
	CodeConfirmationRequired = "CONFIRMATION_REQUIRED"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeInternal             = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewValidationStale reports a target that vanished from the caller's working copy.
func NewValidationStale(id string) error {
	return NewDomainError(CodeValidationStale, fmt.Sprintf("query %s is no longer listed", id), http.StatusNotFound, map[string]any{"id": id})
}

// NewTransientFailure reports a retryable backend hiccup.
func NewTransientFailure(message string) error {
	return NewDomainError(CodeTransientFailure, message, http.StatusServiceUnavailable, nil)
}

// NewPersistenceWarning reports a mirror write failure. The in-memory mutation
// that preceded it still applies.
func NewPersistenceWarning(err error) error {
	return &DomainError{
		Code:       CodePersistenceWarning,
		Message:    "changes might not persist",
		HTTPStatus: http.StatusOK,
		Err:        err,
	}
}

func NewAlreadyReplied(id string) error {
	return NewDomainError(CodeAlreadyReplied, fmt.Sprintf("query %s is already replied", id), http.StatusConflict, map[string]any{"id": id})
}

func NewActionInFlight(id string) error {
	return NewDomainError(CodeActionInFlight, fmt.Sprintf("an action for query %s is already in progress", id), http.StatusConflict, map[string]any{"id": id})
}

func NewConfirmationRequired(id string) error {
	return NewDomainError(CodeConfirmationRequired, fmt.Sprintf("deleting query %s requires confirmation", id), http.StatusPreconditionRequired, map[string]any{"id": id})
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// CodeOf returns the domain code carried by err, or "" when err is not a DomainError.
func CodeOf(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsNotFound treats stale working-copy targets the same as missing ones.
func IsNotFound(err error) bool {
	code := CodeOf(err)
	return code == CodeNotFound || code == CodeValidationStale
}

func IsTransient(err error) bool {
	return CodeOf(err) == CodeTransientFailure
}

func IsPersistenceWarning(err error) bool {
	return CodeOf(err) == CodePersistenceWarning
}
