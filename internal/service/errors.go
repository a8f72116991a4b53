// Package service provides application-level services for managing users
// and their tasks. Services layer business rules (uniqueness, referential
// integrity, not-found enforcement) on top of the store interfaces.
package service

import (
	"errors"
	"fmt"

	"github.com/taskboardhq/taskboard-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
//
// Error handling principles:
//  1. Service methods return sentinel errors for expected error conditions.
//  2. Unexpected errors are wrapped in ServiceError.
//  3. Callers use errors.Is/errors.As to check for specific error conditions.
//  4. The API layer maps service errors to appropriate HTTP status codes.
var (
	// ErrUserNotFound indicates that the requested user does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrUserNotFound = errors.New("user not found")

	// ErrTaskNotFound indicates that the requested task does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrTaskNotFound = errors.New("task not found")

	// ErrEmailExists indicates that another user already uses the email.
	// API layer should map this to HTTP 409 Conflict.
	ErrEmailExists = errors.New("email already exists")

	// ErrOwnerNotFound indicates that a task referenced a user that does
	// not exist, on creation, reassignment or owner-filtered listing.
	// API layer should map this to HTTP 404 Not Found.
	ErrOwnerNotFound = errors.New("user not found for task")
)

// ServiceError wraps unexpected errors from a service with operation context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "create_user", "list_tasks")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// newServiceError wraps an error with operation context, passing service
// sentinels through unchanged and translating the corresponding store
// sentinels so callers only ever see service-level errors.
func newServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrTaskNotFound),
		errors.Is(err, ErrEmailExists),
		errors.Is(err, ErrOwnerNotFound):
		return err
	case errors.Is(err, store.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, store.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, store.ErrEmailExists):
		return ErrEmailExists
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
