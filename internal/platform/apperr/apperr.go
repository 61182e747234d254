// Copyright (c) 2026 Urban Atelier. All rights reserved.

/*
Package apperr defines the centralized error taxonomy for the catalog engine.

Every error that crosses a package boundary is wrapped as an [AppError] with a
machine-readable code, so callers can branch on the class of failure without
string matching.

Taxonomy:

  - CONFIGURATION_ERROR: missing/unreadable/malformed session configuration.
  - CONNECTION_ERROR: the store is unreachable or rejected credentials.
  - SCHEMA_VALIDATION: a request referenced an unknown table or column. Raised
    before any statement reaches the connection; always a programming error.
  - QUERY_ERROR: the store rejected a well-formed statement (constraint
    violation, type mismatch). The enclosing transaction is rolled back.
  - FETCH_ERROR: reading results from an executed statement failed.
  - TRANSACTION_ERROR: commit or rollback itself failed. The session state is
    suspect afterwards.
  - NOT_FOUND / CONFLICT / VALIDATION_ERROR: domain-level outcomes.

The Cause field is for logging only and should never be shown to end users.
*/
package apperr

import (
	"errors"
	"fmt"
)

// Error codes for the catalog engine.
const (
	CodeConfiguration    = "CONFIGURATION_ERROR"
	CodeConnection       = "CONNECTION_ERROR"
	CodeSchemaValidation = "SCHEMA_VALIDATION"
	CodeQuery            = "QUERY_ERROR"
	CodeFetch            = "FETCH_ERROR"
	CodeTransaction      = "TRANSACTION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeValidation       = "VALIDATION_ERROR"
)

// AppError is the canonical error type for the catalog engine.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND").
	Code string `json:"code"`
	// Message is a human-readable description of the failure.
	Message string `json:"error"`
	// Cause is the underlying error, kept for logging and unwrapping.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR values.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the record field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Infrastructure Errors

// Configuration creates a CONFIGURATION_ERROR. Fatal before any connection
// attempt is made.
func Configuration(message string, cause error) *AppError {
	return &AppError{Code: CodeConfiguration, Message: message, Cause: cause}
}

// Connection creates a CONNECTION_ERROR for an unreachable or refusing store.
func Connection(cause error) *AppError {
	return &AppError{Code: CodeConnection, Message: "database connection failed", Cause: cause}
}

// SchemaValidation creates a SCHEMA_VALIDATION error for a request that
// references an unknown table or column. Never retried.
func SchemaValidation(format string, args ...any) *AppError {
	return &AppError{Code: CodeSchemaValidation, Message: fmt.Sprintf(format, args...)}
}

// Query creates a QUERY_ERROR for a statement the store rejected.
func Query(action string, cause error) *AppError {
	return &AppError{Code: CodeQuery, Message: "query failed: " + action, Cause: cause}
}

// Fetch creates a FETCH_ERROR for a result set that could not be read.
func Fetch(action string, cause error) *AppError {
	return &AppError{Code: CodeFetch, Message: "fetch failed: " + action, Cause: cause}
}

// Transaction creates a TRANSACTION_ERROR for a failed commit or rollback.
// The stage names the operation that failed ("begin", "commit", "rollback").
func Transaction(stage string, cause error) *AppError {
	return &AppError{Code: CodeTransaction, Message: "transaction " + stage + " failed", Cause: cause}
}

// # Domain Outcomes

// NotFound creates a NOT_FOUND error for a named resource.
//
// Example:
//
//	apperr.NotFound("product") // "product not found"
func NotFound(resource string) *AppError {
	return &AppError{Code: CodeNotFound, Message: resource + " not found"}
}

// Conflict creates a CONFLICT error for duplicate or constraint violations.
func Conflict(message string, cause error) *AppError {
	return &AppError{Code: CodeConflict, Message: message, Cause: cause}
}

// Validation creates a VALIDATION_ERROR with optional per-field details.
func Validation(message string, details ...FieldError) *AppError {
	return &AppError{Code: CodeValidation, Message: message, Details: details}
}

// # Helpers

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err (or any error in its chain) is an [*AppError]
// carrying the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}

// IsNotFound reports whether err represents a missing resource.
func IsNotFound(err error) bool { return HasCode(err, CodeNotFound) }

// IsConflict reports whether err represents a constraint conflict.
func IsConflict(err error) bool { return HasCode(err, CodeConflict) }
