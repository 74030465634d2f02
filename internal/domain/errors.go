// Package domain defines the core types and errors shared by every layer of
// the extraction service.
package domain

import "fmt"

// AuthError indicates the service could not obtain a credential for the BI
// service. Fatal to the whole run.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// ExtractionError indicates a query-execution call against the BI service
// failed. Scoped to one query; siblings continue.
type ExtractionError struct {
	Message string
}

func (e *ExtractionError) Error() string { return e.Message }

// PersistenceError indicates an artifact upload failed. Fatal to that
// query's contribution only.
type PersistenceError struct {
	Message string
}

func (e *PersistenceError) Error() string { return e.Message }

// IndexingError indicates the bulk document upload or index provisioning
// failed. Already-persisted artifacts remain valid.
type IndexingError struct {
	Message string
}

func (e *IndexingError) Error() string { return e.Message }

// ValidationError indicates invalid caller input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ErrAuth creates an AuthError with a formatted message.
func ErrAuth(format string, args ...interface{}) *AuthError {
	return &AuthError{Message: fmt.Sprintf(format, args...)}
}

// ErrExtraction creates an ExtractionError with a formatted message.
func ErrExtraction(format string, args ...interface{}) *ExtractionError {
	return &ExtractionError{Message: fmt.Sprintf(format, args...)}
}

// ErrPersistence creates a PersistenceError with a formatted message.
func ErrPersistence(format string, args ...interface{}) *PersistenceError {
	return &PersistenceError{Message: fmt.Sprintf(format, args...)}
}

// ErrIndexing creates an IndexingError with a formatted message.
func ErrIndexing(format string, args ...interface{}) *IndexingError {
	return &IndexingError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}
