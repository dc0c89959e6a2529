// Package domain defines core types, interfaces, and errors for the
// lab-intelligence query pipeline.
package domain

import "fmt"

// AmbiguousQueryError indicates a question that could map to more than one
// column and no catalog hint disambiguates it.
type AmbiguousQueryError struct {
	Message string
}

func (e *AmbiguousQueryError) Error() string { return e.Message }

// UnresolvableQueryError indicates the translator exhausted its repair budget
// without producing a valid query plan.
type UnresolvableQueryError struct {
	Message string
}

func (e *UnresolvableQueryError) Error() string { return e.Message }

// QueryTimeoutError indicates the executor deadline elapsed before the
// database returned a result.
type QueryTimeoutError struct {
	Message string
}

func (e *QueryTimeoutError) Error() string { return e.Message }

// DatabaseUnavailableError indicates a connectivity or driver failure while
// executing a valid plan.
type DatabaseUnavailableError struct {
	Message string
	Cause   error
}

func (e *DatabaseUnavailableError) Error() string { return e.Message }

// Unwrap exposes the underlying driver error.
func (e *DatabaseUnavailableError) Unwrap() error { return e.Cause }

// CatalogUnavailableError indicates the schema catalog could not be
// introspected at startup. It is fatal to process startup.
type CatalogUnavailableError struct {
	Message string
	Cause   error
}

func (e *CatalogUnavailableError) Error() string { return e.Message }

// Unwrap exposes the underlying introspection error.
func (e *CatalogUnavailableError) Unwrap() error { return e.Cause }

// ValidationError indicates invalid caller input at the request boundary.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrAmbiguousQuery creates an AmbiguousQueryError with a formatted message.
func ErrAmbiguousQuery(format string, args ...interface{}) *AmbiguousQueryError {
	return &AmbiguousQueryError{Message: fmt.Sprintf(format, args...)}
}

// ErrUnresolvableQuery creates an UnresolvableQueryError with a formatted message.
func ErrUnresolvableQuery(format string, args ...interface{}) *UnresolvableQueryError {
	return &UnresolvableQueryError{Message: fmt.Sprintf(format, args...)}
}

// ErrQueryTimeout creates a QueryTimeoutError with a formatted message.
func ErrQueryTimeout(format string, args ...interface{}) *QueryTimeoutError {
	return &QueryTimeoutError{Message: fmt.Sprintf(format, args...)}
}

// ErrDatabaseUnavailable creates a DatabaseUnavailableError wrapping cause.
func ErrDatabaseUnavailable(cause error, format string, args ...interface{}) *DatabaseUnavailableError {
	return &DatabaseUnavailableError{Message: fmt.Sprintf(format, args...), Cause: cause}
}

// ErrCatalogUnavailable creates a CatalogUnavailableError wrapping cause.
func ErrCatalogUnavailable(cause error, format string, args ...interface{}) *CatalogUnavailableError {
	return &CatalogUnavailableError{Message: fmt.Sprintf(format, args...), Cause: cause}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
