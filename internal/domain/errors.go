package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common error conditions.
var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that the input data is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedSource indicates that a requested source has no
	// registered search engine.
	ErrUnsupportedSource = errors.New("unsupported source")

	// ErrSearchBackend indicates that the primary data source rejected the
	// query or was unreachable.
	ErrSearchBackend = errors.New("search backend failure")

	// ErrRateLimited indicates that a request was rate limited.
	ErrRateLimited = errors.New("rate limited")
)

// UnsupportedSourceError is returned when a search is requested against a
// source with no registered engine. It is fatal for that call and must be
// surfaced to the caller verbatim, never silently defaulted.
type UnsupportedSourceError struct {
	Source SourceType
}

// Error implements the error interface.
func (e *UnsupportedSourceError) Error() string {
	return fmt.Sprintf("search engine for source %q not implemented", string(e.Source))
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *UnsupportedSourceError) Unwrap() error {
	return ErrUnsupportedSource
}

// SearchBackendError is returned when the primary source is unreachable or
// rejects the query. It is fatal for the search call and propagates to the
// orchestrator's caller with the underlying cause attached.
type SearchBackendError struct {
	Source SourceType
	Cause  error
}

// Error implements the error interface.
func (e *SearchBackendError) Error() string {
	return fmt.Sprintf("%s backend failure: %v", string(e.Source), e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *SearchBackendError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches the ErrSearchBackend sentinel.
func (e *SearchBackendError) Is(target error) bool {
	return target == ErrSearchBackend
}

// NotFoundError provides details about a not found entity.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// RateLimitError provides details about a rate limit error.
type RateLimitError struct {
	Source     string
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by %s: retry after %s", e.Source, e.RetryAfter)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// ExternalAPIError provides details about an external API error.
type ExternalAPIError struct {
	Source     string
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Source, e.StatusCode, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *ExternalAPIError) Unwrap() error {
	return e.Cause
}

// NewUnsupportedSourceError creates a new UnsupportedSourceError.
func NewUnsupportedSourceError(source SourceType) *UnsupportedSourceError {
	return &UnsupportedSourceError{Source: source}
}

// NewSearchBackendError creates a new SearchBackendError.
func NewSearchBackendError(source SourceType, cause error) *SearchBackendError {
	return &SearchBackendError{Source: source, Cause: cause}
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// NewRateLimitError creates a new RateLimitError.
func NewRateLimitError(source string, retryAfter time.Duration) *RateLimitError {
	return &RateLimitError{Source: source, RetryAfter: retryAfter}
}

// NewExternalAPIError creates a new ExternalAPIError.
func NewExternalAPIError(source string, statusCode int, message string, cause error) *ExternalAPIError {
	return &ExternalAPIError{
		Source:     source,
		StatusCode: statusCode,
		Message:    message,
		Cause:      cause,
	}
}
