package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a stevept error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"  // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"        // 404
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"   // 404
	ErrCorpusNotFound ErrorCode = "CORPUS_NOT_FOUND" // 404
	ErrVersionExists  ErrorCode = "VERSION_EXISTS"   // 409
	ErrInternal       ErrorCode = "INTERNAL"         // 500
)

// SteveError represents a structured error with code, status, and details.
type SteveError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *SteveError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *SteveError {
	return &SteveError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a recipe or item that cannot be found.
func NewNotFound(kind, identifier string) *SteveError {
	return &SteveError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing import file or directory.
func NewFileNotFound(path string) *SteveError {
	return &SteveError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewCorpusNotFound creates a 404 error for a version tag with no corpus.
func NewCorpusNotFound(version string) *SteveError {
	return &SteveError{
		Code:    ErrCorpusNotFound,
		Status:  404,
		Message: fmt.Sprintf("no corpus for version %q", version),
		Details: map[string]any{"version": version},
	}
}

// NewVersionExists creates a 409 error when an import would overwrite a stored version.
func NewVersionExists(version string) *SteveError {
	return &SteveError{
		Code:    ErrVersionExists,
		Status:  409,
		Message: fmt.Sprintf("corpus version %q already imported; use mode replace", version),
		Details: map[string]any{"version": version},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *SteveError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &SteveError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is (or wraps) a SteveError with the given code.
func Is(err error, code ErrorCode) bool {
	var sErr *SteveError
	if stderrors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}
