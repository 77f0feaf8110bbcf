package util

import (
	"errors"
	"fmt"
	"net/http"
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
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewRateLimited(message string) error {
	return NewDomainError("RATE_LIMITED", message, http.StatusTooManyRequests, nil)
}

// NewNoInputData signals that the requested window contained no tickets at all.
func NewNoInputData(message string) error {
	return NewDomainError("NO_INPUT_DATA", message, http.StatusNotFound, nil)
}

// NewEmptyResult signals that detection ran but produced no redo pairs.
func NewEmptyResult(message string) error {
	return NewDomainError("EMPTY_RESULT", message, http.StatusNotFound, nil)
}

// NewDataShapeError reports a malformed input table (upstream query bug).
func NewDataShapeError(message string, details map[string]any) error {
	return NewDomainError("DATA_SHAPE", message, http.StatusUnprocessableEntity, details)
}

// NewInvalidTemporalValue reports a date field that cannot be interpreted as a
// calendar date.
func NewInvalidTemporalValue(message string, details map[string]any) error {
	return NewDomainError("INVALID_TEMPORAL_VALUE", message, http.StatusUnprocessableEntity, details)
}

// NewFetchFailed wraps a failure of the upstream ticket store.
func NewFetchFailed(err error) error {
	return &DomainError{
		Code:       "FETCH_FAILED",
		Message:    "failed to fetch tickets from store",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
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
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
