package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors. The first three mirror the pipeline's failure
// taxonomy: incomplete extraction and aggregation skips are non-fatal and
// scoped to one document; an invariant violation during tax computation is
// fatal and indicates a misconfigured bracket table.
var (
	ErrExtractionIncomplete = errors.New("no strategy produced the required fields")
	ErrAggregationSkip      = errors.New("record cannot be routed to a ledger")
	ErrInvariantViolation   = errors.New("tax computation invariant violated")
	ErrNotFound             = errors.New("resource not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInternal             = errors.New("internal error")
)

// NewAppError constructs an AppError with an optional cause.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
