package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// As is errors.As from the standard library, re-exported so callers need only one errors import
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// ErrNotFound is returned when a resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when credentials are missing or invalid
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	return e.Message
}

// ErrInvalidArgument is returned when an input value is rejected before any state change
type ErrInvalidArgument struct {
	Field   string
	Message string
}

func (e *ErrInvalidArgument) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ErrCapacityExceeded is returned when a requested quantity exceeds the stock snapshot
type ErrCapacityExceeded struct {
	ProductID string
	Requested int
	Available int
}

func (e *ErrCapacityExceeded) Error() string {
	return fmt.Sprintf("requested quantity %d for product %s exceeds available stock %d",
		e.Requested, e.ProductID, e.Available)
}

// ErrInvalidState is returned when an operation is not allowed in the current cart state
type ErrInvalidState struct {
	Reason string
}

func (e *ErrInvalidState) Error() string {
	return e.Reason
}

// ErrSubmissionFailed is returned when the backend rejects or fails a request submission.
// StatusCode is zero when no response was received.
type ErrSubmissionFailed struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ErrSubmissionFailed) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.StatusCode != 0 {
		return http.StatusText(e.StatusCode)
	}
	return "request submission failed"
}

func (e *ErrSubmissionFailed) Unwrap() error {
	return e.Err
}

// ErrInvalidStateTransition is returned for a request status change the workflow does not allow
type ErrInvalidStateTransition struct {
	From interface{}
	To   interface{}
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %v to %v", e.From, e.To)
}
