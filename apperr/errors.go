// Package apperr defines the error taxonomy shared by stores, pricing and
// controllers: validation failures, missing resources, failed calls to
// external services and persistence faults, each mapping to a stable HTTP
// status so clients can tell a bad request from a missing resource.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func Validationf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func NotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ExternalError wraps a failed call to a collaborator outside the process
// (payment provider, image host). Callers may retry; it is never swallowed.
type ExternalError struct {
	Service string
	Err     error
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalError) Unwrap() error { return e.Err }

func External(service string, err error) *ExternalError {
	return &ExternalError{Service: service, Err: err}
}

type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func Persistence(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// Status maps an error to the HTTP status and client-facing message for it.
// Internal detail of persistence faults is kept out of the response body.
func Status(err error) (int, string) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Error()
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return http.StatusNotFound, nf.Error()
	}
	var ee *ExternalError
	if errors.As(err, &ee) {
		return http.StatusBadGateway, fmt.Sprintf("%s request failed", ee.Service)
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return http.StatusInternalServerError, "database operation failed"
	}
	return http.StatusInternalServerError, "internal error"
}
