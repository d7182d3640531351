package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Use errors.Is to classify an error returned by a service or storage.
var (
	NotFound     = errors.New("not found")
	Forbidden    = errors.New("forbidden")
	InvalidInput = errors.New("invalid input")
	StorageFault = errors.New("storage fault")
)

// Check if err is instance of T for custom error types
func Is[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
	Kind       error
	Err        error
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *ErrorWithStatusCode) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func NewNotFound(format string, args ...any) error {
	return &ErrorWithStatusCode{Message: fmt.Sprintf(format, args...), StatusCode: http.StatusNotFound, Kind: NotFound}
}

func NewForbidden(format string, args ...any) error {
	return &ErrorWithStatusCode{Message: fmt.Sprintf(format, args...), StatusCode: http.StatusForbidden, Kind: Forbidden}
}

func NewInvalidInput(format string, args ...any) error {
	return &ErrorWithStatusCode{Message: fmt.Sprintf(format, args...), StatusCode: http.StatusBadRequest, Kind: InvalidInput}
}

// NewStorageFault wraps an I/O failure. The message is not meant for clients, so the
// status code stays 500.
func NewStorageFault(message string, err error) error {
	return &ErrorWithStatusCode{Message: message, StatusCode: http.StatusInternalServerError, Kind: StorageFault, Err: err}
}

// StatusCode returns the HTTP status carried by err, or 500.
func StatusCode(err error) int {
	var e *ErrorWithStatusCode
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}
