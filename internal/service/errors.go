package service

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a service failure. Its string form is the machine
// readable "error" field of API responses.
type Kind string

const (
	KindInvalidInput        Kind = "InvalidInput"
	KindDuplicateEmail      Kind = "DuplicateEmail"
	KindNotFound            Kind = "NotFound"
	KindInvalidCredentials  Kind = "InvalidCredentials"
	KindUnauthenticated     Kind = "Unauthenticated"
	KindEmptyCart           Kind = "EmptyCart"
	KindInvalidEmail        Kind = "InvalidEmail"
	KindInvalidInstallments Kind = "InvalidInstallments"
	KindInsufficientStock   Kind = "InsufficientStock"
	KindInvalidQuantity     Kind = "InvalidQuantity"
	KindProductNotFound     Kind = "ProductNotFound"
	KindInternal            Kind = "InternalError"
)

var kindStatus = map[Kind]int{
	KindInvalidInput:        http.StatusBadRequest,
	KindDuplicateEmail:      http.StatusBadRequest,
	KindNotFound:            http.StatusNotFound,
	KindInvalidCredentials:  http.StatusUnauthorized,
	KindUnauthenticated:     http.StatusUnauthorized,
	KindEmptyCart:           http.StatusBadRequest,
	KindInvalidEmail:        http.StatusUnprocessableEntity,
	KindInvalidInstallments: http.StatusUnprocessableEntity,
	KindInsufficientStock:   http.StatusBadRequest,
	KindInvalidQuantity:     http.StatusBadRequest,
	KindProductNotFound:     http.StatusNotFound,
	KindInternal:            http.StatusInternalServerError,
}

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	if s, ok := kindStatus[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is the single error type returned by the service layer. Field names
// the offending request field for validation errors. Err keeps the
// underlying cause for logging and is never shown to clients.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Status is the HTTP status for e.
func (e *Error) Status() int { return e.Kind.Status() }

// Is makes errors.Is(err, &Error{Kind: k}) match on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

func newErr(k Kind, msg string) *Error { return &Error{Kind: k, Message: msg} }

func fieldErr(k Kind, field, msg string) *Error {
	return &Error{Kind: k, Message: msg, Field: field}
}

func internalErr(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: cause}
}

// KindOf extracts the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
