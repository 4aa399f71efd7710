package core

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Kind discriminates domain errors. It is exposed to API clients as the error "code".
type Kind string

const (
	KindInvalidID        Kind = "invalid_identifier"
	KindNotFound         Kind = "not_found"
	KindConflict         Kind = "conflict"
	KindDependencyExists Kind = "dependency_exists"
	KindCapacityExceeded Kind = "capacity_exceeded"
	KindStoreFailure     Kind = "store_failure"
	KindValidation       Kind = "validation_failure"
)

// Error is a domain error carrying its Kind and a human readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error // underlying cause, if any
}

func NewError(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// StoreFailure wraps an unexpected document store error.
func StoreFailure(err error, msg string) error {
	return &Error{Kind: KindStoreFailure, Message: msg + ": " + err.Error(), Err: err}
}

func (err *Error) Error() string {
	return err.Message
}

// ErrorKind returns the Kind of err, or "" for errors that are not domain errors.
func ErrorKind(err error) Kind {
	switch e := errors.Cause(err).(type) {
	case *Error:
		return e.Kind
	case *ValidationError, validator.ValidationErrors:
		return KindValidation
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return err != nil && ErrorKind(err) == kind
}

// IsNotFound is a shorthand for IsKind(err, KindNotFound).
func IsNotFound(err error) bool {
	return IsKind(err, KindNotFound)
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	if len(err.Fields) > 0 {
		return err.Fields[0].Field + ": " + err.Fields[0].Error
	}
	return ""
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
