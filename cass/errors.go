package cass

import (
	"errors"
	"fmt"
)

// NotFoundError indicates a keyspace, table, column or type was not found.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Name)
}

// UnsupportedTypeError indicates a type descriptor without a semantic mapping.
type UnsupportedTypeError struct {
	Descriptor string
	Reason     string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("unsupported type %q", e.Descriptor)
	}
	return fmt.Sprintf("unsupported type %q: %s", e.Descriptor, e.Reason)
}

// ValidationError indicates a definition that breaks the model invariants.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func ErrNotFound(kind, name string) *NotFoundError {
	return &NotFoundError{Kind: kind, Name: name}
}

func ErrUnsupportedType(descriptor, reason string) *UnsupportedTypeError {
	return &UnsupportedTypeError{Descriptor: descriptor, Reason: reason}
}

func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsUnsupportedType(err error) bool {
	var e *UnsupportedTypeError
	return errors.As(err, &e)
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}
