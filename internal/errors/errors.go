// Package errors provides error handling utilities.
package errors

import (
	"errors"
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeUnknownType indicates a resource type with no registered schema
	TypeUnknownType Type = "UNKNOWN_TYPE"

	// TypeNotFound indicates the remote system has no matching object
	TypeNotFound Type = "NOT_FOUND"

	// TypeAmbiguousID indicates the remote system matched more than one object
	TypeAmbiguousID Type = "AMBIGUOUS_ID"

	// TypeTransient indicates a retryable remote failure (timeout, rate limit)
	TypeTransient Type = "TRANSIENT"

	// TypeTypeMismatch indicates a fetched value incompatible with the schema type
	TypeTypeMismatch Type = "TYPE_MISMATCH"

	// TypeMissingRequired indicates a schema-required attribute absent from the fetch
	TypeMissingRequired Type = "MISSING_REQUIRED"

	// TypeDuplicateAddress indicates an address already bound to a different id
	TypeDuplicateAddress Type = "DUPLICATE_ADDRESS"

	// TypeParsing indicates a request or catalog parsing error
	TypeParsing Type = "PARSING_ERROR"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *Error) Is(t Type) bool {
	return e.Type == t
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsType checks if an error (or any error it wraps) is of a specific type
func IsType(err error, t Type) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// TypeOf returns the taxonomy type of an error, TypeInternal if untyped
func TypeOf(err error) Type {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return TypeInternal
}

// IsTransient reports whether the error is retryable
func IsTransient(err error) bool {
	return IsType(err, TypeTransient)
}

// UnknownType creates an unknown resource type error
func UnknownType(resourceType string) *Error {
	return Newf(TypeUnknownType, "no schema registered for resource type %q", resourceType)
}

// NotFound creates a not found error
func NotFound(resourceType, id string) *Error {
	return Newf(TypeNotFound, "%s with id %q not found in remote system", resourceType, id)
}

// AmbiguousID creates an ambiguous identifier error
func AmbiguousID(resourceType, id string, matches int) *Error {
	return Newf(TypeAmbiguousID, "id %q matched %d %s objects, expected exactly one", id, matches, resourceType).
		WithContext("matches", matches)
}

// Transient creates a retryable error
func Transient(message string, cause error) *Error {
	return Wrap(TypeTransient, message, cause)
}

// TypeMismatch creates a type mismatch error naming the offending attribute
func TypeMismatch(attribute, wantType string, cause error) *Error {
	return Wrapf(TypeTypeMismatch, cause, "attribute %q is not compatible with schema type %s", attribute, wantType).
		WithContext("attribute", attribute)
}

// MissingRequired creates an error naming the absent required attribute
func MissingRequired(attribute string) *Error {
	return Newf(TypeMissingRequired, "required attribute %q missing from fetched object", attribute).
		WithContext("attribute", attribute)
}

// DuplicateAddress reports both the existing and the requested external ids
func DuplicateAddress(address, existingID, requestedID string) *Error {
	return Newf(TypeDuplicateAddress, "address %s already bound to %q, cannot bind to %q without unbind", address, existingID, requestedID).
		WithContext("existing_id", existingID).
		WithContext("requested_id", requestedID)
}

// Parsing creates a parsing error
func Parsing(message string, cause error) *Error {
	return Wrap(TypeParsing, message, cause)
}

// Config creates a configuration error
func Config(message string, cause error) *Error {
	return Wrap(TypeConfig, message, cause)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
