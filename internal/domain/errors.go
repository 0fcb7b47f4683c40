package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure surfaced to the user.
type ErrorKind string

const (
	ErrResourceNotFound    ErrorKind = "resource_not_found"
	ErrValidationFailed    ErrorKind = "validation_failed"
	ErrDeviceError         ErrorKind = "device_error"
	ErrExternalToolMissing ErrorKind = "external_tool_missing"
	ErrBusy                ErrorKind = "busy"
	ErrUnknown             ErrorKind = "unknown"
)

// AppError is a classified failure with an optional underlying cause.
type AppError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Error formats the failure for logs and the status line.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// E builds a classified error without an underlying cause.
func E(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Wrap builds a classified error around an underlying cause.
func Wrap(kind ErrorKind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// Classify returns err as an AppError, wrapping unclassified errors as unknown.
func Classify(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{Kind: ErrUnknown, Message: err.Error(), Err: err}
}

// KindOf reports the classification of err, or unknown for plain errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	return Classify(err).Kind
}
