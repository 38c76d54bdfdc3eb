// Package carderr defines the stable error codes that cross the service
// boundary. Handlers and the CLI map codes to exit statuses and HTTP
// responses; internal layers wrap with fmt.Errorf and %w as usual.
package carderr

import (
	"errors"
	"fmt"
)

// Code identifies a failure class. Values are part of the API contract
// and must not be renamed.
type Code string

const (
	CodeInvalidURL           Code = "InvalidUrl"
	CodeExtractionTimeout    Code = "ExtractionTimeout"
	CodeMissingRequiredField Code = "MissingRequiredField"
	CodeAssetFetchFailed     Code = "AssetFetchFailed"
	CodeRenderError          Code = "RenderError"
	CodeInvalidLayoutConfig  Code = "InvalidLayoutConfig"
	CodeNoValidProfiles      Code = "NoValidProfiles"
	CodeBatchTooLarge        Code = "BatchTooLarge"
)

// Error carries a stable code plus a human-readable message. The message
// is safe to show to callers; it never contains stack traces.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause for internal logging while keeping the outward
// message stable.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// CodeOf extracts the stable code from an error chain. Unclassified
// errors yield the empty code.
func CodeOf(err error) Code {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// Is lets errors.Is match on code equality so sentinels are unneeded.
func (e *Error) Is(target error) bool {
	var te *Error
	if errors.As(target, &te) {
		return e.Code == te.Code
	}
	return false
}

// Retryable reports whether a caller may retry the same input unchanged.
func (e *Error) Retryable() bool {
	return e.Code == CodeExtractionTimeout || e.Code == CodeAssetFetchFailed
}
