package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryReactivity Category = "reactivity"
	CategoryConfig     Category = "config"
	CategoryCLI        Category = "cli"
)

// KireiError is a structured error with a code, suggestions, and documentation.
type KireiError struct {
	// Code is a unique error identifier (e.g., "FX001").
	Code string

	// Category is the error type (reactivity, config, cli).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example is code showing the correct approach.
	Example string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *KireiError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Detail != "" && e.Wrapped == nil {
		return msg + " (" + e.Detail + ")"
	}
	if e.Wrapped != nil {
		return msg + ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *KireiError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a KireiError with the same code.
// Errors without a code only match themselves.
func (e *KireiError) Is(target error) bool {
	t, ok := target.(*KireiError)
	if !ok {
		return false
	}
	if e.Code == "" || t.Code == "" {
		return e == t
	}
	return e.Code == t.Code
}

// WithSuggestion adds a fix suggestion to the error.
func (e *KireiError) WithSuggestion(s string) *KireiError {
	e.Suggestion = s
	return e
}

// WithExample adds a code example to the error.
func (e *KireiError) WithExample(ex string) *KireiError {
	e.Example = ex
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *KireiError) WithDetail(d string) *KireiError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted detailed explanation to the error.
func (e *KireiError) WithDetailf(format string, args ...any) *KireiError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *KireiError) Wrap(err error) *KireiError {
	e.Wrapped = err
	return e
}

// New creates a KireiError from a registered error code.
func New(code string) *KireiError {
	template, ok := registry[code]
	if !ok {
		return &KireiError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &KireiError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new KireiError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *KireiError {
	return &KireiError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a KireiError.
func FromError(err error, code string) *KireiError {
	if err == nil {
		return nil
	}
	if ke, ok := err.(*KireiError); ok {
		return ke
	}
	return New(code).Wrap(err)
}
