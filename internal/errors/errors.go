// Package errors provides the structured error types used across agentdeck.
//
// Base errors are sentinel values that callers test with errors.Is. The
// structured types add the operation and the subject the operation was
// working on, and unwrap to the sentinel underneath.
//
// # Error Types
//
// Base errors (sentinel errors):
//   - ErrNotFound - agent, version or draft not found
//   - ErrAlreadyExists - duplicate agent id or slug
//   - ErrInvalid - validation failed or a transition is not allowed
//   - ErrConflict - concurrent edit of the same record
//   - ErrStore - storage backend failure
//   - ErrIO - file I/O error
//   - ErrCanceled - user canceled operation
//
// Wrapped error types (add context):
//   - AgentError{Op, Err, ID} - agent operation errors
//   - StoreError{Op, Err, Backend} - storage backend errors
//   - ConfigError{Path, Err} - configuration errors
//
// # Usage
//
//	return &errors.AgentError{Op: "save", Err: errors.ErrAlreadyExists, ID: "sales-bot"}
//
//	if errors.IsNotFound(err) {
//	    // handle not found
//	}
package errors

import (
	"errors"
	"fmt"
)

// Base error types (sentinel errors).
var (
	// ErrNotFound indicates a resource was not found.
	ErrNotFound = baseError("not found")

	// ErrAlreadyExists indicates a duplicate resource.
	ErrAlreadyExists = baseError("already exists")

	// ErrInvalid indicates validation failed.
	ErrInvalid = baseError("invalid")

	// ErrConflict indicates an edit conflict.
	ErrConflict = baseError("conflict")

	// ErrStore indicates a storage backend operation failed.
	ErrStore = baseError("store operation failed")

	// ErrIO indicates a file I/O error.
	ErrIO = baseError("I/O error")

	// ErrCanceled indicates the user canceled an operation.
	ErrCanceled = baseError("canceled")
)

// baseError is a string that implements error.
type baseError string

func (e baseError) Error() string { return string(e) }

// AgentError represents an error that occurred during an agent operation.
type AgentError struct {
	// Op is the operation being performed (e.g., "save", "load", "publish").
	Op string
	// Err is the underlying error.
	Err error
	// ID is the agent identifier (optional).
	ID string
}

func (e *AgentError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("agent %s %q: %s", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("agent %s: %s", e.Op, e.Err)
}

func (e *AgentError) Unwrap() error { return e.Err }

// StoreError represents an error raised by a storage backend.
type StoreError struct {
	// Op is the backend operation (e.g., "list", "get", "ping").
	Op string
	// Err is the underlying error.
	Err error
	// Backend names the backend (e.g., "filesystem", "redis").
	Backend string
}

func (e *StoreError) Error() string {
	if e.Backend != "" {
		return fmt.Sprintf("store %s (%s): %s", e.Op, e.Backend, e.Err)
	}
	return fmt.Sprintf("store %s: %s", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ConfigError represents an error related to configuration.
type ConfigError struct {
	// Path is the configuration file path (optional).
	Path string
	// Err is the underlying error.
	Err error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config %s: %s", e.Path, e.Err)
	}
	return fmt.Sprintf("config: %s", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Wrap adds context to an error by wrapping it with an operation name.
// The returned error implements Unwrap() allowing errors.Is and errors.As
// to work with the wrapped error.
func Wrap(err error, op string) error {
	return &wrappedError{op: op, err: err}
}

// Invalidf returns an error wrapping ErrInvalid with a formatted message.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// wrappedError is an error with an operation context.
type wrappedError struct {
	op  string
	err error
}

func (e *wrappedError) Error() string { return fmt.Sprintf("%s: %s", e.op, e.err) }
func (e *wrappedError) Unwrap() error { return e.err }

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists reports whether err is or wraps ErrAlreadyExists.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsInvalid reports whether err is or wraps ErrInvalid.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}

// IsConflict reports whether err is or wraps ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsStore reports whether err is or wraps ErrStore.
func IsStore(err error) bool {
	return errors.Is(err, ErrStore)
}

// IsIO reports whether err is or wraps ErrIO.
func IsIO(err error) bool {
	return errors.Is(err, ErrIO)
}

// IsCanceled reports whether err is or wraps ErrCanceled.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// AsAgentError reports whether err can be typed as an *AgentError.
func AsAgentError(err error) (*AgentError, bool) {
	var ae *AgentError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// AsStoreError reports whether err can be typed as a *StoreError.
func AsStoreError(err error) (*StoreError, bool) {
	var se *StoreError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// AsConfigError reports whether err can be typed as a *ConfigError.
func AsConfigError(err error) (*ConfigError, bool) {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
