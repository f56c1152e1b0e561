package tts

import (
	"errors"
	"fmt"
)

// Common errors for the reader.
var (
	// Engine errors
	ErrEngineNotAvailable = errors.New("speech engine is not available")
	ErrUnknownEngine      = errors.New("unknown speech engine")
	ErrVoiceNotFound      = errors.New("requested voice not found")
	ErrSynthesisFailed    = errors.New("speech synthesis failed")
	ErrEngineShutdown     = errors.New("engine has been shut down")

	// Text errors
	ErrNothingToRead   = errors.New("nothing to read")
	ErrTextUnavailable = errors.New("text source unavailable")

	// Preference errors
	ErrInvalidPreferences = errors.New("invalid preferences")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")

	// General errors
	ErrTimeout          = errors.New("operation timed out")
	ErrCanceled         = errors.New("operation was canceled")
	ErrPermissionDenied = errors.New("permission denied")
)

// IsRecoverableError reports whether an operation that failed with err is
// worth attempting again.
func IsRecoverableError(err error) bool {
	if err == nil {
		return true
	}

	for _, fatal := range []error{
		ErrEngineNotAvailable,
		ErrUnknownEngine,
		ErrEngineShutdown,
		ErrInvalidConfig,
		ErrInvalidPreferences,
		ErrPermissionDenied,
	} {
		if errors.Is(err, fatal) {
			return false
		}
	}
	return true
}

// ErrorSeverity represents the severity of an error.
type ErrorSeverity int

const (
	// SeverityWarning is for failures that leave the reader usable.
	SeverityWarning ErrorSeverity = iota
	// SeverityError is for failures that end the current utterance.
	SeverityError
)

// TTSError records which component failed and what it was doing.
type TTSError struct {
	Err       error         // The underlying error
	Component string        // Component that generated the error
	Action    string        // Action being performed when error occurred
	Severity  ErrorSeverity // Severity of the error
}

// Error implements the error interface.
func (e *TTSError) Error() string {
	msg := "unknown error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Component == "" {
		return msg
	}
	if e.Action == "" {
		return fmt.Sprintf("%s: %s", e.Component, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Component, e.Action, msg)
}

// Unwrap returns the underlying error.
func (e *TTSError) Unwrap() error {
	return e.Err
}

// IsRecoverable checks if the error is recoverable.
func (e *TTSError) IsRecoverable() bool {
	return IsRecoverableError(e.Err)
}

// NewTTSError creates a new error for component while performing action.
func NewTTSError(err error, component, action string) *TTSError {
	return &TTSError{
		Err:       err,
		Component: component,
		Action:    action,
		Severity:  SeverityError,
	}
}

// WithSeverity sets the error severity.
func (e *TTSError) WithSeverity(severity ErrorSeverity) *TTSError {
	e.Severity = severity
	return e
}
