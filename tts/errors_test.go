package tts

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsRecoverableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"timeout", ErrTimeout, true},
		{"synthesis", ErrSynthesisFailed, true},
		{"engine unavailable", ErrEngineNotAvailable, false},
		{"wrapped unavailable", fmt.Errorf("piper: %w", ErrEngineNotAvailable), false},
		{"invalid preferences", ErrInvalidPreferences, false},
		{"other", errors.New("boom"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRecoverableError(tt.err); got != tt.want {
				t.Errorf("IsRecoverableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestTTSError(t *testing.T) {
	err := NewTTSError(ErrTimeout, "piper", "synthesize")

	if got, want := err.Error(), "piper: synthesize: operation timed out"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrTimeout) {
		t.Error("errors.Is(err, ErrTimeout) = false, want true")
	}
	if err.Severity != SeverityError {
		t.Errorf("Severity = %v, want %v", err.Severity, SeverityError)
	}
	if !err.IsRecoverable() {
		t.Error("IsRecoverable() = false, want true")
	}

	err = NewTTSError(ErrEngineShutdown, "command", "").WithSeverity(SeverityWarning)
	if got, want := err.Error(), "command: engine has been shut down"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if err.Severity != SeverityWarning {
		t.Errorf("Severity = %v, want %v", err.Severity, SeverityWarning)
	}
	if err.IsRecoverable() {
		t.Error("IsRecoverable() = true, want false")
	}

	var target *TTSError
	if !errors.As(fmt.Errorf("wrapped: %w", err), &target) {
		t.Error("errors.As() failed to find *TTSError")
	}

	if got := (&TTSError{}).Error(); got != "unknown error" {
		t.Errorf("empty Error() = %q, want %q", got, "unknown error")
	}
}
