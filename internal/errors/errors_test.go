package errors_test

import (
	"errors"
	"fmt"
	"os"
	"testing"

	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
)

// TestBaseErrors verifies that all base error types have correct messages.
func TestBaseErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrNotFound", deckerrors.ErrNotFound, "not found"},
		{"ErrAlreadyExists", deckerrors.ErrAlreadyExists, "already exists"},
		{"ErrInvalid", deckerrors.ErrInvalid, "invalid"},
		{"ErrConflict", deckerrors.ErrConflict, "conflict"},
		{"ErrStore", deckerrors.ErrStore, "store operation failed"},
		{"ErrIO", deckerrors.ErrIO, "I/O error"},
		{"ErrCanceled", deckerrors.ErrCanceled, "canceled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAgentError(t *testing.T) {
	tests := []struct {
		name string
		err  *deckerrors.AgentError
		want string
	}{
		{
			name: "with ID",
			err:  &deckerrors.AgentError{Op: "save", Err: deckerrors.ErrAlreadyExists, ID: "sales-bot"},
			want: `agent save "sales-bot": already exists`,
		},
		{
			name: "without ID",
			err:  &deckerrors.AgentError{Op: "publish", Err: deckerrors.ErrInvalid},
			want: "agent publish: invalid",
		},
		{
			name: "wrapped custom error",
			err:  &deckerrors.AgentError{Op: "delete", Err: fmt.Errorf("custom error"), ID: "abc"},
			want: `agent delete "abc": custom error`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("Unwrap returns original error", func(t *testing.T) {
		wrapped := &deckerrors.AgentError{Op: "get", Err: deckerrors.ErrNotFound}
		if !errors.Is(wrapped, deckerrors.ErrNotFound) {
			t.Error("Unwrap() did not return the original error for errors.Is")
		}
	})
}

func TestStoreError(t *testing.T) {
	tests := []struct {
		name string
		err  *deckerrors.StoreError
		want string
	}{
		{
			name: "with backend",
			err:  &deckerrors.StoreError{Op: "ping", Err: deckerrors.ErrStore, Backend: "redis"},
			want: "store ping (redis): store operation failed",
		},
		{
			name: "without backend",
			err:  &deckerrors.StoreError{Op: "list", Err: deckerrors.ErrIO},
			want: "store list: I/O error",
		},
		{
			name: "wrapped os error",
			err:  &deckerrors.StoreError{Op: "read", Err: os.ErrNotExist, Backend: "filesystem"},
			want: "store read (filesystem): file does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigError(t *testing.T) {
	tests := []struct {
		name string
		err  *deckerrors.ConfigError
		want string
	}{
		{
			name: "with path",
			err:  &deckerrors.ConfigError{Path: "~/.config/agentdeck/config.toml", Err: deckerrors.ErrInvalid},
			want: "config ~/.config/agentdeck/config.toml: invalid",
		},
		{
			name: "without path",
			err:  &deckerrors.ConfigError{Err: deckerrors.ErrNotFound},
			want: "config: not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestWrap verifies the Wrap helper function.
func TestWrap(t *testing.T) {
	original := deckerrors.ErrNotFound
	wrapped := deckerrors.Wrap(original, "readAgent")

	if got := wrapped.Error(); got != "readAgent: not found" {
		t.Errorf("Error() = %q, want 'readAgent: not found'", got)
	}

	t.Run("Double wrap preserves original", func(t *testing.T) {
		doubleWrapped := deckerrors.Wrap(wrapped, "loadCatalog")
		if !errors.Is(doubleWrapped, original) {
			t.Error("Double wrap did not preserve the original error")
		}
	})
}

func TestInvalidf(t *testing.T) {
	err := deckerrors.Invalidf("unknown step %q", "billing")
	if !deckerrors.IsInvalid(err) {
		t.Fatalf("IsInvalid(%v) = false, want true", err)
	}
	if got, want := err.Error(), `invalid: unknown step "billing"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

// TestIsHelpers verifies all Is<TYPE>() helper functions.
func TestIsHelpers(t *testing.T) {
	baseTests := []struct {
		name    string
		baseErr error
		isFunc  func(error) bool
	}{
		{"IsNotFound", deckerrors.ErrNotFound, deckerrors.IsNotFound},
		{"IsAlreadyExists", deckerrors.ErrAlreadyExists, deckerrors.IsAlreadyExists},
		{"IsInvalid", deckerrors.ErrInvalid, deckerrors.IsInvalid},
		{"IsConflict", deckerrors.ErrConflict, deckerrors.IsConflict},
		{"IsStore", deckerrors.ErrStore, deckerrors.IsStore},
		{"IsIO", deckerrors.ErrIO, deckerrors.IsIO},
		{"IsCanceled", deckerrors.ErrCanceled, deckerrors.IsCanceled},
	}

	for _, tt := range baseTests {
		t.Run(tt.name+" direct", func(t *testing.T) {
			if !tt.isFunc(tt.baseErr) {
				t.Errorf("%s(%v) = false, want true", tt.name, tt.baseErr)
			}
		})
	}

	t.Run("IsNotFound with wrapped error", func(t *testing.T) {
		wrapped := &deckerrors.AgentError{Op: "get", Err: deckerrors.ErrNotFound}
		if !deckerrors.IsNotFound(wrapped) {
			t.Error("IsNotFound(wrapped AgentError) = false, want true")
		}
	})

	t.Run("IsNotFound with different error", func(t *testing.T) {
		if deckerrors.IsNotFound(deckerrors.ErrInvalid) {
			t.Error("IsNotFound(ErrInvalid) = true, want false")
		}
	})
}

func TestAsHelpers(t *testing.T) {
	var err error = deckerrors.Wrap(&deckerrors.StoreError{Op: "get", Err: deckerrors.ErrStore, Backend: "redis"}, "view")

	se, ok := deckerrors.AsStoreError(err)
	if !ok || se.Backend != "redis" {
		t.Fatalf("AsStoreError() = %v, %v", se, ok)
	}

	if _, ok := deckerrors.AsAgentError(err); ok {
		t.Error("AsAgentError() = true for a StoreError chain")
	}

	ce, ok := deckerrors.AsConfigError(&deckerrors.ConfigError{Path: "x.toml", Err: deckerrors.ErrInvalid})
	if !ok || ce.Path != "x.toml" {
		t.Errorf("AsConfigError() = %v, %v", ce, ok)
	}
}
