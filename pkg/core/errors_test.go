package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExecutionError_Error(t *testing.T) {
	err := &ExecutionError{
		Category: ErrCategoryAssertion,
		Code:     "test_error",
		Message:  "test message",
	}

	if got := err.Error(); got != "test message" {
		t.Errorf("Error() = %q, want %q", got, "test message")
	}
}

func TestExecutionError_ErrorWithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := &ExecutionError{
		Category: ErrCategoryAssertion,
		Code:     "test_error",
		Message:  "test message",
		Cause:    cause,
	}

	got := err.Error()
	if !strings.Contains(got, "test message") {
		t.Errorf("Error() = %q, should contain 'test message'", got)
	}
	if !strings.Contains(got, "underlying error") {
		t.Errorf("Error() = %q, should contain 'underlying error'", got)
	}
}

func TestExecutionError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &ExecutionError{
		Message: "wrapper",
		Cause:   cause,
	}

	if got := err.Unwrap(); got != cause {
		t.Errorf("Unwrap() = %v, want %v", got, cause)
	}
}

func TestExecutionError_WithCause(t *testing.T) {
	original := ErrBackendUnavailable
	cause := errors.New("connection refused")

	newErr := original.WithCause(cause)

	if newErr.Cause != cause {
		t.Error("WithCause() did not set cause")
	}
	if newErr.Code != original.Code {
		t.Error("WithCause() changed code")
	}
	if original.Cause != nil {
		t.Error("WithCause() modified original error")
	}
}

func TestExecutionError_WithMessage(t *testing.T) {
	original := ErrWaitTimeout
	newErr := original.WithMessage("visible(Search) not satisfied within 3s")

	if newErr.Message != "visible(Search) not satisfied within 3s" {
		t.Errorf("Message = %q", newErr.Message)
	}
	if newErr.Code != original.Code {
		t.Error("WithMessage() changed code")
	}
	if original.Message == newErr.Message {
		t.Error("WithMessage() modified original error")
	}
}

func TestExecutionError_WithDetails(t *testing.T) {
	original := &ExecutionError{
		Code:    "test",
		Message: "test",
		Details: map[string]interface{}{"existing": "value"},
	}

	newErr := original.WithDetails(map[string]interface{}{
		"selector": "accessibility id=Favorite",
		"timeout":  5000,
	})

	if newErr.Details["selector"] != "accessibility id=Favorite" {
		t.Error("WithDetails() did not add new details")
	}
	if newErr.Details["existing"] != "value" {
		t.Error("WithDetails() did not preserve existing details")
	}
	if _, ok := original.Details["selector"]; ok {
		t.Error("WithDetails() modified original error")
	}
}

func TestExecutionError_IsMatchesDerivedCopies(t *testing.T) {
	derived := ErrWaitTimeout.WithMessage("custom").WithDetails(map[string]interface{}{"attempts": 4})
	wrapped := fmt.Errorf("tap Favorite: %w", derived)

	if !errors.Is(wrapped, ErrWaitTimeout) {
		t.Error("errors.Is() should match a derived wait timeout through wrapping")
	}
	if errors.Is(wrapped, ErrBackendUnavailable) {
		t.Error("errors.Is() matched the wrong code")
	}
	if !IsWaitTimeout(wrapped) {
		t.Error("IsWaitTimeout() = false, want true")
	}
	if IsBackendUnavailable(wrapped) {
		t.Error("IsBackendUnavailable() = true, want false")
	}
}

func TestExecutionError_ErrorsIsCause(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrBackendUnavailable.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is() should find the cause")
	}
	if !IsBackendUnavailable(err) {
		t.Error("IsBackendUnavailable() = false, want true")
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorCategory
	}{
		{ErrWaitTimeout, ErrCategoryTimeout},
		{fmt.Errorf("wrap: %w", ErrBackendUnavailable.WithCause(errors.New("x"))), ErrCategoryConnection},
		{errors.New("plain"), ErrCategoryNone},
		{nil, ErrCategoryNone},
	}
	for _, tt := range tests {
		if got := CategoryOf(tt.err); got != tt.want {
			t.Errorf("CategoryOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err      *ExecutionError
		category ErrorCategory
		code     string
	}{
		{ErrElementNotFound, ErrCategoryAssertion, "element_not_found"},
		{ErrStaleElement, ErrCategoryAssertion, "stale_element"},
		{ErrWaitTimeout, ErrCategoryTimeout, "wait_timeout"},
		{ErrBackendUnavailable, ErrCategoryConnection, "backend_unavailable"},
		{ErrNoSession, ErrCategoryConnection, "no_session"},
		{ErrInvalidConfig, ErrCategoryConfig, "invalid_config"},
		{ErrMissingRequired, ErrCategoryConfig, "missing_required"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Category != tt.category {
				t.Errorf("Category = %s, want %s", tt.err.Category, tt.category)
			}
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.Message == "" {
				t.Error("Message should not be empty")
			}
		})
	}
}

func TestNewExecutionError(t *testing.T) {
	err := NewExecutionError(ErrCategoryConfig, "custom_error", "custom message")

	if err.Category != ErrCategoryConfig {
		t.Errorf("Category = %s, want %s", err.Category, ErrCategoryConfig)
	}
	if err.Code != "custom_error" {
		t.Errorf("Code = %s, want 'custom_error'", err.Code)
	}
	if err.Message != "custom message" {
		t.Errorf("Message = %s, want 'custom message'", err.Message)
	}
}
