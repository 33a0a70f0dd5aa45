package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeOutOfRange, "opacity %d", 101)

	if err.Code != ErrCodeOutOfRange {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeOutOfRange)
	}

	if err.Message != "opacity 101" {
		t.Errorf("Message = %v, want %v", err.Message, "opacity 101")
	}

	expected := "OUT_OF_RANGE: opacity 101"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeNetwork, cause, "failed to upload")

	if err.Code != ErrCodeNetwork {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNetwork)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeInvalidInput,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeNetwork,
			expected: false,
		},
		{
			name:     "wrapped outer code",
			err:      Wrap(ErrCodeNetwork, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeNetwork,
			expected: true,
		},
		{
			name:     "wrapped inner code",
			err:      Wrap(ErrCodePartitionFailed, New(ErrCodeSizeLimit, "inner"), "outer"),
			code:     ErrCodeSizeLimit,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("context: %w", New(ErrCodeFileNotFound, "x")),
			code:     ErrCodeFileNotFound,
			expected: true,
		},
		{
			name:     "joined",
			err:      errors.Join(errors.New("plain"), New(ErrCodeUploadFailed, "x")),
			code:     ErrCodeUploadFailed,
			expected: true,
		},
		{
			name: "joined beneath a wrapped cause",
			err: fmt.Errorf("import: %w", errors.Join(
				Wrap(ErrCodeNetwork, errors.New("reset"), "upload"),
				New(ErrCodePartitionFailed, "part 2"),
			)),
			code:     ErrCodePartitionFailed,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeSizeLimit, "test"), ErrCodeSizeLimit},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Error type", New(ErrCodeInvalidInput, "friendly message"), "friendly message"},
		{"plain error", errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeOutOfRange,
		ErrCodeInvalidPath,
		ErrCodeNotFound,
		ErrCodeFileNotFound,
		ErrCodeSessionNotFound,
		ErrCodeSizeLimit,
		ErrCodeUploadFailed,
		ErrCodeMalformedResponse,
		ErrCodePartitionFailed,
		ErrCodeNetwork,
		ErrCodeTimeout,
		ErrCodeUnauthorized,
		ErrCodeSessionExpired,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
