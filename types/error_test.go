package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewError(ErrDriverError, "cdp call failed").
		WithCause(root).
		WithRetryable(true).
		WithDriver("chrome")

	if GetErrorCode(err) != ErrDriverError {
		t.Fatalf("expected code %s, got %s", ErrDriverError, GetErrorCode(err))
	}
	if !IsRetryable(err) {
		t.Fatalf("expected retryable")
	}
	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is unwrap to root")
	}
	if got := err.Error(); got == "" {
		t.Fatalf("expected non-empty error string")
	}
}

func TestError_NotFoundAndStale(t *testing.T) {
	t.Parallel()

	nf := NotFound("css=#missing")
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsStale(nf))
	assert.Equal(t, "[ELEMENT_NOT_FOUND] no element matches css=#missing", nf.Error())

	st := Stale("div#a")
	assert.True(t, IsStale(st))
	assert.True(t, IsRetryable(st))
	assert.False(t, IsNotFound(st))

	// Wrapped with fmt.Errorf and inside another coded error.
	wrapped := fmt.Errorf("lookup: %w", st)
	assert.True(t, IsStale(wrapped))
	outer := NewError(ErrWaitTimeout, "timed out").WithCause(wrapped)
	assert.Equal(t, ErrWaitTimeout, GetErrorCode(outer))
	assert.True(t, IsStale(outer))

	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))
}
