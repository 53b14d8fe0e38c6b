package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPermissionError(t *testing.T) {
	err := NewPermissionError("event.delete", "viewer")

	assert.Equal(t, ErrorTypeForbidden, err.Type)
	assert.Equal(t, 403, err.HTTPStatus)
	assert.Equal(t, "PERMISSION_DENIED", err.Code)
	assert.Contains(t, err.Message, "event.delete")
	assert.Contains(t, err.Message, "viewer")

	require.NotNil(t, err.Details)
	assert.Equal(t, "event.delete", err.Details["required_permission"])
	assert.Equal(t, "viewer", err.Details["actual_role"])
}

func TestNewDuplicateError(t *testing.T) {
	err := NewDuplicateError("user")

	assert.Equal(t, ErrorTypeConflict, err.Type)
	assert.Equal(t, 409, err.HTTPStatus)
	assert.Contains(t, err.Message, "already exists")
}

func TestAppErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
	}{
		{"validation", NewValidationError("bad input"), 400},
		{"not found", NewNotFoundError("team"), 404},
		{"duplicate", NewDuplicateError("event"), 409},
		{"permission", NewPermissionError("team.delete", "member"), 403},
		{"unauthorized", NewUnauthorizedError("missing token"), 401},
		{"internal", NewInternalError("boom"), 500},
		{"rate limit", NewRateLimitError(100, "1m"), 429},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
		})
	}
}

func TestAppErrorHelpers(t *testing.T) {
	dup := NewDuplicateError("user")
	perm := NewPermissionError("member.remove", "member")
	notFound := NewNotFoundError("event")

	assert.True(t, IsDuplicate(dup))
	assert.False(t, IsDuplicate(perm))

	assert.True(t, IsPermission(perm))
	assert.False(t, IsPermission(notFound))

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(dup))

	// Helpers should see through wrapping
	wrapped := fmt.Errorf("handler failed: %w", dup)
	assert.True(t, IsDuplicate(wrapped))
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := NewDatabaseError("PutItem", cause)

	assert.Equal(t, cause, stderrors.Unwrap(err))
	assert.True(t, stderrors.Is(err, cause))
}

func TestDomainErrorIs(t *testing.T) {
	err := ErrEventNotFound.WithDetail("event_id", "abc")

	assert.True(t, stderrors.Is(err, ErrEventNotFound))
	assert.False(t, stderrors.Is(err, ErrTeamNotFound))
}

func TestDomainErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *DomainError
		status int
	}{
		{"user not found", ErrUserNotFound, 404},
		{"email taken", ErrEmailTaken, 409},
		{"invalid role", ErrInvalidRole, 400},
		{"concurrent modification", ErrConcurrentModification, 409},
		{"store unavailable", ErrStoreUnavailable, 500},
		{"rate limit", ErrRateLimitExceeded, 429},
		{"permission denied", NewPermissionDenied("team.update", "viewer"), 403},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode)
		})
	}
}

func TestNewPermissionDeniedDetails(t *testing.T) {
	err := NewPermissionDenied("member.invite", "viewer")

	assert.Equal(t, DomainAuthorizationError, err.Type)
	assert.Equal(t, "member.invite", err.Details["required_permission"])
	assert.Equal(t, "viewer", err.Details["actual_role"])
}

func TestDomainErrorRetryable(t *testing.T) {
	assert.True(t, ErrConcurrentModification.Retryable)
	assert.True(t, ErrStoreThrottled.Retryable)
	assert.False(t, ErrUserNotFound.Retryable)
}

func TestValidationErrors(t *testing.T) {
	v := NewValidationErrors()
	assert.False(t, v.HasErrors())

	v.Add("title", "title cannot exceed 200 characters")
	v.Add("title", "title is required")
	v.Add("color", "color must match #RRGGBB")

	assert.True(t, v.HasErrors())
	assert.Len(t, v.Errors, 3)
	assert.Contains(t, v.Error(), "title cannot exceed 200 characters")

	m := v.ToMap()
	assert.Len(t, m["title"], 2)
	assert.Len(t, m["color"], 1)
}

func TestValidationErrorsAddError(t *testing.T) {
	v := NewValidationErrors()
	v.AddError(ErrInvalidTimeRange)

	require.True(t, v.HasErrors())
	m := v.ToMap()
	assert.Contains(t, m["general"], ErrInvalidTimeRange.Message)
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("marshal failed")
	err := Wrap(cause, "storing event")

	var appErr *AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, ErrorTypeInternal, appErr.Type)
	assert.Equal(t, cause, stderrors.Unwrap(appErr))

	// Wrapping an AppError preserves its type
	dup := NewDuplicateError("user")
	rewrapped := Wrap(dup, "creating user")
	require.True(t, stderrors.As(rewrapped, &appErr))
	assert.Equal(t, ErrorTypeConflict, appErr.Type)
}
