package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorWrapping(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
	}{
		{&ValidationError{Field: "slot", Message: "unknown"}, ErrValidation},
		{&NotFoundError{Resource: "user", ID: 7}, ErrNotFound},
		{&ConflictError{Message: "stale version"}, ErrConflict},
		{&ForbiddenError{Message: "not the owner"}, ErrForbidden},
	}

	for _, tc := range cases {
		assert.ErrorIs(t, tc.err, tc.sentinel)
		// Wrapping survives another fmt layer.
		assert.ErrorIs(t, fmt.Errorf("handling request: %w", tc.err), tc.sentinel)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	withField := &ValidationError{Field: "slot", Message: "unknown shift slot"}
	assert.Equal(t, "slot: unknown shift slot", withField.Error())

	bare := &ValidationError{Message: "unknown shift slot"}
	assert.Equal(t, "unknown shift slot", bare.Error())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&ConflictError{Message: "lost the race"}))
	assert.False(t, IsRetryable(&NotFoundError{Resource: "shift", ID: 1}))
	assert.False(t, IsRetryable(errors.New("boom")))
}
