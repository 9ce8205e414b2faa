package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/crewdesk-dev/shift-planner/backend/internal/domain"
)

func TestVerifyCurrentPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse battery"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("matching password passes", func(t *testing.T) {
		assert.NoError(t, verifyCurrentPassword(string(hash), "correct horse battery"))
	})

	t.Run("wrong password is forbidden", func(t *testing.T) {
		assert.ErrorIs(t, verifyCurrentPassword(string(hash), "guess"), domain.ErrForbidden)
	})
}
