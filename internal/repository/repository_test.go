package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsForeignKeyViolation(t *testing.T) {
	fkErr := &pgconn.PgError{Code: "23503", ConstraintName: "shift_assignments_user_id_fkey"}

	assert.True(t, IsForeignKeyViolation(fkErr))
	assert.True(t, IsForeignKeyViolation(fmt.Errorf("deleting user: %w", fkErr)))

	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}))
	assert.False(t, IsForeignKeyViolation(errors.New("connection reset")))
	assert.False(t, IsForeignKeyViolation(nil))
}
