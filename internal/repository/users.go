package repository

import (
	"database/sql"
	"encoding/json"

	"github.com/crewdesk-dev/shift-planner/backend/internal/domain"
)

func scanSkills(raw []byte, dst *[]string) error {
	if len(raw) == 0 {
		*dst = []string{}
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func (r *Repository) CreateUser(user *domain.User) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	skills, err := json.Marshal(user.Skills)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO users (username, password_hash, name, email, role, status, timezone, employment_type, skills)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, version
	`

	args := []any{user.Username, user.PasswordHash, user.Name, user.Email, user.Role, user.Status, user.Timezone, user.EmploymentType, skills}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.CreatedAt, &user.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetUserByID(id int64) (*domain.User, error) {
	query := `
		SELECT username, password_hash, name, email, role, status, timezone, employment_type, skills, created_at, version
		FROM users WHERE id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	user := &domain.User{
		ID: id,
	}

	var skills []byte
	dst := []any{&user.Username, &user.PasswordHash, &user.Name, &user.Email, &user.Role, &user.Status, &user.Timezone, &user.EmploymentType, &skills, &user.CreatedAt, &user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}
	if err := scanSkills(skills, &user.Skills); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *Repository) GetUserByUsername(username string) (*domain.User, error) {
	query := `
		SELECT id, password_hash, name, email, role, status, timezone, employment_type, skills, created_at, version
		FROM users WHERE username = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	user := &domain.User{
		Username: username,
	}

	var skills []byte
	dst := []any{&user.ID, &user.PasswordHash, &user.Name, &user.Email, &user.Role, &user.Status, &user.Timezone, &user.EmploymentType, &skills, &user.CreatedAt, &user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, username).Scan(dst...); err != nil {
		return nil, err
	}
	if err := scanSkills(skills, &user.Skills); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *Repository) GetAllUsers() ([]*domain.User, error) {
	query := `
		SELECT id, username, password_hash, name, email, role, status, timezone, employment_type, skills, created_at, version
		FROM users ORDER BY id
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user := &domain.User{}
		var skills []byte
		dst := []any{&user.ID, &user.Username, &user.PasswordHash, &user.Name, &user.Email, &user.Role, &user.Status, &user.Timezone, &user.EmploymentType, &skills, &user.CreatedAt, &user.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if err := scanSkills(skills, &user.Skills); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// UpdateUser writes the mutable profile fields behind a version guard; a
// missing row means the caller's copy is stale.
func (r *Repository) UpdateUser(user *domain.User) error {
	query := `
		UPDATE users
		SET
			password_hash = $1,
			name = $2,
			email = $3,
			role = $4,
			status = $5,
			timezone = $6,
			employment_type = $7,
			skills = $8,
			version = version + 1
		WHERE id = $9 AND version = $10
		RETURNING username, created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	skills, err := json.Marshal(user.Skills)
	if err != nil {
		return err
	}

	args := []any{user.PasswordHash, user.Name, user.Email, user.Role, user.Status, user.Timezone, user.EmploymentType, skills, user.ID, user.Version}
	dst := []any{&user.Username, &user.CreatedAt, &user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

// UpdateUserProfile writes only the self-service profile fields, also behind
// the version guard. Unlike UpdateUser it may change the username.
func (r *Repository) UpdateUserProfile(user *domain.User) error {
	query := `
		UPDATE users
		SET
			name = $1,
			username = $2,
			email = $3,
			timezone = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{user.Name, user.Username, user.Email, user.Timezone, user.ID, user.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.CreatedAt, &user.Version)
}

// DeleteUser removes the user's assignments and requests before the user row
// itself, in one transaction, so the foreign keys never fire. Review verdicts
// the user issued on other people's requests survive with the reviewer
// cleared.
func (r *Repository) DeleteUser(id int64) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM shift_assignments WHERE user_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM unavailability_requests WHERE user_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE unavailability_requests SET reviewed_by_id = NULL WHERE reviewed_by_id = $1`, id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}
