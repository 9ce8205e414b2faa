package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/crewdesk-dev/shift-planner/backend/internal/domain"
)

func (r *Repository) CreateShift(shift *domain.Shift, assigneeID *int64) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO shifts (slot, start_at, end_at, status, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	args := []any{shift.Slot, shift.Start, shift.End, shift.Status, shift.Notes}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&shift.ID, &shift.CreatedAt, &shift.Version); err != nil {
		return err
	}

	shift.Assignments = make([]domain.ShiftAssignment, 0, 1)
	if assigneeID != nil {
		assignment := domain.ShiftAssignment{
			ShiftID: shift.ID,
			UserID:  *assigneeID,
			Role:    domain.AssignmentRolePrimary,
		}

		query = `
			INSERT INTO shift_assignments (shift_id, user_id, role)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`
		if err := tx.QueryRowContext(ctx, query, assignment.ShiftID, assignment.UserID, assignment.Role).Scan(&assignment.ID, &assignment.CreatedAt); err != nil {
			return err
		}

		query = `SELECT name FROM users WHERE id = $1`
		if err := tx.QueryRowContext(ctx, query, assignment.UserID).Scan(&assignment.UserName); err != nil {
			return err
		}

		shift.Assignments = append(shift.Assignments, assignment)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// UpdateShift writes the shift behind a version guard. When assigneeID is set
// the shift's assignments are replaced inside the same transaction: every
// existing assignment is deleted and a single new PRIMARY inserted, so a
// concurrent reader never observes zero or two PRIMARY assignees. The removed
// assignments are returned so callers can surface what the replace discarded.
func (r *Repository) UpdateShift(shift *domain.Shift, assigneeID *int64) ([]domain.ShiftAssignment, error) {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE shifts
		SET
			slot = $1,
			start_at = $2,
			end_at = $3,
			status = $4,
			notes = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING created_at, version
	`

	args := []any{shift.Slot, shift.Start, shift.End, shift.Status, shift.Notes, shift.ID, shift.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&shift.CreatedAt, &shift.Version); err != nil {
		return nil, err
	}

	var removed []domain.ShiftAssignment
	if assigneeID != nil {
		query = `
			DELETE FROM shift_assignments
			WHERE shift_id = $1
			RETURNING id, user_id, role, notes, created_at
		`
		rows, err := tx.QueryContext(ctx, query, shift.ID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		for rows.Next() {
			assignment := domain.ShiftAssignment{ShiftID: shift.ID}
			if err := rows.Scan(&assignment.ID, &assignment.UserID, &assignment.Role, &assignment.Notes, &assignment.CreatedAt); err != nil {
				return nil, err
			}
			removed = append(removed, assignment)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}

		assignment := domain.ShiftAssignment{
			ShiftID: shift.ID,
			UserID:  *assigneeID,
			Role:    domain.AssignmentRolePrimary,
		}

		query = `
			INSERT INTO shift_assignments (shift_id, user_id, role)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`
		if err := tx.QueryRowContext(ctx, query, assignment.ShiftID, assignment.UserID, assignment.Role).Scan(&assignment.ID, &assignment.CreatedAt); err != nil {
			return nil, err
		}

		query = `SELECT name FROM users WHERE id = $1`
		if err := tx.QueryRowContext(ctx, query, assignment.UserID).Scan(&assignment.UserName); err != nil {
			return nil, err
		}

		shift.Assignments = []domain.ShiftAssignment{assignment}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return removed, nil
}

// DeleteShift removes the shift's assignments first, then the shift itself,
// in one transaction. Referential cleanup, not a cascading delete.
func (r *Repository) DeleteShift(id int64) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM shift_assignments WHERE shift_id = $1`, id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM shifts WHERE id = $1`, id)
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

func (r *Repository) GetShiftByID(id int64) (*domain.Shift, error) {
	shifts, err := r.queryShifts(`WHERE s.id = $1`, []any{id})
	if err != nil {
		return nil, err
	}
	if len(shifts) == 0 {
		return nil, sql.ErrNoRows
	}
	return shifts[0], nil
}

type ShiftFilter struct {
	Slot       *domain.ShiftSlot
	Statuses   []domain.ShiftStatus
	From       *time.Time
	To         *time.Time
	AssigneeID *int64
}

func (r *Repository) ListShifts(filter ShiftFilter) ([]*domain.Shift, error) {
	conditions := make([]string, 0, 4)
	args := make([]any, 0, 4)

	if filter.Slot != nil {
		args = append(args, *filter.Slot)
		conditions = append(conditions, fmt.Sprintf("s.slot = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			args = append(args, status)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		conditions = append(conditions, fmt.Sprintf("s.status IN (%s)", strings.Join(placeholders, ", ")))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("s.start_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("s.start_at <= $%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		conditions = append(conditions, fmt.Sprintf("EXISTS (SELECT 1 FROM shift_assignments sa WHERE sa.shift_id = s.id AND sa.user_id = $%d)", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	return r.queryShifts(where, args)
}

func (r *Repository) queryShifts(where string, args []any) ([]*domain.Shift, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := fmt.Sprintf(`
		SELECT
			s.id,
			s.slot,
			s.start_at,
			s.end_at,
			s.status,
			s.notes,
			s.created_at,
			s.version,
			a.id,
			a.user_id,
			u.name,
			a.role,
			a.notes,
			a.created_at
		FROM shifts s
		LEFT JOIN shift_assignments a ON s.id = a.shift_id
		LEFT JOIN users u ON a.user_id = u.id
		%s
		ORDER BY s.start_at, s.id, a.id
	`, where)

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	shiftsMap := make(map[int64]*domain.Shift)

	for rows.Next() {
		var row struct {
			ID        int64
			Slot      domain.ShiftSlot
			StartAt   time.Time
			EndAt     time.Time
			Status    domain.ShiftStatus
			Notes     *string
			CreatedAt time.Time
			Version   int32

			AssignmentID        sql.NullInt64
			UserID              sql.NullInt64
			UserName            sql.NullString
			Role                sql.NullString
			AssignmentNotes     *string
			AssignmentCreatedAt sql.NullTime
		}

		dst := []any{
			&row.ID,
			&row.Slot,
			&row.StartAt,
			&row.EndAt,
			&row.Status,
			&row.Notes,
			&row.CreatedAt,
			&row.Version,
			&row.AssignmentID,
			&row.UserID,
			&row.UserName,
			&row.Role,
			&row.AssignmentNotes,
			&row.AssignmentCreatedAt,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		shift, exists := shiftsMap[row.ID]
		if !exists {
			shift = &domain.Shift{
				ID:          row.ID,
				Slot:        row.Slot,
				Start:       row.StartAt,
				End:         row.EndAt,
				Status:      row.Status,
				Notes:       row.Notes,
				Assignments: make([]domain.ShiftAssignment, 0),
				CreatedAt:   row.CreatedAt,
				Version:     row.Version,
			}
			shiftsMap[row.ID] = shift
			shifts = append(shifts, shift)
		}

		// A NULL assignment id means the shift has no assignments.
		if !row.AssignmentID.Valid {
			continue
		}

		shift.Assignments = append(shift.Assignments, domain.ShiftAssignment{
			ID:        row.AssignmentID.Int64,
			ShiftID:   row.ID,
			UserID:    row.UserID.Int64,
			UserName:  row.UserName.String,
			Role:      domain.AssignmentRole(row.Role.String),
			Notes:     row.AssignmentNotes,
			CreatedAt: row.AssignmentCreatedAt.Time,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

// AddShiftAssignment inserts an out-of-band BACKUP or SHADOW assignment. Note
// that a later update supplying a new assignee replaces these too.
func (r *Repository) AddShiftAssignment(assignment *domain.ShiftAssignment) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO shift_assignments (shift_id, user_id, role, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	args := []any{assignment.ShiftID, assignment.UserID, assignment.Role, assignment.Notes}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&assignment.ID, &assignment.CreatedAt); err != nil {
		return err
	}

	if err := r.dbpool.QueryRowContext(ctx, `SELECT name FROM users WHERE id = $1`, assignment.UserID).Scan(&assignment.UserName); err != nil {
		return err
	}

	return nil
}

// GetAssignmentRecordsBetween returns the flat assignment projections whose
// shift window overlaps [from, to), the shape the availability evaluator and
// recommendation engine consume.
func (r *Repository) GetAssignmentRecordsBetween(from, to time.Time) ([]domain.ShiftAssignmentRecord, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT a.shift_id, a.user_id, a.role, s.start_at, s.end_at
		FROM shift_assignments a
		JOIN shifts s ON a.shift_id = s.id
		WHERE s.start_at < $2 AND s.end_at > $1
	`

	rows, err := r.dbpool.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.ShiftAssignmentRecord, 0)
	for rows.Next() {
		var record domain.ShiftAssignmentRecord
		if err := rows.Scan(&record.ShiftID, &record.UserID, &record.Role, &record.Start, &record.End); err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
