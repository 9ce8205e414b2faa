package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/crewdesk-dev/shift-planner/backend/internal/domain"
)

const unavailabilitySelect = `
	SELECT
		ur.id,
		ur.user_id,
		u.name,
		ur.date,
		ur.slot,
		ur.reason,
		ur.attachment_url,
		ur.status,
		ur.reviewed_by_id,
		ur.review_note,
		ur.created_at,
		ur.updated_at,
		ur.version
	FROM unavailability_requests ur
	JOIN users u ON ur.user_id = u.id
`

func scanUnavailabilityRequest(scan func(dst ...any) error) (*domain.UnavailabilityRequest, error) {
	request := &domain.UnavailabilityRequest{}
	dst := []any{
		&request.ID,
		&request.UserID,
		&request.RequesterName,
		&request.Date,
		&request.Slot,
		&request.Reason,
		&request.AttachmentURL,
		&request.Status,
		&request.ReviewedByID,
		&request.ReviewNote,
		&request.CreatedAt,
		&request.UpdatedAt,
		&request.Version,
	}
	if err := scan(dst...); err != nil {
		return nil, err
	}
	return request, nil
}

func (r *Repository) CreateUnavailabilityRequest(request *domain.UnavailabilityRequest) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO unavailability_requests (user_id, date, slot, reason, attachment_url, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at, version
	`

	args := []any{request.UserID, request.Date, request.Slot, request.Reason, request.AttachmentURL, domain.RequestStatusOpen}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt, &request.Version); err != nil {
		return err
	}
	request.Status = domain.RequestStatusOpen

	if err := r.dbpool.QueryRowContext(ctx, `SELECT name FROM users WHERE id = $1`, request.UserID).Scan(&request.RequesterName); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetUnavailabilityRequestByID(id int64) (*domain.UnavailabilityRequest, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := unavailabilitySelect + ` WHERE ur.id = $1`

	return scanUnavailabilityRequest(func(dst ...any) error {
		return r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...)
	})
}

type UnavailabilityFilter struct {
	UserID   *int64
	Slot     *domain.ShiftSlot
	Statuses []domain.RequestStatus
	From     *time.Time
	To       *time.Time
	Search   *string
}

func (r *Repository) ListUnavailabilityRequests(filter UnavailabilityFilter) ([]*domain.UnavailabilityRequest, error) {
	conditions := make([]string, 0, 5)
	args := make([]any, 0, 5)

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("ur.user_id = $%d", len(args)))
	}
	if filter.Slot != nil {
		args = append(args, *filter.Slot)
		conditions = append(conditions, fmt.Sprintf("ur.slot = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			args = append(args, status)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		conditions = append(conditions, fmt.Sprintf("ur.status IN (%s)", strings.Join(placeholders, ", ")))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("ur.date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("ur.date <= $%d", len(args)))
	}
	if filter.Search != nil {
		args = append(args, "%"+*filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("ur.reason ILIKE $%d", len(args)))
	}

	query := unavailabilitySelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY ur.created_at DESC"

	return r.queryUnavailabilityRequests(query, args)
}

// GetUnavailabilityRequestsByDate returns all requests targeting one calendar
// date, any slot and status; the evaluator filters by current status itself.
func (r *Repository) GetUnavailabilityRequestsByDate(date time.Time) ([]*domain.UnavailabilityRequest, error) {
	query := unavailabilitySelect + ` WHERE ur.date = $1`
	return r.queryUnavailabilityRequests(query, []any{date})
}

func (r *Repository) queryUnavailabilityRequests(query string, args []any) ([]*domain.UnavailabilityRequest, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]*domain.UnavailabilityRequest, 0)
	for rows.Next() {
		request, err := scanUnavailabilityRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}

// UpdateUnavailabilityRequestOwnerFields rewrites date/slot/reason as a single
// conditional update: it only applies while the request is still OPEN at the
// caller's version. A missing row means the state moved underneath the caller.
func (r *Repository) UpdateUnavailabilityRequestOwnerFields(request *domain.UnavailabilityRequest) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE unavailability_requests
		SET
			date = $1,
			slot = $2,
			reason = $3,
			updated_at = now(),
			version = version + 1
		WHERE id = $4 AND status = $5 AND version = $6
		RETURNING updated_at, version
	`

	args := []any{request.Date, request.Slot, request.Reason, request.ID, domain.RequestStatusOpen, request.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&request.UpdatedAt, &request.Version)
}

// BeginUnavailabilityReview moves OPEN to UNDER_REVIEW without setting a
// reviewer; the reviewer is only recorded on the final verdict.
func (r *Repository) BeginUnavailabilityReview(request *domain.UnavailabilityRequest) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE unavailability_requests
		SET status = $1, updated_at = now(), version = version + 1
		WHERE id = $2 AND status = $3 AND version = $4
		RETURNING updated_at, version
	`

	args := []any{domain.RequestStatusUnderReview, request.ID, domain.RequestStatusOpen, request.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&request.UpdatedAt, &request.Version); err != nil {
		return err
	}
	request.Status = domain.RequestStatusUnderReview

	return nil
}

// ReviewUnavailabilityRequest resolves a request to APPROVED or DECLINED with
// a single compare-and-set: the transition only applies if the row is still
// OPEN or UNDER_REVIEW at the caller's version, so two concurrent reviews
// cannot both succeed.
func (r *Repository) ReviewUnavailabilityRequest(request *domain.UnavailabilityRequest, reviewerID int64, status domain.RequestStatus, note *string) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE unavailability_requests
		SET
			status = $1,
			reviewed_by_id = $2,
			review_note = $3,
			updated_at = now(),
			version = version + 1
		WHERE id = $4 AND status IN ($5, $6) AND version = $7
		RETURNING updated_at, version
	`

	args := []any{status, reviewerID, note, request.ID, domain.RequestStatusOpen, domain.RequestStatusUnderReview, request.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&request.UpdatedAt, &request.Version); err != nil {
		return err
	}

	request.Status = status
	request.ReviewedByID = &reviewerID
	request.ReviewNote = note

	return nil
}

// CancelUnavailabilityRequest is the owner's self-cancel, conditional on the
// request still being OPEN.
func (r *Repository) CancelUnavailabilityRequest(request *domain.UnavailabilityRequest) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE unavailability_requests
		SET status = $1, updated_at = now(), version = version + 1
		WHERE id = $2 AND status = $3 AND version = $4
		RETURNING updated_at, version
	`

	args := []any{domain.RequestStatusCancelled, request.ID, domain.RequestStatusOpen, request.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&request.UpdatedAt, &request.Version); err != nil {
		return err
	}
	request.Status = domain.RequestStatusCancelled

	return nil
}
