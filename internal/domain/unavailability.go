package domain

import (
	"fmt"
	"strings"
	"time"
)

type RequestStatus string

const (
	RequestStatusOpen        RequestStatus = "OPEN"
	RequestStatusUnderReview RequestStatus = "UNDER_REVIEW"
	RequestStatusApproved    RequestStatus = "APPROVED"
	RequestStatusDeclined    RequestStatus = "DECLINED"
	RequestStatusCancelled   RequestStatus = "CANCELLED"
)

func ParseRequestStatus(s string) (RequestStatus, error) {
	switch status := RequestStatus(s); status {
	case RequestStatusOpen, RequestStatusUnderReview, RequestStatusApproved, RequestStatusDeclined, RequestStatusCancelled:
		return status, nil
	default:
		return "", &ValidationError{Field: "status", Message: fmt.Sprintf("unknown request status %q", s)}
	}
}

// CanTransitionTo encodes the review state machine. APPROVED, DECLINED and
// CANCELLED are terminal; UNDER_REVIEW can no longer be self-cancelled.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	switch s {
	case RequestStatusOpen:
		return next == RequestStatusUnderReview ||
			next == RequestStatusApproved ||
			next == RequestStatusDeclined ||
			next == RequestStatusCancelled
	case RequestStatusUnderReview:
		return next == RequestStatusApproved || next == RequestStatusDeclined
	default:
		return false
	}
}

func (s RequestStatus) IsTerminal() bool {
	return s != RequestStatusOpen && s != RequestStatusUnderReview
}

// BlocksScheduling reports whether a request in this status contributes to the
// availability evaluator's unavailable signal. Evaluation is always against
// current status, never history.
func (s RequestStatus) BlocksScheduling() bool {
	return s == RequestStatusOpen || s == RequestStatusUnderReview || s == RequestStatusApproved
}

type UnavailabilityRequest struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"userID"`
	RequesterName string        `json:"requesterName,omitempty"`
	Date          time.Time     `json:"date"`
	Slot          ShiftSlot     `json:"slot"`
	Reason        *string       `json:"reason"`
	AttachmentURL *string       `json:"attachmentURL"`
	Status        RequestStatus `json:"status"`
	ReviewedByID  *int64        `json:"reviewedByID"`
	ReviewNote    *string       `json:"reviewNote"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	Version       int32         `json:"-"`
}

// ValidateReview enforces the review invariant: a decline must carry a
// non-empty note, an approval's note is optional.
func ValidateReview(next RequestStatus, note *string) error {
	switch next {
	case RequestStatusApproved:
		return nil
	case RequestStatusDeclined:
		if note == nil || strings.TrimSpace(*note) == "" {
			return &ValidationError{Field: "reviewNote", Message: "declining a request requires a review note"}
		}
		return nil
	default:
		return &ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("review status must be %s or %s", RequestStatusApproved, RequestStatusDeclined),
		}
	}
}

// CanSelfEdit gates owner edits and self-cancellation: only the owner, and
// only while the request is still OPEN.
func (r *UnavailabilityRequest) CanSelfEdit(callerID int64) error {
	if r.UserID != callerID {
		return &ForbiddenError{Message: "only the owner may modify this request"}
	}
	if r.Status != RequestStatusOpen {
		return &ConflictError{Message: fmt.Sprintf("request is %s and can no longer be modified by its owner", r.Status)}
	}
	return nil
}
