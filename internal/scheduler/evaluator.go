package scheduler

import (
	"time"

	"github.com/crewdesk-dev/shift-planner/backend/internal/domain"
)

// Evaluator answers availability questions from data loaded up front. It
// performs no I/O and holds no mutable state between calls; callers fetch the
// relevant users, assignment records and unavailability requests and hand
// them over.
type Evaluator struct {
	users       map[int64]*domain.User
	assignments []domain.ShiftAssignmentRecord
	requests    []*domain.UnavailabilityRequest
}

func NewEvaluator(users []*domain.User, assignments []domain.ShiftAssignmentRecord, requests []*domain.UnavailabilityRequest) *Evaluator {
	usersByID := make(map[int64]*domain.User, len(users))
	for _, user := range users {
		usersByID[user.ID] = user
	}

	return &Evaluator{
		users:       usersByID,
		assignments: assignments,
		requests:    requests,
	}
}

// Evaluate reports the scheduling signals for a user against the window of a
// (date, slot) target. Busy uses half-open interval overlap, so back-to-back
// shifts do not conflict. SameDayLoad counts assignments on any slot of the
// window's calendar date.
func (e *Evaluator) Evaluate(userID int64, windowStart, windowEnd time.Time, slot domain.ShiftSlot) (Signals, error) {
	if _, exists := e.users[userID]; !exists {
		return Signals{}, &domain.NotFoundError{Resource: "user", ID: userID}
	}

	var signals Signals

	for _, assignment := range e.assignments {
		if assignment.UserID != userID {
			continue
		}
		if assignment.Start.Before(windowEnd) && windowStart.Before(assignment.End) {
			signals.Busy = true
		}
		if sameCalendarDay(assignment.Start, windowStart) {
			signals.SameDayLoad++
		}
	}

	for _, request := range e.requests {
		if request.UserID != userID || request.Slot != slot {
			continue
		}
		if !request.Status.BlocksScheduling() {
			continue
		}
		if sameCalendarDay(request.Date, windowStart) {
			signals.Unavailable = true
			break
		}
	}

	return signals, nil
}

func sameCalendarDay(a, b time.Time) bool {
	aYear, aMonth, aDay := a.Date()
	bYear, bMonth, bDay := b.Date()
	return aYear == bYear && aMonth == bMonth && aDay == bDay
}
