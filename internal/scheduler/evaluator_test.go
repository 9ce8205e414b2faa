package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdesk-dev/shift-planner/backend/internal/domain"
)

func day(dayOfMonth int) time.Time {
	return time.Date(2024, 6, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

func window(t *testing.T, dayOfMonth int, slot domain.ShiftSlot) (time.Time, time.Time) {
	t.Helper()
	start, end, err := domain.SlotWindow(day(dayOfMonth), slot)
	require.NoError(t, err)
	return start, end
}

func assignment(userID int64, role domain.AssignmentRole, start, end time.Time) domain.ShiftAssignmentRecord {
	return domain.ShiftAssignmentRecord{UserID: userID, Role: role, Start: start, End: end}
}

func TestEvaluatorBusy(t *testing.T) {
	user := &domain.User{ID: 1, Name: "Alice Adams", Role: domain.RoleEmployee, Status: domain.UserStatusActive}
	shift1Start, shift1End := window(t, 3, domain.SlotShift1)
	shift2Start, shift2End := window(t, 3, domain.SlotShift2)

	t.Run("overlapping assignment is busy", func(t *testing.T) {
		evaluator := NewEvaluator(
			[]*domain.User{user},
			[]domain.ShiftAssignmentRecord{assignment(1, domain.AssignmentRolePrimary, shift1Start, shift1End)},
			nil,
		)

		signals, err := evaluator.Evaluate(1, shift1Start, shift1End, domain.SlotShift1)
		require.NoError(t, err)
		assert.True(t, signals.Busy)
	})

	t.Run("back-to-back slots do not conflict", func(t *testing.T) {
		evaluator := NewEvaluator(
			[]*domain.User{user},
			[]domain.ShiftAssignmentRecord{assignment(1, domain.AssignmentRolePrimary, shift1Start, shift1End)},
			nil,
		)

		signals, err := evaluator.Evaluate(1, shift2Start, shift2End, domain.SlotShift2)
		require.NoError(t, err)
		assert.False(t, signals.Busy)
		assert.Equal(t, 1, signals.SameDayLoad)
	})

	t.Run("non-primary roles count as busy too", func(t *testing.T) {
		evaluator := NewEvaluator(
			[]*domain.User{user},
			[]domain.ShiftAssignmentRecord{assignment(1, domain.AssignmentRoleBackup, shift1Start, shift1End)},
			nil,
		)

		signals, err := evaluator.Evaluate(1, shift1Start, shift1End, domain.SlotShift1)
		require.NoError(t, err)
		assert.True(t, signals.Busy)
	})
}

func TestEvaluatorSameDayLoad(t *testing.T) {
	user := &domain.User{ID: 1, Name: "Alice Adams", Role: domain.RoleEmployee, Status: domain.UserStatusActive}
	shift1Start, shift1End := window(t, 3, domain.SlotShift1)
	shift2Start, shift2End := window(t, 3, domain.SlotShift2)
	otherDayStart, otherDayEnd := window(t, 4, domain.SlotShift1)

	evaluator := NewEvaluator(
		[]*domain.User{user},
		[]domain.ShiftAssignmentRecord{
			assignment(1, domain.AssignmentRolePrimary, shift1Start, shift1End),
			assignment(1, domain.AssignmentRoleBackup, shift2Start, shift2End),
			assignment(1, domain.AssignmentRolePrimary, otherDayStart, otherDayEnd),
		},
		nil,
	)

	signals, err := evaluator.Evaluate(1, shift2Start, shift2End, domain.SlotShift2)
	require.NoError(t, err)
	// Both June 3rd assignments count; June 4th does not.
	assert.Equal(t, 2, signals.SameDayLoad)
}

func TestEvaluatorUnavailable(t *testing.T) {
	user := &domain.User{ID: 1, Name: "Alice Adams", Role: domain.RoleEmployee, Status: domain.UserStatusActive}
	shift1Start, shift1End := window(t, 3, domain.SlotShift1)

	request := func(status domain.RequestStatus, slot domain.ShiftSlot, date time.Time) *domain.UnavailabilityRequest {
		return &domain.UnavailabilityRequest{UserID: 1, Date: date, Slot: slot, Status: status}
	}

	cases := []struct {
		name        string
		request     *domain.UnavailabilityRequest
		unavailable bool
	}{
		{"open blocks", request(domain.RequestStatusOpen, domain.SlotShift1, day(3)), true},
		{"under review blocks", request(domain.RequestStatusUnderReview, domain.SlotShift1, day(3)), true},
		{"approved blocks", request(domain.RequestStatusApproved, domain.SlotShift1, day(3)), true},
		{"declined does not block", request(domain.RequestStatusDeclined, domain.SlotShift1, day(3)), false},
		{"cancelled does not block", request(domain.RequestStatusCancelled, domain.SlotShift1, day(3)), false},
		{"other slot does not block", request(domain.RequestStatusApproved, domain.SlotShift2, day(3)), false},
		{"other date does not block", request(domain.RequestStatusApproved, domain.SlotShift1, day(4)), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			evaluator := NewEvaluator([]*domain.User{user}, nil, []*domain.UnavailabilityRequest{tc.request})

			signals, err := evaluator.Evaluate(1, shift1Start, shift1End, domain.SlotShift1)
			require.NoError(t, err)
			assert.Equal(t, tc.unavailable, signals.Unavailable)
		})
	}
}

func TestEvaluatorUnknownUser(t *testing.T) {
	shift1Start, shift1End := window(t, 3, domain.SlotShift1)
	evaluator := NewEvaluator(nil, nil, nil)

	_, err := evaluator.Evaluate(42, shift1Start, shift1End, domain.SlotShift1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
