package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdesk-dev/shift-planner/backend/internal/domain"
)

func employee(id int64, name string) *domain.User {
	return &domain.User{ID: id, Name: name, Role: domain.RoleEmployee, Status: domain.UserStatusActive}
}

// weekdayHistory builds PRIMARY assignment records for the same slot on the
// same weekday, one per trailing week.
func weekdayHistory(t *testing.T, userID int64, date time.Time, slot domain.ShiftSlot, weeks int) []domain.ShiftAssignmentRecord {
	t.Helper()
	records := make([]domain.ShiftAssignmentRecord, 0, weeks)
	for i := 1; i <= weeks; i++ {
		start, end, err := domain.SlotWindow(date.AddDate(0, 0, -7*i), slot)
		require.NoError(t, err)
		records = append(records, assignment(userID, domain.AssignmentRolePrimary, start, end))
	}
	return records
}

func TestEngineRecommendFrequent(t *testing.T) {
	monday := day(3) // 2024-06-03

	alice := employee(1, "Alice Adams")
	ben := employee(2, "Ben Baker")
	carla := employee(3, "Carla Carter")

	records := weekdayHistory(t, alice.ID, monday, domain.SlotShift1, 3)
	records = append(records, weekdayHistory(t, ben.ID, monday, domain.SlotShift1, 2)...)
	records = append(records, weekdayHistory(t, carla.ID, monday, domain.SlotShift1, 1)...)

	engine := NewEngine([]*domain.User{alice, ben, carla}, records, nil)
	recommendation, err := engine.Recommend(monday, domain.SlotShift1)
	require.NoError(t, err)

	require.Len(t, recommendation.Frequent, 3)
	assert.Equal(t, "Alice Adams", recommendation.Frequent[0].Name)
	assert.Equal(t, 3, recommendation.Frequent[0].Score)
	assert.Equal(t, "Ben Baker", recommendation.Frequent[1].Name)
	assert.Equal(t, 2, recommendation.Frequent[1].Score)
	assert.Equal(t, "Carla Carter", recommendation.Frequent[2].Name)
	assert.Equal(t, 1, recommendation.Frequent[2].Score)

	// Frequent candidates never repeat in the available pool.
	for _, candidate := range recommendation.Available {
		assert.NotContains(t, []int64{alice.ID, ben.ID, carla.ID}, candidate.UserID)
	}
}

func TestEngineRecommendFilters(t *testing.T) {
	monday := day(3)
	alice := employee(1, "Alice Adams")

	lastMonday1, lastMonday1End, err := domain.SlotWindow(monday.AddDate(0, 0, -7), domain.SlotShift1)
	require.NoError(t, err)
	lastTuesday1, lastTuesday1End, err := domain.SlotWindow(monday.AddDate(0, 0, -6), domain.SlotShift1)
	require.NoError(t, err)
	lastMonday2, lastMonday2End, err := domain.SlotWindow(monday.AddDate(0, 0, -7), domain.SlotShift2)
	require.NoError(t, err)
	ancient, ancientEnd, err := domain.SlotWindow(monday.AddDate(0, 0, -LookbackDays-7), domain.SlotShift1)
	require.NoError(t, err)

	cases := []struct {
		name     string
		record   domain.ShiftAssignmentRecord
		frequent bool
	}{
		{"matching weekday and slot counts", assignment(1, domain.AssignmentRolePrimary, lastMonday1, lastMonday1End), true},
		{"other weekday ignored", assignment(1, domain.AssignmentRolePrimary, lastTuesday1, lastTuesday1End), false},
		{"other slot ignored", assignment(1, domain.AssignmentRolePrimary, lastMonday2, lastMonday2End), false},
		{"backup role ignored", assignment(1, domain.AssignmentRoleBackup, lastMonday1, lastMonday1End), false},
		{"outside lookback ignored", assignment(1, domain.AssignmentRolePrimary, ancient, ancientEnd), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := NewEngine([]*domain.User{alice}, []domain.ShiftAssignmentRecord{tc.record}, nil)
			recommendation, err := engine.Recommend(monday, domain.SlotShift1)
			require.NoError(t, err)

			if tc.frequent {
				require.Len(t, recommendation.Frequent, 1)
				assert.Equal(t, alice.ID, recommendation.Frequent[0].UserID)
			} else {
				assert.Empty(t, recommendation.Frequent)
			}
		})
	}
}

func TestEngineBusyExcludedFromFrequent(t *testing.T) {
	monday := day(3)
	alice := employee(1, "Alice Adams")

	records := weekdayHistory(t, alice.ID, monday, domain.SlotShift1, 3)

	// Alice already holds the target window itself.
	targetStart, targetEnd, err := domain.SlotWindow(monday, domain.SlotShift1)
	require.NoError(t, err)
	records = append(records, assignment(alice.ID, domain.AssignmentRolePrimary, targetStart, targetEnd))

	engine := NewEngine([]*domain.User{alice}, records, nil)
	recommendation, err := engine.Recommend(monday, domain.SlotShift1)
	require.NoError(t, err)

	assert.Empty(t, recommendation.Frequent)
	assert.Empty(t, recommendation.Available)
}

func TestEngineAdminsNeverRecommended(t *testing.T) {
	monday := day(3)
	admin := &domain.User{ID: 9, Name: "Ada Admin", Role: domain.RoleAdmin, Status: domain.UserStatusActive}

	records := weekdayHistory(t, admin.ID, monday, domain.SlotShift1, 3)

	engine := NewEngine([]*domain.User{admin}, records, nil)
	recommendation, err := engine.Recommend(monday, domain.SlotShift1)
	require.NoError(t, err)

	assert.Empty(t, recommendation.Frequent)
	assert.Empty(t, recommendation.Available)
}

func TestEngineAvailablePool(t *testing.T) {
	monday := day(3)

	users := make([]*domain.User, 0, 16)
	for i := 1; i <= 15; i++ {
		users = append(users, employee(int64(i), fmt.Sprintf("Employee %02d", i)))
	}
	users = append(users, &domain.User{ID: 99, Name: "Aaron Inactive", Role: domain.RoleEmployee, Status: domain.UserStatusInactive})

	engine := NewEngine(users, nil, nil)
	recommendation, err := engine.Recommend(monday, domain.SlotShift1)
	require.NoError(t, err)

	require.Len(t, recommendation.Available, AvailableLimit)
	for i, candidate := range recommendation.Available {
		assert.Equal(t, fmt.Sprintf("Employee %02d", i+1), candidate.Name)
	}
}

func TestEngineAvailablePoolFlagsUnavailability(t *testing.T) {
	monday := day(3)
	alice := employee(1, "Alice Adams")

	request := &domain.UnavailabilityRequest{
		UserID: alice.ID,
		Date:   monday,
		Slot:   domain.SlotShift1,
		Status: domain.RequestStatusOpen,
	}

	engine := NewEngine([]*domain.User{alice}, nil, []*domain.UnavailabilityRequest{request})
	recommendation, err := engine.Recommend(monday, domain.SlotShift1)
	require.NoError(t, err)

	// An unavailability request flags the candidate but does not remove them.
	require.Len(t, recommendation.Available, 1)
	assert.True(t, recommendation.Available[0].HasUnavailability)
}

func TestEngineUnknownSlot(t *testing.T) {
	engine := NewEngine(nil, nil, nil)

	_, err := engine.Recommend(day(3), domain.ShiftSlot("SHIFT9"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}
