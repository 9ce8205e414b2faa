package seed

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/crewdesk-dev/shift-planner/backend/internal/domain"
	"github.com/crewdesk-dev/shift-planner/backend/internal/repository"
	"github.com/crewdesk-dev/shift-planner/backend/internal/utils"
)

// SeedShiftHistory backfills the trailing weeks with published, assigned
// shifts. Each employee is pinned to a couple of recurring (weekday, slot)
// pairs so the recommendation engine has real regularity to find, with a dash
// of random noise on top.
func SeedShiftHistory(repo *repository.Repository, weeks int) int {
	users, err := repo.GetAllUsers()
	if err != nil {
		slog.Error("failed to load users", "error", err)
		return 0
	}

	employees := make([]*domain.User, 0, len(users))
	for _, user := range users {
		if user.Role == domain.RoleEmployee && user.Status == domain.UserStatusActive {
			employees = append(employees, user)
		}
	}
	if len(employees) == 0 {
		slog.Error("no active employees to assign, seed users first")
		return 0
	}

	habits := make(map[int64][]recurring, len(employees))
	slots := []domain.ShiftSlot{domain.SlotShift1, domain.SlotShift2}
	for _, employee := range employees {
		n := rand.Intn(2) + 1
		for i := 0; i < n; i++ {
			habits[employee.ID] = append(habits[employee.ID], recurring{
				weekday: time.Weekday(rand.Intn(7)),
				slot:    slots[rand.Intn(len(slots))],
			})
		}
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	created := 0
	for day := weeks * 7; day > 0; day-- {
		date := today.AddDate(0, 0, -day)
		for _, slot := range slots {
			assignee := pickAssignee(employees, habits, date.Weekday(), slot)
			if assignee == nil {
				continue
			}

			start, end, err := domain.SlotWindow(date, slot)
			if err != nil {
				slog.Error("failed to derive slot window", "error", err)
				return created
			}

			shift := &domain.Shift{
				Slot:   slot,
				Start:  start,
				End:    end,
				Status: domain.ShiftStatusPublished,
			}
			if err := repo.CreateShift(shift, &assignee.ID); err != nil {
				slog.Error("failed to insert shift", "error", err)
				continue
			}
			created++
		}
	}

	return created
}

type recurring struct {
	weekday time.Weekday
	slot    domain.ShiftSlot
}

func pickAssignee(employees []*domain.User, habits map[int64][]recurring, weekday time.Weekday, slot domain.ShiftSlot) *domain.User {
	regulars := make([]*domain.User, 0, len(employees))
	for _, employee := range employees {
		for _, habit := range habits[employee.ID] {
			if habit.weekday == weekday && habit.slot == slot {
				regulars = append(regulars, employee)
				break
			}
		}
	}

	// Mostly the regulars, occasionally somebody else, sometimes nobody.
	roll := rand.Intn(10)
	switch {
	case len(regulars) > 0 && roll < 7:
		return regulars[rand.Intn(len(regulars))]
	case roll < 8:
		return employees[rand.Intn(len(employees))]
	default:
		return nil
	}
}

// SeedUnavailability inserts n requests spread over the next two weeks and
// walks a random share of them through the review workflow so every status
// shows up in listings.
func SeedUnavailability(repo *repository.Repository, reviewerID int64, n int) int {
	users, err := repo.GetAllUsers()
	if err != nil {
		slog.Error("failed to load users", "error", err)
		return 0
	}

	employees := make([]*domain.User, 0, len(users))
	for _, user := range users {
		if user.Role == domain.RoleEmployee {
			employees = append(employees, user)
		}
	}
	if len(employees) == 0 {
		slog.Error("no employees to create requests for, seed users first")
		return 0
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	slots := []domain.ShiftSlot{domain.SlotShift1, domain.SlotShift2}
	created := 0

	for i := 0; i < n; i++ {
		employee := employees[rand.Intn(len(employees))]
		reason := utils.GenerateRandomReason()
		request := &domain.UnavailabilityRequest{
			UserID: employee.ID,
			Date:   today.AddDate(0, 0, rand.Intn(14)+1),
			Slot:   slots[rand.Intn(len(slots))],
			Reason: &reason,
		}

		if err := repo.CreateUnavailabilityRequest(request); err != nil {
			slog.Error("failed to insert unavailability request", "error", err)
			continue
		}
		created++

		switch rand.Intn(5) {
		case 0:
			if err := repo.BeginUnavailabilityReview(request); err != nil {
				slog.Error("failed to move request under review", "error", err)
			}
		case 1:
			if err := repo.ReviewUnavailabilityRequest(request, reviewerID, domain.RequestStatusApproved, nil); err != nil {
				slog.Error("failed to approve request", "error", err)
			}
		case 2:
			note := "conflicts with minimum staffing"
			if err := repo.ReviewUnavailabilityRequest(request, reviewerID, domain.RequestStatusDeclined, &note); err != nil {
				slog.Error("failed to decline request", "error", err)
			}
		case 3:
			if err := repo.CancelUnavailabilityRequest(request); err != nil {
				slog.Error("failed to cancel request", "error", err)
			}
		}
	}

	return created
}
