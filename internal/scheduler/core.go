package scheduler

import (
	"sort"
	"time"

	"github.com/crewdesk-dev/shift-planner/backend/internal/domain"
)

// Engine ranks candidate employees for an open (date, slot). Like the
// evaluator it is built from plain slices; the assignment records must cover
// the trailing lookback window and the target date.
type Engine struct {
	users       []*domain.User
	usersByID   map[int64]*domain.User
	assignments []domain.ShiftAssignmentRecord
	evaluator   *Evaluator
}

func NewEngine(users []*domain.User, assignments []domain.ShiftAssignmentRecord, requests []*domain.UnavailabilityRequest) *Engine {
	usersByID := make(map[int64]*domain.User, len(users))
	for _, user := range users {
		usersByID[user.ID] = user
	}

	return &Engine{
		users:       users,
		usersByID:   usersByID,
		assignments: assignments,
		evaluator:   NewEvaluator(users, assignments, requests),
	}
}

type frequentEntry struct {
	user    *domain.User
	count   int
	signals Signals
}

// Recommend returns the two candidate lists for a target (date, slot): the
// historically-frequent assignees of that weekday+slot over the lookback
// window, and a general pool of active employees. Busy users are excluded
// from both; an unknown slot is a validation error and yields no partial
// result.
func (e *Engine) Recommend(date time.Time, slot domain.ShiftSlot) (*Recommendation, error) {
	windowStart, windowEnd, err := domain.SlotWindow(date, slot)
	if err != nil {
		return nil, err
	}

	lookbackStart := windowStart.AddDate(0, 0, -LookbackDays)
	targetWeekday := windowStart.Weekday()

	// Tally PRIMARY assignments whose shift falls in the lookback window,
	// lands on the target weekday and derives to the target slot. The double
	// filter models "this person usually works this slot on this weekday".
	tally := make(map[int64]int)
	for _, assignment := range e.assignments {
		if assignment.Role != domain.AssignmentRolePrimary {
			continue
		}
		if assignment.Start.Before(lookbackStart) || !assignment.Start.Before(windowStart) {
			continue
		}
		if assignment.Start.Weekday() != targetWeekday {
			continue
		}
		if domain.DeriveSlot(assignment.Start) != slot {
			continue
		}
		tally[assignment.UserID]++
	}

	entries := make([]frequentEntry, 0, len(tally))
	for userID, count := range tally {
		user, exists := e.usersByID[userID]
		if !exists || user.Role != domain.RoleEmployee {
			continue
		}
		signals, err := e.evaluator.Evaluate(userID, windowStart, windowEnd, slot)
		if err != nil {
			return nil, err
		}
		if signals.Busy {
			// Busy disqualifies a frequent candidate outright, unlike the
			// soft warning on direct assignment.
			continue
		}
		entries = append(entries, frequentEntry{user: user, count: count, signals: signals})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].user.Name < entries[j].user.Name
	})
	if len(entries) > FrequentLimit {
		entries = entries[:FrequentLimit]
	}

	frequent := make([]Candidate, 0, len(entries))
	frequentIDs := make(map[int64]struct{}, len(entries))
	for _, entry := range entries {
		frequent = append(frequent, Candidate{
			UserID:            entry.user.ID,
			Name:              entry.user.Name,
			Score:             entry.count,
			HasSameDayShift:   entry.signals.SameDayLoad > 0,
			SameDayCount:      entry.signals.SameDayLoad,
			HasUnavailability: entry.signals.Unavailable,
		})
		frequentIDs[entry.user.ID] = struct{}{}
	}

	available, err := e.availablePool(windowStart, windowEnd, slot, frequentIDs)
	if err != nil {
		return nil, err
	}

	return &Recommendation{Frequent: frequent, Available: available}, nil
}

// availablePool selects up to AvailableLimit active employees by name,
// skipping busy users, then drops anyone already listed as frequent.
func (e *Engine) availablePool(windowStart, windowEnd time.Time, slot domain.ShiftSlot, frequentIDs map[int64]struct{}) ([]Candidate, error) {
	active := make([]*domain.User, 0, len(e.users))
	for _, user := range e.users {
		if user.Role != domain.RoleEmployee || user.Status != domain.UserStatusActive {
			continue
		}
		active = append(active, user)
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].Name < active[j].Name
	})

	pool := make([]Candidate, 0, AvailableLimit)
	for _, user := range active {
		if len(pool) >= AvailableLimit {
			break
		}
		signals, err := e.evaluator.Evaluate(user.ID, windowStart, windowEnd, slot)
		if err != nil {
			return nil, err
		}
		if signals.Busy {
			continue
		}
		pool = append(pool, Candidate{
			UserID:            user.ID,
			Name:              user.Name,
			HasSameDayShift:   signals.SameDayLoad > 0,
			SameDayCount:      signals.SameDayLoad,
			HasUnavailability: signals.Unavailable,
		})
	}

	available := make([]Candidate, 0, len(pool))
	for _, candidate := range pool {
		if _, dup := frequentIDs[candidate.UserID]; dup {
			continue
		}
		available = append(available, candidate)
	}

	return available, nil
}
