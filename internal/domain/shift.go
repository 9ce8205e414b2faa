package domain

import (
	"fmt"
	"time"
)

type ShiftSlot string

const (
	SlotShift1 ShiftSlot = "SHIFT1"
	SlotShift2 ShiftSlot = "SHIFT2"
)

type slotDefinition struct {
	StartHour int
	EndHour   int
}

// The fixed daily windows. SHIFT2 ends at hour 24, so its end instant is
// normalized to 00:00 of the next calendar day.
var slotDefinitions = map[ShiftSlot]slotDefinition{
	SlotShift1: {StartHour: 8, EndHour: 17},
	SlotShift2: {StartHour: 17, EndHour: 24},
}

func ParseShiftSlot(s string) (ShiftSlot, error) {
	slot := ShiftSlot(s)
	if _, exists := slotDefinitions[slot]; !exists {
		return "", &ValidationError{Field: "slot", Message: fmt.Sprintf("unknown shift slot %q", s)}
	}
	return slot, nil
}

// SlotWindow derives the (start, end) instants for a calendar date and slot.
// The (date, slot) pair is the durable identity of a shift; the instants are
// always recomputed from it and never accepted as caller input.
func SlotWindow(date time.Time, slot ShiftSlot) (time.Time, time.Time, error) {
	def, exists := slotDefinitions[slot]
	if !exists {
		return time.Time{}, time.Time{}, &ValidationError{Field: "slot", Message: fmt.Sprintf("unknown shift slot %q", slot)}
	}

	year, month, day := date.Date()
	start := time.Date(year, month, day, def.StartHour, 0, 0, 0, date.Location())

	var end time.Time
	if def.EndHour >= 24 {
		end = time.Date(year, month, day+1, def.EndHour-24, 0, 0, 0, date.Location())
	} else {
		end = time.Date(year, month, day, def.EndHour, 0, 0, 0, date.Location())
	}

	return start, end, nil
}

// DeriveSlot maps a shift's wall-clock start back to its slot. Anything before
// SHIFT2's start hour is SHIFT1.
func DeriveSlot(start time.Time) ShiftSlot {
	if start.Hour() < slotDefinitions[SlotShift2].StartHour {
		return SlotShift1
	}
	return SlotShift2
}

type ShiftStatus string

const (
	ShiftStatusDraft     ShiftStatus = "DRAFT"
	ShiftStatusPublished ShiftStatus = "PUBLISHED"
	ShiftStatusCancelled ShiftStatus = "CANCELLED"
)

func ParseShiftStatus(s string) (ShiftStatus, error) {
	switch status := ShiftStatus(s); status {
	case ShiftStatusDraft, ShiftStatusPublished, ShiftStatusCancelled:
		return status, nil
	default:
		return "", &ValidationError{Field: "status", Message: fmt.Sprintf("unknown shift status %q", s)}
	}
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
// PUBLISHED may be pulled back to DRAFT (unpublish); CANCELLED is terminal.
func (s ShiftStatus) CanTransitionTo(next ShiftStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case ShiftStatusDraft:
		return next == ShiftStatusPublished || next == ShiftStatusCancelled
	case ShiftStatusPublished:
		return next == ShiftStatusDraft || next == ShiftStatusCancelled
	default:
		return false
	}
}

type Shift struct {
	ID          int64             `json:"id"`
	Slot        ShiftSlot         `json:"slot"`
	Start       time.Time         `json:"start"`
	End         time.Time         `json:"end"`
	Status      ShiftStatus       `json:"status"`
	Notes       *string           `json:"notes"`
	Assignments []ShiftAssignment `json:"assignments"`
	CreatedAt   time.Time         `json:"createdAt"`
	Version     int32             `json:"-"`
}

type AssignmentRole string

const (
	AssignmentRolePrimary AssignmentRole = "PRIMARY"
	AssignmentRoleBackup  AssignmentRole = "BACKUP"
	AssignmentRoleShadow  AssignmentRole = "SHADOW"
)

type ShiftAssignment struct {
	ID        int64          `json:"id"`
	ShiftID   int64          `json:"shiftID"`
	UserID    int64          `json:"userID"`
	UserName  string         `json:"userName"`
	Role      AssignmentRole `json:"role"`
	Notes     *string        `json:"notes"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ShiftAssignmentRecord is the flat projection the availability evaluator and
// recommendation engine work over: who holds an assignment and the derived
// window of its shift.
type ShiftAssignmentRecord struct {
	ShiftID int64
	UserID  int64
	Role    AssignmentRole
	Start   time.Time
	End     time.Time
}
