package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotWindow(t *testing.T) {
	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	t.Run("first slot covers the working day", func(t *testing.T) {
		start, end, err := SlotWindow(monday, SlotShift1)
		require.NoError(t, err)

		assert.Equal(t, time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2024, 6, 3, 17, 0, 0, 0, time.UTC), end)
	})

	t.Run("second slot ends at midnight of the next day", func(t *testing.T) {
		start, end, err := SlotWindow(monday, SlotShift2)
		require.NoError(t, err)

		assert.Equal(t, time.Date(2024, 6, 3, 17, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC), end)
	})

	t.Run("start is always before end", func(t *testing.T) {
		for _, slot := range []ShiftSlot{SlotShift1, SlotShift2} {
			start, end, err := SlotWindow(monday, slot)
			require.NoError(t, err)
			assert.True(t, start.Before(end))
		}
	})

	t.Run("same input always derives the same window", func(t *testing.T) {
		firstStart, firstEnd, err := SlotWindow(monday, SlotShift1)
		require.NoError(t, err)
		secondStart, secondEnd, err := SlotWindow(monday, SlotShift1)
		require.NoError(t, err)

		assert.Equal(t, firstStart, secondStart)
		assert.Equal(t, firstEnd, secondEnd)
	})

	t.Run("time-of-day on the input date is ignored", func(t *testing.T) {
		noon := time.Date(2024, 6, 3, 12, 34, 56, 0, time.UTC)
		start, _, err := SlotWindow(noon, SlotShift1)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC), start)
	})

	t.Run("unknown slot fails", func(t *testing.T) {
		_, _, err := SlotWindow(monday, ShiftSlot("SHIFT3"))
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestParseShiftSlot(t *testing.T) {
	slot, err := ParseShiftSlot("SHIFT1")
	require.NoError(t, err)
	assert.Equal(t, SlotShift1, slot)

	_, err = ParseShiftSlot("shift1")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseShiftSlot("")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeriveSlot(t *testing.T) {
	assert.Equal(t, SlotShift1, DeriveSlot(time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, SlotShift1, DeriveSlot(time.Date(2024, 6, 3, 16, 59, 0, 0, time.UTC)))
	assert.Equal(t, SlotShift2, DeriveSlot(time.Date(2024, 6, 3, 17, 0, 0, 0, time.UTC)))
	assert.Equal(t, SlotShift2, DeriveSlot(time.Date(2024, 6, 3, 23, 0, 0, 0, time.UTC)))
}

func TestShiftStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		from    ShiftStatus
		to      ShiftStatus
		allowed bool
	}{
		{ShiftStatusDraft, ShiftStatusPublished, true},
		{ShiftStatusDraft, ShiftStatusCancelled, true},
		{ShiftStatusDraft, ShiftStatusDraft, true},
		{ShiftStatusPublished, ShiftStatusDraft, true},
		{ShiftStatusPublished, ShiftStatusCancelled, true},
		{ShiftStatusCancelled, ShiftStatusDraft, false},
		{ShiftStatusCancelled, ShiftStatusPublished, false},
		{ShiftStatusCancelled, ShiftStatusCancelled, true},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestParseShiftStatus(t *testing.T) {
	status, err := ParseShiftStatus("PUBLISHED")
	require.NoError(t, err)
	assert.Equal(t, ShiftStatusPublished, status)

	_, err = ParseShiftStatus("ARCHIVED")
	assert.ErrorIs(t, err, ErrValidation)
}
