package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		from    RequestStatus
		to      RequestStatus
		allowed bool
	}{
		{RequestStatusOpen, RequestStatusUnderReview, true},
		{RequestStatusOpen, RequestStatusApproved, true},
		{RequestStatusOpen, RequestStatusDeclined, true},
		{RequestStatusOpen, RequestStatusCancelled, true},
		{RequestStatusUnderReview, RequestStatusApproved, true},
		{RequestStatusUnderReview, RequestStatusDeclined, true},
		{RequestStatusUnderReview, RequestStatusCancelled, false},
		{RequestStatusUnderReview, RequestStatusOpen, false},
		{RequestStatusApproved, RequestStatusDeclined, false},
		{RequestStatusDeclined, RequestStatusApproved, false},
		{RequestStatusCancelled, RequestStatusOpen, false},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestRequestStatusIsTerminal(t *testing.T) {
	assert.False(t, RequestStatusOpen.IsTerminal())
	assert.False(t, RequestStatusUnderReview.IsTerminal())
	assert.True(t, RequestStatusApproved.IsTerminal())
	assert.True(t, RequestStatusDeclined.IsTerminal())
	assert.True(t, RequestStatusCancelled.IsTerminal())
}

func TestRequestStatusBlocksScheduling(t *testing.T) {
	assert.True(t, RequestStatusOpen.BlocksScheduling())
	assert.True(t, RequestStatusUnderReview.BlocksScheduling())
	assert.True(t, RequestStatusApproved.BlocksScheduling())
	assert.False(t, RequestStatusDeclined.BlocksScheduling())
	assert.False(t, RequestStatusCancelled.BlocksScheduling())
}

func TestValidateReview(t *testing.T) {
	note := "short staffed that week"
	blank := "   "

	t.Run("approval needs no note", func(t *testing.T) {
		assert.NoError(t, ValidateReview(RequestStatusApproved, nil))
		assert.NoError(t, ValidateReview(RequestStatusApproved, &note))
	})

	t.Run("decline requires a non-empty note", func(t *testing.T) {
		assert.ErrorIs(t, ValidateReview(RequestStatusDeclined, nil), ErrValidation)
		assert.ErrorIs(t, ValidateReview(RequestStatusDeclined, &blank), ErrValidation)
		assert.NoError(t, ValidateReview(RequestStatusDeclined, &note))
	})

	t.Run("only verdict statuses are reviewable", func(t *testing.T) {
		assert.ErrorIs(t, ValidateReview(RequestStatusCancelled, &note), ErrValidation)
		assert.ErrorIs(t, ValidateReview(RequestStatusUnderReview, &note), ErrValidation)
	})
}

func TestUnavailabilityRequestCanSelfEdit(t *testing.T) {
	request := &UnavailabilityRequest{UserID: 7, Status: RequestStatusOpen}

	t.Run("owner may edit while open", func(t *testing.T) {
		assert.NoError(t, request.CanSelfEdit(7))
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		assert.ErrorIs(t, request.CanSelfEdit(8), ErrForbidden)
	})

	t.Run("non-open request conflicts", func(t *testing.T) {
		underReview := &UnavailabilityRequest{UserID: 7, Status: RequestStatusUnderReview}
		assert.ErrorIs(t, underReview.CanSelfEdit(7), ErrConflict)
	})
}
