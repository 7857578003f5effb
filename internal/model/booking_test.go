package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusPending, StatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusConfirmed.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusCompleted.Terminal())
}

func TestNights(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 9, d, 0, 0, 0, 0, time.UTC) }

	b := &Booking{CheckIn: day(1), CheckOut: day(4)}
	assert.Equal(t, uint32(3), b.Nights())

	oneNight := &Booking{CheckIn: day(1), CheckOut: day(2)}
	assert.Equal(t, uint32(1), oneNight.Nights())

	inverted := &Booking{CheckIn: day(4), CheckOut: day(1)}
	assert.Equal(t, uint32(0), inverted.Nights())
}

func TestHoldsRoom(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusCompleted} {
		assert.True(t, (&Booking{Status: s}).HoldsRoom(), string(s))
	}
	assert.False(t, (&Booking{Status: StatusCancelled}).HoldsRoom())
}

func TestRoomBookable(t *testing.T) {
	r := &Room{Reservable: true, HousekeepingStatus: HousekeepingClean}
	assert.True(t, r.Bookable())

	r.HousekeepingStatus = HousekeepingDirty
	assert.False(t, r.Bookable())

	r.HousekeepingStatus = HousekeepingClean
	r.Reservable = false
	assert.False(t, r.Bookable())
}
