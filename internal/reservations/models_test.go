package reservations

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeatLabel(t *testing.T) {
	bookedAt := time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, "20250101-7-4", SeatLabel(bookedAt, 7, 4))
	assert.Equal(t, "20250101-7-1", SeatLabel(bookedAt, 7, 1))
	assert.Equal(t, "20250101-123-1", SeatLabel(bookedAt, 123, 1))
}

func TestSeatLabelUsesBookingDate(t *testing.T) {
	first := time.Date(2026, 8, 31, 23, 59, 0, 0, time.UTC)
	second := time.Date(2026, 9, 1, 0, 1, 0, 0, time.UTC)

	assert.Equal(t, "20260831-5-1", SeatLabel(first, 5, 1))
	assert.Equal(t, "20260901-5-2", SeatLabel(second, 5, 2))
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusConfirmed.CanBeCancelled())
	assert.True(t, StatusPending.CanBeCancelled())
	assert.False(t, StatusCancelled.CanBeCancelled())

	assert.True(t, StatusConfirmed.IsActive())
	assert.False(t, StatusCancelled.IsActive())
}

func TestReservationToResponseIncludesTickets(t *testing.T) {
	res := Reservation{
		ID:      3,
		UserID:  7,
		EventID: 11,
		Status:  StatusConfirmed,
		Tickets: []Ticket{
			{ID: 9, ReservationID: 3, EventID: 11, UserID: 7, SeatNumber: "20250101-7-1", Status: TicketBooked},
		},
	}

	resp := res.ToResponse()

	assert.Equal(t, uint(3), resp.ID)
	assert.Equal(t, string(StatusConfirmed), resp.Status)
	if assert.Len(t, resp.Tickets, 1) {
		assert.Equal(t, "20250101-7-1", resp.Tickets[0].SeatNumber)
		assert.Equal(t, string(TicketBooked), resp.Tickets[0].Status)
	}
}
