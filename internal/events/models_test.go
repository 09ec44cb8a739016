package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAvailableTicketsNeverNegative(t *testing.T) {
	event := Event{MaxTickets: 10, BookedCount: 12}
	assert.Equal(t, 0, event.AvailableTickets())

	event = Event{MaxTickets: 10, BookedCount: 3}
	assert.Equal(t, 7, event.AvailableTickets())
}

func TestIsSoldOut(t *testing.T) {
	assert.False(t, (&Event{MaxTickets: 5, BookedCount: 4}).IsSoldOut())
	assert.True(t, (&Event{MaxTickets: 5, BookedCount: 5}).IsSoldOut())
}

func TestToResponseAvailability(t *testing.T) {
	open := Event{
		ID:          1,
		Name:        "Go Conference",
		Venue:       "Harbor Convention Center",
		StartTime:   time.Now().Add(24 * time.Hour),
		EndTime:     time.Now().Add(48 * time.Hour),
		MaxTickets:  100,
		BookedCount: 40,
	}

	resp := open.ToResponse()
	assert.Equal(t, AvailabilityAvailable, resp.Availability)
	assert.Equal(t, 40, resp.BookedTickets)
	assert.Equal(t, 60, resp.AvailableTickets)

	full := open
	full.BookedCount = 100
	resp = full.ToResponse()
	assert.Equal(t, AvailabilitySoldOut, resp.Availability)
	assert.Equal(t, 0, resp.AvailableTickets)
}
