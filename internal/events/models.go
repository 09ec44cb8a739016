package events

import (
	"time"
)

// Availability labels surfaced on event reads.
const (
	AvailabilityAvailable = "available"
	AvailabilitySoldOut   = "sold out"
)

type Event struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;size:255"`
	Description *string   `json:"description" gorm:"type:text"`
	Venue       string    `json:"venue" gorm:"not null;size:255"`
	StartTime   time.Time `json:"start_time" gorm:"not null;index"`
	EndTime     time.Time `json:"end_time" gorm:"not null"`
	MaxTickets  int       `json:"max_tickets" gorm:"not null;check:max_tickets > 0"`

	// BookedCount is the denormalized number of BOOKED tickets; the allocator
	// increments it with a conditional update so it can never pass MaxTickets.
	BookedCount int `json:"booked_count" gorm:"not null;default:0"`

	// SeatSequence only ever increases; it feeds seat labels and is not
	// decremented on cancellation so labels are never reissued.
	SeatSequence int `json:"-" gorm:"not null;default:0"`

	CreatedBy uint      `json:"created_by" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

type EventResponse struct {
	ID               uint      `json:"id"`
	Name             string    `json:"name"`
	Description      *string   `json:"description"`
	Venue            string    `json:"venue"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	MaxTickets       int       `json:"max_tickets"`
	BookedTickets    int       `json:"booked_tickets"`
	AvailableTickets int       `json:"available_tickets"`
	Availability     string    `json:"availability"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type CreateEventRequest struct {
	Name        string    `json:"name" binding:"required,min=1,max=255"`
	Description *string   `json:"description" binding:"omitempty,max=2000"`
	Venue       string    `json:"venue" binding:"required,min=1,max=255"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	MaxTickets  int       `json:"max_tickets" binding:"required,min=1,max=100000"`
}

type UpdateEventRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string    `json:"description" binding:"omitempty,max=2000"`
	Venue       *string    `json:"venue" binding:"omitempty,min=1,max=255"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	MaxTickets  *int       `json:"max_tickets" binding:"omitempty,min=1,max=100000"`
}

type EventListQuery struct {
	Name   string `form:"name"`
	Venue  string `form:"venue"`
	Date   string `form:"date"`
	Status string `form:"status" binding:"omitempty,oneof=available booked all"`
}

// AvailableTickets returns the remaining capacity, never negative.
func (e *Event) AvailableTickets() int {
	available := e.MaxTickets - e.BookedCount
	if available < 0 {
		available = 0
	}
	return available
}

// IsSoldOut reports whether the event has no remaining capacity.
func (e *Event) IsSoldOut() bool {
	return e.BookedCount >= e.MaxTickets
}

// ToResponse converts an Event to its API representation.
func (e *Event) ToResponse() EventResponse {
	availability := AvailabilityAvailable
	if e.IsSoldOut() {
		availability = AvailabilitySoldOut
	}

	return EventResponse{
		ID:               e.ID,
		Name:             e.Name,
		Description:      e.Description,
		Venue:            e.Venue,
		StartTime:        e.StartTime,
		EndTime:          e.EndTime,
		MaxTickets:       e.MaxTickets,
		BookedTickets:    e.BookedCount,
		AvailableTickets: e.AvailableTickets(),
		Availability:     availability,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}
