package reservations

import (
	"fmt"
	"time"

	"eventbook/internal/events"
)

type Reservation struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	UserID      uint          `json:"user_id" gorm:"not null;index"`
	EventID     uint          `json:"event_id" gorm:"not null;index"`
	Status      Status        `json:"status" gorm:"type:varchar(20);not null;default:'CONFIRMED'"`
	CancelledAt *time.Time    `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
	Event       *events.Event `json:"event,omitempty" gorm:"foreignKey:EventID"`
	Tickets     []Ticket      `json:"tickets,omitempty" gorm:"foreignKey:ReservationID"`
}

// TableName specifies the table name for GORM
func (Reservation) TableName() string {
	return "reservations"
}

type Ticket struct {
	ID            uint         `json:"id" gorm:"primaryKey"`
	ReservationID uint         `json:"reservation_id" gorm:"not null;index"`
	EventID       uint         `json:"event_id" gorm:"not null"`
	UserID        uint         `json:"user_id" gorm:"not null"`
	SeatNumber    string       `json:"seat_number" gorm:"not null;size:64"`
	Status        TicketStatus `json:"status" gorm:"type:varchar(20);not null;default:'BOOKED'"`
	CreatedAt     time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Ticket) TableName() string {
	return "tickets"
}

// SeatLabel derives a human-readable seat number from the booking date, the
// booking user and the event's allocation sequence. The sequence only ever
// grows, so a label is never handed out twice for the same event.
func SeatLabel(bookedAt time.Time, userID uint, seq int) string {
	return fmt.Sprintf("%s-%d-%d", bookedAt.Format("20060102"), userID, seq)
}

type CreateReservationRequest struct {
	EventID uint `json:"event_id" binding:"required,min=1"`
}

type TicketResponse struct {
	ID         uint      `json:"id"`
	SeatNumber string    `json:"seat_number"`
	Status     string    `json:"status"`
	EventID    uint      `json:"event_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReservationResponse struct {
	ID          uint                  `json:"id"`
	UserID      uint                  `json:"user_id"`
	EventID     uint                  `json:"event_id"`
	Status      string                `json:"status"`
	CancelledAt *time.Time            `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	Event       *events.EventResponse `json:"event,omitempty"`
	Tickets     []TicketResponse      `json:"tickets,omitempty"`
}

// ToResponse converts a Ticket to its API representation.
func (t *Ticket) ToResponse() TicketResponse {
	return TicketResponse{
		ID:         t.ID,
		SeatNumber: t.SeatNumber,
		Status:     string(t.Status),
		EventID:    t.EventID,
		CreatedAt:  t.CreatedAt,
	}
}

// ToResponse converts a Reservation to its API representation, including any
// preloaded event and tickets.
func (r *Reservation) ToResponse() ReservationResponse {
	resp := ReservationResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		EventID:     r.EventID,
		Status:      string(r.Status),
		CancelledAt: r.CancelledAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}

	if r.Event != nil {
		event := r.Event.ToResponse()
		resp.Event = &event
	}

	for i := range r.Tickets {
		resp.Tickets = append(resp.Tickets, r.Tickets[i].ToResponse())
	}

	return resp
}
