package notifications

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	TypeReservationConfirmed NotificationType = "reservation.confirmed"
	TypeReservationCancelled NotificationType = "reservation.cancelled"
)

type NotificationStatus string

const (
	StatusPending NotificationStatus = "PENDING"
	StatusQueued  NotificationStatus = "QUEUED"
	StatusFailed  NotificationStatus = "FAILED"
)

// Notification is the message published to the notification topic whenever a
// reservation changes state.
type Notification struct {
	ID            uuid.UUID          `json:"id"`
	Type          NotificationType   `json:"type"`
	Status        NotificationStatus `json:"status"`
	UserID        uint               `json:"user_id"`
	EventID       uint               `json:"event_id"`
	ReservationID uint               `json:"reservation_id"`
	SeatNumber    string             `json:"seat_number,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

func NewNotification(nType NotificationType, userID, eventID, reservationID uint, seatNumber string) *Notification {
	return &Notification{
		ID:            uuid.New(),
		Type:          nType,
		Status:        StatusPending,
		UserID:        userID,
		EventID:       eventID,
		ReservationID: reservationID,
		SeatNumber:    seatNumber,
		CreatedAt:     time.Now(),
	}
}

func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

// PartitionKey routes all of a user's notifications to the same partition so
// they are consumed in order.
func (n *Notification) PartitionKey() string {
	return fmt.Sprintf("user-%d", n.UserID)
}
