package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrEventSoldOut        = errors.New("event is fully booked")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrAlreadyCancelled    = errors.New("reservation is already cancelled")
	ErrNotOwner            = errors.New("reservation belongs to another user")

	// ErrTxConflict marks a transaction that lost a serialization or deadlock
	// race and is safe to retry.
	ErrTxConflict = errors.New("transaction conflict")
)

type Repository interface {
	// CreateReservationWithTicket atomically claims one unit of event capacity
	// and materializes the reservation and its ticket.
	CreateReservationWithTicket(ctx context.Context, userID, eventID uint, bookedAt time.Time) (*Reservation, *Ticket, error)

	// CancelReservation flips a reservation and its booked tickets to
	// CANCELLED and releases the claimed capacity.
	CancelReservation(ctx context.Context, reservationID uint, cancelledAt time.Time) (*Reservation, error)

	GetReservationByID(ctx context.Context, id uint) (*Reservation, error)
	GetUserReservations(ctx context.Context, userID uint) ([]Reservation, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateReservationWithTicket performs the whole allocation in one
// transaction. The conditional update on the event row is the capacity gate:
// it only matches while booked_count is below max_tickets, so two racing
// bookings for the last seat cannot both succeed. The same statement bumps
// seat_sequence, whose post-increment value feeds the seat label.
func (r *repository) CreateReservationWithTicket(ctx context.Context, userID, eventID uint, bookedAt time.Time) (*Reservation, *Ticket, error) {
	var reservation *Reservation
	var ticket *Ticket

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq int
		result := tx.Raw(`
			UPDATE events
			SET booked_count = booked_count + 1,
			    seat_sequence = seat_sequence + 1,
			    updated_at = ?
			WHERE id = ? AND booked_count < max_tickets
			RETURNING seat_sequence`,
			bookedAt, eventID,
		).Scan(&seq)

		if result.Error != nil {
			return fmt.Errorf("failed to claim capacity: %w", result.Error)
		}

		if result.RowsAffected == 0 {
			// Either the event doesn't exist or it is at capacity.
			var count int64
			if err := tx.Table("events").Where("id = ?", eventID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrEventNotFound
			}
			return ErrEventSoldOut
		}

		reservation = &Reservation{
			UserID:  userID,
			EventID: eventID,
			Status:  StatusConfirmed,
		}
		if err := tx.Create(reservation).Error; err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}

		ticket = &Ticket{
			ReservationID: reservation.ID,
			EventID:       eventID,
			UserID:        userID,
			SeatNumber:    SeatLabel(bookedAt, userID, seq),
			Status:        TicketBooked,
		}
		if err := tx.Create(ticket).Error; err != nil {
			return fmt.Errorf("failed to create ticket: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, nil, mapTxError(err)
	}

	return reservation, ticket, nil
}

func (r *repository) CancelReservation(ctx context.Context, reservationID uint, cancelledAt time.Time) (*Reservation, error) {
	var reservation Reservation

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The status guard makes cancellation idempotent under races: only one
		// of two concurrent cancels flips the row.
		result := tx.Model(&Reservation{}).
			Where("id = ? AND status <> ?", reservationID, StatusCancelled).
			Updates(map[string]interface{}{
				"status":       StatusCancelled,
				"cancelled_at": cancelledAt,
				"updated_at":   cancelledAt,
			})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&Reservation{}).Where("id = ?", reservationID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrReservationNotFound
			}
			return ErrAlreadyCancelled
		}

		// Release exactly as many seats as tickets actually flipped.
		ticketResult := tx.Model(&Ticket{}).
			Where("reservation_id = ? AND status = ?", reservationID, TicketBooked).
			Updates(map[string]interface{}{
				"status":     TicketCancelled,
				"updated_at": cancelledAt,
			})
		if ticketResult.Error != nil {
			return ticketResult.Error
		}

		if ticketResult.RowsAffected > 0 {
			err := tx.Exec(`
				UPDATE events
				SET booked_count = GREATEST(booked_count - ?, 0),
				    updated_at = ?
				WHERE id = (SELECT event_id FROM reservations WHERE id = ?)`,
				ticketResult.RowsAffected, cancelledAt, reservationID,
			).Error
			if err != nil {
				return fmt.Errorf("failed to release capacity: %w", err)
			}
		}

		return tx.Preload("Tickets").Where("id = ?", reservationID).First(&reservation).Error
	})

	if err != nil {
		return nil, mapTxError(err)
	}

	return &reservation, nil
}

func (r *repository) GetReservationByID(ctx context.Context, id uint) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).
		Preload("Tickets").
		Where("id = ?", id).
		First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) GetUserReservations(ctx context.Context, userID uint) ([]Reservation, error) {
	var reservations []Reservation
	err := r.db.WithContext(ctx).
		Preload("Event").
		Preload("Tickets").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reservations).Error
	return reservations, err
}

// mapTxError converts retryable postgres failures into ErrTxConflict so the
// service layer can retry, and passes everything else through.
func mapTxError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return ErrTxConflict
		}
	}
	return err
}
