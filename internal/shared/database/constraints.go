package database

import (
	"strings"

	"gorm.io/gorm"
)

// MigrateConstraints adds database-level backstops for the booking invariants.
// The allocator enforces capacity and seat uniqueness transactionally; these
// constraints make overselling impossible even if a future code path bypasses it.
func MigrateConstraints(db *gorm.DB) error {
	// A seat label may never repeat within an event.
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_seat_per_event
		ON tickets (event_id, seat_number);
	`).Error
	if err != nil {
		return err
	}

	// booked_count must stay within [0, max_tickets].
	err = db.Exec(`
		ALTER TABLE events
		ADD CONSTRAINT booked_count_within_capacity
		CHECK (booked_count >= 0 AND booked_count <= max_tickets) NOT VALID;
	`).Error
	if err != nil && !isDuplicateConstraint(err) {
		return err
	}

	// Reservation lookups by owner drive the "my reservations" listing.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_reservations_user_created
		ON reservations (user_id, created_at DESC);
	`).Error
	if err != nil {
		return err
	}

	// Cancellation flips a reservation's booked tickets by reservation_id.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tickets_reservation_status
		ON tickets (reservation_id, status);
	`).Error
	if err != nil {
		return err
	}

	return nil
}

func isDuplicateConstraint(err error) bool {
	// Postgres has no ADD CONSTRAINT IF NOT EXISTS; 42710 = duplicate_object.
	return err != nil && (strings.Contains(err.Error(), "already exists") ||
		strings.Contains(err.Error(), "42710"))
}
