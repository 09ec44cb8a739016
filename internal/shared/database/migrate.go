package database

import (
	"eventbook/internal/events"
	"eventbook/internal/reservations"
	"eventbook/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&events.Event{},
		&reservations.Reservation{},
		&reservations.Ticket{},
	)
}
