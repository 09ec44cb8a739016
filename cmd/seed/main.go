package main

import (
	"fmt"
	"log"
	"time"

	"eventbook/internal/events"
	"eventbook/internal/shared/config"
	"eventbook/internal/shared/database"
	"eventbook/internal/users"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("Starting Eventbook Database Seeder...")

	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\nCleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("Database cleaned successfully")

	fmt.Println("\nSeeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("Database seeded successfully")

	fmt.Println("\nSeeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"tickets",
		"reservations",
		"events",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer constraints: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll populates users and events for local testing.
func (s *Seeder) SeedAll() error {
	admin, regulars, err := s.seedUsers()
	if err != nil {
		return err
	}

	if err := s.seedEvents(admin, regulars); err != nil {
		return err
	}

	return nil
}

func (s *Seeder) seedUsers() (*users.User, []users.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := users.User{
		Name:     "Admin User",
		Email:    "admin@eventbook.dev",
		Password: string(hashed),
		Role:     users.RoleAdmin,
	}
	if err := s.db.PostgreSQL.Create(&admin).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create admin: %w", err)
	}
	fmt.Printf("  Created admin: %s\n", admin.Email)

	regulars := []users.User{
		{Name: "Alice Carter", Email: "alice@example.com", Password: string(hashed), Role: users.RoleUser},
		{Name: "Ben Osei", Email: "ben@example.com", Password: string(hashed), Role: users.RoleUser},
		{Name: "Chitra Rao", Email: "chitra@example.com", Password: string(hashed), Role: users.RoleUser},
	}
	for i := range regulars {
		if err := s.db.PostgreSQL.Create(&regulars[i]).Error; err != nil {
			return nil, nil, fmt.Errorf("failed to create user %s: %w", regulars[i].Email, err)
		}
		fmt.Printf("  Created user: %s\n", regulars[i].Email)
	}

	return &admin, regulars, nil
}

func (s *Seeder) seedEvents(admin *users.User, _ []users.User) error {
	now := time.Now()
	description := func(text string) *string { return &text }

	seedEvents := []events.Event{
		{
			Name:        "Go Conference 2026",
			Description: description("Two days of talks on services, tooling and the runtime."),
			Venue:       "Harbor Convention Center",
			StartTime:   now.AddDate(0, 1, 0),
			EndTime:     now.AddDate(0, 1, 2),
			MaxTickets:  500,
			CreatedBy:   admin.ID,
		},
		{
			Name:        "Jazz Under the Stars",
			Description: description("Open-air jazz night with three headline acts."),
			Venue:       "Riverside Amphitheatre",
			StartTime:   now.AddDate(0, 0, 14),
			EndTime:     now.AddDate(0, 0, 14).Add(4 * time.Hour),
			MaxTickets:  200,
			CreatedBy:   admin.ID,
		},
		{
			Name:        "Pop-up Supper Club",
			Description: description("A single-table tasting menu. One seat only."),
			Venue:       "The Old Mill",
			StartTime:   now.AddDate(0, 0, 7),
			EndTime:     now.AddDate(0, 0, 7).Add(3 * time.Hour),
			MaxTickets:  1,
			CreatedBy:   admin.ID,
		},
	}

	for i := range seedEvents {
		if err := s.db.PostgreSQL.Create(&seedEvents[i]).Error; err != nil {
			return fmt.Errorf("failed to create event %s: %w", seedEvents[i].Name, err)
		}
		fmt.Printf("  Created event: %s (%d tickets)\n", seedEvents[i].Name, seedEvents[i].MaxTickets)
	}

	return nil
}
