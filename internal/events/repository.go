package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

var ErrEventNotFound = errors.New("event not found")

type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id uint) (*Event, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (*Event, error)
	Delete(ctx context.Context, id uint) error
	GetAll(ctx context.Context, query EventListQuery) ([]Event, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) Update(ctx context.Context, id uint, updates map[string]interface{}) (*Event, error) {
	var event Event

	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	if err := r.db.WithContext(ctx).Model(&event).Updates(updates).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}

	return &event, nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Event{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *repository) GetAll(ctx context.Context, query EventListQuery) ([]Event, error) {
	var events []Event

	db := r.db.WithContext(ctx).Model(&Event{})

	if query.Name != "" {
		db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(query.Name)+"%")
	}

	if query.Venue != "" {
		db = db.Where("LOWER(venue) LIKE ?", "%"+strings.ToLower(query.Venue)+"%")
	}

	if query.Date != "" {
		// A date filter selects events starting on that calendar day.
		if day, err := time.Parse("2006-01-02", query.Date); err == nil {
			db = db.Where("start_time >= ? AND start_time < ?", day, day.Add(24*time.Hour))
		}
	} else {
		// Default to upcoming events.
		db = db.Where("start_time >= ?", time.Now())
	}

	err := db.Order("start_time ASC").Find(&events).Error
	return events, err
}
