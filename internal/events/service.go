package events

import (
	"context"
	"errors"
	"time"

	"eventbook/internal/shared/config"
	"eventbook/internal/shared/constants"
	"eventbook/pkg/cache"
	"eventbook/pkg/logger"

	"log/slog"
)

// ErrInvalidTimeRange is returned when an event would end before it starts.
var ErrInvalidTimeRange = errors.New("event end time must be after start time")

type Service interface {
	SetCacheService(cacheService cache.Service)
	CreateEvent(ctx context.Context, userID uint, req CreateEventRequest) (*EventResponse, error)
	GetEventByID(ctx context.Context, id uint) (*EventResponse, error)
	UpdateEvent(ctx context.Context, id uint, userID uint, req UpdateEventRequest) (*EventResponse, error)
	DeleteEvent(ctx context.Context, id uint) error
	GetAllEvents(ctx context.Context, query EventListQuery) ([]EventResponse, error)
}

type service struct {
	repo         Repository
	cacheService cache.Service
	listTTL      time.Duration
	detailTTL    time.Duration
	log          *logger.Logger
}

func NewService(repo Repository, cfg *config.Config) Service {
	return &service{
		repo:      repo,
		listTTL:   cfg.Redis.EventListTTL,
		detailTTL: cfg.Redis.EventDetailTTL,
		log:       logger.GetDefault(),
	}
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) CreateEvent(ctx context.Context, userID uint, req CreateEventRequest) (*EventResponse, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidTimeRange
	}

	event := &Event{
		Name:        req.Name,
		Description: req.Description,
		Venue:       req.Venue,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		MaxTickets:  req.MaxTickets,
		CreatedBy:   userID,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.invalidateEventCache(ctx)
	s.log.InfoContext(ctx, "Event Created",
		slog.Uint64("event_id", uint64(event.ID)),
		slog.Uint64("user_id", uint64(userID)),
	)

	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) GetEventByID(ctx context.Context, id uint) (*EventResponse, error) {
	if s.cacheService == nil {
		return s.fetchEventByID(ctx, id)
	}

	var cached EventResponse
	err := s.cacheService.GetOrSet(ctx, constants.EventDetailKey(id), s.detailTTL, func() (interface{}, error) {
		return s.fetchEventByID(ctx, id)
	}, &cached)
	if err != nil {
		return nil, err
	}
	return &cached, nil
}

func (s *service) fetchEventByID(ctx context.Context, id uint) (*EventResponse, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) UpdateEvent(ctx context.Context, id uint, userID uint, req UpdateEventRequest) (*EventResponse, error) {
	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}

	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Venue != nil {
		updates["venue"] = *req.Venue
	}
	if req.StartTime != nil {
		updates["start_time"] = *req.StartTime
	}
	if req.EndTime != nil {
		updates["end_time"] = *req.EndTime
	}
	if req.MaxTickets != nil {
		updates["max_tickets"] = *req.MaxTickets
	}

	event, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}

	s.invalidateEventCache(ctx)

	resp := event.ToResponse()
	return &resp, nil
}

func (s *service) DeleteEvent(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateEventCache(ctx)
	return nil
}

func (s *service) GetAllEvents(ctx context.Context, query EventListQuery) ([]EventResponse, error) {
	status := query.Status
	if status == "" {
		status = "all"
	}

	if s.cacheService == nil {
		return s.fetchEvents(ctx, query, status)
	}

	key := constants.EventListKey(query.Name, query.Venue, query.Date, status)
	var cached []EventResponse
	err := s.cacheService.GetOrSet(ctx, key, s.listTTL, func() (interface{}, error) {
		return s.fetchEvents(ctx, query, status)
	}, &cached)
	if err != nil {
		return nil, err
	}
	return cached, nil
}

func (s *service) fetchEvents(ctx context.Context, query EventListQuery, status string) ([]EventResponse, error) {
	events, err := s.repo.GetAll(ctx, query)
	if err != nil {
		return nil, err
	}

	responses := make([]EventResponse, 0, len(events))
	for i := range events {
		resp := events[i].ToResponse()

		// Availability filter works on the computed remaining capacity.
		switch status {
		case "available":
			if resp.AvailableTickets == 0 {
				continue
			}
		case "booked":
			if resp.AvailableTickets > 0 {
				continue
			}
		}

		responses = append(responses, resp)
	}

	return responses, nil
}

func (s *service) invalidateEventCache(ctx context.Context) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_EVENT_ALL); err != nil {
		s.log.WarnContext(ctx, "event cache invalidation failed", slog.Any("error", err))
	}
}
