package reservations

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"eventbook/internal/shared/config"
	"eventbook/internal/shared/constants"
	"eventbook/pkg/cache"
	"eventbook/pkg/logger"
)

// Notifier publishes reservation lifecycle notifications. Publishing is best
// effort: a broker outage must never fail a booking.
type Notifier interface {
	ReservationConfirmed(ctx context.Context, userID, eventID, reservationID uint, seatNumber string)
	ReservationCancelled(ctx context.Context, userID, eventID, reservationID uint)
}

type ReservationDetail struct {
	Reservation ReservationResponse `json:"reservation"`
	Ticket      TicketResponse      `json:"ticket"`
}

type Service interface {
	SetCacheService(cacheService cache.Service)
	SetNotifier(notifier Notifier)
	Reserve(ctx context.Context, userID uint, req CreateReservationRequest) (*ReservationDetail, error)
	Cancel(ctx context.Context, userID, reservationID uint) (*ReservationResponse, error)
	ListMine(ctx context.Context, userID uint) ([]ReservationResponse, error)
}

type service struct {
	repo         Repository
	config       *config.Config
	cacheService cache.Service
	notifier     Notifier
	log          *logger.Logger

	// now is swappable so seat labels are deterministic under test.
	now func() time.Time
}

func NewService(repo Repository, cfg *config.Config) Service {
	return &service{
		repo:   repo,
		config: cfg,
		log:    logger.GetDefault(),
		now:    time.Now,
	}
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

// SetNotifier injects the notification publisher
func (s *service) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

func (s *service) Reserve(ctx context.Context, userID uint, req CreateReservationRequest) (*ReservationDetail, error) {
	bookedAt := s.now()

	var reservation *Reservation
	var ticket *Ticket
	var err error

	// Conflicting transactions are retried a bounded number of times; genuine
	// capacity exhaustion is surfaced immediately.
	retries := s.config.Booking.MaxRetries
	if retries < 1 {
		retries = 1
	}
	for attempt := 0; attempt < retries; attempt++ {
		reservation, ticket, err = s.repo.CreateReservationWithTicket(ctx, userID, req.EventID, bookedAt)
		if !errors.Is(err, ErrTxConflict) {
			break
		}
		s.log.WarnContext(ctx, "booking transaction conflict, retrying",
			slog.Uint64("user_id", uint64(userID)),
			slog.Uint64("event_id", uint64(req.EventID)),
			slog.Int("attempt", attempt+1),
		)
		time.Sleep(s.config.Booking.RetryBackoff)
	}
	if err != nil {
		return nil, err
	}

	s.invalidateEventCache(ctx)

	s.log.InfoContext(ctx, "Reservation Created",
		slog.Uint64("reservation_id", uint64(reservation.ID)),
		slog.Uint64("user_id", uint64(userID)),
		slog.Uint64("event_id", uint64(req.EventID)),
		slog.String("seat_number", ticket.SeatNumber),
	)

	if s.notifier != nil {
		s.notifier.ReservationConfirmed(ctx, userID, req.EventID, reservation.ID, ticket.SeatNumber)
	}

	return &ReservationDetail{
		Reservation: reservation.ToResponse(),
		Ticket:      ticket.ToResponse(),
	}, nil
}

func (s *service) Cancel(ctx context.Context, userID, reservationID uint) (*ReservationResponse, error) {
	existing, err := s.repo.GetReservationByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	// Ownership is checked before any mutation.
	if existing.UserID != userID {
		return nil, ErrNotOwner
	}

	if existing.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	cancelled, err := s.repo.CancelReservation(ctx, reservationID, s.now())
	if err != nil {
		return nil, err
	}

	s.invalidateEventCache(ctx)

	s.log.InfoContext(ctx, "Reservation Cancelled",
		slog.Uint64("reservation_id", uint64(reservationID)),
		slog.Uint64("user_id", uint64(userID)),
		slog.Uint64("event_id", uint64(cancelled.EventID)),
	)

	if s.notifier != nil {
		s.notifier.ReservationCancelled(ctx, userID, cancelled.EventID, reservationID)
	}

	resp := cancelled.ToResponse()
	return &resp, nil
}

func (s *service) ListMine(ctx context.Context, userID uint) ([]ReservationResponse, error) {
	list, err := s.repo.GetUserReservations(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]ReservationResponse, 0, len(list))
	for i := range list {
		responses = append(responses, list[i].ToResponse())
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
