package notifications

import (
	"context"
	"log/slog"

	"eventbook/internal/shared/config"
	"eventbook/pkg/logger"
)

// Service ties the producer and consumer together and exposes typed publish
// helpers for the reservation flow. When Kafka is disabled it degrades to
// logging only.
type Service struct {
	producer Producer
	consumer Consumer
	enabled  bool
	log      *logger.Logger
}

func NewService(cfg *config.Config) (*Service, error) {
	svc := &Service{
		enabled: cfg.Kafka.Enabled,
		log:     logger.GetDefault(),
	}

	if !cfg.Kafka.Enabled {
		return svc, nil
	}

	producerConfig := DefaultProducerConfig()
	producerConfig.Brokers = cfg.Kafka.Brokers
	producerConfig.NotificationTopic = cfg.Kafka.NotificationTopic

	producer, err := NewKafkaProducer(producerConfig)
	if err != nil {
		return nil, err
	}
	svc.producer = producer

	consumerConfig := DefaultConsumerConfig()
	consumerConfig.Brokers = cfg.Kafka.Brokers
	consumerConfig.GroupID = cfg.Kafka.ConsumerGroup
	consumerConfig.Topics = []string{cfg.Kafka.NotificationTopic}

	consumer, err := NewKafkaConsumer(consumerConfig, svc.handleNotification)
	if err != nil {
		producer.Close()
		return nil, err
	}
	svc.consumer = consumer

	return svc, nil
}

// Start begins consuming notifications in the background.
func (s *Service) Start(ctx context.Context) error {
	if !s.enabled {
		return nil
	}
	return s.consumer.Start(ctx)
}

// Stop shuts down the consumer and producer.
func (s *Service) Stop() {
	if !s.enabled {
		return
	}
	if s.consumer != nil {
		if err := s.consumer.Stop(); err != nil {
			s.log.Error("failed to stop notification consumer", slog.Any("error", err))
		}
	}
	if s.producer != nil {
		if err := s.producer.Close(); err != nil {
			s.log.Error("failed to close notification producer", slog.Any("error", err))
		}
	}
}

// ReservationConfirmed publishes a confirmation notification. Failures are
// logged, never returned: the booking already happened.
func (s *Service) ReservationConfirmed(ctx context.Context, userID, eventID, reservationID uint, seatNumber string) {
	s.publish(ctx, NewNotification(TypeReservationConfirmed, userID, eventID, reservationID, seatNumber))
}

// ReservationCancelled publishes a cancellation notification.
func (s *Service) ReservationCancelled(ctx context.Context, userID, eventID, reservationID uint) {
	s.publish(ctx, NewNotification(TypeReservationCancelled, userID, eventID, reservationID, ""))
}

func (s *Service) publish(ctx context.Context, notification *Notification) {
	if !s.enabled || s.producer == nil {
		s.log.InfoContext(ctx, "notification (kafka disabled)",
			slog.String("type", string(notification.Type)),
			slog.Uint64("user_id", uint64(notification.UserID)),
			slog.Uint64("reservation_id", uint64(notification.ReservationID)),
		)
		return
	}

	if err := s.producer.Publish(ctx, notification); err != nil {
		s.log.ErrorContext(ctx, "failed to publish notification",
			slog.String("type", string(notification.Type)),
			slog.Uint64("reservation_id", uint64(notification.ReservationID)),
			slog.Any("error", err),
		)
	}
}

func (s *Service) handleNotification(ctx context.Context, notification *Notification) error {
	// Delivery channels (email, push) hang off this handler; for now the
	// consumer records the notification.
	s.log.InfoContext(ctx, "notification received",
		slog.String("id", notification.ID.String()),
		slog.String("type", string(notification.Type)),
		slog.Uint64("user_id", uint64(notification.UserID)),
		slog.Uint64("event_id", uint64(notification.EventID)),
		slog.Uint64("reservation_id", uint64(notification.ReservationID)),
		slog.String("seat_number", notification.SeatNumber),
	)
	return nil
}
