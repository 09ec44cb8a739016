package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"eventbook/pkg/logger"
)

// Consumer drains the notification topic and hands each message to a handler.
type Consumer interface {
	Start(ctx context.Context) error
	Stop() error
}

// ConsumerConfig contains configuration for the Kafka notification consumer
type ConsumerConfig struct {
	Brokers        []string
	GroupID        string
	Topics         []string
	SessionTimeout time.Duration
	OffsetOldest   bool
}

// DefaultConsumerConfig returns a default consumer configuration
func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:        []string{"localhost:9092"},
		GroupID:        "eventbook-notification-workers",
		Topics:         []string{"notifications"},
		SessionTimeout: 30 * time.Second,
		OffsetOldest:   false,
	}
}

// Handler processes one decoded notification.
type Handler func(ctx context.Context, notification *Notification) error

type KafkaConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	handler       Handler
	log           *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewKafkaConsumer(config *ConsumerConfig, handler Handler) (Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimeout
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true

	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &KafkaConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		handler:       handler,
		log:           logger.GetDefault(),
	}, nil
}

func (kc *KafkaConsumer) Start(ctx context.Context) error {
	ctx, kc.cancel = context.WithCancel(ctx)

	kc.wg.Add(1)
	go func() {
		defer kc.wg.Done()
		for err := range kc.consumerGroup.Errors() {
			kc.log.Error("notification consumer error", slog.Any("error", err))
		}
	}()

	kc.wg.Add(1)
	go func() {
		defer kc.wg.Done()
		handler := &groupHandler{handler: kc.handler, log: kc.log}
		for {
			if err := kc.consumerGroup.Consume(ctx, kc.config.Topics, handler); err != nil {
				kc.log.Error("notification consume failed", slog.Any("error", err))
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	return nil
}

func (kc *KafkaConsumer) Stop() error {
	if kc.cancel != nil {
		kc.cancel()
	}
	err := kc.consumerGroup.Close()
	kc.wg.Wait()
	return err
}

type groupHandler struct {
	handler Handler
	log     *logger.Logger
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		var notification Notification
		if err := json.Unmarshal(message.Value, &notification); err != nil {
			h.log.Error("dropping malformed notification",
				slog.String("topic", message.Topic),
				slog.Int64("offset", message.Offset),
				slog.Any("error", err),
			)
			session.MarkMessage(message, "")
			continue
		}

		if err := h.handler(session.Context(), &notification); err != nil {
			h.log.Error("notification handler failed",
				slog.String("notification_id", notification.ID.String()),
				slog.Any("error", err),
			)
		}

		session.MarkMessage(message, "")
	}
	return nil
}
