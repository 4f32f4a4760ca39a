package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/marketsync/backend/internal/domain/order"
	"github.com/marketsync/backend/internal/domain/shared"
)

// KafkaConfig holds Kafka connection configuration for the notifier
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaOrderNotifier forwards order lifecycle events to a Kafka topic for
// downstream consumers (notification, analytics). It subscribes to the
// in-memory bus as a regular handler; a produce failure is logged by the
// bus and never blocks the sync flow.
type KafkaOrderNotifier struct {
	client *kgo.Client
	topic  string
	logger *zap.Logger
}

var _ shared.EventHandler = (*KafkaOrderNotifier)(nil)

// NewKafkaOrderNotifier creates a Kafka-backed order event notifier
func NewKafkaOrderNotifier(cfg KafkaConfig, logger *zap.Logger) (*KafkaOrderNotifier, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaOrderNotifier{
		client: client,
		topic:  cfg.Topic,
		logger: logger,
	}, nil
}

// EventTypes returns the order lifecycle events the notifier forwards
func (n *KafkaOrderNotifier) EventTypes() []string {
	return []string{
		order.EventTypeOrderCreated,
		order.EventTypeCancellationApplied,
		order.EventTypeRefundApplied,
		order.EventTypeShipmentSynced,
	}
}

// Handle serializes the event and produces it synchronously, keyed by
// aggregate id so events for one order stay ordered within a partition
func (n *KafkaOrderNotifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.EventID(), err)
	}

	record := &kgo.Record{
		Key:   []byte(event.AggregateID().String()),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(event.EventType())},
		},
	}

	if err := n.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce event %s: %w", event.EventID(), err)
	}

	n.logger.Debug("event forwarded to kafka",
		zap.String("event_type", event.EventType()),
		zap.String("topic", n.topic))
	return nil
}

// Close flushes and closes the Kafka client
func (n *KafkaOrderNotifier) Close() {
	n.client.Close()
}
