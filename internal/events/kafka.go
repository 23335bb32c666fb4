package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"stafflink/internal/platform/metrics"
)

// Kafka publishes events to a single topic, keyed by subject so transitions
// for one account or application stay ordered within a partition.
type Kafka struct {
	client  *kgo.Client
	topic   string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewKafka connects to the brokers and ensures the topic exists.
func NewKafka(ctx context.Context, brokers []string, topic string, logger *slog.Logger, m *metrics.Metrics) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerLinger(0),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	resp, err := admin.CreateTopics(ctx, 3, 1, nil, topic)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("create topic: %w", err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			client.Close()
			return nil, fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}

	return &Kafka{client: client, topic: topic, logger: logger, metrics: m}, nil
}

func (k *Kafka) Publish(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		k.logger.ErrorContext(ctx, "encode workflow event", "type", event.Type, "error", err)
		return
	}

	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(event.Subject),
		Value: payload,
	}
	k.client.Produce(context.WithoutCancel(ctx), record, func(_ *kgo.Record, err error) {
		result := "ok"
		if err != nil {
			result = "error"
			k.logger.Error("publish workflow event", "type", event.Type, "error", err)
		}
		if k.metrics != nil {
			k.metrics.EventsPublished.WithLabelValues(result).Inc()
		}
	})
}

// Close flushes pending records and releases the client.
func (k *Kafka) Close(ctx context.Context) error {
	if err := k.client.Flush(ctx); err != nil {
		return err
	}
	k.client.Close()
	return nil
}
