// Package kafka publishes inserted observations for downstream consumers
// that prefer a stream over polling the destination table.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-ingest/internal/config"
	"github.com/couchcryptid/weather-ingest/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher produces observation messages to a Kafka topic.
// It implements ingest.Publisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured observation topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishObservation serializes one observation and writes it to the topic,
// keyed by the observation date so a compacted topic keeps the latest record
// per date.
func (p *Publisher) PublishObservation(ctx context.Context, obs domain.Observation) error {
	msg, err := serializeToMessage(obs)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an observation into a Kafka message.
func serializeToMessage(obs domain.Observation) (kafkago.Message, error) {
	data, err := json.Marshal(obs)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize observation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(obs.DateString()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "weather_condition", Value: []byte(obs.Condition)},
			{Key: "ingested_at", Value: []byte(obs.IngestedAt.Format(time.RFC3339))},
		},
	}, nil
}
