package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/rockfall-risk-service/internal/config"
	"github.com/couchcryptid/rockfall-risk-service/internal/sensors"
	kafkago "github.com/segmentio/kafka-go"
)

// SensorReader consumes sensor readings from a Kafka topic.
// It implements sensors.Source.
type SensorReader struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewSensorReader creates a consumer group reader for the sensor topic.
func NewSensorReader(cfg *config.Config, logger *slog.Logger) *SensorReader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaSensorTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})
	return &SensorReader{reader: r, logger: logger}
}

// Fetch blocks until the next message arrives. Offsets are committed by
// the caller through Message.Commit.
func (r *SensorReader) Fetch(ctx context.Context) (sensors.Message, error) {
	msg, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return sensors.Message{}, fmt.Errorf("fetch sensor message: %w", err)
	}
	out := mapMessage(msg)
	out.Commit = func(ctx context.Context) error {
		return r.reader.CommitMessages(ctx, msg)
	}
	return out, nil
}

// Close closes the underlying reader.
func (r *SensorReader) Close() error {
	return r.reader.Close()
}

func mapMessage(msg kafkago.Message) sensors.Message {
	return sensors.Message{
		Key:       msg.Key,
		Value:     msg.Value,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
	}
}
