// Package kafka connects the service to Kafka: sensor readings in, risk
// assessments out.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/rockfall-risk-service/internal/config"
	"github.com/couchcryptid/rockfall-risk-service/internal/domain"
	"github.com/couchcryptid/rockfall-risk-service/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// AssessmentWriter publishes assessments to a Kafka topic.
// It implements pipeline.Publisher.
type AssessmentWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewAssessmentWriter creates an asynchronous producer for the assessment
// topic. Delivery results are logged and counted, never returned to the
// request that produced the assessment.
func NewAssessmentWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *AssessmentWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAssessmentTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		Async:        true,
		Completion: func(messages []kafkago.Message, err error) {
			if err != nil {
				metrics.AssessmentsPublished.WithLabelValues("error").Add(float64(len(messages)))
				logger.Error("publish assessments failed", "error", err, "count", len(messages))
				return
			}
			metrics.AssessmentsPublished.WithLabelValues("success").Add(float64(len(messages)))
		},
	}
	return &AssessmentWriter{writer: w, logger: logger}
}

// Publish serializes and enqueues one assessment.
func (w *AssessmentWriter) Publish(ctx context.Context, a domain.Assessment) error {
	msg, err := serializeToMessage(a)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

// Close flushes pending messages and closes the writer.
func (w *AssessmentWriter) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Assessment into a Kafka message keyed by
// its ID.
func serializeToMessage(a domain.Assessment) (kafkago.Message, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize assessment: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(a.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "risk", Value: []byte(a.Prediction.Risk)},
			{Key: "assessed_at", Value: []byte(a.AssessedAt.Format(time.RFC3339))},
		},
	}, nil
}
