package sensors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/rockfall-risk-service/internal/observability"
)

// Message is one sensor message as delivered by a broker.
type Message struct {
	Key       []byte
	Value     []byte
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Source delivers sensor messages one at a time.
type Source interface {
	Fetch(ctx context.Context) (Message, error)
}

// Backoff bounds for source failures.
const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Ingestor copies readings from a Source into a Store.
type Ingestor struct {
	source  Source
	store   *Store
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewIngestor creates an Ingestor.
func NewIngestor(source Source, store *Store, logger *slog.Logger, metrics *observability.Metrics) *Ingestor {
	return &Ingestor{source: source, store: store, logger: logger, metrics: metrics}
}

// Run consumes messages until the context is cancelled.
func (in *Ingestor) Run(ctx context.Context) error {
	in.logger.Info("sensor ingestion started")
	in.metrics.SensorIngestRunning.Set(1)
	defer in.metrics.SensorIngestRunning.Set(0)

	backoff := initialBackoff

	for {
		select {
		case <-ctx.Done():
			in.logger.Info("sensor ingestion stopping", "reason", ctx.Err())
			return nil
		default:
		}

		msg, err := in.source.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			in.logger.Error("fetch sensor message failed", "error", err, "retry_in", backoff)
			if !sleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = initialBackoff

		in.handle(ctx, msg)
	}
}

// handle applies one message. Undecodable messages are logged, counted and
// committed so they are not redelivered.
func (in *Ingestor) handle(ctx context.Context, msg Message) {
	in.metrics.SensorMessagesConsumed.Inc()

	readings, err := decodeReadings(msg)
	if err != nil {
		in.logger.Warn("decode sensor message failed, skipping",
			"error", err,
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
		)
		in.metrics.SensorDecodeErrors.Inc()
	} else {
		in.store.Update(readings)
		in.logger.Debug("sensor state updated", "readings", readings, "updated_at", in.store.UpdatedAt())
	}

	in.commit(ctx, msg)
}

func (in *Ingestor) commit(ctx context.Context, msg Message) {
	if msg.Commit == nil {
		return
	}
	if err := msg.Commit(ctx); err != nil {
		in.logger.Warn("commit offset failed", "error", err,
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)
	}
}

var errEmptyReading = errors.New("message carries no readings")

// decodeReadings accepts either a flat JSON object of readings or a bare
// number named by the message key.
func decodeReadings(msg Message) (map[string]any, error) {
	value := bytes.TrimSpace(msg.Value)
	if len(value) == 0 {
		return nil, errEmptyReading
	}

	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()

	if value[0] == '{' {
		var readings map[string]any
		if err := dec.Decode(&readings); err != nil {
			return nil, fmt.Errorf("decode readings object: %w", err)
		}
		for k, v := range readings {
			switch v.(type) {
			case map[string]any, []any:
				return nil, fmt.Errorf("reading %q is not a scalar", k)
			}
		}
		if len(readings) == 0 {
			return nil, errEmptyReading
		}
		return readings, nil
	}

	name := strings.TrimSpace(string(msg.Key))
	if name == "" {
		return nil, errors.New("bare reading without a key")
	}
	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return nil, fmt.Errorf("decode reading %q: %w", name, err)
	}
	return map[string]any{name: n}, nil
}

func nextBackoff(current, limit time.Duration) time.Duration {
	next := current * 2
	if next > limit {
		return limit
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
