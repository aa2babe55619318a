//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/rockfall-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/rockfall-risk-service/internal/config"
	"github.com/couchcryptid/rockfall-risk-service/internal/domain"
	"github.com/couchcryptid/rockfall-risk-service/internal/model"
	"github.com/couchcryptid/rockfall-risk-service/internal/observability"
	"github.com/couchcryptid/rockfall-risk-service/internal/pipeline"
	"github.com/couchcryptid/rockfall-risk-service/internal/sensors"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const (
	testSensorTopic     = "test-sensor-readings"
	testAssessmentTopic = "test-assessments"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker for the duration of the test.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("rockfall-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func testConfig(broker string) *config.Config {
	return &config.Config{
		KafkaBrokers:         []string{broker},
		KafkaSensorTopic:     testSensorTopic,
		KafkaAssessmentTopic: testAssessmentTopic,
		KafkaGroupID:         fmt.Sprintf("test-group-%d", time.Now().UnixNano()),
	}
}

// readAssessment reads one published assessment from the assessment topic.
func readAssessment(ctx context.Context, t *testing.T, broker string) (domain.Assessment, kafkago.Message) {
	t.Helper()

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  []string{broker},
		Topic:    testAssessmentTopic,
		GroupID:  fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})
	defer consumer.Close()

	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from assessment topic")

	var a domain.Assessment
	require.NoError(t, json.Unmarshal(msg.Value, &a))
	return a, msg
}

// TestSensorIngestion verifies that readings published to the sensor topic
// reach the store through the Kafka reader.
func TestSensorIngestion(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSensorTopic)
	cfg := testConfig(broker)

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSensorTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Value: []byte(`{"vibration": 1.1, "tilt": 0.3}`)},
		kafkago.Message{Key: []byte("vibration"), Value: []byte(`2.2`)},
	))

	reader := kafka.NewSensorReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	store := sensors.NewStore(0, clockwork.NewRealClock())
	ingestCtx, stopIngest := context.WithCancel(ctx)
	defer stopIngest()
	go func() {
		_ = sensors.NewIngestor(reader, store, discardLogger(), observability.NewMetricsForTesting()).Run(ingestCtx)
	}()

	require.Eventually(t, func() bool {
		state, err := store.LatestSensorState(ctx)
		if err != nil {
			return false
		}
		v, ok := domain.Float(state["vibration"])
		return ok && v == 2.2
	}, 60*time.Second, 200*time.Millisecond, "vibration reading never reached the store")

	state, err := store.LatestSensorState(ctx)
	require.NoError(t, err)
	tilt, ok := domain.Float(state["tilt"])
	require.True(t, ok)
	assert.InDelta(t, 0.3, tilt, 1e-9)
}

// TestAssessmentPublishing verifies the writer's message layout on a real
// broker.
func TestAssessmentPublishing(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testAssessmentTopic)
	cfg := testConfig(broker)

	metrics := observability.NewMetricsForTesting()
	writer := kafka.NewAssessmentWriter(cfg, discardLogger(), metrics)

	pred := domain.NewRiskPrediction(0.82)
	a := domain.NewAssessment(domain.Coordinates{Lat: 23.0, Lon: 86.5}, domain.FeatureVector{Slope: 50}, pred, "Jharia")
	require.NoError(t, writer.Publish(ctx, a))
	// Close flushes the async batch.
	require.NoError(t, writer.Close())

	got, msg := readAssessment(ctx, t, broker)

	assert.Equal(t, a.ID, string(msg.Key))
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, domain.RiskHigh, got.Prediction.Risk)
	assert.Equal(t, "Jharia", got.DemoOverride)
	require.NotNil(t, got.Alert)
	assert.Equal(t, domain.AlertHigh, *got.Alert)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "high", headers["risk"])
	assert.Equal(t, a.AssessedAt.Format(time.RFC3339), headers["assessed_at"])
}

// TestAssessmentEndToEnd ingests a vibration reading, assesses a location
// with the baseline model, and reads the published assessment back.
func TestAssessmentEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSensorTopic)
	createTopic(t, broker, testAssessmentTopic)
	cfg := testConfig(broker)

	logger := discardLogger()
	metrics := observability.NewMetricsForTesting()

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSensorTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{Value: []byte(`{"vibration": 4.0}`)}))

	reader := kafka.NewSensorReader(cfg, logger)
	t.Cleanup(func() { _ = reader.Close() })
	store := sensors.NewStore(0, clockwork.NewRealClock())
	ingestCtx, stopIngest := context.WithCancel(ctx)
	defer stopIngest()
	go func() { _ = sensors.NewIngestor(reader, store, logger, metrics).Run(ingestCtx) }()

	require.Eventually(t, func() bool {
		_, err := store.LatestSensorState(ctx)
		return err == nil
	}, 60*time.Second, 200*time.Millisecond)

	m, err := model.New(model.DefaultArtifact())
	require.NoError(t, err)

	writer := kafka.NewAssessmentWriter(cfg, logger, metrics)
	assessor := pipeline.NewAssessor(
		pipeline.NewResolver(pipeline.Sources{Sensors: store}, true, logger, metrics),
		pipeline.NewClassifier(m, logger, metrics),
		writer, logger, metrics,
	)

	a, err := assessor.Assess(ctx, domain.RawRequest{"lat": 12.0, "lon": 77.0})
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	got, _ := readAssessment(ctx, t, broker)
	assert.Equal(t, a.ID, got.ID)
	assert.InDelta(t, 4.0, got.Features.Vibration, 1e-9)
	assert.Empty(t, got.DemoOverride)
}
