package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rockfall"

// Metrics holds the Prometheus collectors for the risk service.
type Metrics struct {
	// Assessment metrics.
	Predictions        *prometheus.CounterVec // labels: risk={low,medium,high}
	PredictionErrors   *prometheus.CounterVec // labels: reason={model_unavailable,model_error}
	DemoOverrides      prometheus.Counter
	AssessmentDuration prometheus.Histogram
	ModelLoaded        prometheus.Gauge

	// Collaborator metrics.
	Lookups          *prometheus.CounterVec   // labels: source={weather,slope,sensors}, outcome={found,absent,failed}
	UpstreamDuration *prometheus.HistogramVec // labels: upstream={openweather,nasa_power,open_elevation}
	ElevationCache   *prometheus.CounterVec   // labels: result={hit,miss}

	// Sensor ingestion metrics.
	SensorMessagesConsumed prometheus.Counter
	SensorDecodeErrors     prometheus.Counter
	SensorIngestRunning    prometheus.Gauge

	// Publishing metrics.
	AssessmentsPublished *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Predictions,
		m.PredictionErrors,
		m.DemoOverrides,
		m.AssessmentDuration,
		m.ModelLoaded,
		m.Lookups,
		m.UpstreamDuration,
		m.ElevationCache,
		m.SensorMessagesConsumed,
		m.SensorDecodeErrors,
		m.SensorIngestRunning,
		m.AssessmentsPublished,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Successful risk classifications by risk level.",
		}, []string{"risk"}),
		PredictionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_errors_total",
			Help:      "Failed risk classifications by reason.",
		}, []string{"reason"}),
		DemoOverrides: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "demo_overrides_total",
			Help:      "Requests answered from the demo override table.",
		}),
		AssessmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assessment_duration_seconds",
			Help:      "Duration of a complete resolve-classify cycle.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		ModelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_loaded",
			Help:      "1 when the classifier model artifact is loaded, 0 otherwise.",
		}),
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Collaborator reads during feature resolution by source and outcome.",
		}, []string{"source", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Outbound HTTP request duration by upstream.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"upstream"}),
		ElevationCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "elevation_cache_total",
			Help:      "Elevation cache lookups by result.",
		}, []string{"result"}),
		SensorMessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sensor_messages_consumed_total",
			Help:      "Total sensor messages read from the sensor topic.",
		}),
		SensorDecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sensor_decode_errors_total",
			Help:      "Sensor messages skipped because they could not be decoded.",
		}),
		SensorIngestRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sensor_ingest_running",
			Help:      "1 when sensor ingestion is active, 0 when shut down.",
		}),
		AssessmentsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_published_total",
			Help:      "Assessments written to the assessment topic by outcome.",
		}, []string{"outcome"}),
	}
}
