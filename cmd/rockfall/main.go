package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/rockfall-risk-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/rockfall-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/rockfall-risk-service/internal/adapter/terrain"
	"github.com/couchcryptid/rockfall-risk-service/internal/adapter/upstream"
	"github.com/couchcryptid/rockfall-risk-service/internal/adapter/weather"
	"github.com/couchcryptid/rockfall-risk-service/internal/config"
	"github.com/couchcryptid/rockfall-risk-service/internal/domain"
	"github.com/couchcryptid/rockfall-risk-service/internal/mines"
	"github.com/couchcryptid/rockfall-risk-service/internal/model"
	"github.com/couchcryptid/rockfall-risk-service/internal/observability"
	"github.com/couchcryptid/rockfall-risk-service/internal/pipeline"
	"github.com/couchcryptid/rockfall-risk-service/internal/sensors"
	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
)

// upstreamBurst is how many requests may go out at once before the
// per-upstream rate limit applies.
const upstreamBurst = 10

func main() {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// The service still starts without a model; predictions answer 503
	// and readiness fails until it is restarted with a valid artifact.
	var probability domain.ProbabilityModel
	if m, err := model.Load(cfg.ModelPath); err != nil {
		logger.Error("model not loaded", "path", cfg.ModelPath, "error", err)
	} else {
		probability = m
		logger.Info("model loaded", "path", cfg.ModelPath, "version", m.Version())
	}

	weatherSvc := newWeatherService(cfg, logger, metrics)

	slopes, err := terrain.DefaultSlopeTable()
	if err != nil {
		logger.Error("failed to load slope table", "error", err)
		os.Exit(1)
	}

	var elevation httpadapter.ElevationLookup
	if cfg.ElevationEnabled {
		client := upstream.NewClient("open_elevation", cfg.ElevationTimeout, metrics, upstream.WithRateLimit(cfg.UpstreamRateLimit, upstreamBurst))
		elevation = terrain.NewCachedElevation(terrain.NewElevationClient(client, cfg.ElevationURL), cfg.ElevationCacheSize, metrics)
		logger.Info("elevation lookup enabled", "url", cfg.ElevationURL, "cache_size", cfg.ElevationCacheSize)
	} else {
		logger.Info("elevation lookup disabled")
	}

	mineDir, err := mines.Default()
	if err != nil {
		logger.Error("failed to load mine directory", "error", err)
		os.Exit(1)
	}

	store := sensors.NewStore(cfg.SensorStaleAfter, clockwork.NewRealClock())

	var (
		publisher pipeline.Publisher
		reader    *kafkaadapter.SensorReader
		writer    *kafkaadapter.AssessmentWriter
	)
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewSensorReader(cfg, logger)
		writer = kafkaadapter.NewAssessmentWriter(cfg, logger, metrics)
		publisher = writer
		logger.Info("kafka enabled",
			"brokers", cfg.KafkaBrokers,
			"sensor_topic", cfg.KafkaSensorTopic,
			"assessment_topic", cfg.KafkaAssessmentTopic,
		)
	} else {
		logger.Info("kafka disabled, sensor readings and assessment publishing unavailable")
	}

	resolver := pipeline.NewResolver(pipeline.Sources{
		Weather: weatherSvc,
		Slope:   slopes,
		Sensors: store,
	}, cfg.DemoOverridesEnabled, logger, metrics)
	classifier := pipeline.NewClassifier(probability, logger, metrics)
	assessor := pipeline.NewAssessor(resolver, classifier, publisher, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Handlers{
		Assessor:   assessor,
		Classifier: classifier,
		Weather:    weatherSvc,
		Slope:      slopes,
		Elevation:  elevation,
		Sensors:    store,
		Mines:      mineDir,
		Ready:      assessor,
	}, cfg.CORSAllowedOrigins, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start sensor ingestion.
	ingestDone := make(chan struct{})
	if reader != nil {
		ingestor := sensors.NewIngestor(reader, store, logger, metrics)
		go func() {
			defer close(ingestDone)
			if err := ingestor.Run(ctx); err != nil {
				logger.Error("sensor ingestion error", "error", err)
			}
		}()
	} else {
		close(ingestDone)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-ingestDone:
	case <-shutdownCtx.Done():
		logger.Warn("sensor ingestion did not stop before shutdown timeout")
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// newWeatherService wires the enabled providers. OpenWeather is primary
// when an API key is available; NASA POWER needs no key.
func newWeatherService(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *weather.Service {
	var primary, secondary domain.WeatherProvider

	if cfg.OpenWeatherEnabled && cfg.OpenWeatherAPIKey != "" {
		client := upstream.NewClient("openweather", cfg.WeatherTimeout, metrics, upstream.WithRateLimit(cfg.UpstreamRateLimit, upstreamBurst))
		primary = weather.NewOpenWeather(client, cfg.OpenWeatherAPIKey, "")
		logger.Info("openweather enabled", "timeout", cfg.WeatherTimeout)
	} else {
		logger.Info("openweather disabled")
	}

	if cfg.NASAPowerEnabled {
		client := upstream.NewClient("nasa_power", cfg.WeatherTimeout, metrics, upstream.WithRateLimit(cfg.UpstreamRateLimit, upstreamBurst))
		secondary = weather.NewNASAPower(client, "", clockwork.NewRealClock())
		logger.Info("nasa power enabled", "timeout", cfg.WeatherTimeout)
	} else {
		logger.Info("nasa power disabled")
	}

	return weather.NewService(primary, secondary, logger)
}
