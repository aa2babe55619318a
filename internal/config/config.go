package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr           string
	LogLevel           string
	LogFormat          string
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string

	// Classifier configuration.
	ModelPath            string
	DemoOverridesEnabled bool

	// Weather provider configuration.
	OpenWeatherAPIKey  string
	OpenWeatherEnabled bool
	NASAPowerEnabled   bool
	WeatherTimeout     time.Duration

	// Outbound requests per second allowed to each upstream API; 0 disables.
	UpstreamRateLimit float64

	// Elevation lookup configuration.
	ElevationEnabled   bool
	ElevationURL       string
	ElevationTimeout   time.Duration
	ElevationCacheSize int

	// Kafka configuration (sensor ingestion and assessment publishing).
	KafkaEnabled         bool
	KafkaBrokers         []string
	KafkaSensorTopic     string
	KafkaAssessmentTopic string
	KafkaGroupID         string
	SensorStaleAfter     time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	weatherTimeout, err := parsePositiveDuration("WEATHER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	elevationTimeout, err := parsePositiveDuration("ELEVATION_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	staleAfter, err := time.ParseDuration(sharedcfg.EnvOrDefault("SENSOR_STALE_AFTER", "5m"))
	if err != nil || staleAfter < 0 {
		return nil, errors.New("invalid SENSOR_STALE_AFTER")
	}

	upstreamRate, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("UPSTREAM_RATE_LIMIT", "5"), 64)
	if err != nil || upstreamRate < 0 {
		return nil, errors.New("invalid UPSTREAM_RATE_LIMIT")
	}

	demoOverrides, err := parseBool("DEMO_OVERRIDES_ENABLED", true)
	if err != nil {
		return nil, err
	}
	nasaEnabled, err := parseBool("NASA_POWER_ENABLED", true)
	if err != nil {
		return nil, err
	}
	elevationEnabled, err := parseBool("ELEVATION_ENABLED", true)
	if err != nil {
		return nil, err
	}

	// An API key implies OpenWeather is wanted; the flag can still turn it off.
	openWeatherKey := os.Getenv("OPENWEATHER_API_KEY")
	openWeatherEnabled, err := parseBool("OPENWEATHER_ENABLED", openWeatherKey != "")
	if err != nil {
		return nil, err
	}

	// Likewise, configuring brokers implies Kafka is wanted.
	kafkaEnabled, err := parseBool("KAFKA_ENABLED", os.Getenv("KAFKA_BROKERS") != "")
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseCacheSize()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		CORSAllowedOrigins: parseList(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),

		ModelPath:            sharedcfg.EnvOrDefault("MODEL_PATH", "models/rockfall_model.json"),
		DemoOverridesEnabled: demoOverrides,

		OpenWeatherAPIKey:  openWeatherKey,
		OpenWeatherEnabled: openWeatherEnabled,
		NASAPowerEnabled:   nasaEnabled,
		WeatherTimeout:     weatherTimeout,
		UpstreamRateLimit:  upstreamRate,

		ElevationEnabled:   elevationEnabled,
		ElevationURL:       sharedcfg.EnvOrDefault("ELEVATION_URL", "https://api.open-elevation.com/api/v1/lookup"),
		ElevationTimeout:   elevationTimeout,
		ElevationCacheSize: cacheSize,

		KafkaEnabled:         kafkaEnabled,
		KafkaBrokers:         sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSensorTopic:     sharedcfg.EnvOrDefault("KAFKA_SENSOR_TOPIC", "mine-sensor-readings"),
		KafkaAssessmentTopic: sharedcfg.EnvOrDefault("KAFKA_ASSESSMENT_TOPIC", "rockfall-assessments"),
		KafkaGroupID:         sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "rockfall-risk"),
		SensorStaleAfter:     staleAfter,
	}

	if cfg.ModelPath == "" {
		return nil, errors.New("MODEL_PATH is required")
	}
	if cfg.OpenWeatherEnabled && cfg.OpenWeatherAPIKey == "" {
		return nil, errors.New("OPENWEATHER_ENABLED is true but OPENWEATHER_API_KEY is not set")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when Kafka is enabled")
		}
		if cfg.KafkaSensorTopic == "" {
			return nil, errors.New("KAFKA_SENSOR_TOPIC is required when Kafka is enabled")
		}
		if cfg.KafkaAssessmentTopic == "" {
			return nil, errors.New("KAFKA_ASSESSMENT_TOPIC is required when Kafka is enabled")
		}
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func parseCacheSize() (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault("ELEVATION_CACHE_SIZE", "1000"))
	if err != nil || n <= 0 {
		return 0, errors.New("invalid ELEVATION_CACHE_SIZE")
	}
	return n, nil
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
