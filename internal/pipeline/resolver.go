package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/rockfall-risk-service/internal/domain"
	"github.com/couchcryptid/rockfall-risk-service/internal/observability"
	"golang.org/x/sync/errgroup"
)

// Lookup sources, as reported in logs and metrics.
const (
	sourceWeather = "weather"
	sourceSlope   = "slope"
	sourceSensors = "sensors"
)

// Sources are the collaborators consulted during resolution. Any of them
// may be nil, which reads as "absent".
type Sources struct {
	Weather domain.WeatherProvider
	Slope   domain.SlopeLookup
	Sensors domain.SensorStateReader
}

// Resolution is the outcome of resolving one request.
type Resolution struct {
	Coordinates domain.Coordinates
	Features    domain.FeatureVector
	DemoSite    string // set when the features came from the override table
}

// Resolver turns a raw request into a complete feature vector.
type Resolver struct {
	sources       Sources
	demoOverrides bool
	logger        *slog.Logger
	metrics       *observability.Metrics
}

// NewResolver creates a Resolver. demoOverrides enables the pinned demo
// site table.
func NewResolver(sources Sources, demoOverrides bool, logger *slog.Logger, metrics *observability.Metrics) *Resolver {
	return &Resolver{
		sources:       sources,
		demoOverrides: demoOverrides,
		logger:        logger,
		metrics:       metrics,
	}
}

// Resolve validates the request coordinates and fuses overrides with live
// readings. Only coordinate problems are returned as errors; collaborator
// failures degrade to defaults.
func (r *Resolver) Resolve(ctx context.Context, req domain.RawRequest) (Resolution, error) {
	coords, err := req.Coordinates()
	if err != nil {
		return Resolution{}, err
	}

	if r.demoOverrides {
		if site, ok := domain.DemoOverride(coords); ok {
			r.logger.Info("using demo override",
				"site", site.Name,
				"lat", coords.Lat,
				"lon", coords.Lon,
			)
			r.metrics.DemoOverrides.Inc()
			return Resolution{Coordinates: coords, Features: site.Features, DemoSite: site.Name}, nil
		}
	}

	obs := r.observe(ctx, coords, req)
	features := domain.ResolveFeatures(req, obs)

	r.logger.Debug("resolved features",
		"lat", coords.Lat,
		"lon", coords.Lon,
		"weather", obs.Weather.Status.String(),
		"slope", obs.Slope.Status.String(),
		"sensors", obs.Sensors.Status.String(),
	)
	return Resolution{Coordinates: coords, Features: features}, nil
}

// observe runs the collaborator reads concurrently. The slope and sensor
// reads are skipped when the request already overrides what they feed.
func (r *Resolver) observe(ctx context.Context, c domain.Coordinates, req domain.RawRequest) domain.Observations {
	obs := domain.Observations{
		Weather: domain.Absent[domain.WeatherSnapshot](),
		Slope:   domain.Absent[float64](),
		Sensors: domain.Absent[domain.SensorState](),
	}

	var g errgroup.Group

	if r.sources.Weather != nil {
		g.Go(func() error {
			obs.Weather = read(r, sourceWeather, c, func() (domain.WeatherSnapshot, error) {
				return r.sources.Weather.CurrentWeather(ctx, c.Lat, c.Lon)
			})
			return nil
		})
	}

	if _, overridden := req.Value(domain.FieldSlope); !overridden && r.sources.Slope != nil {
		g.Go(func() error {
			obs.Slope = read(r, sourceSlope, c, func() (float64, error) {
				return r.sources.Slope.SlopeAt(ctx, c.Lat, c.Lon)
			})
			return nil
		})
	}

	if _, overridden := req.Value(domain.FieldVibration); !overridden && r.sources.Sensors != nil {
		g.Go(func() error {
			obs.Sensors = read(r, sourceSensors, c, func() (domain.SensorState, error) {
				return r.sources.Sensors.LatestSensorState(ctx)
			})
			return nil
		})
	}

	_ = g.Wait() // reads never return errors; failures are carried in the lookups
	return obs
}

func read[T any](r *Resolver, source string, c domain.Coordinates, fetch func() (T, error)) domain.Lookup[T] {
	v, err := fetch()
	l := domain.LookupOf(v, err)
	r.metrics.Lookups.WithLabelValues(source, l.Status.String()).Inc()
	if l.Status == domain.LookupFailed {
		r.logger.Warn("lookup failed, using fallback",
			"source", source,
			"lat", c.Lat,
			"lon", c.Lon,
			"error", l.Err,
		)
	}
	return l
}
