// Package weather provides the weather providers consulted during feature
// resolution and the combined report served over HTTP.
package weather

import (
	"context"
	"errors"
	"log/slog"

	"github.com/couchcryptid/rockfall-risk-service/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Service composes a primary and a secondary provider. Either may be nil.
type Service struct {
	primary   domain.WeatherProvider
	secondary domain.WeatherProvider
	logger    *slog.Logger
}

// NewService creates a weather service.
func NewService(primary, secondary domain.WeatherProvider, logger *slog.Logger) *Service {
	return &Service{primary: primary, secondary: secondary, logger: logger}
}

// CurrentWeather tries the primary provider, then the secondary. It returns
// domain.ErrNoData when no provider is configured or none had data.
func (s *Service) CurrentWeather(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error) {
	var errs []error
	for _, p := range []domain.WeatherProvider{s.primary, s.secondary} {
		if p == nil {
			continue
		}
		snap, err := p.CurrentWeather(ctx, lat, lon)
		if err == nil {
			return snap, nil
		}
		if !errors.Is(err, domain.ErrNoData) {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return domain.WeatherSnapshot{}, domain.ErrNoData
	}
	return domain.WeatherSnapshot{}, errors.Join(errs...)
}

// Report queries both providers concurrently and summarizes the results.
// Provider failures are logged and reported as null.
func (s *Service) Report(ctx context.Context, lat, lon float64) domain.WeatherReport {
	var report domain.WeatherReport
	var g errgroup.Group

	g.Go(func() error {
		report.OpenWeather = s.fetch(ctx, "openweather", s.primary, lat, lon)
		return nil
	})
	g.Go(func() error {
		report.NASAPower = s.fetch(ctx, "nasa_power", s.secondary, lat, lon)
		return nil
	})
	_ = g.Wait()

	report.Summary = domain.Summarize(report.OpenWeather, report.NASAPower)
	return report
}

func (s *Service) fetch(ctx context.Context, name string, p domain.WeatherProvider, lat, lon float64) *domain.WeatherSnapshot {
	if p == nil {
		return nil
	}
	snap, err := p.CurrentWeather(ctx, lat, lon)
	if err != nil {
		if !errors.Is(err, domain.ErrNoData) {
			s.logger.Warn("weather provider failed", "provider", name, "lat", lat, "lon", lon, "error", err)
		}
		return nil
	}
	return &snap
}
