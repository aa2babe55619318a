// Package http exposes the risk service over HTTP: prediction and
// classification endpoints, the supporting data lookups, and the health,
// readiness and metrics routes.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/rockfall-risk-service/internal/domain"
	"github.com/couchcryptid/rockfall-risk-service/internal/mines"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Assessor runs a full assessment for a raw request.
type Assessor interface {
	Assess(ctx context.Context, req domain.RawRequest) (domain.Assessment, error)
}

// Classifier scores a complete feature mapping.
type Classifier interface {
	ClassifyMap(m map[string]any) (domain.FeatureVector, domain.RiskPrediction, error)
}

// WeatherReporter builds the combined weather report for a location.
type WeatherReporter interface {
	Report(ctx context.Context, lat, lon float64) domain.WeatherReport
}

// ElevationLookup returns the ground elevation in meters at a location.
type ElevationLookup interface {
	ElevationAt(ctx context.Context, lat, lon float64) (float64, error)
}

// MineDirectory finds mine metadata by name.
type MineDirectory interface {
	Lookup(name string) (mines.Mine, bool)
}

// Handlers are the collaborators behind the routes. Slope, Elevation and
// Sensors may be nil, in which case the corresponding values read as
// unavailable.
type Handlers struct {
	Assessor   Assessor
	Classifier Classifier
	Weather    WeatherReporter
	Slope      domain.SlopeLookup
	Elevation  ElevationLookup
	Sensors    domain.SensorStateReader
	Mines      MineDirectory
	Ready      sharedobs.ReadinessChecker
}

// Server is the service's HTTP server.
type Server struct {
	httpServer *http.Server
	handlers   Handlers
	logger     *slog.Logger
}

// NewServer creates an HTTP server with all routes mounted. allowedOrigins
// configures CORS.
func NewServer(addr string, h Handlers, allowedOrigins []string, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		handlers: h,
		logger:   logger,
	}

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(h.Ready))
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/predict", s.handlePredict)
	r.Post("/classify", s.handleClassify)
	r.Get("/weather/{lat}/{lon}", s.handleWeather)
	r.Get("/srtm/{lat}/{lon}", s.handleTerrain)
	r.Get("/sensors/vibration", s.handleVibration)
	r.Get("/mine/{name}", s.handleMine)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
