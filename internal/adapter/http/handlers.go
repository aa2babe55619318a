package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/couchcryptid/rockfall-risk-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Client-facing error messages.
const (
	msgInvalidBody        = "Invalid JSON body"
	msgMissingCoordinates = "Please provide 'lat' and 'lon' (or 'latitude' and 'longitude') in request body."
	msgInvalidCoordinates = "Latitude and longitude must be numeric"
	msgModelUnavailable   = "Model not loaded on server. Put the model artifact at MODEL_PATH and restart."
	msgPredictionFailed   = "Model prediction failed"
	msgMissingFeatures    = "Missing required features"
	msgInternal           = "Internal server error"
)

// predictionResponse is the envelope returned by /predict and /classify.
type predictionResponse struct {
	Features   domain.FeatureVector  `json:"features"`
	Prediction domain.RiskPrediction `json:"prediction"`
	Alert      *string               `json:"alert"`
}

type terrainResponse struct {
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	Elevation *float64 `json:"elevation_m"`
	Slope     *float64 `json:"slope_deg"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "rockfall risk service running"})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	req, ok := s.readRequest(w, r)
	if !ok {
		return
	}

	a, err := s.handlers.Assessor.Assess(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, predictionResponse{
		Features:   a.Features,
		Prediction: a.Prediction,
		Alert:      a.Alert,
	})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	req, ok := s.readRequest(w, r)
	if !ok {
		return
	}

	features, pred, err := s.handlers.Classifier.ClassifyMap(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, predictionResponse{
		Features:   features,
		Prediction: pred,
		Alert:      pred.Alert(),
	})
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := pathCoordinates(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.handlers.Weather.Report(r.Context(), lat, lon))
}

func (s *Server) handleTerrain(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := pathCoordinates(w, r)
	if !ok {
		return
	}

	resp := terrainResponse{Lat: lat, Lon: lon}
	if s.handlers.Elevation != nil {
		v, err := s.handlers.Elevation.ElevationAt(r.Context(), lat, lon)
		resp.Elevation = s.optional("elevation", v, err)
	}
	if s.handlers.Slope != nil {
		v, err := s.handlers.Slope.SlopeAt(r.Context(), lat, lon)
		resp.Slope = s.optional("slope", v, err)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVibration(w http.ResponseWriter, r *http.Request) {
	vibration := 0.0
	if s.handlers.Sensors != nil {
		state, err := s.handlers.Sensors.LatestSensorState(r.Context())
		if err == nil {
			v, _ := state.Value(domain.FieldVibration)
			vibration = domain.FloatOr(v, 0)
		} else if !errors.Is(err, domain.ErrNoData) {
			s.logger.Warn("read sensor state failed", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]float64{"vibration": vibration})
}

func (s *Server) handleMine(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	m, ok := s.handlers.Mines.Lookup(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": fmt.Sprintf("No mine named '%s' found", name),
		})
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// readRequest parses the body as a JSON object, writing the 400 itself on
// failure.
func (s *Server) readRequest(w http.ResponseWriter, r *http.Request) (domain.RawRequest, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgInvalidBody})
		return nil, false
	}
	req, err := domain.ParseRawRequest(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgInvalidBody})
		return nil, false
	}
	return req, true
}

// writeError maps the error taxonomy to a status and body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var missing *domain.MissingFeaturesError
	var predErr *domain.PredictionError

	switch {
	case errors.Is(err, domain.ErrMissingCoordinates):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgMissingCoordinates})
	case errors.Is(err, domain.ErrInvalidCoordinates):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgInvalidCoordinates})
	case errors.As(err, &missing):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": msgMissingFeatures, "missing": missing.Fields})
	case errors.Is(err, domain.ErrModelUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": msgModelUnavailable})
	case errors.As(err, &predErr):
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   msgPredictionFailed,
			"details": predErr.Cause.Error(),
		})
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msgInternal})
	}
}

// optional turns a lookup result into a nullable value, logging failures
// other than "no data".
func (s *Server) optional(what string, v float64, err error) *float64 {
	if err != nil {
		if !errors.Is(err, domain.ErrNoData) {
			s.logger.Warn("terrain lookup failed", "lookup", what, "error", err)
		}
		return nil
	}
	return &v
}

func pathCoordinates(w http.ResponseWriter, r *http.Request) (lat, lon float64, ok bool) {
	lat, latErr := strconv.ParseFloat(chi.URLParam(r, "lat"), 64)
	lon, lonErr := strconv.ParseFloat(chi.URLParam(r, "lon"), 64)
	if latErr != nil || lonErr != nil || math.IsInf(lat, 0) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsNaN(lon) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msgInvalidCoordinates})
		return 0, 0, false
	}
	return lat, lon, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
