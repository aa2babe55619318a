package domain

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidBody is returned when a request body is not a JSON object.
	ErrInvalidBody = errors.New("invalid JSON body")

	// ErrMissingCoordinates is returned when either latitude or longitude is
	// absent under both of its accepted key names.
	ErrMissingCoordinates = errors.New("missing coordinates")

	// ErrInvalidCoordinates is returned when a coordinate is present but not numeric.
	ErrInvalidCoordinates = errors.New("coordinates must be numeric")

	// ErrModelUnavailable is returned by every classification attempt when
	// the model artifact failed to load at startup.
	ErrModelUnavailable = errors.New("model not loaded")

	// ErrNoData is returned by collaborators that answered but had nothing
	// for the requested location.
	ErrNoData = errors.New("no data")
)

// MissingFeaturesError lists the required features absent from a feature mapping.
type MissingFeaturesError struct {
	Fields []string
}

func (e *MissingFeaturesError) Error() string {
	return "missing input features: " + strings.Join(e.Fields, ", ")
}

// PredictionError wraps a failure while assembling the model input or
// invoking the model.
type PredictionError struct {
	Cause error
}

func (e *PredictionError) Error() string {
	return "prediction failed: " + e.Cause.Error()
}

func (e *PredictionError) Unwrap() error {
	return e.Cause
}
