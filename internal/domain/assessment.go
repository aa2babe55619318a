package domain

import (
	"time"

	"github.com/google/uuid"
)

// Assessment is one completed risk evaluation, as published downstream.
type Assessment struct {
	ID           string         `json:"id"`
	Coordinates  Coordinates    `json:"coordinates"`
	Features     FeatureVector  `json:"features"`
	Prediction   RiskPrediction `json:"prediction"`
	Alert        *string        `json:"alert"`
	DemoOverride string         `json:"demo_override,omitempty"`
	AssessedAt   time.Time      `json:"assessed_at"`
}

// NewAssessment stamps a prediction with an ID and the current time.
// demoSite is empty unless the features came from the override table.
func NewAssessment(c Coordinates, f FeatureVector, p RiskPrediction, demoSite string) Assessment {
	return Assessment{
		ID:           uuid.NewString(),
		Coordinates:  c,
		Features:     f,
		Prediction:   p,
		Alert:        p.Alert(),
		DemoOverride: demoSite,
		AssessedAt:   clock.Now().UTC(),
	}
}
