package domain

import "math"

// RiskLevel is the three-way risk taxonomy.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Probability thresholds. A probability must strictly exceed a threshold
// to cross it.
const (
	HighRiskThreshold   = 0.7
	MediumRiskThreshold = 0.4
	RockfallThreshold   = 0.5
)

// RiskLevelFor maps a rockfall probability to a risk level.
func RiskLevelFor(p float64) RiskLevel {
	switch {
	case p > HighRiskThreshold:
		return RiskHigh
	case p > MediumRiskThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// RiskPrediction is the packaged classifier output.
type RiskPrediction struct {
	Risk              RiskLevel `json:"risk"`
	Probability       float64   `json:"probability"`
	RockfallPredicted int       `json:"rockfall_predicted"`
}

// NewRiskPrediction applies the thresholds to the raw probability and
// rounds the reported probability to three decimals.
func NewRiskPrediction(p float64) RiskPrediction {
	predicted := 0
	if p > RockfallThreshold {
		predicted = 1
	}
	return RiskPrediction{
		Risk:              RiskLevelFor(p),
		Probability:       math.Round(p*1000) / 1000,
		RockfallPredicted: predicted,
	}
}
