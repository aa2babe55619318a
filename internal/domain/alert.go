package domain

import "strings"

// Alert messages returned alongside a prediction.
const (
	AlertHigh     = "⚠️ HIGH RISK of Rockfall detected! Immediate action required."
	AlertModerate = "⚠️ MODERATE RISK — Monitor site closely."
	AlertLow      = "✅ LOW RISK — Conditions stable."
)

// FormatAlert derives the alert text from a risk label, falling back to
// the probability when the label is not recognized. It returns nil when
// neither is usable.
func FormatAlert(label string, probability *float64) *string {
	label = strings.ToLower(label)

	var msg string
	switch {
	case strings.Contains(label, "high"):
		msg = AlertHigh
	case strings.Contains(label, "medium"), strings.Contains(label, "moderate"):
		msg = AlertModerate
	case strings.Contains(label, "low"):
		msg = AlertLow
	case probability == nil:
		return nil
	default:
		switch RiskLevelFor(*probability) {
		case RiskHigh:
			msg = AlertHigh
		case RiskMedium:
			msg = AlertModerate
		default:
			msg = AlertLow
		}
	}
	return &msg
}

// Alert formats the alert for a prediction.
func (p RiskPrediction) Alert() *string {
	return FormatAlert(string(p.Risk), &p.Probability)
}
