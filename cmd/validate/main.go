// Command validate checks a classifier artifact before it is deployed. It
// verifies that the artifact loads, that the pinned demo sites score into
// their expected risk levels, that the risk thresholds behave at their
// boundaries, and that fallback feature resolution stays finite.
//
// Usage:
//
//	go run ./cmd/validate -model models/rockfall_model.json
//	go run ./cmd/validate -model models/rockfall_model.json -cases testdata/cases.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/rockfall-risk-service/internal/domain"
	"github.com/couchcryptid/rockfall-risk-service/internal/model"
)

// labeledCase is an extra feature vector with its expected risk level.
type labeledCase struct {
	Name     string               `json:"name"`
	Features domain.FeatureVector `json:"features"`
	Expected domain.RiskLevel     `json:"expected"`
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	modelPath := flag.String("model", "models/rockfall_model.json", "path to the model artifact")
	casesPath := flag.String("cases", "", "optional JSON file of labeled feature vectors")
	flag.Parse()

	if code := run(*modelPath, *casesPath); code != 0 {
		os.Exit(code)
	}
}

func run(modelPath, casesPath string) int {
	fmt.Println("=== Rockfall Model Validation ===")
	fmt.Println()

	m, err := model.Load(modelPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load model: %v\n", err)
		return 1
	}
	fmt.Printf("Model: %s (version %s)\n\n", modelPath, m.Version())

	var cases []labeledCase
	if casesPath != "" {
		if cases, err = loadCases(casesPath); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load cases: %v\n", err)
			return 1
		}
	}

	phases := []*phase{
		validateDemoSites(m),
		validateThresholds(),
		validateFallbacks(m),
		validateCases(m, cases),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadCases(path string) ([]labeledCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cases []labeledCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, err
	}
	return cases, nil
}

// score classifies features the way the service does.
func score(m domain.ProbabilityModel, f domain.FeatureVector) (domain.RiskPrediction, error) {
	p, err := m.Probability(f.Vector())
	if err != nil {
		return domain.RiskPrediction{}, err
	}
	return domain.NewRiskPrediction(p), nil
}

// ── Phase 1: Demo Sites ──
// Each pinned site must score into the risk level it is pinned for.

func validateDemoSites(m domain.ProbabilityModel) *phase {
	p := &phase{name: "Phase 1: Demo Sites"}

	for _, site := range domain.DemoSites() {
		if got, ok := domain.DemoOverride(site.Key.Center()); !ok || got.Name != site.Name {
			p.errorf("%s: center %v does not resolve to the site", site.Name, site.Key.Center())
		}
		pred, err := score(m, site.Features)
		if err != nil {
			p.errorf("%s: %v", site.Name, err)
			continue
		}
		if pred.Risk != site.Expected {
			p.errorf("%s: expected %s, got %s (p=%.3f)", site.Name, site.Expected, pred.Risk, pred.Probability)
		}
		alert := pred.Alert()
		if alert == nil || *alert != *domain.FormatAlert(string(site.Expected), nil) {
			p.errorf("%s: alert does not match %s", site.Name, site.Expected)
		}
	}
	return p
}

// ── Phase 2: Thresholds ──
// Boundary probabilities must land on the expected side of each cut.

func validateThresholds() *phase {
	p := &phase{name: "Phase 2: Risk Thresholds"}

	checks := []struct {
		prob      float64
		risk      domain.RiskLevel
		predicted int
	}{
		{0.40, domain.RiskLow, 0},
		{0.40001, domain.RiskMedium, 0},
		{0.50, domain.RiskMedium, 0},
		{0.55, domain.RiskMedium, 1},
		{0.70, domain.RiskMedium, 1},
		{0.70001, domain.RiskHigh, 1},
	}
	for _, c := range checks {
		pred := domain.NewRiskPrediction(c.prob)
		if pred.Risk != c.risk || pred.RockfallPredicted != c.predicted {
			p.errorf("p=%v: expected %s/%d, got %s/%d", c.prob, c.risk, c.predicted, pred.Risk, pred.RockfallPredicted)
		}
	}
	return p
}

// ── Phase 3: Fallbacks ──
// A request with only coordinates and no live readings must resolve to a
// finite vector the model can score.

func validateFallbacks(m domain.ProbabilityModel) *phase {
	p := &phase{name: "Phase 3: Fallback Resolution"}

	obs := domain.Observations{
		Weather: domain.Absent[domain.WeatherSnapshot](),
		Slope:   domain.Absent[float64](),
		Sensors: domain.Absent[domain.SensorState](),
	}
	requests := []domain.RawRequest{
		{"lat": 10.0, "lon": 10.0},
		{"lat": 10.0, "lon": 10.0, "rainfall": "heavy", "slope": nil},
		{"lat": 10.0, "lon": 10.0, "slope": 0.5},
	}
	for i, req := range requests {
		f := domain.ResolveFeatures(req, obs)
		if !f.Finite() {
			p.errorf("request %d: non-finite features %+v", i, f)
			continue
		}
		if f.DisplacementRate < domain.MinDisplacementRate {
			p.errorf("request %d: displacement_rate %v below minimum", i, f.DisplacementRate)
		}
		if _, err := score(m, f); err != nil {
			p.errorf("request %d: %v", i, err)
		}
	}
	return p
}

// ── Phase 4: Labeled Cases ──

func validateCases(m domain.ProbabilityModel, cases []labeledCase) *phase {
	p := &phase{name: fmt.Sprintf("Phase 4: Labeled Cases (%d)", len(cases))}

	for _, c := range cases {
		if !c.Features.Finite() {
			p.errorf("%s: non-finite features", c.Name)
			continue
		}
		pred, err := score(m, c.Features)
		if err != nil {
			p.errorf("%s: %v", c.Name, err)
			continue
		}
		if pred.Risk != c.Expected {
			p.errorf("%s: expected %s, got %s (p=%.3f)", c.Name, c.Expected, pred.Risk, pred.Probability)
		}
	}
	return p
}
