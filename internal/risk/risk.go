// Package risk flags concentration and allocation limit breaches.
package risk

import (
	"fmt"

	"trading_dashboard/internal/models"
)

// Default thresholds. Both are overridable through the config file.
const (
	DefaultMaxPositionWeight        = 0.15
	DefaultMaxAllocationUtilization = 0.75
)

// Evaluator holds the configured limits.
type Evaluator struct {
	MaxPositionWeight        float64 // hard per-position concentration limit
	MaxAllocationUtilization float64 // soft invested/capital limit
}

// NewEvaluator returns an evaluator with the given limits, substituting the
// defaults for non-positive values.
func NewEvaluator(maxPositionWeight, maxAllocationUtilization float64) Evaluator {
	if maxPositionWeight <= 0 {
		maxPositionWeight = DefaultMaxPositionWeight
	}
	if maxAllocationUtilization <= 0 {
		maxAllocationUtilization = DefaultMaxAllocationUtilization
	}
	return Evaluator{
		MaxPositionWeight:        maxPositionWeight,
		MaxAllocationUtilization: maxAllocationUtilization,
	}
}

// Evaluate checks every position against the concentration limit and the
// aggregate allocation against the utilization limit.
//
// Report.Evaluated is false when there was nothing to evaluate (no positions
// and no usable capital figure) so "all clear" stays distinct from "no data".
func (e Evaluator) Evaluate(positions []models.Position, summary models.Summary) models.RiskReport {
	report := models.RiskReport{}

	for _, p := range positions {
		report.Evaluated = true
		if p.WeightFraction > e.MaxPositionWeight {
			report.Alerts = append(report.Alerts, models.Alert{
				Severity: models.SeverityCritical,
				Symbol:   p.Symbol,
				Message: fmt.Sprintf("%s: weight %.1f%% exceeds %.0f%% limit",
					p.Symbol, p.WeightFraction*100, e.MaxPositionWeight*100),
			})
		}
	}

	if summary.Capital.IsPositive() {
		report.Evaluated = true
		utilization, _ := summary.Invested.Div(summary.Capital).Float64()
		if utilization > e.MaxAllocationUtilization {
			report.Alerts = append(report.Alerts, models.Alert{
				Severity: models.SeverityWarning,
				Message: fmt.Sprintf("allocation %.1f%% exceeds %.0f%% utilization limit",
					utilization*100, e.MaxAllocationUtilization*100),
			})
		}
	}

	return report
}
