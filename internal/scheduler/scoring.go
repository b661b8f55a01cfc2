package scheduler

import "math"

const (
	diagnosticPenalty    = 2
	maxDiagnosticPenalty = 30
)

// Score turns a fill rate and a diagnostic count into a 0-100 quality score.
// The diagnostic penalty is capped so a few gaps do not zero a good schedule.
func Score(filled, total, diagnostics int) int {
	if total <= 0 {
		return 0
	}
	fillRate := float64(filled) / float64(total)
	penalty := math.Min(float64(diagnosticPenalty*diagnostics), maxDiagnosticPenalty)
	score := int(math.Round(fillRate*100 - penalty))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// FillRatio reports filled/total, or zero when there is nothing to fill.
func FillRatio(filled, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(filled) / float64(total)
}
