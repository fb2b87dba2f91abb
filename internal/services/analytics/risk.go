package analytics

import "Edelweiss/internal/domain/models"

const (
	LevelHigh   = "HIGH"
	LevelMedium = "MEDIUM"
	LevelLow    = "LOW"

	riskHighVol   = 0.06
	riskMediumVol = 0.03
)

// AssessRisk buckets daily-return volatility. Boundaries are exclusive:
// 0.06 itself is MEDIUM and 0.03 itself is LOW.
func AssessRisk(volatility float64) models.RiskBlock {
	level := LevelLow
	switch {
	case volatility > riskHighVol:
		level = LevelHigh
	case volatility > riskMediumVol:
		level = LevelMedium
	}
	return models.RiskBlock{Level: level, Volatility: volatility}
}
