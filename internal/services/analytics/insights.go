package analytics

import "Edelweiss/internal/domain/models"

// The blocks below are fixed placeholders, not derived from the series or the model.
// They keep the response shape stable for clients until real estimators exist.

const (
	PatternBearish = "Bearish Consolidation"
	PatternBullish = "Bullish Continuation"

	patternSimilarity = 64
	patternLastSeen   = "2022 Market Cycle"
)

// PatternMemory picks the pattern label from the sign of the forecast change.
// Zero counts as bullish.
func PatternMemory(changePct float64) models.PatternMemoryBlock {
	name := PatternBullish
	if changePct < 0 {
		name = PatternBearish
	}
	return models.PatternMemoryBlock{
		PatternName: name,
		Similarity:  patternSimilarity,
		LastSeen:    patternLastSeen,
	}
}

// Confidence is constant: score 78, level MEDIUM.
func Confidence() models.ConfidenceBlock {
	return models.ConfidenceBlock{Score: 78, Level: LevelMedium}
}

// Explainability returns a fresh copy of the fixed feature attribution list.
func Explainability() []models.ExplainabilityItem {
	return []models.ExplainabilityItem{
		{Feature: "Trend Momentum", Impact: 42},
		{Feature: "Volume Shift", Impact: 28},
		{Feature: "Pattern Match", Impact: 18},
		{Feature: "Noise", Impact: 12},
	}
}
