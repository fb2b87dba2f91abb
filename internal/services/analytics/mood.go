package analytics

import "Edelweiss/internal/domain/models"

const (
	MoodBullish   = "BULLISH"
	MoodBearish   = "BEARISH"
	MoodUncertain = "UNCERTAIN"

	moodThresholdPct = 2.0
)

// MarketMood classifies the forecast change (in percent).
// Strictly above +2 is bullish, strictly below -2 bearish, anything else uncertain.
func MarketMood(changePct float64) models.MarketMoodBlock {
	switch {
	case changePct > moodThresholdPct:
		return models.MarketMoodBlock{State: MoodBullish, Confidence: 75}
	case changePct < -moodThresholdPct:
		return models.MarketMoodBlock{State: MoodBearish, Confidence: 75}
	default:
		return models.MarketMoodBlock{State: MoodUncertain, Confidence: 60}
	}
}
