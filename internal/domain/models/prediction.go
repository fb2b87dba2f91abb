package models

// PredictionResult is the response bundle for a single symbol.
type PredictionResult struct {
	Symbol         string               `json:"symbol"`
	Price          PriceBlock           `json:"price"`
	Confidence     ConfidenceBlock      `json:"confidence"`
	PatternMemory  PatternMemoryBlock   `json:"pattern_memory"`
	MarketMood     MarketMoodBlock      `json:"market_mood"`
	Risk           RiskBlock            `json:"risk"`
	Anomaly        AnomalyBlock         `json:"anomaly"`
	Explainability []ExplainabilityItem `json:"explainability"`
	Model          ModelBlock           `json:"model"`
}

type PriceBlock struct {
	LastClose float64 `json:"last_close"`
	Predicted float64 `json:"predicted"`
	ChangePct float64 `json:"change_pct"`
}

type ConfidenceBlock struct {
	Score float64 `json:"score"`
	Level string  `json:"level"`
}

type PatternMemoryBlock struct {
	PatternName string  `json:"pattern_name"`
	Similarity  float64 `json:"similarity"`
	LastSeen    string  `json:"last_seen"`
}

type MarketMoodBlock struct {
	State      string  `json:"state"`
	Confidence float64 `json:"confidence"`
}

type RiskBlock struct {
	Level      string  `json:"level"`
	Volatility float64 `json:"volatility"`
}

type AnomalyBlock struct {
	Status   string  `json:"status"`
	Severity float64 `json:"severity"`
}

type ExplainabilityItem struct {
	Feature string  `json:"feature"`
	Impact  float64 `json:"impact"`
}

type ModelBlock struct {
	Version string `json:"version"`
}
