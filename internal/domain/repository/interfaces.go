package repository

import (
	"context"

	"Edelweiss/internal/domain/models"
)

// PriceProvider returns a chronological daily close series for a symbol over period.
// Implementations return an error wrapping models.ErrNoData when the symbol is unknown
// or the range holds no bars.
type PriceProvider interface {
	Name() string
	FetchSeries(ctx context.Context, symbol string, period Period) (*models.PriceSeries, error)
}

type Metrics interface {
	RecordPrediction(symbol, mood string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
