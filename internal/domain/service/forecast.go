package service

import "context"

// ForecastModel maps the most recent normalized window to one normalized next value.
// Implementations are loaded once at startup and must tolerate concurrent Predict calls
// (or be wrapped by forecast.SerializedModel).
type ForecastModel interface {
	Predict(ctx context.Context, window []float64) (float64, error)
	Version() string
}

// Scaler normalizes raw prices into the model's training range and back.
type Scaler interface {
	Transform(price float64) float64
	InverseTransform(value float64) float64
}
