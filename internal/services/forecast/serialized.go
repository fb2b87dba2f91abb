package forecast

import (
	"context"
	"sync"

	domsvc "Edelweiss/internal/domain/service"
)

// SerializedModel guards a model that is not safe for concurrent inference.
type SerializedModel struct {
	mu    sync.Mutex
	inner domsvc.ForecastModel
}

func NewSerializedModel(inner domsvc.ForecastModel) *SerializedModel {
	return &SerializedModel{inner: inner}
}

func (m *SerializedModel) Predict(ctx context.Context, window []float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inner.Predict(ctx, window)
}

func (m *SerializedModel) Version() string { return m.inner.Version() }

var _ domsvc.ForecastModel = (*SerializedModel)(nil)
