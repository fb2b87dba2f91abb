package forecast

import (
	"context"
	"fmt"
	"os"

	domsvc "Edelweiss/internal/domain/service"

	"gopkg.in/yaml.v3"
)

// LinearModel is an autoregressive model over the trailing window:
// next = bias + sum(weights[i] * window[len(window)-len(weights)+i]).
// With no weights it degrades to persistence (next = last value + bias).
type LinearModel struct {
	version string
	weights []float64
	bias    float64
}

type linearArtifact struct {
	Version string    `yaml:"version"`
	Weights []float64 `yaml:"weights"`
	Bias    float64   `yaml:"bias"`
}

func NewLinearModel(version string, weights []float64, bias float64) *LinearModel {
	w := make([]float64, len(weights))
	copy(w, weights)
	return &LinearModel{version: version, weights: w, bias: bias}
}

// LoadLinearModel reads a linear model artifact from path.
func LoadLinearModel(path string) (*LinearModel, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	var a linearArtifact
	if err := yaml.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	if a.Version == "" {
		a.Version = DefaultVersion
	}
	return NewLinearModel(a.Version, a.Weights, a.Bias), nil
}

func (m *LinearModel) Predict(ctx context.Context, window []float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(window) == 0 {
		return 0, fmt.Errorf("linear model: empty window")
	}
	if len(m.weights) == 0 {
		return window[len(window)-1] + m.bias, nil
	}
	if len(window) < len(m.weights) {
		return 0, fmt.Errorf("linear model: window of %d shorter than %d weights", len(window), len(m.weights))
	}
	tail := window[len(window)-len(m.weights):]
	out := m.bias
	for i, w := range m.weights {
		out += w * tail[i]
	}
	return out, nil
}

func (m *LinearModel) Version() string { return m.version }

var _ domsvc.ForecastModel = (*LinearModel)(nil)
