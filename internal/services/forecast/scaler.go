package forecast

import (
	"fmt"
	"os"

	domsvc "Edelweiss/internal/domain/service"

	"gopkg.in/yaml.v3"
)

// MinMaxScaler mirrors a fitted min-max scaler with one feature:
// scaled = price*scale + offset, where scale = (hi-lo)/(dataMax-dataMin)
// and offset = lo - dataMin*scale.
type MinMaxScaler struct {
	dataMin float64
	dataMax float64
	scale   float64
	offset  float64
}

// scalerArtifact is the on-disk form exported from the training pipeline.
// JSON exports parse too, since YAML is a superset.
type scalerArtifact struct {
	DataMin      float64   `yaml:"data_min"`
	DataMax      float64   `yaml:"data_max"`
	FeatureRange []float64 `yaml:"feature_range"`
}

// NewMinMaxScaler builds a scaler for prices in [dataMin, dataMax] mapped to [lo, hi].
func NewMinMaxScaler(dataMin, dataMax, lo, hi float64) (*MinMaxScaler, error) {
	if !(dataMax > dataMin) {
		return nil, fmt.Errorf("scaler: data_max (%v) must exceed data_min (%v)", dataMax, dataMin)
	}
	if !(hi > lo) {
		return nil, fmt.Errorf("scaler: feature range [%v, %v] is empty", lo, hi)
	}
	scale := (hi - lo) / (dataMax - dataMin)
	return &MinMaxScaler{
		dataMin: dataMin,
		dataMax: dataMax,
		scale:   scale,
		offset:  lo - dataMin*scale,
	}, nil
}

// LoadMinMaxScaler reads a scaler artifact from path.
func LoadMinMaxScaler(path string) (*MinMaxScaler, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scaler: %w", err)
	}
	var a scalerArtifact
	if err := yaml.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("parse scaler: %w", err)
	}
	lo, hi := 0.0, 1.0
	switch len(a.FeatureRange) {
	case 0:
	case 2:
		lo, hi = a.FeatureRange[0], a.FeatureRange[1]
	default:
		return nil, fmt.Errorf("scaler: feature_range needs 2 values, got %d", len(a.FeatureRange))
	}
	return NewMinMaxScaler(a.DataMin, a.DataMax, lo, hi)
}

func (s *MinMaxScaler) Transform(price float64) float64 {
	return price*s.scale + s.offset
}

func (s *MinMaxScaler) InverseTransform(value float64) float64 {
	return (value - s.offset) / s.scale
}

// TransformAll scales a whole series.
func TransformAll(s domsvc.Scaler, prices []float64) []float64 {
	out := make([]float64, len(prices))
	for i, p := range prices {
		out[i] = s.Transform(p)
	}
	return out
}

// Range returns the fitted price range.
func (s *MinMaxScaler) Range() (float64, float64) { return s.dataMin, s.dataMax }

var _ domsvc.Scaler = (*MinMaxScaler)(nil)
