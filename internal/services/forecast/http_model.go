package forecast

import (
	"context"
	"fmt"
	"net/url"

	domsvc "Edelweiss/internal/domain/service"
	"Edelweiss/pkg/config"
)

// DefaultVersion is reported when an artifact does not name its version.
const DefaultVersion = "v2.0"

// HTTPModel calls a TensorFlow-Serving compatible REST endpoint hosting the
// pretrained sequence model. Each window is sent as one instance shaped
// [lookback][1], matching the model's (batch, timesteps, features) input.
type HTTPModel struct {
	base    *HTTPServiceBase
	name    string
	version string
}

func NewHTTPModel(cfg *config.Config) *HTTPModel {
	version := cfg.Model.Version
	if version == "" {
		version = DefaultVersion
	}
	return &HTTPModel{base: NewHTTPServiceBase(cfg), name: cfg.Model.Name, version: version}
}

type predictRequest struct {
	Instances [][][]float64 `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
}

type modelStatusResponse struct {
	ModelVersionStatus []struct {
		Version string `json:"version"`
		State   string `json:"state"`
		Status  struct {
			ErrorCode    string `json:"error_code"`
			ErrorMessage string `json:"error_message"`
		} `json:"status"`
	} `json:"model_version_status"`
}

// Ping verifies that the serving endpoint has at least one AVAILABLE version.
// It is called once at startup; a failure there is fatal.
func (m *HTTPModel) Ping(ctx context.Context) error {
	var st modelStatusResponse
	if err := m.base.GetJSON(ctx, "/v1/models/"+url.PathEscape(m.name), &st); err != nil {
		return fmt.Errorf("model status: %w", err)
	}
	for _, v := range st.ModelVersionStatus {
		if v.State == "AVAILABLE" {
			return nil
		}
	}
	return fmt.Errorf("model %q has no available version", m.name)
}

func (m *HTTPModel) Predict(ctx context.Context, window []float64) (float64, error) {
	if len(window) == 0 {
		return 0, fmt.Errorf("http model: empty window")
	}
	instance := make([][]float64, len(window))
	for i, v := range window {
		instance[i] = []float64{v}
	}
	var pr predictResponse
	path := "/v1/models/" + url.PathEscape(m.name) + ":predict"
	if err := m.base.PostJSON(ctx, path, predictRequest{Instances: [][][]float64{instance}}, &pr); err != nil {
		return 0, fmt.Errorf("http model: %w", err)
	}
	if len(pr.Predictions) == 0 || len(pr.Predictions[0]) == 0 {
		return 0, fmt.Errorf("http model: empty prediction")
	}
	return pr.Predictions[0][0], nil
}

func (m *HTTPModel) Version() string { return m.version }

var _ domsvc.ForecastModel = (*HTTPModel)(nil)
