package di

import (
	"path/filepath"
	"strings"
	"testing"

	"Edelweiss/pkg/config"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Metrics.Enabled = false
	cfg.Model.Path = filepath.Join("..", "..", "model", "stock_prediction_model.yaml")
	cfg.Scaler.Path = filepath.Join("..", "..", "model", "scaler.yaml")
	return cfg
}

func TestInitializeAppFailsOnBadArtifacts(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"missing scaler", func(c *config.Config) { c.Scaler.Path = filepath.Join(t.TempDir(), "scaler.yaml") }, "load scaler"},
		{"missing model", func(c *config.Config) { c.Model.Path = filepath.Join(t.TempDir(), "model.yaml") }, "load model"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(cfg)
			app, cleanup, err := InitializeApp(cfg)
			if err == nil {
				cleanup()
				t.Fatalf("expected startup failure")
			}
			if app != nil || cleanup != nil {
				t.Fatalf("failed startup must not return an app")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error = %v, want %q", err, tc.wantErr)
			}
		})
	}
}

func TestInitializePredictorWithBundledArtifacts(t *testing.T) {
	p, cleanup, err := InitializePredictor(testConfig())
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	defer cleanup()
	if p.ModelVersion() != "v2.0" {
		t.Fatalf("model version = %q", p.ModelVersion())
	}
}
