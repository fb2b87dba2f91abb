package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if c.Server.Port != 8000 || c.API.DefaultLookback != 60 || c.Provider.Period != "2y" || c.API.MapErrorStatus {
		t.Fatalf("unexpected defaults %+v", c)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: production
server:
  port: 9090
provider:
  type: binance
  period: 1y
model:
  backend: http
  url: http://serving:8501
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Environment != "production" || c.Server.Port != 9090 || c.Provider.Type != "binance" || c.Provider.Period != "1y" {
		t.Fatalf("unexpected config %+v", c)
	}
	if c.Scaler.Path != "model/scaler.yaml" || c.Server.ShutdownTimeout != 10*time.Second {
		t.Fatalf("defaults lost: %+v", c)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"unknown provider":  func(c *Config) { c.Provider.Type = "bloomberg" },
		"unknown backend":   func(c *Config) { c.Model.Backend = "onnx" },
		"http without url":  func(c *Config) { c.Model.Backend = "http"; c.Model.URL = "" },
		"linear no path":    func(c *Config) { c.Model.Path = "" },
		"no scaler":         func(c *Config) { c.Scaler.Path = "" },
		"zero lookback":     func(c *Config) { c.API.DefaultLookback = 0 },
		"bad period":        func(c *Config) { c.Provider.Period = "3d" },
		"clickhouse host":   func(c *Config) { c.Provider.Type = "clickhouse" },
		"bad cache backend": func(c *Config) { c.Provider.Cache.Enabled = true; c.Provider.Cache.Backend = "memcached" },
		"collector brokers": func(c *Config) { c.Logging.Collector.Enabled = true },
		"port range":        func(c *Config) { c.Server.Port = 70000 },
	}
	for name, mutate := range cases {
		c := Default()
		mutate(c)
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "environment: staging\n")
	t.Setenv("PORT", "8123")
	t.Setenv("PROVIDER", "binance")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("MAP_ERROR_STATUS", "1")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")

	c, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 8123 || c.Provider.Type != "binance" || !c.Provider.Cache.Enabled || c.Provider.Cache.TTL != 90*time.Second {
		t.Fatalf("env overrides not applied: %+v", c)
	}
	if !c.API.MapErrorStatus || len(c.Kafka.Brokers) != 2 || c.Kafka.Brokers[1] != "b:9092" {
		t.Fatalf("env overrides not applied: %+v", c)
	}
}

func TestLoadWithEnvMissingFileUsesDefaults(t *testing.T) {
	c, err := LoadWithEnv(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Environment != "development" {
		t.Fatalf("expected defaults, got %+v", c)
	}
}
