package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	xutil "Edelweiss/pkg/util"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		CORS            bool          `yaml:"cors"`
	} `yaml:"server"`
	API struct {
		DefaultLookback int  `yaml:"default_lookback"`
		MapErrorStatus  bool `yaml:"map_error_status"`
		RateLimit       struct {
			Enabled      bool    `yaml:"enabled"`
			Capacity     float64 `yaml:"capacity"`
			RefillPerSec float64 `yaml:"refill_per_sec"`
		} `yaml:"rate_limit"`
	} `yaml:"api"`
	Logging struct {
		Level     string `yaml:"level"`
		Format    string `yaml:"format"`
		Output    string `yaml:"output"`
		Collector struct {
			Enabled        bool          `yaml:"enabled"`
			Topic          string        `yaml:"topic"`
			Interval       time.Duration `yaml:"interval"`
			CountThreshold int           `yaml:"count_threshold"`
		} `yaml:"collector"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled       bool          `yaml:"enabled"`
		Path          string        `yaml:"path"`
		SlowThreshold time.Duration `yaml:"slow_threshold"`
	} `yaml:"metrics"`
	Provider struct {
		Type    string        `yaml:"type"`
		Period  string        `yaml:"period"`
		Timeout time.Duration `yaml:"timeout"`
		Cache   struct {
			Enabled bool          `yaml:"enabled"`
			Backend string        `yaml:"backend"`
			TTL     time.Duration `yaml:"ttl"`
		} `yaml:"cache"`
	} `yaml:"provider"`
	Yahoo struct {
		BaseURL   string            `yaml:"base_url"`
		UserAgent string            `yaml:"user_agent"`
		SymbolMap map[string]string `yaml:"symbol_map"`
	} `yaml:"yahoo"`
	Binance struct {
		APIKey    string `yaml:"api_key"`
		SecretKey string `yaml:"secret_key"`
		Interval  string `yaml:"interval"`
	} `yaml:"binance"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		Table            string        `yaml:"table"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Kafka struct {
		Brokers      []string      `yaml:"brokers"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"kafka"`
	Model struct {
		Backend   string        `yaml:"backend"`
		Path      string        `yaml:"path"`
		URL       string        `yaml:"url"`
		Name      string        `yaml:"name"`
		Version   string        `yaml:"version"`
		Timeout   time.Duration `yaml:"timeout"`
		Serialize bool          `yaml:"serialize"`
	} `yaml:"model"`
	Scaler struct {
		Path string `yaml:"path"`
	} `yaml:"scaler"`
}

// Default returns a config with every optional field populated.
func Default() *Config {
	var c Config
	c.Environment = "development"
	c.Server.Port = 8000
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.WriteTimeout = 30 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Server.CORS = true
	c.API.DefaultLookback = 60
	c.API.RateLimit.Capacity = 10
	c.API.RateLimit.RefillPerSec = 2
	c.Logging.Level = "info"
	c.Logging.Format = "console"
	c.Logging.Output = "stdout"
	c.Logging.Collector.Topic = "edelweiss.logs"
	c.Logging.Collector.Interval = 30 * time.Second
	c.Logging.Collector.CountThreshold = 100
	c.Metrics.Enabled = true
	c.Metrics.Path = "/metrics"
	c.Metrics.SlowThreshold = 2 * time.Second
	c.Provider.Type = "yahoo"
	c.Provider.Period = "2y"
	c.Provider.Timeout = 15 * time.Second
	c.Provider.Cache.Backend = "memory"
	c.Provider.Cache.TTL = 5 * time.Minute
	c.Yahoo.BaseURL = "https://query1.finance.yahoo.com"
	c.Yahoo.UserAgent = "Mozilla/5.0"
	c.Binance.Interval = "1d"
	c.ClickHouse.Port = 9000
	c.ClickHouse.Database = "edelweiss"
	c.ClickHouse.Table = "daily_bars"
	c.ClickHouse.DialTimeout = 5 * time.Second
	c.ClickHouse.ReadTimeout = 10 * time.Second
	c.Redis.Addr = "localhost:6379"
	c.Kafka.RequiredAcks = 1
	c.Kafka.Compression = "gzip"
	c.Kafka.WriteTimeout = 10 * time.Second
	c.Model.Backend = "linear"
	c.Model.Path = "model/stock_prediction_model.yaml"
	c.Model.Name = "stock_prediction"
	c.Model.Version = "v2.0"
	c.Model.Timeout = 5 * time.Second
	c.Scaler.Path = "model/scaler.yaml"
	return &c
}

// Load reads and parses a YAML configuration file on top of Default.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads .env (if present) and config from YAML, then overrides with environment variables.
// A missing config file falls back to defaults so the service can run from env alone.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		c, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Environment = v
	}
	c.Server.Port = xutil.ParseIntDefault(os.Getenv("PORT"), c.Server.Port)
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PROVIDER"); v != "" {
		c.Provider.Type = v
	}
	if v := os.Getenv("PROVIDER_PERIOD"); v != "" {
		c.Provider.Period = v
	}
	c.Provider.Timeout = xutil.ParseDurationDefault(os.Getenv("PROVIDER_TIMEOUT"), c.Provider.Timeout)
	c.Provider.Cache.Enabled = xutil.ParseBoolDefault(os.Getenv("CACHE_ENABLED"), c.Provider.Cache.Enabled)
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Provider.Cache.Backend = v
	}
	c.Provider.Cache.TTL = xutil.ParseDurationDefault(os.Getenv("CACHE_TTL"), c.Provider.Cache.TTL)
	c.API.MapErrorStatus = xutil.ParseBoolDefault(os.Getenv("MAP_ERROR_STATUS"), c.API.MapErrorStatus)
	c.API.DefaultLookback = xutil.ParseIntDefault(os.Getenv("DEFAULT_LOOKBACK"), c.API.DefaultLookback)
	if v := os.Getenv("MODEL_BACKEND"); v != "" {
		c.Model.Backend = v
	}
	if v := os.Getenv("MODEL_PATH"); v != "" {
		c.Model.Path = v
	}
	if v := os.Getenv("MODEL_URL"); v != "" {
		c.Model.URL = v
	}
	c.Model.Timeout = xutil.ParseDurationDefault(os.Getenv("MODEL_TIMEOUT"), c.Model.Timeout)
	if v := os.Getenv("SCALER_PATH"); v != "" {
		c.Scaler.Path = v
	}
	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		c.Binance.APIKey = v
	}
	if v := os.Getenv("BINANCE_SECRET_KEY"); v != "" {
		c.Binance.SecretKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = xutil.SplitCSV(v)
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.API.DefaultLookback <= 0 {
		return fmt.Errorf("api.default_lookback must be positive, got %d", c.API.DefaultLookback)
	}
	switch c.Provider.Type {
	case "yahoo", "binance":
	case "clickhouse":
		if c.ClickHouse.Host == "" {
			return fmt.Errorf("clickhouse.host is required for provider 'clickhouse'")
		}
	default:
		return fmt.Errorf("provider.type must be 'yahoo', 'binance' or 'clickhouse', got '%s'", c.Provider.Type)
	}
	if !validPeriod(c.Provider.Period) {
		return fmt.Errorf("provider.period must be one of 1mo, 3mo, 6mo, 1y, 2y, 5y, 10y, got '%s'", c.Provider.Period)
	}
	if c.Provider.Cache.Enabled {
		if c.Provider.Cache.Backend != "memory" && c.Provider.Cache.Backend != "redis" {
			return fmt.Errorf("provider.cache.backend must be 'memory' or 'redis', got '%s'", c.Provider.Cache.Backend)
		}
	}
	switch c.Model.Backend {
	case "linear":
		if c.Model.Path == "" {
			return fmt.Errorf("model.path is required for backend 'linear'")
		}
	case "http":
		if c.Model.URL == "" {
			return fmt.Errorf("model.url is required for backend 'http'")
		}
	default:
		return fmt.Errorf("model.backend must be 'linear' or 'http', got '%s'", c.Model.Backend)
	}
	if c.Scaler.Path == "" {
		return fmt.Errorf("scaler.path is required")
	}
	if c.Logging.Collector.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when logging.collector is enabled")
	}
	return nil
}

func validPeriod(p string) bool {
	switch p {
	case "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y":
		return true
	default:
		return false
	}
}
