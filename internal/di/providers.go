package di

import (
	"context"
	"fmt"

	"Edelweiss/internal/domain/repository"
	domsvc "Edelweiss/internal/domain/service"
	"Edelweiss/internal/handler/api"
	internalrepo "Edelweiss/internal/repository"
	icache "Edelweiss/internal/service/cache"
	"Edelweiss/internal/service/marketdata"
	"Edelweiss/internal/service/ratelimit"
	"Edelweiss/internal/services/forecast"
	"Edelweiss/internal/usecase"
	pkgch "Edelweiss/pkg/clickhouse"
	"Edelweiss/pkg/config"
	xhttp "Edelweiss/pkg/http"
	pkgkafka "Edelweiss/pkg/kafka"
	applogger "Edelweiss/pkg/logger"
	"Edelweiss/pkg/metrics"
	"Edelweiss/pkg/server"
)

// ProvideLogPublisher creates the Kafka producer behind the error-log collector.
// It returns a nil publisher when the collector is disabled.
func ProvideLogPublisher(cfg *config.Config) (applogger.Publisher, func(), error) {
	if !cfg.Logging.Collector.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideLogger creates the application logger and attaches the collector when configured.
func ProvideLogger(cfg *config.Config, pub applogger.Publisher) (*applogger.Logger, func(), error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	if pub != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Logging.Collector.Interval,
			CountThreshold: cfg.Logging.Collector.CountThreshold,
			Topic:          cfg.Logging.Collector.Topic,
			Publisher:      pub,
		})
	}
	return l, l.Close, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Nop{}
	}
	return metrics.New()
}

// ProvideHTTPClient creates the outbound client used by the Yahoo provider.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(cfg.Provider.Timeout))
}

// ProvidePriceProvider builds the configured data source, optionally behind a cache.
func ProvidePriceProvider(cfg *config.Config, client *xhttp.Client, l *applogger.Logger) (repository.PriceProvider, func(), error) {
	var (
		provider repository.PriceProvider
		closers  []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.Provider.Type {
	case marketdata.ProviderYahoo:
		provider = marketdata.NewYahooProvider(client,
			marketdata.WithYahooBaseURL(cfg.Yahoo.BaseURL),
			marketdata.WithYahooUserAgent(cfg.Yahoo.UserAgent),
			marketdata.WithYahooSymbolMap(cfg.Yahoo.SymbolMap),
			marketdata.WithYahooLogger(l),
		)
	case marketdata.ProviderBinance:
		provider = marketdata.NewBinanceProvider(cfg.Binance.APIKey, cfg.Binance.SecretKey, cfg.Binance.Interval, l)
	case internalrepo.ProviderClickHouse:
		ch, err := pkgch.NewClient(context.Background(),
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}
		closers = append(closers, func() { _ = ch.Close() })
		store, err := internalrepo.NewCHPriceStore(ch, cfg.ClickHouse.Database, cfg.ClickHouse.Table)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		store.SetLogger(l)
		provider = store
	default:
		return nil, nil, fmt.Errorf("unknown provider type %q", cfg.Provider.Type)
	}

	if cfg.Provider.Cache.Enabled {
		var c icache.BytesCache
		switch cfg.Provider.Cache.Backend {
		case "redis":
			rc := icache.NewRedisCache(icache.RedisConfig{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				Prefix:   "edelweiss:",
			})
			if err := rc.Ping(context.Background()); err != nil {
				l.Warn("redis ping failed, cache errors will fall through to the provider", applogger.String("addr", cfg.Redis.Addr), applogger.Error(err))
			}
			closers = append(closers, func() { _ = rc.Close() })
			c = rc
		default:
			c = icache.NewTTLCache()
		}
		provider = marketdata.NewCachedProvider(provider, c, cfg.Provider.Cache.TTL, l)
	}

	l.Info("price provider ready",
		applogger.String("provider", provider.Name()),
		applogger.String("period", cfg.Provider.Period),
		applogger.Bool("cache", cfg.Provider.Cache.Enabled),
	)
	return provider, cleanup, nil
}

// ProvideScaler loads the fitted scaler artifact.
func ProvideScaler(cfg *config.Config) (*forecast.MinMaxScaler, error) {
	s, err := forecast.LoadMinMaxScaler(cfg.Scaler.Path)
	if err != nil {
		return nil, fmt.Errorf("load scaler: %w", err)
	}
	return s, nil
}

// ProvideForecastModel loads or connects to the forecast model. Startup fails if it is unusable.
func ProvideForecastModel(cfg *config.Config, l *applogger.Logger) (domsvc.ForecastModel, error) {
	var model domsvc.ForecastModel
	switch cfg.Model.Backend {
	case "http":
		m := forecast.NewHTTPModel(cfg)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Model.Timeout)
		defer cancel()
		if err := m.Ping(ctx); err != nil {
			return nil, fmt.Errorf("model endpoint: %w", err)
		}
		model = m
	default:
		m, err := forecast.LoadLinearModel(cfg.Model.Path)
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		model = m
	}
	if cfg.Model.Serialize {
		model = forecast.NewSerializedModel(model)
	}
	l.Info("forecast model ready",
		applogger.String("backend", cfg.Model.Backend),
		applogger.String("version", model.Version()),
	)
	return model, nil
}

// ProvidePredictor creates the prediction use case.
func ProvidePredictor(
	cfg *config.Config,
	provider repository.PriceProvider,
	model domsvc.ForecastModel,
	scaler *forecast.MinMaxScaler,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Predictor {
	return usecase.NewPredictor(provider, model, scaler, m,
		usecase.WithPeriod(repository.NormalizePeriod(cfg.Provider.Period)),
		usecase.WithDefaultLookback(cfg.API.DefaultLookback),
		usecase.WithLogger(l),
	)
}

// ProvidePredictHandler creates the HTTP handler for the prediction API.
func ProvidePredictHandler(
	cfg *config.Config,
	predictor *usecase.Predictor,
	provider repository.PriceProvider,
	scaler *forecast.MinMaxScaler,
	l *applogger.Logger,
) xhttp.Handler {
	lo, hi := scaler.Range()
	opts := []api.HandlerOption{api.WithErrorStatusMapping(cfg.API.MapErrorStatus)}
	if cfg.API.RateLimit.Enabled {
		opts = append(opts, api.WithRateLimit(ratelimit.New(cfg.API.RateLimit.Capacity, cfg.API.RateLimit.RefillPerSec)))
	}
	return api.NewPredictEchoHandler(l, predictor, api.HealthInfo{
		Provider:     provider.Name(),
		ModelVersion: predictor.ModelVersion(),
		ScalerMin:    lo,
		ScalerMax:    hi,
	}, opts...)
}

// ProvideHTTPServer creates the echo server.
func ProvideHTTPServer(cfg *config.Config, h xhttp.Handler, l *applogger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithMetrics(metricsPath, cfg.Metrics.SlowThreshold),
		xhttp.WithLogger(l),
	)
}

// ProvideApp creates the application.
func ProvideApp(cfg *config.Config, srv *xhttp.Server, l *applogger.Logger) *server.App {
	return server.New(cfg, srv, l)
}
