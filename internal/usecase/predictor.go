package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"

	"Edelweiss/internal/domain/models"
	domrepo "Edelweiss/internal/domain/repository"
	domsvc "Edelweiss/internal/domain/service"
	"Edelweiss/internal/service/marketdata"
	"Edelweiss/internal/services/analytics"
	"Edelweiss/internal/services/features"
	"Edelweiss/internal/services/forecast"
	applogger "Edelweiss/pkg/logger"

	"github.com/shopspring/decimal"
)

const DefaultLookback = 60

// Predictor runs fetch -> normalize -> forecast -> analytics for one symbol.
// It holds no per-request state and is safe for concurrent use when its model is.
type Predictor struct {
	provider        domrepo.PriceProvider
	model           domsvc.ForecastModel
	scaler          domsvc.Scaler
	metrics         domrepo.Metrics
	l               *applogger.Logger
	period          domrepo.Period
	defaultLookback int
}

type PredictorOption func(*Predictor)

func WithPeriod(p domrepo.Period) PredictorOption {
	return func(pr *Predictor) { pr.period = p }
}

func WithDefaultLookback(n int) PredictorOption {
	return func(pr *Predictor) {
		if n > 0 {
			pr.defaultLookback = n
		}
	}
}

func WithLogger(l *applogger.Logger) PredictorOption {
	return func(pr *Predictor) { pr.l = l }
}

func NewPredictor(provider domrepo.PriceProvider, model domsvc.ForecastModel, scaler domsvc.Scaler, metrics domrepo.Metrics, opts ...PredictorOption) *Predictor {
	p := &Predictor{
		provider:        provider,
		model:           model,
		scaler:          scaler,
		metrics:         metrics,
		period:          domrepo.DefaultPeriod(),
		defaultLookback: DefaultLookback,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.l == nil {
		p.l = applogger.NewNop()
	}
	return p
}

// ModelVersion reports the injected model's version label.
func (p *Predictor) ModelVersion() string { return p.model.Version() }

// Predict forecasts the next close for symbol from the last lookback closes.
// A non-positive lookback falls back to the configured default.
// The result echoes symbol as given; the provider sees its normalized form.
func (p *Predictor) Predict(ctx context.Context, requested string, lookback int) (*models.PredictionResult, error) {
	symbol := marketdata.NormalizeSymbol(requested)
	if symbol == "" {
		return nil, p.fail(symbol, "validate", errors.New("symbol is required"))
	}
	if lookback <= 0 {
		lookback = p.defaultLookback
	}

	start := time.Now()
	series, err := p.provider.FetchSeries(ctx, symbol, p.period)
	p.metrics.RecordLatency("fetch", time.Since(start).Seconds())
	if err != nil {
		return nil, p.fail(symbol, "fetch", err)
	}

	closes := series.Closes()
	if len(closes) == 0 {
		return nil, p.fail(symbol, "validate", models.ErrEmptySeries)
	}
	if len(closes) <= lookback {
		p.l.Debug("history shorter than lookback",
			applogger.String("symbol", symbol),
			applogger.Int("points", len(closes)),
			applogger.Int("lookback", lookback),
		)
		return nil, p.fail(symbol, "validate", models.ErrInsufficientHistory)
	}

	scaled := forecast.TransformAll(p.scaler, closes)
	window, err := features.LastWindow(scaled, lookback)
	if err != nil {
		return nil, p.fail(symbol, "window", err)
	}

	inferStart := time.Now()
	raw, err := p.model.Predict(ctx, window)
	p.metrics.RecordLatency("predict", time.Since(inferStart).Seconds())
	if err != nil {
		return nil, p.fail(symbol, "predict", err)
	}

	predicted := p.scaler.InverseTransform(raw)
	last := closes[len(closes)-1]
	if last == 0 {
		return nil, p.fail(symbol, "derive", errors.New("last close is zero"))
	}
	changePct := (predicted - last) / last * 100
	if math.IsNaN(changePct) || math.IsInf(changePct, 0) {
		return nil, p.fail(symbol, "derive", fmt.Errorf("non-finite forecast %v", predicted))
	}
	volatility := features.Volatility(closes)

	res := &models.PredictionResult{
		Symbol: requested,
		Price: models.PriceBlock{
			LastClose: round2(last),
			Predicted: round2(predicted),
			ChangePct: round2(changePct),
		},
		Confidence:     analytics.Confidence(),
		PatternMemory:  analytics.PatternMemory(changePct),
		MarketMood:     analytics.MarketMood(changePct),
		Risk:           analytics.AssessRisk(volatility),
		Anomaly:        analytics.DetectAnomaly(volatility),
		Explainability: analytics.Explainability(),
		Model:          models.ModelBlock{Version: p.model.Version()},
	}

	p.metrics.RecordLatency("total", time.Since(start).Seconds())
	p.metrics.RecordPrediction(symbol, res.MarketMood.State)
	p.metrics.RecordLastPrice(symbol, last)
	p.l.Info("prediction complete",
		applogger.String("symbol", symbol),
		applogger.String("provider", p.provider.Name()),
		applogger.Int("lookback", lookback),
		applogger.Int("points", len(closes)),
		applogger.Float64("predicted", res.Price.Predicted),
		applogger.Float64("change_pct", res.Price.ChangePct),
		applogger.Float64("volatility", volatility),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return res, nil
}

// fail classifies err, records it and returns it in taxonomy form.
func (p *Predictor) fail(symbol, op string, err error) error {
	err = models.Unexpected(op, err)
	kind := ErrorKind(err)
	p.metrics.RecordError(kind)
	if kind == "unexpected" {
		p.l.Error("prediction failed",
			applogger.String("symbol", symbol),
			applogger.String("op", op),
			applogger.Error(err),
		)
	} else {
		p.l.Warn("prediction rejected",
			applogger.String("symbol", symbol),
			applogger.String("kind", kind),
			applogger.Error(err),
		)
	}
	return err
}

// ErrorKind names the taxonomy bucket of err for metrics and logs.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, models.ErrNoData):
		return "no_data"
	case errors.Is(err, models.ErrEmptySeries):
		return "empty_series"
	case errors.Is(err, models.ErrInsufficientHistory):
		return "insufficient_history"
	default:
		return "unexpected"
	}
}

// round2 rounds the exact binary value of v to 2 places, ties to even.
// 2.675 is stored as 2.67499... and yields 2.67; 0.125 is exact and yields 0.12.
func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	exact, err := decimal.NewFromString(new(big.Float).SetFloat64(v).Text('f', exactDigits))
	if err != nil {
		return v
	}
	return exact.RoundBank(2).InexactFloat64()
}

// exactDigits covers every fractional digit a float64 can carry.
const exactDigits = 1100
