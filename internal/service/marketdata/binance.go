package marketdata

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"Edelweiss/internal/domain/models"
	domrepo "Edelweiss/internal/domain/repository"
	applogger "Edelweiss/pkg/logger"

	"github.com/adshao/go-binance/v2"
	"golang.org/x/time/rate"
)

const (
	ProviderBinance = "binance"
	klinesPageLimit = 1000
)

// klineSource is the subset of the Binance REST API used here.
type klineSource interface {
	Klines(ctx context.Context, symbol, interval string, startMs int64, limit int) ([]*binance.Kline, error)
}

type spotKlines struct {
	client *binance.Client
}

func (s spotKlines) Klines(ctx context.Context, symbol, interval string, startMs int64, limit int) ([]*binance.Kline, error) {
	return s.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		StartTime(startMs).
		Limit(limit).
		Do(ctx)
}

// BinanceProvider reads daily spot klines and uses their close as the series.
type BinanceProvider struct {
	src      klineSource
	interval string
	limiter  *rate.Limiter
	now      func() time.Time
	l        *applogger.Logger
}

func NewBinanceProvider(apiKey, secretKey, interval string, l *applogger.Logger) *BinanceProvider {
	return newBinanceProvider(spotKlines{client: binance.NewClient(apiKey, secretKey)}, interval, l)
}

func newBinanceProvider(src klineSource, interval string, l *applogger.Logger) *BinanceProvider {
	if interval == "" {
		interval = "1d"
	}
	return &BinanceProvider{
		src:      src,
		interval: interval,
		limiter:  rate.NewLimiter(rate.Limit(10), 20),
		now:      time.Now,
		l:        l,
	}
}

func (p *BinanceProvider) Name() string { return ProviderBinance }

// FetchSeries pages through klines from the period start until the API returns a short page.
func (p *BinanceProvider) FetchSeries(ctx context.Context, symbol string, period domrepo.Period) (*models.PriceSeries, error) {
	startMs := period.Start(p.now()).UnixMilli()
	var points []models.PricePoint

	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		klines, err := p.src.Klines(ctx, symbol, p.interval, startMs, klinesPageLimit)
		if err != nil {
			if p.l != nil {
				p.l.Error("binance klines failed",
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("binance klines %s: %w", symbol, err)
		}
		for _, k := range klines {
			c, err := strconv.ParseFloat(k.Close, 64)
			if err != nil {
				return nil, fmt.Errorf("parse close %q: %w", k.Close, err)
			}
			points = append(points, models.PricePoint{Time: time.UnixMilli(k.OpenTime).UTC(), Close: c})
		}
		if len(klines) < klinesPageLimit {
			break
		}
		startMs = klines[len(klines)-1].OpenTime + 1
	}

	if len(points) == 0 {
		return nil, models.ErrNoData
	}
	return &models.PriceSeries{Symbol: symbol, Source: ProviderBinance, Points: SortDedupe(points)}, nil
}
