package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"Edelweiss/internal/domain/models"
	domrepo "Edelweiss/internal/domain/repository"
	xhttp "Edelweiss/pkg/http"
	applogger "Edelweiss/pkg/logger"
)

const ProviderYahoo = "yahoo"

// YahooProvider fetches daily closes from the Yahoo Finance chart API.
type YahooProvider struct {
	client    *xhttp.Client
	baseURL   string
	userAgent string
	symbolMap map[string]string // internal symbol -> Yahoo ticker
	l         *applogger.Logger
}

type YahooOption func(*YahooProvider)

func WithYahooBaseURL(u string) YahooOption {
	return func(p *YahooProvider) {
		if u != "" {
			p.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithYahooUserAgent(ua string) YahooOption {
	return func(p *YahooProvider) {
		if ua != "" {
			p.userAgent = ua
		}
	}
}

func WithYahooSymbolMap(m map[string]string) YahooOption {
	return func(p *YahooProvider) {
		for k, v := range m {
			p.symbolMap[NormalizeSymbol(k)] = v
		}
	}
}

func WithYahooLogger(l *applogger.Logger) YahooOption {
	return func(p *YahooProvider) { p.l = l }
}

func NewYahooProvider(client *xhttp.Client, opts ...YahooOption) *YahooProvider {
	p := &YahooProvider{
		client:    client,
		baseURL:   "https://query1.finance.yahoo.com",
		userAgent: "Mozilla/5.0",
		symbolMap: map[string]string{
			"SPX":   "^GSPC",
			"SP500": "^GSPC",
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *YahooProvider) Name() string { return ProviderYahoo }

// yahooChart is the response structure from the chart API. Closes are pointers
// because holidays and halted sessions come back as null.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (p *YahooProvider) ticker(symbol string) string {
	if mapped, ok := p.symbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

func (p *YahooProvider) FetchSeries(ctx context.Context, symbol string, period domrepo.Period) (*models.PriceSeries, error) {
	start := time.Now()
	var chart yahooChart
	err := p.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", p.baseURL, url.PathEscape(p.ticker(symbol))),
		Headers: map[string]string{
			"User-Agent": p.userAgent,
			"Accept":     "application/json",
		},
		QueryParams: map[string][]string{
			"interval": {"1d"},
			"range":    {string(period)},
		},
	}, &chart)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, models.ErrNoData
		}
		if p.l != nil {
			p.l.Error("yahoo fetch failed",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("yahoo fetch %s: %w", symbol, err)
	}
	if chart.Chart.Error != nil {
		if chart.Chart.Error.Code == "Not Found" {
			return nil, models.ErrNoData
		}
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, models.ErrNoData
	}

	result := chart.Chart.Result[0]
	var closes []*float64
	if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}
	points := make([]models.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue // null bar
		}
		points = append(points, models.PricePoint{Time: time.Unix(ts, 0).UTC(), Close: *closes[i]})
	}

	series := &models.PriceSeries{Symbol: symbol, Source: ProviderYahoo, Points: SortDedupe(points)}
	if p.l != nil {
		p.l.Debug("yahoo fetch ok",
			applogger.String("symbol", symbol),
			applogger.Int("points", series.Len()),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return series, nil
}

// SortDedupe orders points chronologically and keeps the last point per timestamp.
func SortDedupe(points []models.PricePoint) []models.PricePoint {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	out := points[:0]
	for _, pt := range points {
		if n := len(out); n > 0 && out[n-1].Time.Equal(pt.Time) {
			out[n-1] = pt
			continue
		}
		out = append(out, pt)
	}
	return out
}
