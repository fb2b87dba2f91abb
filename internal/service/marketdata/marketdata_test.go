package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Edelweiss/internal/domain/models"
	domrepo "Edelweiss/internal/domain/repository"
	"Edelweiss/internal/service/cache"
	xhttp "Edelweiss/pkg/http"

	"github.com/adshao/go-binance/v2"
)

func TestNormalizeSymbol(t *testing.T) {
	cases := map[string]string{" aapl ": "AAPL", "msft": "MSFT", "BRK.B": "BRK.B", "": ""}
	for in, want := range cases {
		if got := NormalizeSymbol(in); got != want {
			t.Fatalf("NormalizeSymbol(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSortDedupe(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	in := []models.PricePoint{
		{Time: day(3), Close: 3},
		{Time: day(1), Close: 1},
		{Time: day(2), Close: 2},
		{Time: day(3), Close: 33},
	}
	out := SortDedupe(in)
	if len(out) != 3 {
		t.Fatalf("expected 3 points, got %d", len(out))
	}
	if out[0].Close != 1 || out[1].Close != 2 || out[2].Close != 33 {
		t.Fatalf("unexpected order/dedupe: %+v", out)
	}
}

const chartBody = `{"chart":{"result":[{"timestamp":[1704326400,1704153600,1704240000,1704412800],
"indicators":{"quote":[{"close":[103.5,101.0,null,104.25]}]}}],"error":null}}`

func TestYahooProviderFetchSeries(t *testing.T) {
	var gotPath, gotRange, gotInterval, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRange = r.URL.Query().Get("range")
		gotInterval = r.URL.Query().Get("interval")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	p := NewYahooProvider(xhttp.NewClient(), WithYahooBaseURL(srv.URL), WithYahooUserAgent("edelweiss-test"))
	s, err := p.FetchSeries(context.Background(), "AAPL", domrepo.Period2y)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotPath != "/v8/finance/chart/AAPL" || gotRange != "2y" || gotInterval != "1d" || gotUA != "edelweiss-test" {
		t.Fatalf("unexpected request path=%s range=%s interval=%s ua=%s", gotPath, gotRange, gotInterval, gotUA)
	}
	closes := s.Closes()
	want := []float64{101.0, 103.5, 104.25}
	if len(closes) != len(want) {
		t.Fatalf("closes = %v, want %v", closes, want)
	}
	for i := range want {
		if closes[i] != want[i] {
			t.Fatalf("closes = %v, want %v", closes, want)
		}
	}
	if s.Source != ProviderYahoo || s.Symbol != "AAPL" {
		t.Fatalf("unexpected series metadata %+v", s)
	}
}

func TestYahooProviderSymbolMap(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	p := NewYahooProvider(xhttp.NewClient(), WithYahooBaseURL(srv.URL), WithYahooSymbolMap(map[string]string{"nifty": "^NSEI"}))
	if _, err := p.FetchSeries(context.Background(), "NIFTY", domrepo.Period1y); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotPath != "/v8/finance/chart/%5ENSEI" {
		t.Fatalf("unexpected mapped path %s", gotPath)
	}
}

func TestYahooProviderNoData(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"not found status", http.StatusNotFound, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`},
		{"empty result", http.StatusOK, `{"chart":{"result":[],"error":null}}`},
		{"no timestamps", http.StatusOK, `{"chart":{"result":[{"timestamp":[],"indicators":{"quote":[{"close":[]}]}}],"error":null}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			p := NewYahooProvider(xhttp.NewClient(), WithYahooBaseURL(srv.URL))
			_, err := p.FetchSeries(context.Background(), "ZZZZ", domrepo.Period2y)
			if !errors.Is(err, models.ErrNoData) {
				t.Fatalf("expected ErrNoData, got %v", err)
			}
		})
	}
}

func TestYahooProviderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewYahooProvider(xhttp.NewClient(), WithYahooBaseURL(srv.URL))
	_, err := p.FetchSeries(context.Background(), "AAPL", domrepo.Period2y)
	var se *xhttp.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadGateway {
		t.Fatalf("expected wrapped 502 StatusError, got %v", err)
	}
	if errors.Is(err, models.ErrNoData) {
		t.Fatalf("5xx must not look like missing data")
	}
}

type fakeKlines struct {
	pages [][]*binance.Kline
	calls []int64
	err   error
}

func (f *fakeKlines) Klines(_ context.Context, _, _ string, startMs int64, _ int) ([]*binance.Kline, error) {
	f.calls = append(f.calls, startMs)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.calls) > len(f.pages) {
		return nil, nil
	}
	return f.pages[len(f.calls)-1], nil
}

func klinePage(startDay, n int) []*binance.Kline {
	out := make([]*binance.Kline, n)
	for i := range out {
		ts := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, startDay+i)
		out[i] = &binance.Kline{OpenTime: ts.UnixMilli(), Close: fmt.Sprintf("%d.5", startDay+i)}
	}
	return out
}

func TestBinanceProviderPaginates(t *testing.T) {
	src := &fakeKlines{pages: [][]*binance.Kline{klinePage(0, klinesPageLimit), klinePage(klinesPageLimit, 3)}}
	p := newBinanceProvider(src, "", nil)
	p.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	s, err := p.FetchSeries(context.Background(), "BTCUSDT", domrepo.Period5y)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if s.Len() != klinesPageLimit+3 {
		t.Fatalf("expected %d points, got %d", klinesPageLimit+3, s.Len())
	}
	if len(src.calls) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(src.calls))
	}
	if want := src.pages[0][klinesPageLimit-1].OpenTime + 1; src.calls[1] != want {
		t.Fatalf("second page start = %d, want %d", src.calls[1], want)
	}
	if s.LastClose() != float64(klinesPageLimit+2)+0.5 {
		t.Fatalf("unexpected last close %v", s.LastClose())
	}
}

func TestBinanceProviderErrors(t *testing.T) {
	p := newBinanceProvider(&fakeKlines{}, "1d", nil)
	if _, err := p.FetchSeries(context.Background(), "NOPE", domrepo.Period1mo); !errors.Is(err, models.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}

	boom := errors.New("code=-1121, msg=Invalid symbol.")
	p = newBinanceProvider(&fakeKlines{err: boom}, "1d", nil)
	if _, err := p.FetchSeries(context.Background(), "NOPE", domrepo.Period1mo); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped api error, got %v", err)
	}

	bad := &fakeKlines{pages: [][]*binance.Kline{{{OpenTime: 1, Close: "n/a"}}}}
	p = newBinanceProvider(bad, "1d", nil)
	if _, err := p.FetchSeries(context.Background(), "BTCUSDT", domrepo.Period1mo); err == nil {
		t.Fatalf("expected parse error")
	}
}

type countingProvider struct {
	calls int
	err   error
}

func (c *countingProvider) Name() string { return "stub" }

func (c *countingProvider) FetchSeries(_ context.Context, symbol string, _ domrepo.Period) (*models.PriceSeries, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &models.PriceSeries{Symbol: symbol, Source: "stub", Points: []models.PricePoint{
		{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Close: 10},
		{Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 11},
	}}, nil
}

func TestCachedProvider(t *testing.T) {
	next := &countingProvider{}
	p := NewCachedProvider(next, cache.NewTTLCache(), time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		s, err := p.FetchSeries(ctx, "AAPL", domrepo.Period2y)
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if s.LastClose() != 11 || !s.Points[0].Time.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("cached series mismatch: %+v", s)
		}
	}
	if next.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", next.calls)
	}

	if _, err := p.FetchSeries(ctx, "AAPL", domrepo.Period1y); err != nil || next.calls != 2 {
		t.Fatalf("period must be part of the key: calls=%d err=%v", next.calls, err)
	}
	if p.Name() != "stub" {
		t.Fatalf("name should pass through")
	}
}

func TestCachedProviderDoesNotCacheErrors(t *testing.T) {
	next := &countingProvider{err: models.ErrNoData}
	p := NewCachedProvider(next, cache.NewTTLCache(), time.Minute, nil)
	for i := 0; i < 2; i++ {
		if _, err := p.FetchSeries(context.Background(), "ZZZZ", domrepo.Period2y); !errors.Is(err, models.ErrNoData) {
			t.Fatalf("expected ErrNoData, got %v", err)
		}
	}
	if next.calls != 2 {
		t.Fatalf("errors must not be cached, calls=%d", next.calls)
	}
}
