package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	models "Edelweiss/internal/domain/models"
	domrepo "Edelweiss/internal/domain/repository"
	"Edelweiss/internal/service/ratelimit"
	"Edelweiss/internal/services/forecast"
	"Edelweiss/internal/usecase"
	xhttp "Edelweiss/pkg/http"
	"Edelweiss/pkg/metrics"
)

type stubPredictor struct {
	res         *models.PredictionResult
	err         error
	gotSymbol   string
	gotLookback int
	calls       int
}

func (s *stubPredictor) Predict(_ context.Context, symbol string, lookback int) (*models.PredictionResult, error) {
	s.calls++
	s.gotSymbol, s.gotLookback = symbol, lookback
	return s.res, s.err
}

func sampleResult() *models.PredictionResult {
	return &models.PredictionResult{
		Symbol:     "AAPL",
		Price:      models.PriceBlock{LastClose: 100, Predicted: 95, ChangePct: -5},
		MarketMood: models.MarketMoodBlock{State: "BEARISH", Confidence: 75},
		Model:      models.ModelBlock{Version: "v2.0"},
	}
}

func newTestServer(h *PredictEchoHandler) *xhttp.Server {
	return xhttp.NewServer(h, xhttp.WithMetrics("", 0))
}

func do(t *testing.T, srv *xhttp.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	return rec
}

func TestRoot(t *testing.T) {
	srv := newTestServer(NewPredictEchoHandler(nil, &stubPredictor{}, HealthInfo{}))
	rec := do(t, srv, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["status"] != StatusMessage {
		t.Fatalf("unexpected body %s (%v)", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(NewPredictEchoHandler(nil, &stubPredictor{}, HealthInfo{Provider: "yahoo", ModelVersion: "v2.0", ScalerMax: 250}))
	rec := do(t, srv, http.MethodGet, "/healthz", "")
	var body HealthInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusOK || body.Status != "ok" || body.ModelVersion != "v2.0" || body.ScalerMax != 250 {
		t.Fatalf("unexpected health %d %+v", rec.Code, body)
	}
}

func TestPredictSuccess(t *testing.T) {
	p := &stubPredictor{res: sampleResult()}
	srv := newTestServer(NewPredictEchoHandler(nil, p, HealthInfo{}))

	rec := do(t, srv, http.MethodPost, "/predict", `{"symbol":"AAPL"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if p.gotSymbol != "AAPL" || p.gotLookback != 60 {
		t.Fatalf("predictor got %q/%d", p.gotSymbol, p.gotLookback)
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"symbol", "price", "confidence", "pattern_memory", "market_mood", "risk", "anomaly", "explainability", "model"} {
		if _, ok := body[key]; !ok {
			t.Fatalf("response missing %q: %s", key, rec.Body.String())
		}
	}
	var price map[string]float64
	_ = json.Unmarshal(body["price"], &price)
	if price["last_close"] != 100 || price["predicted"] != 95 || price["change_pct"] != -5 {
		t.Fatalf("unexpected price block %v", price)
	}
}

func TestPredictExplicitLookback(t *testing.T) {
	p := &stubPredictor{res: sampleResult()}
	srv := newTestServer(NewPredictEchoHandler(nil, p, HealthInfo{}))
	if rec := do(t, srv, http.MethodPost, "/predict", `{"symbol":"msft","lookback":30}`); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if p.gotSymbol != "msft" || p.gotLookback != 30 {
		t.Fatalf("predictor got %q/%d", p.gotSymbol, p.gotLookback)
	}
}

func TestPredictValidation(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"missing symbol", `{"lookback":10}`, "symbol"},
		{"zero lookback", `{"symbol":"AAPL","lookback":0}`, "lookback"},
		{"negative lookback", `{"symbol":"AAPL","lookback":-1}`, "lookback"},
		{"malformed json", `{"symbol":`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &stubPredictor{res: sampleResult()}
			srv := newTestServer(NewPredictEchoHandler(nil, p, HealthInfo{}))
			rec := do(t, srv, http.MethodPost, "/predict", tc.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
			}
			var body struct {
				Detail []xhttp.ValidationError `json:"detail"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || len(body.Detail) == 0 {
				t.Fatalf("unexpected body %s (%v)", rec.Body.String(), err)
			}
			if tc.field != "" && body.Detail[0].Field != tc.field {
				t.Fatalf("field = %q, want %q", body.Detail[0].Field, tc.field)
			}
			if p.calls != 0 {
				t.Fatalf("predictor must not run on invalid body")
			}
		})
	}
}

type seriesProvider struct{ n int }

func (s seriesProvider) Name() string { return "fixed" }

func (s seriesProvider) FetchSeries(_ context.Context, symbol string, _ domrepo.Period) (*models.PriceSeries, error) {
	out := &models.PriceSeries{Symbol: symbol, Source: "fixed"}
	base := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < s.n; i++ {
		out.Points = append(out.Points, models.PricePoint{Time: base.AddDate(0, 0, i), Close: 100})
	}
	return out, nil
}

func TestPredictLongLookback(t *testing.T) {
	scaler, err := forecast.NewMinMaxScaler(0, 200, 0, 1)
	if err != nil {
		t.Fatalf("scaler: %v", err)
	}
	model := forecast.NewLinearModel("v2.0", nil, 0)
	predictor := usecase.NewPredictor(seriesProvider{n: 2500}, model, scaler, metrics.Nop{})
	srv := newTestServer(NewPredictEchoHandler(nil, predictor, HealthInfo{}, WithErrorStatusMapping(true)))

	cases := []struct {
		body       string
		wantStatus int
	}{
		{`{"symbol":"SPY","lookback":1000}`, http.StatusOK},
		{`{"symbol":"SPY","lookback":1200}`, http.StatusOK},
		{`{"symbol":"SPY","lookback":2499}`, http.StatusOK},
		{`{"symbol":"SPY","lookback":2500}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		rec := do(t, srv, http.MethodPost, "/predict", tc.body)
		if rec.Code != tc.wantStatus {
			t.Fatalf("%s: status = %d, want %d body=%s", tc.body, rec.Code, tc.wantStatus, rec.Body.String())
		}
		if tc.wantStatus == http.StatusUnprocessableEntity && !strings.Contains(rec.Body.String(), "not enough data for prediction") {
			t.Fatalf("%s: unexpected body %s", tc.body, rec.Body.String())
		}
	}
}

func TestPredictErrorStatus(t *testing.T) {
	boom := &models.UnexpectedError{Op: "fetch", Err: errors.New("connection reset")}
	cases := []struct {
		name       string
		err        error
		mapped     bool
		wantStatus int
		wantDetail string
	}{
		{"insufficient uniform", models.ErrInsufficientHistory, false, 500, "not enough data for prediction"},
		{"no data uniform", models.ErrNoData, false, 500, "no data for symbol"},
		{"unexpected uniform", boom, false, 500, "fetch: connection reset"},
		{"no data mapped", models.ErrNoData, true, 404, "no data for symbol"},
		{"empty mapped", models.ErrEmptySeries, true, 422, "close price series is empty"},
		{"insufficient mapped", models.ErrInsufficientHistory, true, 422, "not enough data for prediction"},
		{"unexpected mapped", boom, true, 500, "fetch: connection reset"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewPredictEchoHandler(nil, &stubPredictor{err: tc.err}, HealthInfo{}, WithErrorStatusMapping(tc.mapped))
			rec := do(t, newTestServer(h), http.MethodPost, "/predict", `{"symbol":"AAPL"}`)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			var body struct {
				Detail string `json:"detail"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Detail != tc.wantDetail {
				t.Fatalf("detail = %q (%v), want %q", body.Detail, err, tc.wantDetail)
			}
		})
	}
}

func TestPredictRateLimit(t *testing.T) {
	h := NewPredictEchoHandler(nil, &stubPredictor{res: sampleResult()}, HealthInfo{}, WithRateLimit(ratelimit.New(1, 0.001)))
	srv := newTestServer(h)
	if rec := do(t, srv, http.MethodPost, "/predict", `{"symbol":"AAPL"}`); rec.Code != http.StatusOK {
		t.Fatalf("first call status = %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodPost, "/predict", `{"symbol":"AAPL"}`); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second call status = %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodGet, "/", ""); rec.Code != http.StatusOK {
		t.Fatalf("root must not be limited, status = %d", rec.Code)
	}
}

func TestUnknownRouteUsesDetail(t *testing.T) {
	srv := newTestServer(NewPredictEchoHandler(nil, &stubPredictor{}, HealthInfo{}))
	rec := do(t, srv, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `"detail"`) {
		t.Fatalf("unexpected %d %s", rec.Code, rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(NewPredictEchoHandler(nil, &stubPredictor{}, HealthInfo{}))
	req := httptest.NewRequest(http.MethodOptions, "/predict", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("missing CORS headers: %v", rec.Header())
	}
}
