package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	predictions *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	lastPrice   *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

var (
	shared     *Recorder
	sharedOnce sync.Once
)

// New returns the process-wide Prometheus recorder. Collectors register with the
// default registry once; later calls return the same instance.
func New() *Recorder {
	sharedOnce.Do(func() {
		shared = &Recorder{
			predictions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "edelweiss_predictions_total",
					Help: "Total number of successful predictions",
				},
				[]string{"symbol", "mood"},
			),
			errorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "edelweiss_errors_total",
					Help: "Total number of prediction errors by kind",
				},
				[]string{"kind"},
			),
			lastPrice: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "edelweiss_last_close",
					Help: "Last close observed for a symbol",
				},
				[]string{"symbol"},
			),
			latency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "edelweiss_operation_duration_seconds",
					Help:    "Duration of pipeline stages in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"operation"},
			),
		}
	})
	return shared
}

// RecordPrediction counts a successful prediction.
func (r *Recorder) RecordPrediction(symbol, mood string) {
	r.predictions.WithLabelValues(symbol, mood).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last close for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards every observation; used by the CLI and tests.
type Nop struct{}

func (Nop) RecordPrediction(string, string) {}
func (Nop) RecordError(string)              {}
func (Nop) RecordLastPrice(string, float64) {}
func (Nop) RecordLatency(string, float64)   {}
