package features

import (
	"math"
)

// ComputePctChanges computes simple returns r_t = C_t / C_{t-1} - 1.
// The undefined first entry is dropped, so the result has len(closes)-1 entries.
// Pairs with a non-positive previous close are skipped rather than emitted as Inf.
func ComputePctChanges(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev <= 0 || math.IsNaN(prev) || math.IsNaN(closes[i]) {
			continue
		}
		out = append(out, closes[i]/prev-1)
	}
	return out
}

// StdDev returns the population standard deviation (ddof=0) of xs, 0 when empty.
func StdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	n := float64(len(xs))
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	mean := sum / n
	ss := 0.0
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / n)
}

// Volatility is the population standard deviation of day-over-day percent changes.
func Volatility(closes []float64) float64 {
	return StdDev(ComputePctChanges(closes))
}
