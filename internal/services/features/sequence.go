package features

import (
	"errors"
	"fmt"
)

// ErrInsufficientLength is returned when a series cannot hold a single window
// plus the value that follows it.
var ErrInsufficientLength = errors.New("series shorter than lookback")

// BuildSequences returns the n-lookback most recent contiguous windows of length
// lookback, oldest first: series[i-lookback:i] for i in (lookback, n]. The last
// window ends at the final observation. Windows share the backing array of series.
func BuildSequences(series []float64, lookback int) ([][]float64, error) {
	if err := checkLookback(len(series), lookback); err != nil {
		return nil, err
	}
	n := len(series) - lookback
	out := make([][]float64, 0, n)
	for i := lookback + 1; i <= len(series); i++ {
		out = append(out, series[i-lookback:i:i])
	}
	return out, nil
}

// LastWindow returns a copy of the final lookback values of series.
func LastWindow(series []float64, lookback int) ([]float64, error) {
	if err := checkLookback(len(series), lookback); err != nil {
		return nil, err
	}
	w := make([]float64, lookback)
	copy(w, series[len(series)-lookback:])
	return w, nil
}

func checkLookback(n, lookback int) error {
	if lookback <= 0 {
		return fmt.Errorf("lookback must be positive, got %d", lookback)
	}
	if n <= lookback {
		return fmt.Errorf("%w: have %d observations, lookback %d", ErrInsufficientLength, n, lookback)
	}
	return nil
}
