package models

import "time"

// PricePoint is a single daily close.
type PricePoint struct {
	Time  time.Time `json:"t"`
	Close float64   `json:"c"`
}

// PriceSeries holds chronologically ordered closes for one symbol.
// Adapters guarantee ascending, de-duplicated timestamps.
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Source string       `json:"source"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of observations.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// Closes returns the close column in time order.
func (s *PriceSeries) Closes() []float64 {
	if s == nil {
		return nil
	}
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

// LastClose returns the most recent close, or 0 for an empty series.
func (s *PriceSeries) LastClose() float64 {
	if s.Len() == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].Close
}
