package models

// Requests for HTTP endpoints. Defined in domain for reuse by the CLI.

// PredictRequest is the /predict body. Lookback is a pointer so an omitted
// field takes the default while an explicit 0 still fails validation.
type PredictRequest struct {
	Symbol   string `json:"symbol" validate:"required,max=32"`
	Lookback *int   `json:"lookback" default:"60" validate:"required,gte=1"`
}

// LookbackValue returns the requested lookback, or 0 when unset.
func (r *PredictRequest) LookbackValue() int {
	if r.Lookback == nil {
		return 0
	}
	return *r.Lookback
}
