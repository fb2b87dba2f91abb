package models

import "errors"

// Prediction pipeline failures. Callers match with errors.Is / errors.As.
var (
	ErrNoData              = errors.New("no data for symbol")
	ErrEmptySeries         = errors.New("close price series is empty")
	ErrInsufficientHistory = errors.New("not enough data for prediction")
)

// UnexpectedError wraps any failure outside the validation taxonomy
// (provider transport, model inference, scaler mismatch).
type UnexpectedError struct {
	Op  string
	Err error
}

func (e *UnexpectedError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *UnexpectedError) Unwrap() error { return e.Err }

// Unexpected wraps err unless it already belongs to the taxonomy.
func Unexpected(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsValidationError(err) {
		return err
	}
	var ue *UnexpectedError
	if errors.As(err, &ue) {
		return err
	}
	return &UnexpectedError{Op: op, Err: err}
}

// IsValidationError reports whether err is one of the data validation failures.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrNoData) ||
		errors.Is(err, ErrEmptySeries) ||
		errors.Is(err, ErrInsufficientHistory)
}
