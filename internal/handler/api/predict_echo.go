package api

import (
	"context"
	"errors"

	models "Edelweiss/internal/domain/models"
	"Edelweiss/internal/service/ratelimit"
	xhttp "Edelweiss/pkg/http"
	xlogger "Edelweiss/pkg/logger"

	"github.com/labstack/echo/v4"
)

const StatusMessage = "Edelweiss backend running"

// Predictor is the use case behind POST /predict.
type Predictor interface {
	Predict(ctx context.Context, symbol string, lookback int) (*models.PredictionResult, error)
}

// HealthInfo is reported by GET /healthz.
type HealthInfo struct {
	Status       string  `json:"status"`
	Provider     string  `json:"provider"`
	ModelVersion string  `json:"model_version"`
	ScalerMin    float64 `json:"scaler_data_min"`
	ScalerMax    float64 `json:"scaler_data_max"`
}

// PredictEchoHandler serves the prediction API.
type PredictEchoHandler struct {
	logger         *xlogger.Logger
	predictor      Predictor
	health         HealthInfo
	mapErrorStatus bool
	limiter        *ratelimit.Limiter
}

type HandlerOption func(*PredictEchoHandler)

// WithErrorStatusMapping returns 404/422 for data validation failures instead of a uniform 500.
func WithErrorStatusMapping(enabled bool) HandlerOption {
	return func(h *PredictEchoHandler) { h.mapErrorStatus = enabled }
}

// WithRateLimit limits /predict per remote address. A nil limiter disables it.
func WithRateLimit(l *ratelimit.Limiter) HandlerOption {
	return func(h *PredictEchoHandler) { h.limiter = l }
}

func NewPredictEchoHandler(logger *xlogger.Logger, predictor Predictor, health HealthInfo, opts ...HandlerOption) *PredictEchoHandler {
	if health.Status == "" {
		health.Status = "ok"
	}
	h := &PredictEchoHandler{logger: logger, predictor: predictor, health: health}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = xlogger.NewNop()
	}
	return h
}

func (h *PredictEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/healthz", h.Health)
	if h.limiter != nil {
		e.POST("/predict", h.Predict, h.rateLimit)
		return
	}
	e.POST("/predict", h.Predict)
}

func (h *PredictEchoHandler) Root(c echo.Context) error {
	return xhttp.SuccessResponse(c, xhttp.StatusResponse{Status: StatusMessage})
}

func (h *PredictEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.health)
}

func (h *PredictEchoHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.ValidationErrorResponse(c, verr)
	}

	lookback := req.LookbackValue()
	res, err := h.predictor.Predict(c.Request().Context(), req.Symbol, lookback)
	if err != nil {
		h.logger.Error("predict usecase error",
			xlogger.String("symbol", req.Symbol),
			xlogger.Int("lookback", lookback),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, h.toAppError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PredictEchoHandler) toAppError(err error) *xhttp.AppError {
	msg := err.Error()
	if h.mapErrorStatus {
		switch {
		case errors.Is(err, models.ErrNoData):
			return xhttp.NotFoundError(msg).WithError(err)
		case errors.Is(err, models.ErrEmptySeries), errors.Is(err, models.ErrInsufficientHistory):
			return xhttp.UnprocessableError(msg).WithError(err)
		}
	}
	return xhttp.InternalError(msg).WithError(err)
}

func (h *PredictEchoHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !h.limiter.Allow(c.RealIP()) {
			h.logger.Warn("predict rate limited", xlogger.String("remote", c.RealIP()))
			return xhttp.TooManyRequestsResponse(c)
		}
		return next(c)
	}
}
