//go:build wireinject
// +build wireinject

package di

import (
	"Edelweiss/internal/usecase"
	"Edelweiss/pkg/config"
	"Edelweiss/pkg/server"

	"github.com/google/wire"
)

var predictorSet = wire.NewSet(
	// Logging and metrics
	ProvideLogPublisher,
	ProvideLogger,
	ProvideMetrics,

	// Data source
	ProvideHTTPClient,
	ProvidePriceProvider,

	// Model artifacts
	ProvideScaler,
	ProvideForecastModel,

	// Use cases
	ProvidePredictor,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		predictorSet,

		// HTTP
		ProvidePredictHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializePredictor wires the prediction pipeline without the HTTP layer (CLI use).
func InitializePredictor(cfg *config.Config) (*usecase.Predictor, func(), error) {
	wire.Build(predictorSet)
	return nil, nil, nil
}
