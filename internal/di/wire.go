//go:build wireinject
// +build wireinject

package di

import (
	"SentimentOracle/pkg/config"
	"SentimentOracle/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideHTTPClient,
		ProvideBinanceClient,
		ProvideBytesCache,
		ProvideSignalPublisher,

		// Repositories and services
		ProvidePriceSource,
		ProvideScoreSource,
		ProvideSentimentEvaluator,
		ProvideSignalLog,

		// Use cases
		ProvideDashboardUseCase,
		ProvideRefresher,

		// Transport
		ProvideHub,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil, nil
}
