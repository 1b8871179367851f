//go:build wireinject
// +build wireinject

package di

import (
	"EquityPulse/pkg/config"
	"EquityPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCache,
		ProvideMarketDataClient,

		// Repositories
		ProvidePriceStore,
		ProvideBarPublisher,

		// Kafka consumer side (nil unless the kafka backend is active)
		ProvideKafkaConsumer,
		ProvideKafkaBarsHandler,

		// Use cases
		ProvideIngestor,
		ProvideMarketAnalytics,

		// HTTP
		ProvideMarketHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
