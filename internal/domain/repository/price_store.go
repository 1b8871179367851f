package repository

import (
	"context"
	"time"

	"EquityPulse/internal/domain/models"
)

// PriceStore provides access to companies and indicator-augmented daily bars.
// All read methods return bars in ascending date order.
type PriceStore interface {
	UpsertCompany(ctx context.Context, c models.Company) error
	ListCompanies(ctx context.Context) ([]models.Company, error)
	GetCompany(ctx context.Context, symbol string) (*models.Company, error)

	// ReplaceDailyBars overwrites the stored series for a symbol with the
	// freshly recomputed one. Recomputation is a full replace, not a delta.
	ReplaceDailyBars(ctx context.Context, symbol string, bars []models.IndicatorPoint) error

	RecentBars(ctx context.Context, symbol string, n int) ([]models.IndicatorPoint, error)
	BarsBetween(ctx context.Context, symbol string, from, to time.Time) ([]models.IndicatorPoint, error)
	LatestBar(ctx context.Context, symbol string) (*models.IndicatorPoint, error)
	LatestTradingDay(ctx context.Context) (*time.Time, error)
	BarsOnDay(ctx context.Context, day time.Time) ([]models.IndicatorPoint, error)
}

// BarPublisher publishes indicator-augmented bars to an event backend.
type BarPublisher interface {
	PublishBars(ctx context.Context, symbol string, bars []models.IndicatorPoint) error
	Close() error
}

// Metrics records ingestion and storage observations.
type Metrics interface {
	RecordBarsStored(backend, symbol string, n int)
	RecordError(kind string)
	RecordLastClose(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
