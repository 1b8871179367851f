package models

import "time"

// Company is one tracked equity listing.
type Company struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Sector string `json:"sector,omitempty"`
}

// PricePoint is one trading day of OHLCV data for one symbol.
// Price fields are strictly positive and High >= Low; the ingestion
// pipeline drops rows violating either before anything downstream sees them.
type PricePoint struct {
	Symbol string    `json:"symbol,omitempty"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume *int64    `json:"volume,omitempty"`
}

// Indicators carries the derived per-day metrics. Each field is nil until its
// rolling window has accumulated enough history; a nil here is a
// data-availability gap, never an error.
type Indicators struct {
	DailyReturn   *float64 `json:"daily_return"`
	MA7           *float64 `json:"ma_7"`
	MA20          *float64 `json:"ma_20"`
	Volatility20d *float64 `json:"volatility_20d"`
	RSI14         *float64 `json:"rsi_14"`
}

// IndicatorPoint is a PricePoint with its computed indicators attached.
type IndicatorPoint struct {
	PricePoint
	Indicators
}
