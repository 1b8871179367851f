package models

import "time"

// SummaryResult holds trailing 52-week statistics for one symbol.
// The window silently shrinks when a symbol has less than a full year of
// history; ChangePct is then "change since earliest available data".
type SummaryResult struct {
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name,omitempty"`
	CurrentPrice float64  `json:"current_price"`
	High52w      float64  `json:"high_52w"`
	Low52w       float64  `json:"low_52w"`
	AvgClose     float64  `json:"avg_close"`
	Volatility   *float64 `json:"volatility"`
	RSI          *float64 `json:"rsi"`
	Change52wPct float64  `json:"change_52w_pct"`
}

// CompareResult pairs two summaries with their correlation and volatility ratio.
type CompareResult struct {
	Stock1          *SummaryResult `json:"stock1"`
	Stock2          *SummaryResult `json:"stock2"`
	Correlation     *float64       `json:"correlation"`
	VolatilityRatio *float64       `json:"volatility_ratio"`
}

// ForecastPoint is a single projected price on a future weekday.
type ForecastPoint struct {
	Date           string  `json:"date"`
	PredictedPrice float64 `json:"predicted_price"`
	IsForecast     bool    `json:"is_forecast"`
}

// ForecastResult is the output of the linear-regression forecaster.
type ForecastResult struct {
	Symbol       string          `json:"symbol,omitempty"`
	Model        string          `json:"model"`
	LookbackDays int             `json:"lookback_days"`
	ForecastDays int             `json:"forecast_days"`
	Trend        string          `json:"trend"`
	SlopePerDay  float64         `json:"slope_per_day"`
	RSquared     float64         `json:"r_squared"`
	Confidence   float64         `json:"confidence"`
	Predictions  []ForecastPoint `json:"predictions"`
}

// SentimentComponent is one weighted sub-score of the composite sentiment.
type SentimentComponent struct {
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
	Note   string  `json:"note,omitempty"`
}

// SentimentResult is the composite technical sentiment for one symbol.
type SentimentResult struct {
	Symbol         string                        `json:"symbol,omitempty"`
	SentimentScore float64                       `json:"sentiment_score"`
	Interpretation string                        `json:"interpretation"`
	Label          string                        `json:"label"`
	Components     map[string]SentimentComponent `json:"components"`
	Disclaimer     string                        `json:"disclaimer"`
}

// MoverEntry is one row of the top gainers/losers board.
type MoverEntry struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Close     float64 `json:"close"`
	ChangePct float64 `json:"change_pct"`
}

// TopMoversResult lists the best and worst daily returns on the latest trading day.
type TopMoversResult struct {
	Date    time.Time    `json:"date"`
	Gainers []MoverEntry `json:"gainers"`
	Losers  []MoverEntry `json:"losers"`
}

// AnalyticsSnapshot is the latest-day indicator readout with interpretation labels.
type AnalyticsSnapshot struct {
	Symbol             string    `json:"symbol"`
	Date               time.Time `json:"date"`
	Close              float64   `json:"close"`
	DailyReturnPct     *float64  `json:"daily_return"`
	DailyReturnLabel   string    `json:"daily_return_label"`
	MA7                *float64  `json:"ma_7"`
	MA20               *float64  `json:"ma_20"`
	RSI14              *float64  `json:"rsi_14"`
	RSIInterpretation  string    `json:"rsi_interpretation"`
	Volatility20d      *float64  `json:"volatility_20d"`
	VolatilityLevel    string    `json:"volatility_level"`
	VolatilityLabel    string    `json:"volatility_label"`
}
