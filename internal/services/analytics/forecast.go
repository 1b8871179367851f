package analytics

import (
	"math"
	"time"

	"EquityPulse/internal/domain/models"
)

const (
	// MinForecastObservations is the minimum series length for a fit.
	MinForecastObservations = 30

	// ForecastLookback caps how many trailing bars feed the regression.
	ForecastLookback = 60

	// ForecastHorizon is the number of future points to predict.
	ForecastHorizon = 7

	forecastModel = "linear_regression"
)

// Forecast fits an ordinary least squares line to the trailing closes and
// projects ForecastHorizon future points. The lookback is min(60, len).
// Returns ErrInsufficientData below MinForecastObservations bars and
// ErrDegenerateInput when the fit denominator collapses.
func Forecast(symbol string, bars []models.IndicatorPoint) (*models.ForecastResult, error) {
	if len(bars) < MinForecastObservations {
		return nil, ErrInsufficientData
	}
	lookback := ForecastLookback
	if len(bars) < lookback {
		lookback = len(bars)
	}
	window := bars[len(bars)-lookback:]

	n := float64(lookback)
	var sumX, sumY, sumXY, sumXX float64
	for i, b := range window {
		x := float64(i)
		sumX += x
		sumY += b.Close
		sumXY += x * b.Close
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return nil, ErrDegenerateInput
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssRes, ssTot float64
	for i, b := range window {
		fit := intercept + slope*float64(i)
		ssRes += (b.Close - fit) * (b.Close - fit)
		ssTot += (b.Close - meanY) * (b.Close - meanY)
	}
	var r2 float64
	if ssTot != 0 {
		r2 = 1 - ssRes/ssTot
	}
	confidence := round(math.Max(0, math.Min(100, r2*100)), 1)

	lastDate := window[len(window)-1].Date
	preds := make([]models.ForecastPoint, 0, ForecastHorizon)
	for i := 0; i < ForecastHorizon; i++ {
		x := float64(lookback + i)
		price := intercept + slope*x
		d := nextTradingDate(lastDate, i+1)
		preds = append(preds, models.ForecastPoint{
			Date:           d.Format("2006-01-02"),
			PredictedPrice: round(price, 2),
			IsForecast:     true,
		})
	}

	trend := "neutral"
	switch {
	case slope > 0:
		trend = "bullish"
	case slope < 0:
		trend = "bearish"
	}

	return &models.ForecastResult{
		Symbol:       symbol,
		Model:        forecastModel,
		LookbackDays: lookback,
		ForecastDays: ForecastHorizon,
		Trend:        trend,
		SlopePerDay:  round(slope, 4),
		RSquared:     round(r2, 4),
		Confidence:   confidence,
		Predictions:  preds,
	}, nil
}

// nextTradingDate offsets base by days, then walks forward past any
// weekend. Offsets landing on the same weekend collapse onto the same
// Monday.
func nextTradingDate(base time.Time, days int) time.Time {
	d := base.AddDate(0, 0, days)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
