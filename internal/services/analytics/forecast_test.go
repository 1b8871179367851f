package analytics

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestForecastTooFewObservations(t *testing.T) {
	_, err := Forecast("TEST", mkIndicatorBars(ascending(25)...))
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestForecastMinimumObservations(t *testing.T) {
	got, err := Forecast("TEST", mkIndicatorBars(ascending(30)...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.LookbackDays != 30 {
		t.Fatalf("expected lookback 30, got %d", got.LookbackDays)
	}
}

func TestForecastLookbackCap(t *testing.T) {
	got, err := Forecast("TEST", mkIndicatorBars(ascending(100)...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.LookbackDays != ForecastLookback {
		t.Fatalf("expected lookback %d, got %d", ForecastLookback, got.LookbackDays)
	}
}

func TestForecastPerfectLine(t *testing.T) {
	got, err := Forecast("TEST", mkIndicatorBars(ascending(60)...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SlopePerDay != 1 {
		t.Fatalf("expected slope 1, got %v", got.SlopePerDay)
	}
	if got.RSquared != 1 {
		t.Fatalf("expected r-squared 1, got %v", got.RSquared)
	}
	if got.Confidence != 100 {
		t.Fatalf("expected confidence 100, got %v", got.Confidence)
	}
	if got.Trend != "bullish" {
		t.Fatalf("expected bullish trend, got %q", got.Trend)
	}
	if len(got.Predictions) != ForecastHorizon {
		t.Fatalf("expected %d predictions, got %d", ForecastHorizon, len(got.Predictions))
	}
	// Closes run 100..159, so the line continues 160, 161, ...
	for i, p := range got.Predictions {
		want := 160 + float64(i)
		if math.Abs(p.PredictedPrice-want) > 0.01 {
			t.Fatalf("prediction %d: expected %v, got %v", i, want, p.PredictedPrice)
		}
		if !p.IsForecast {
			t.Fatalf("prediction %d: expected is_forecast", i)
		}
	}
}

func TestForecastFlatSeries(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100
	}
	got, err := Forecast("TEST", mkIndicatorBars(closes...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SlopePerDay != 0 || got.Trend != "neutral" {
		t.Fatalf("expected neutral trend, got slope %v trend %q", got.SlopePerDay, got.Trend)
	}
	if got.RSquared != 0 || got.Confidence != 0 {
		t.Fatalf("expected zero fit quality, got r2 %v confidence %v", got.RSquared, got.Confidence)
	}
}

func TestForecastSkipsWeekends(t *testing.T) {
	got, err := Forecast("TEST", mkIndicatorBars(ascending(60)...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range got.Predictions {
		d, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			t.Fatalf("bad prediction date %q: %v", p.Date, err)
		}
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			t.Fatalf("prediction lands on weekend: %s", p.Date)
		}
	}
}

func TestNextTradingDate(t *testing.T) {
	friday := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	monday := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	if got := nextTradingDate(friday, 1); !got.Equal(monday) {
		t.Fatalf("expected Monday, got %v", got)
	}
	// Saturday and Sunday offsets collapse onto the same Monday.
	if got := nextTradingDate(friday, 2); !got.Equal(monday) {
		t.Fatalf("expected Monday, got %v", got)
	}
}
