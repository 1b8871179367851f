package analytics

import (
	"errors"
	"testing"
	"time"

	"EquityPulse/internal/domain/models"
)

func mkIndicatorBars(closes ...float64) []models.IndicatorPoint {
	return ComputeAll(mkBars(closes...))
}

func withCloses(closes []float64) []models.IndicatorPoint {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.IndicatorPoint, len(closes))
	for i, c := range closes {
		out[i] = models.IndicatorPoint{
			PricePoint: models.PricePoint{
				Symbol: "TEST",
				Date:   base.AddDate(0, 0, i),
				Open:   c,
				High:   c,
				Low:    c,
				Close:  c,
			},
		}
	}
	return out
}

func TestWindowedSummary(t *testing.T) {
	bars := mkIndicatorBars(10, 12, 9, 15, 11)
	// Intraday extremes must not leak into the 52-week range.
	bars[1].High = 100
	bars[0].Low = 1

	got, err := WindowedSummary(models.Company{Symbol: "TEST", Name: "Test Corp"}, bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CurrentPrice != 11 {
		t.Fatalf("unexpected current price %v", got.CurrentPrice)
	}
	if got.High52w != 15 || got.Low52w != 9 {
		t.Fatalf("unexpected close range %v / %v", got.High52w, got.Low52w)
	}
	if got.AvgClose != 11.4 {
		t.Fatalf("unexpected avg close %v", got.AvgClose)
	}
	if got.Change52wPct != 10.0 {
		t.Fatalf("unexpected change pct %v", got.Change52wPct)
	}
}

func TestWindowedSummaryEmpty(t *testing.T) {
	_, err := WindowedSummary(models.Company{Symbol: "TEST"}, nil)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestWindowedSummaryTrailingWindow(t *testing.T) {
	closes := make([]float64, SummaryWindow+10)
	for i := range closes {
		closes[i] = 100
	}
	// Old spike outside the trailing window must not count.
	closes[0] = 500
	bars := mkIndicatorBars(closes...)
	got, err := WindowedSummary(models.Company{Symbol: "TEST"}, bars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.High52w != 100 {
		t.Fatalf("expected spike excluded, got high %v", got.High52w)
	}
}

func TestCorrelationSelf(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i%7)
	}
	series := withCloses(closes)
	r, err := Correlation(series, series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(r, 1.0) {
		t.Fatalf("expected self correlation 1.0, got %v", r)
	}
}

// Closes move in perfect opposition while every bar opens at its close, so
// all daily returns are zero. Correlation runs over closes and must still
// resolve to -1.
func TestCorrelationInverseCloses(t *testing.T) {
	a := make([]float64, 40)
	b := make([]float64, 40)
	for i := range a {
		a[i] = 100 + float64(i)
		b[i] = 200 - float64(i)
	}
	r, err := Correlation(withCloses(a), withCloses(b))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r < -1 || r > 1 {
		t.Fatalf("correlation out of range: %v", r)
	}
	if !almostEqual(r, -1.0) {
		t.Fatalf("expected inverse correlation -1.0, got %v", r)
	}
}

func TestCorrelationTooFewAligned(t *testing.T) {
	a := withCloses(make([]float64, 10))
	_, err := Correlation(a, a)
	if !errors.Is(err, ErrMisalignedSeries) {
		t.Fatalf("expected ErrMisalignedSeries, got %v", err)
	}
}

func TestCorrelationZeroVariance(t *testing.T) {
	flat := make([]float64, 40)
	varying := make([]float64, 40)
	for i := range flat {
		flat[i] = 100
		varying[i] = 100 + float64(i)
	}
	_, err := Correlation(withCloses(flat), withCloses(varying))
	if !errors.Is(err, ErrDegenerateInput) {
		t.Fatalf("expected ErrDegenerateInput, got %v", err)
	}
}

func TestVolatilityRatio(t *testing.T) {
	va, vb := 0.3, 0.2
	a := []models.IndicatorPoint{{Indicators: models.Indicators{Volatility20d: &va}}}
	b := []models.IndicatorPoint{{Indicators: models.Indicators{Volatility20d: &vb}}}
	got := VolatilityRatio(a, b)
	if got == nil || *got != 1.5 {
		t.Fatalf("unexpected ratio %v", got)
	}

	zero := 0.0
	b[0].Volatility20d = &zero
	if VolatilityRatio(a, b) != nil {
		t.Fatalf("expected nil ratio for zero denominator")
	}
	b[0].Volatility20d = nil
	if VolatilityRatio(a, b) != nil {
		t.Fatalf("expected nil ratio for missing volatility")
	}
}
