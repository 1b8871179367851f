package analytics

import (
	"math"
	"testing"
	"time"

	"EquityPulse/internal/domain/models"
)

func mkBars(closes ...float64) []models.PricePoint {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.PricePoint, len(closes))
	for i, c := range closes {
		out[i] = models.PricePoint{
			Symbol: "TEST",
			Date:   base.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
		}
	}
	return out
}

func ascending(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDailyReturns(t *testing.T) {
	bars := mkBars(100, 100)
	bars[0].Open = 100
	bars[0].Close = 105
	bars[1].Open = 0
	got := DailyReturns(bars)
	if got[0] == nil || !almostEqual(*got[0], 0.05) {
		t.Fatalf("unexpected return %v", got[0])
	}
	if got[1] != nil {
		t.Fatalf("expected nil return for zero open, got %v", *got[1])
	}
}

func TestMovingAverageWindowing(t *testing.T) {
	bars := mkBars(ascending(31)...)
	ma7 := MovingAverage(bars, 7)
	if ma7[5] != nil {
		t.Fatalf("expected nil before full window, got %v", *ma7[5])
	}
	if ma7[6] == nil || !almostEqual(*ma7[6], 103) {
		t.Fatalf("unexpected first ma7 %v", ma7[6])
	}
	if ma7[30] == nil || !almostEqual(*ma7[30], 127) {
		t.Fatalf("unexpected last ma7 %v", ma7[30])
	}
	ma20 := MovingAverage(bars, 20)
	if ma20[30] == nil || !almostEqual(*ma20[30], 120.5) {
		t.Fatalf("unexpected last ma20 %v", ma20[30])
	}
}

func TestMovingAverageConstant(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 42
	}
	bars := mkBars(closes...)
	for i, v := range MovingAverage(bars, 7) {
		if i < 6 {
			if v != nil {
				t.Fatalf("index %d: expected nil", i)
			}
			continue
		}
		if v == nil || !almostEqual(*v, 42) {
			t.Fatalf("index %d: expected 42, got %v", i, v)
		}
	}
}

func TestVolatilityConstantReturnsZero(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	vol := Volatility(mkBars(closes...), 20)
	if vol[18] != nil {
		t.Fatalf("expected nil before full window")
	}
	for i := 19; i < len(vol); i++ {
		if vol[i] == nil || *vol[i] != 0 {
			t.Fatalf("index %d: expected zero volatility, got %v", i, vol[i])
		}
	}
}

func TestVolatilityNonNegative(t *testing.T) {
	closes := []float64{100, 103, 99, 104, 101, 98, 105, 102, 97, 106,
		100, 103, 99, 104, 101, 98, 105, 102, 97, 106, 100, 103, 99, 104, 101}
	bars := mkBars(closes...)
	for i := 1; i < len(bars); i++ {
		bars[i].Open = bars[i-1].Close
	}
	for i, v := range Volatility(bars, 20) {
		if v != nil && *v < 0 {
			t.Fatalf("index %d: negative volatility %v", i, *v)
		}
	}
}

func TestRSIAllGainsIsNil(t *testing.T) {
	got := RSI(mkBars(ascending(31)...), 14)
	for i, v := range got {
		if v != nil {
			t.Fatalf("index %d: expected nil RSI with zero average loss, got %v", i, *v)
		}
	}
}

func TestRSIAlternatingSeries(t *testing.T) {
	closes := make([]float64, 31)
	for i := range closes {
		closes[i] = 100
		if i%2 == 1 {
			closes[i] = 101
		}
	}
	got := RSI(mkBars(closes...), 14)
	if got[13] != nil {
		t.Fatalf("expected nil before 14 deltas, got %v", *got[13])
	}
	for i := 14; i < len(got); i++ {
		if got[i] == nil {
			t.Fatalf("index %d: expected RSI", i)
		}
		if *got[i] <= 0 || *got[i] >= 100 {
			t.Fatalf("index %d: RSI out of range %v", i, *got[i])
		}
	}
}

func TestComputeAllSortsByDate(t *testing.T) {
	bars := mkBars(ascending(10)...)
	shuffled := []models.PricePoint{bars[4], bars[0], bars[9], bars[2], bars[7],
		bars[1], bars[5], bars[8], bars[3], bars[6]}
	got := ComputeAll(shuffled)
	for i := 1; i < len(got); i++ {
		if !got[i-1].Date.Before(got[i].Date) {
			t.Fatalf("output not ascending at %d", i)
		}
	}
	if got[9].Close != bars[9].Close {
		t.Fatalf("unexpected last close %v", got[9].Close)
	}
}

func TestComputeAllIdempotent(t *testing.T) {
	bars := mkBars(ascending(31)...)
	first := ComputeAll(bars)
	second := ComputeAll(bars)
	for i := range first {
		a, b := first[i].MA7, second[i].MA7
		if (a == nil) != (b == nil) || (a != nil && *a != *b) {
			t.Fatalf("index %d: recompute changed ma7", i)
		}
	}
}
