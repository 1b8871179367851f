// Package analytics implements the pure computation core: per-day
// indicators over daily bars, windowed summary statistics, a linear
// forecaster and a composite sentiment scorer. Nothing in this package
// touches storage or transport.
package analytics

import (
	"math"
	"sort"

	"EquityPulse/internal/domain/models"
)

const (
	// TradingDaysPerYear is the annualization factor for volatility.
	TradingDaysPerYear = 252

	ShortMAWindow    = 7
	LongMAWindow     = 20
	VolatilityWindow = 20
	RSIWindow        = 14
)

// DailyReturns computes the intraday return (close-open)/open for every bar.
// Bars with a zero open yield a nil return.
func DailyReturns(bars []models.PricePoint) []*float64 {
	out := make([]*float64, len(bars))
	for i, b := range bars {
		if b.Open == 0 {
			continue
		}
		r := (b.Close - b.Open) / b.Open
		out[i] = &r
	}
	return out
}

// MovingAverage computes a simple moving average of closes. Entries before
// a full window has accumulated are nil.
func MovingAverage(bars []models.PricePoint, window int) []*float64 {
	out := make([]*float64, len(bars))
	if window <= 0 {
		return out
	}
	var sum float64
	for i, b := range bars {
		sum += b.Close
		if i >= window {
			sum -= bars[i-window].Close
		}
		if i >= window-1 {
			avg := sum / float64(window)
			out[i] = &avg
		}
	}
	return out
}

// Volatility computes the rolling sample standard deviation of daily
// returns over window bars, annualized by sqrt(252). Entries are nil until
// a full window of returns exists.
func Volatility(bars []models.PricePoint, window int) []*float64 {
	out := make([]*float64, len(bars))
	if window < 2 {
		return out
	}
	returns := DailyReturns(bars)
	for i := range bars {
		if i < window-1 {
			continue
		}
		var (
			sum float64
			n   int
		)
		for j := i - window + 1; j <= i; j++ {
			if returns[j] == nil {
				n = 0
				break
			}
			sum += *returns[j]
			n++
		}
		if n < window {
			continue
		}
		mean := sum / float64(n)
		var ss float64
		for j := i - window + 1; j <= i; j++ {
			d := *returns[j] - mean
			ss += d * d
		}
		std := math.Sqrt(ss / float64(n-1))
		v := std * math.Sqrt(TradingDaysPerYear)
		out[i] = &v
	}
	return out
}

// RSI computes Wilder's relative strength index over closes. Average gain
// and loss follow the Wilder recursion with alpha = 1/window, seeded at the
// first close-to-close delta. Entries are nil until window deltas exist,
// and nil whenever the average loss is zero.
func RSI(bars []models.PricePoint, window int) []*float64 {
	out := make([]*float64, len(bars))
	if window < 1 || len(bars) <= window {
		return out
	}
	alpha := 1.0 / float64(window)
	var avgGain, avgLoss float64
	for i := 1; i < len(bars); i++ {
		delta := bars[i].Close - bars[i-1].Close
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		if i == 1 {
			avgGain, avgLoss = gain, loss
		} else {
			avgGain = (1-alpha)*avgGain + alpha*gain
			avgLoss = (1-alpha)*avgLoss + alpha*loss
		}
		if i < window {
			continue
		}
		if avgLoss == 0 {
			continue
		}
		rs := avgGain / avgLoss
		v := 100 - 100/(1+rs)
		out[i] = &v
	}
	return out
}

// ComputeAll sorts the bars by date and attaches every per-day indicator.
// The input slice is not modified.
func ComputeAll(bars []models.PricePoint) []models.IndicatorPoint {
	sorted := make([]models.PricePoint, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	returns := DailyReturns(sorted)
	ma7 := MovingAverage(sorted, ShortMAWindow)
	ma20 := MovingAverage(sorted, LongMAWindow)
	vol := Volatility(sorted, VolatilityWindow)
	rsi := RSI(sorted, RSIWindow)

	out := make([]models.IndicatorPoint, len(sorted))
	for i, b := range sorted {
		out[i] = models.IndicatorPoint{
			PricePoint: b,
			Indicators: models.Indicators{
				DailyReturn:   returns[i],
				MA7:           ma7[i],
				MA20:          ma20[i],
				Volatility20d: vol[i],
				RSI14:         rsi[i],
			},
		}
	}
	return out
}
