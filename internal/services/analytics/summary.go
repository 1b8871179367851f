package analytics

import (
	"math"

	"EquityPulse/internal/domain/models"
)

const (
	// SummaryWindow is the trailing window for summary statistics, one
	// trading year of bars.
	SummaryWindow = 252

	// MinAlignedDays is the minimum number of common trading dates two
	// series must share to be correlated.
	MinAlignedDays = 30
)

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// WindowedSummary computes trailing-window summary statistics over bars in
// ascending date order. The window covers the most recent min(252, len)
// bars. Returns ErrInsufficientData on an empty series.
func WindowedSummary(c models.Company, bars []models.IndicatorPoint) (*models.SummaryResult, error) {
	if len(bars) == 0 {
		return nil, ErrInsufficientData
	}
	start := 0
	if len(bars) > SummaryWindow {
		start = len(bars) - SummaryWindow
	}
	window := bars[start:]

	// The 52-week range is taken over closes, not intraday extremes.
	last := window[len(window)-1]
	high := window[0].Close
	low := window[0].Close
	var sum float64
	for _, b := range window {
		if b.Close > high {
			high = b.Close
		}
		if b.Close < low {
			low = b.Close
		}
		sum += b.Close
	}

	res := &models.SummaryResult{
		Symbol:       c.Symbol,
		Name:         c.Name,
		CurrentPrice: last.Close,
		High52w:      high,
		Low52w:       low,
		AvgClose:     round(sum/float64(len(window)), 2),
		Volatility:   last.Volatility20d,
		RSI:          last.RSI14,
	}
	if oldest := window[0].Close; oldest != 0 {
		res.Change52wPct = round((last.Close-oldest)/oldest*100, 2)
	}
	return res, nil
}

// Correlation computes the Pearson correlation of close prices between two
// series, inner-joined on trading date. Returns ErrMisalignedSeries when
// fewer than MinAlignedDays dates align and ErrDegenerateInput when either
// aligned series has zero variance. The result is clamped to [-1, 1].
func Correlation(a, b []models.IndicatorPoint) (float64, error) {
	byDate := make(map[string]float64, len(b))
	for _, p := range b {
		byDate[p.Date.Format("2006-01-02")] = p.Close
	}
	var xs, ys []float64
	for _, p := range a {
		if y, ok := byDate[p.Date.Format("2006-01-02")]; ok {
			xs = append(xs, p.Close)
			ys = append(ys, y)
		}
	}
	if len(xs) < MinAlignedDays {
		return 0, ErrMisalignedSeries
	}

	n := float64(len(xs))
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n
	var cov, varX, varY float64
	for i := range xs {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, ErrDegenerateInput
	}
	r := cov / math.Sqrt(varX*varY)
	return math.Max(-1, math.Min(1, r)), nil
}

// VolatilityRatio returns vol(a)/vol(b) from the latest bar of each series,
// or nil when either volatility is missing or the denominator is zero.
func VolatilityRatio(a, b []models.IndicatorPoint) *float64 {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	va := a[len(a)-1].Volatility20d
	vb := b[len(b)-1].Volatility20d
	if va == nil || vb == nil || *vb == 0 {
		return nil
	}
	r := round(*va / *vb, 3)
	return &r
}
