package analytics

const (
	RSIOverbought = 70
	RSIOversold   = 30

	HighVolatility = 0.4
	LowVolatility  = 0.2
)

// InterpretRSI maps an RSI value to a trading interpretation.
func InterpretRSI(rsi float64) string {
	switch {
	case rsi > RSIOverbought:
		return "overbought"
	case rsi < RSIOversold:
		return "oversold"
	case rsi > 50:
		return "bullish"
	default:
		return "bearish"
	}
}

// VolatilityLevel buckets an annualized volatility into high, low or normal.
func VolatilityLevel(vol float64) string {
	switch {
	case vol > HighVolatility:
		return "high"
	case vol < LowVolatility:
		return "low"
	default:
		return "normal"
	}
}
