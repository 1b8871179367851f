package analytics

import (
	"math"

	"EquityPulse/internal/domain/models"
)

// Sentiment component weights. They sum to 1.
const (
	weightRSI        = 0.4
	weightVolatility = 0.2
	weightMomentum   = 0.2
	weightTrend      = 0.2

	defaultComponentScore = 50.0

	sentimentDisclaimer = "This is a mock sentiment index for demonstration purposes only. Not financial advice."
)

// SentimentInputs carries the latest indicator state for a symbol. Nil
// fields fall back to a neutral component score.
type SentimentInputs struct {
	RSI        *float64
	Volatility *float64
	Close      *float64
	MA7        *float64
	MA20       *float64
	ChangePct  *float64
}

func clamp01to100(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// rsiComponent uses the RSI value directly as a 0-100 score.
func rsiComponent(in SentimentInputs) (float64, bool) {
	if in.RSI == nil {
		return defaultComponentScore, true
	}
	return clamp01to100(*in.RSI), false
}

// volatilityComponent rewards calm series: an annualized volatility of 0
// scores 100, anything at or above 0.5 scores 0.
func volatilityComponent(in SentimentInputs) (float64, bool) {
	if in.Volatility == nil {
		return defaultComponentScore, true
	}
	return (1 - math.Min(*in.Volatility/0.5, 1)) * 100, false
}

// momentumComponent scores the close against its moving averages. The three
// checks apply in order: above both averages sets 75, a short average above
// the long one adds 15 on top of whatever the base is, and below both
// averages overrides everything to 25.
func momentumComponent(in SentimentInputs) (float64, bool) {
	if in.Close == nil || in.MA7 == nil || in.MA20 == nil {
		return defaultComponentScore, true
	}
	score := defaultComponentScore
	if *in.Close > *in.MA7 && *in.Close > *in.MA20 {
		score = 75
	}
	if *in.MA7 > *in.MA20 {
		score += 15
	}
	if *in.Close < *in.MA7 && *in.Close < *in.MA20 {
		score = 25
	}
	return clamp01to100(score), false
}

// trendComponent shifts a neutral 50 by the trailing percent change.
func trendComponent(in SentimentInputs) (float64, bool) {
	if in.ChangePct == nil {
		return defaultComponentScore, true
	}
	return clamp01to100(50 + *in.ChangePct), false
}

// Score blends the four weighted components into a 0-100 sentiment score
// and buckets it into a label and interpretation. Missing inputs default
// their component to a neutral 50 and are marked in the output.
func Score(symbol string, in SentimentInputs) *models.SentimentResult {
	type component struct {
		score     float64
		weight    float64
		defaulted bool
	}
	comps := map[string]component{}

	s, d := rsiComponent(in)
	comps["rsi"] = component{s, weightRSI, d}
	s, d = volatilityComponent(in)
	comps["volatility"] = component{s, weightVolatility, d}
	s, d = momentumComponent(in)
	comps["momentum"] = component{s, weightMomentum, d}
	s, d = trendComponent(in)
	comps["trend"] = component{s, weightTrend, d}

	var total float64
	out := make(map[string]models.SentimentComponent, len(comps))
	for name, c := range comps {
		total += c.score * c.weight
		sc := models.SentimentComponent{
			Score:  round(c.score, 1),
			Weight: c.weight,
		}
		if c.defaulted {
			sc.Note = "default"
		}
		out[name] = sc
	}
	total = round(clamp01to100(total), 1)

	interpretation, label := bucket(total)
	return &models.SentimentResult{
		Symbol:         symbol,
		SentimentScore: total,
		Interpretation: interpretation,
		Label:          label,
		Components:     out,
		Disclaimer:     sentimentDisclaimer,
	}
}

// bucket maps a composite score to the machine slug and its display text.
func bucket(score float64) (interpretation, label string) {
	switch {
	case score >= 70:
		return "strong_bullish", "Strong Buy Signal"
	case score >= 55:
		return "bullish", "Bullish"
	case score >= 45:
		return "neutral", "Neutral"
	case score >= 30:
		return "bearish", "Bearish"
	default:
		return "strong_bearish", "Strong Sell Signal"
	}
}
