package analytics

import "testing"

func f(v float64) *float64 { return &v }

func TestScoreAllMissingIsNeutral(t *testing.T) {
	got := Score("TEST", SentimentInputs{})
	if got.SentimentScore != 50.0 {
		t.Fatalf("expected neutral 50.0, got %v", got.SentimentScore)
	}
	if got.Interpretation != "neutral" {
		t.Fatalf("expected neutral interpretation, got %q", got.Interpretation)
	}
	if got.Label != "Neutral" {
		t.Fatalf("expected Neutral label, got %q", got.Label)
	}
	for name, c := range got.Components {
		if c.Note != "default" {
			t.Fatalf("component %q: expected default note", name)
		}
		if c.Score != 50.0 {
			t.Fatalf("component %q: expected 50.0, got %v", name, c.Score)
		}
	}
	want := "This is a mock sentiment index for demonstration purposes only. Not financial advice."
	if got.Disclaimer != want {
		t.Fatalf("unexpected disclaimer %q", got.Disclaimer)
	}
}

func TestMomentumComponentOrdering(t *testing.T) {
	tests := []struct {
		name  string
		close float64
		ma7   float64
		ma20  float64
		want  float64
	}{
		{"above both with golden cross", 110, 105, 100, 90},
		{"above both", 110, 100, 105, 75},
		{"between averages, short above long", 102, 105, 100, 65},
		{"between averages, short below long", 102, 100, 105, 50},
		{"below both", 90, 105, 100, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, defaulted := momentumComponent(SentimentInputs{
				Close: f(tt.close), MA7: f(tt.ma7), MA20: f(tt.ma20),
			})
			if defaulted {
				t.Fatalf("unexpected default")
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestVolatilityComponent(t *testing.T) {
	tests := []struct {
		vol  float64
		want float64
	}{
		{0, 100},
		{0.25, 50},
		{0.5, 0},
		{1.0, 0},
	}
	for _, tt := range tests {
		got, defaulted := volatilityComponent(SentimentInputs{Volatility: f(tt.vol)})
		if defaulted {
			t.Fatalf("vol %v: unexpected default", tt.vol)
		}
		if !almostEqual(got, tt.want) {
			t.Fatalf("vol %v: expected %v, got %v", tt.vol, tt.want, got)
		}
	}
}

func TestTrendComponentClamps(t *testing.T) {
	if got, _ := trendComponent(SentimentInputs{ChangePct: f(80)}); got != 100 {
		t.Fatalf("expected clamp to 100, got %v", got)
	}
	if got, _ := trendComponent(SentimentInputs{ChangePct: f(-80)}); got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
	if got, _ := trendComponent(SentimentInputs{ChangePct: f(10)}); got != 60 {
		t.Fatalf("expected 60, got %v", got)
	}
}

func TestBucketBoundaries(t *testing.T) {
	tests := []struct {
		score          float64
		interpretation string
		label          string
	}{
		{70, "strong_bullish", "Strong Buy Signal"},
		{69.9, "bullish", "Bullish"},
		{55, "bullish", "Bullish"},
		{54.9, "neutral", "Neutral"},
		{45, "neutral", "Neutral"},
		{44.9, "bearish", "Bearish"},
		{30, "bearish", "Bearish"},
		{29.9, "strong_bearish", "Strong Sell Signal"},
	}
	for _, tt := range tests {
		interpretation, label := bucket(tt.score)
		if interpretation != tt.interpretation || label != tt.label {
			t.Fatalf("score %v: expected %q/%q, got %q/%q",
				tt.score, tt.interpretation, tt.label, interpretation, label)
		}
	}
}

func TestScoreWeightsSum(t *testing.T) {
	got := Score("TEST", SentimentInputs{
		RSI:        f(60),
		Volatility: f(0.25),
		Close:      f(110),
		MA7:        f(105),
		MA20:       f(100),
		ChangePct:  f(20),
	})
	// 60*0.4 + 50*0.2 + 90*0.2 + 70*0.2 = 66
	if got.SentimentScore != 66 {
		t.Fatalf("expected 66, got %v", got.SentimentScore)
	}
	if got.Interpretation != "bullish" || got.Label != "Bullish" {
		t.Fatalf("expected bullish, got %q/%q", got.Interpretation, got.Label)
	}
}
