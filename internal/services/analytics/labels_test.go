package analytics

import "testing"

func TestInterpretRSI(t *testing.T) {
	tests := []struct {
		rsi  float64
		want string
	}{
		{75, "overbought"},
		{70, "bullish"},
		{51, "bullish"},
		{50, "bearish"},
		{30, "bearish"},
		{25, "oversold"},
	}
	for _, tt := range tests {
		if got := InterpretRSI(tt.rsi); got != tt.want {
			t.Fatalf("rsi %v: expected %q, got %q", tt.rsi, tt.want, got)
		}
	}
}

func TestVolatilityLevel(t *testing.T) {
	tests := []struct {
		vol  float64
		want string
	}{
		{0.5, "high"},
		{0.4, "normal"},
		{0.2, "normal"},
		{0.1, "low"},
	}
	for _, tt := range tests {
		if got := VolatilityLevel(tt.vol); got != tt.want {
			t.Fatalf("vol %v: expected %q, got %q", tt.vol, tt.want, got)
		}
	}
}
