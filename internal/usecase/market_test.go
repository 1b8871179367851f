package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"EquityPulse/internal/domain/models"
	"EquityPulse/internal/services/analytics"
	pkgcache "EquityPulse/pkg/cache"
)

type fakeStore struct {
	companies  []models.Company
	bars       map[string][]models.IndicatorPoint
	recentCall int
}

func (f *fakeStore) UpsertCompany(_ context.Context, c models.Company) error {
	f.companies = append(f.companies, c)
	return nil
}

func (f *fakeStore) ListCompanies(_ context.Context) ([]models.Company, error) {
	return f.companies, nil
}

func (f *fakeStore) GetCompany(_ context.Context, symbol string) (*models.Company, error) {
	for _, c := range f.companies {
		if c.Symbol == symbol {
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ReplaceDailyBars(_ context.Context, symbol string, bars []models.IndicatorPoint) error {
	if f.bars == nil {
		f.bars = map[string][]models.IndicatorPoint{}
	}
	f.bars[symbol] = bars
	return nil
}

func (f *fakeStore) RecentBars(_ context.Context, symbol string, n int) ([]models.IndicatorPoint, error) {
	f.recentCall++
	bars := f.bars[symbol]
	if len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	return bars, nil
}

func (f *fakeStore) BarsBetween(_ context.Context, symbol string, from, to time.Time) ([]models.IndicatorPoint, error) {
	var out []models.IndicatorPoint
	for _, b := range f.bars[symbol] {
		if !b.Date.Before(from) && !b.Date.After(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) LatestBar(_ context.Context, symbol string) (*models.IndicatorPoint, error) {
	bars := f.bars[symbol]
	if len(bars) == 0 {
		return nil, nil
	}
	return &bars[len(bars)-1], nil
}

func (f *fakeStore) LatestTradingDay(_ context.Context) (*time.Time, error) {
	var latest *time.Time
	for _, bars := range f.bars {
		if len(bars) == 0 {
			continue
		}
		d := bars[len(bars)-1].Date
		if latest == nil || d.After(*latest) {
			latest = &d
		}
	}
	return latest, nil
}

func (f *fakeStore) BarsOnDay(_ context.Context, day time.Time) ([]models.IndicatorPoint, error) {
	var out []models.IndicatorPoint
	for _, bars := range f.bars {
		for _, b := range bars {
			if b.Date.Equal(day) {
				out = append(out, b)
			}
		}
	}
	return out, nil
}

func seedBars(closes ...float64) []models.IndicatorPoint {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pts := make([]models.PricePoint, len(closes))
	for i, c := range closes {
		pts[i] = models.PricePoint{
			Symbol: "TEST",
			Date:   base.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
		}
	}
	return analytics.ComputeAll(pts)
}

func newFakeStore() *fakeStore {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	return &fakeStore{
		companies: []models.Company{{Symbol: "TEST", Name: "Test Corp"}},
		bars:      map[string][]models.IndicatorPoint{"TEST": seedBars(closes...)},
	}
}

func TestSummary(t *testing.T) {
	m := NewMarketAnalytics(newFakeStore(), nil, CacheTTLs{}, nil)
	got, err := m.Summary(context.Background(), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Symbol != "TEST" || got.Name != "Test Corp" {
		t.Fatalf("unexpected identity %q %q", got.Symbol, got.Name)
	}
	if got.CurrentPrice != 159 {
		t.Fatalf("unexpected current price %v", got.CurrentPrice)
	}
	if got.High52w != 159 || got.Low52w != 100 {
		t.Fatalf("unexpected range %v / %v", got.High52w, got.Low52w)
	}
}

func TestPricesUnknownSymbol(t *testing.T) {
	m := NewMarketAnalytics(newFakeStore(), nil, CacheTTLs{}, nil)
	_, err := m.Prices(context.Background(), "NOPE", 30)
	if !errors.Is(err, ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}
}

func TestSummaryCached(t *testing.T) {
	store := newFakeStore()
	cache := pkgcache.NewMemoryCache()
	m := NewMarketAnalytics(store, cache, CacheTTLs{}, nil)

	if _, err := m.Summary(context.Background(), "TEST"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	calls := store.recentCall
	if _, err := m.Summary(context.Background(), "TEST"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.recentCall != calls {
		t.Fatalf("expected cached result, store hit again")
	}
}

func TestForecastInsufficientData(t *testing.T) {
	store := &fakeStore{bars: map[string][]models.IndicatorPoint{"TEST": seedBars(1, 2, 3)}}
	m := NewMarketAnalytics(store, nil, CacheTTLs{}, nil)
	_, err := m.Forecast(context.Background(), "TEST", 90)
	if !errors.Is(err, analytics.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestTopMovers(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	up, down := 0.05, -0.02
	store := &fakeStore{
		bars: map[string][]models.IndicatorPoint{
			"UP": {{
				PricePoint: models.PricePoint{Symbol: "UP", Date: day, Close: 105},
				Indicators: models.Indicators{DailyReturn: &up},
			}},
			"DOWN": {{
				PricePoint: models.PricePoint{Symbol: "DOWN", Date: day, Close: 98},
				Indicators: models.Indicators{DailyReturn: &down},
			}},
		},
	}
	m := NewMarketAnalytics(store, nil, CacheTTLs{}, nil)
	got, err := m.TopMovers(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Gainers) != 1 || got.Gainers[0].Symbol != "UP" || got.Gainers[0].ChangePct != 5.0 {
		t.Fatalf("unexpected gainers %+v", got.Gainers)
	}
	if len(got.Losers) != 1 || got.Losers[0].Symbol != "DOWN" || got.Losers[0].ChangePct != -2.0 {
		t.Fatalf("unexpected losers %+v", got.Losers)
	}
}

func TestAnalyticsLabels(t *testing.T) {
	m := NewMarketAnalytics(newFakeStore(), nil, CacheTTLs{}, nil)
	got, err := m.Analytics(context.Background(), "TEST")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Close != 159 {
		t.Fatalf("unexpected close %v", got.Close)
	}
	// Flat intraday bars: zero daily return with the fixed caption.
	if got.DailyReturnPct == nil || *got.DailyReturnPct != 0 {
		t.Fatalf("unexpected daily return %v", got.DailyReturnPct)
	}
	if got.DailyReturnLabel != "% change from open" {
		t.Fatalf("unexpected daily return label %q", got.DailyReturnLabel)
	}
	if got.VolatilityLabel != "Annualized 20-day volatility" {
		t.Fatalf("unexpected volatility label %q", got.VolatilityLabel)
	}
	if got.Volatility20d == nil || got.VolatilityLevel != "low" {
		t.Fatalf("unexpected volatility %v %q", got.Volatility20d, got.VolatilityLevel)
	}
}

func TestCompareSelf(t *testing.T) {
	m := NewMarketAnalytics(newFakeStore(), nil, CacheTTLs{}, nil)
	got, err := m.Compare(context.Background(), "TEST", "TEST")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Closes correlate perfectly with themselves.
	if got.Correlation == nil || *got.Correlation != 1.0 {
		t.Fatalf("expected self correlation 1.0, got %v", got.Correlation)
	}
	if got.Stock1 == nil || got.Stock2 == nil {
		t.Fatalf("expected both summaries present")
	}
}
