package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"EquityPulse/internal/domain/models"
	domrepo "EquityPulse/internal/domain/repository"
	"EquityPulse/internal/services/analytics"
	pkgcache "EquityPulse/pkg/cache"
	applogger "EquityPulse/pkg/logger"
	"EquityPulse/pkg/util"
)

// ErrUnknownSymbol is returned when a symbol has no stored data.
var ErrUnknownSymbol = errors.New("unknown symbol")

// CacheTTLs holds per-endpoint result cache lifetimes.
type CacheTTLs struct {
	Prices    time.Duration
	Summary   time.Duration
	Compare   time.Duration
	Forecast  time.Duration
	Sentiment time.Duration
	Movers    time.Duration
}

// DefaultCacheTTLs fills zero fields with sensible lifetimes.
func (t CacheTTLs) withDefaults() CacheTTLs {
	def := func(d *time.Duration, v time.Duration) {
		if *d <= 0 {
			*d = v
		}
	}
	def(&t.Prices, time.Minute)
	def(&t.Summary, 5*time.Minute)
	def(&t.Compare, 5*time.Minute)
	def(&t.Forecast, 15*time.Minute)
	def(&t.Sentiment, 5*time.Minute)
	def(&t.Movers, 5*time.Minute)
	return t
}

// MarketAnalytics answers read-side analytics queries over stored bars.
type MarketAnalytics struct {
	store domrepo.PriceStore
	cache pkgcache.Service
	ttls  CacheTTLs
	l     *applogger.Logger
}

// NewMarketAnalytics creates the analytics usecase. cache may be nil to
// disable result caching.
func NewMarketAnalytics(store domrepo.PriceStore, cache pkgcache.Service, ttls CacheTTLs, l *applogger.Logger) *MarketAnalytics {
	return &MarketAnalytics{store: store, cache: cache, ttls: ttls.withDefaults(), l: l}
}

// Companies lists all tracked companies.
func (m *MarketAnalytics) Companies(ctx context.Context) ([]models.Company, error) {
	return m.store.ListCompanies(ctx)
}

// Prices returns the most recent days of indicator bars in ascending order.
func (m *MarketAnalytics) Prices(ctx context.Context, symbol string, days int) ([]models.IndicatorPoint, error) {
	symbol = util.NormalizeSymbol(symbol)
	key := pkgcache.GenerateKeyWithParams("prices", symbol, days)

	var cached []models.IndicatorPoint
	if m.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	bars, err := m.store.RecentBars(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	m.cacheSet(ctx, key, bars, m.ttls.Prices)
	return bars, nil
}

// Summary computes trailing 52-week statistics for a symbol.
func (m *MarketAnalytics) Summary(ctx context.Context, symbol string) (*models.SummaryResult, error) {
	symbol = util.NormalizeSymbol(symbol)
	key := pkgcache.GenerateKey("summary", symbol)

	var cached models.SummaryResult
	if m.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	company, bars, err := m.symbolBars(ctx, symbol, analytics.SummaryWindow)
	if err != nil {
		return nil, err
	}
	res, err := analytics.WindowedSummary(company, bars)
	if err != nil {
		return nil, err
	}
	m.cacheSet(ctx, key, res, m.ttls.Summary)
	return res, nil
}

// Compare correlates two symbols and reports their volatility ratio.
// Misaligned or degenerate series yield nil fields rather than errors.
func (m *MarketAnalytics) Compare(ctx context.Context, symbol1, symbol2 string) (*models.CompareResult, error) {
	symbol1 = util.NormalizeSymbol(symbol1)
	symbol2 = util.NormalizeSymbol(symbol2)
	key := pkgcache.GenerateKeyWithParams("compare", symbol1, symbol2)

	var cached models.CompareResult
	if m.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	c1, bars1, err := m.symbolBars(ctx, symbol1, analytics.SummaryWindow)
	if err != nil {
		return nil, err
	}
	c2, bars2, err := m.symbolBars(ctx, symbol2, analytics.SummaryWindow)
	if err != nil {
		return nil, err
	}

	s1, err := analytics.WindowedSummary(c1, bars1)
	if err != nil {
		return nil, err
	}
	s2, err := analytics.WindowedSummary(c2, bars2)
	if err != nil {
		return nil, err
	}

	res := &models.CompareResult{
		Stock1:          s1,
		Stock2:          s2,
		VolatilityRatio: analytics.VolatilityRatio(bars1, bars2),
	}
	if corr, err := analytics.Correlation(bars1, bars2); err == nil {
		r := roundTo(corr, 3)
		res.Correlation = &r
	} else if m.l != nil {
		m.l.Debug("correlation unavailable",
			applogger.String("symbol1", symbol1),
			applogger.String("symbol2", symbol2),
			applogger.Error(err),
		)
	}
	m.cacheSet(ctx, key, res, m.ttls.Compare)
	return res, nil
}

// TopMovers ranks daily returns on the latest trading day.
func (m *MarketAnalytics) TopMovers(ctx context.Context, limit int) (*models.TopMoversResult, error) {
	key := pkgcache.GenerateKeyWithParams("movers", limit)

	var cached models.TopMoversResult
	if m.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	day, err := m.store.LatestTradingDay(ctx)
	if err != nil {
		return nil, err
	}
	if day == nil {
		return nil, analytics.ErrInsufficientData
	}
	bars, err := m.store.BarsOnDay(ctx, *day)
	if err != nil {
		return nil, err
	}

	names := map[string]string{}
	if companies, err := m.store.ListCompanies(ctx); err == nil {
		for _, c := range companies {
			names[c.Symbol] = c.Name
		}
	}

	entries := make([]models.MoverEntry, 0, len(bars))
	for _, b := range bars {
		if b.DailyReturn == nil {
			continue
		}
		entries = append(entries, models.MoverEntry{
			Symbol:    b.Symbol,
			Name:      names[b.Symbol],
			Close:     b.Close,
			ChangePct: roundTo(*b.DailyReturn*100, 2),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ChangePct > entries[j].ChangePct })

	if limit > len(entries) {
		limit = len(entries)
	}
	res := &models.TopMoversResult{Date: *day}
	res.Gainers = append(res.Gainers, entries[:limit]...)
	for i := 0; i < limit; i++ {
		res.Losers = append(res.Losers, entries[len(entries)-1-i])
	}
	m.cacheSet(ctx, key, res, m.ttls.Movers)
	return res, nil
}

// Forecast fits a linear model over up to days of history.
func (m *MarketAnalytics) Forecast(ctx context.Context, symbol string, days int) (*models.ForecastResult, error) {
	symbol = util.NormalizeSymbol(symbol)
	key := pkgcache.GenerateKeyWithParams("forecast", symbol, days)

	var cached models.ForecastResult
	if m.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	_, bars, err := m.symbolBars(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	res, err := analytics.Forecast(symbol, bars)
	if err != nil {
		return nil, err
	}
	m.cacheSet(ctx, key, res, m.ttls.Forecast)
	return res, nil
}

// Sentiment blends the latest indicators into a composite score.
func (m *MarketAnalytics) Sentiment(ctx context.Context, symbol string) (*models.SentimentResult, error) {
	symbol = util.NormalizeSymbol(symbol)
	key := pkgcache.GenerateKey("sentiment", symbol)

	var cached models.SentimentResult
	if m.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	company, bars, err := m.symbolBars(ctx, symbol, analytics.SummaryWindow)
	if err != nil {
		return nil, err
	}
	summary, err := analytics.WindowedSummary(company, bars)
	if err != nil {
		return nil, err
	}
	last := bars[len(bars)-1]

	in := analytics.SentimentInputs{
		RSI:        last.RSI14,
		Volatility: last.Volatility20d,
		Close:      &last.Close,
		MA7:        last.MA7,
		MA20:       last.MA20,
	}
	change := summary.Change52wPct
	in.ChangePct = &change

	res := analytics.Score(symbol, in)
	m.cacheSet(ctx, key, res, m.ttls.Sentiment)
	return res, nil
}

// Analytics returns the latest-day indicator readout with labels.
func (m *MarketAnalytics) Analytics(ctx context.Context, symbol string) (*models.AnalyticsSnapshot, error) {
	symbol = util.NormalizeSymbol(symbol)

	last, err := m.store.LatestBar(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}

	// The two label fields are fixed captions describing the metrics, not
	// per-value classifications.
	snap := &models.AnalyticsSnapshot{
		Symbol:           symbol,
		Date:             last.Date,
		Close:            last.Close,
		MA7:              last.MA7,
		MA20:             last.MA20,
		RSI14:            last.RSI14,
		Volatility20d:    last.Volatility20d,
		DailyReturnLabel: "% change from open",
		VolatilityLabel:  "Annualized 20-day volatility",
	}
	if last.DailyReturn != nil {
		pct := roundTo(*last.DailyReturn*100, 2)
		snap.DailyReturnPct = &pct
	}
	if last.RSI14 != nil {
		snap.RSIInterpretation = analytics.InterpretRSI(*last.RSI14)
	}
	if last.Volatility20d != nil {
		snap.VolatilityLevel = analytics.VolatilityLevel(*last.Volatility20d)
	}
	return snap, nil
}

func (m *MarketAnalytics) symbolBars(ctx context.Context, symbol string, n int) (models.Company, []models.IndicatorPoint, error) {
	bars, err := m.store.RecentBars(ctx, symbol, n)
	if err != nil {
		return models.Company{}, nil, err
	}
	if len(bars) == 0 {
		return models.Company{}, nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	company := models.Company{Symbol: symbol}
	if c, err := m.store.GetCompany(ctx, symbol); err == nil && c != nil {
		company = *c
	}
	return company, bars, nil
}

// Cached payloads are stored as JSON strings so every cache backend
// round-trips them the same way.
func (m *MarketAnalytics) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if m.cache == nil {
		return false
	}
	var payload string
	if err := m.cache.Get(ctx, key, &payload); err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		return false
	}
	return true
}

func (m *MarketAnalytics) cacheSet(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if m.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := m.cache.Set(ctx, key, string(b), ttl); err != nil && m.l != nil {
		m.l.Debug("cache set failed", applogger.String("key", key), applogger.Error(err))
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
