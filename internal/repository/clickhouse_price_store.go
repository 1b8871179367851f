package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"EquityPulse/internal/domain/models"
	pkgch "EquityPulse/pkg/clickhouse"
	applogger "EquityPulse/pkg/logger"
)

// CHPriceStore implements PriceStore backed by ClickHouse. Bars live in a
// ReplacingMergeTree keyed by (symbol, date), so re-ingesting a series is
// an idempotent full replace.
type CHPriceStore struct {
	db       *sql.DB
	database string
	l        *applogger.Logger
}

func NewCHPriceStore(ch *pkgch.Client, database string) *CHPriceStore {
	if database == "" {
		database = "equitypulse"
	}
	return &CHPriceStore{db: ch.DB(), database: database}
}

// SetLogger injects a structured logger.
func (s *CHPriceStore) SetLogger(l *applogger.Logger) { s.l = l }

// Schema returns idempotent DDL for the store.
func Schema(database string) []string {
	if database == "" {
		database = "equitypulse"
	}
	return []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, database),
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s.companies (
    symbol     String,
    name       String,
    sector     String,
    updated_at DateTime DEFAULT now()
) ENGINE = ReplacingMergeTree(updated_at)
ORDER BY symbol`, database),
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s.daily_prices (
    symbol         String,
    date           Date,
    open           Float64,
    high           Float64,
    low            Float64,
    close          Float64,
    volume         Nullable(Int64),
    daily_return   Nullable(Float64),
    ma_7           Nullable(Float64),
    ma_20          Nullable(Float64),
    volatility_20d Nullable(Float64),
    rsi_14         Nullable(Float64),
    updated_at     DateTime DEFAULT now()
) ENGINE = ReplacingMergeTree(updated_at)
ORDER BY (symbol, date)`, database),
	}
}

func (s *CHPriceStore) UpsertCompany(ctx context.Context, c models.Company) error {
	q := fmt.Sprintf("INSERT INTO %s.companies (symbol, name, sector) VALUES (?, ?, ?)", s.database)
	if _, err := s.db.ExecContext(ctx, q, c.Symbol, c.Name, c.Sector); err != nil {
		return fmt.Errorf("upsert company %s: %w", c.Symbol, err)
	}
	return nil
}

func (s *CHPriceStore) ListCompanies(ctx context.Context) ([]models.Company, error) {
	q := fmt.Sprintf("SELECT symbol, name, sector FROM %s.companies FINAL ORDER BY symbol", s.database)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	out := make([]models.Company, 0, 32)
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(&c.Symbol, &c.Name, &c.Sector); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *CHPriceStore) GetCompany(ctx context.Context, symbol string) (*models.Company, error) {
	q := fmt.Sprintf("SELECT symbol, name, sector FROM %s.companies FINAL WHERE symbol = ? LIMIT 1", s.database)
	var c models.Company
	err := s.db.QueryRowContext(ctx, q, symbol).Scan(&c.Symbol, &c.Name, &c.Sector)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get company %s: %w", symbol, err)
	}
	return &c, nil
}

func (s *CHPriceStore) ReplaceDailyBars(ctx context.Context, symbol string, bars []models.IndicatorPoint) error {
	if len(bars) == 0 {
		return nil
	}
	start := time.Now()

	// Chunked multi-row VALUES to reduce round-trips.
	const chunkSize = 2000
	for lo := 0; lo < len(bars); lo += chunkSize {
		hi := lo + chunkSize
		if hi > len(bars) {
			hi = len(bars)
		}

		values := make([]string, 0, hi-lo)
		args := make([]interface{}, 0, (hi-lo)*12)
		for _, b := range bars[lo:hi] {
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				symbol,
				b.Date,
				b.Open,
				b.High,
				b.Low,
				b.Close,
				nullInt64(b.Volume),
				nullFloat(b.DailyReturn),
				nullFloat(b.MA7),
				nullFloat(b.MA20),
				nullFloat(b.Volatility20d),
				nullFloat(b.RSI14),
			)
		}
		q := fmt.Sprintf(
			"INSERT INTO %s.daily_prices (symbol, date, open, high, low, close, volume, daily_return, ma_7, ma_20, volatility_20d, rsi_14) VALUES %s",
			s.database, strings.Join(values, ","),
		)
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("replace bars %s: %w", symbol, err)
		}
	}

	if s.l != nil {
		s.l.Info("clickhouse bars replaced",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(bars)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

const barColumns = "symbol, date, open, high, low, close, volume, daily_return, ma_7, ma_20, volatility_20d, rsi_14"

func (s *CHPriceStore) RecentBars(ctx context.Context, symbol string, n int) ([]models.IndicatorPoint, error) {
	q := fmt.Sprintf(`
        SELECT %s
        FROM %s.daily_prices FINAL
        WHERE symbol = ?
        ORDER BY date DESC
        LIMIT ?
    `, barColumns, s.database)
	rows, err := s.db.QueryContext(ctx, q, symbol, n)
	if err != nil {
		return nil, fmt.Errorf("recent bars %s: %w", symbol, err)
	}
	defer rows.Close()

	out, err := scanBars(rows, n)
	if err != nil {
		return nil, err
	}
	// reverse to ASC
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *CHPriceStore) BarsBetween(ctx context.Context, symbol string, from, to time.Time) ([]models.IndicatorPoint, error) {
	q := fmt.Sprintf(`
        SELECT %s
        FROM %s.daily_prices FINAL
        WHERE symbol = ? AND date >= ? AND date <= ?
        ORDER BY date ASC
    `, barColumns, s.database)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("bars between %s: %w", symbol, err)
	}
	defer rows.Close()
	return scanBars(rows, 256)
}

func (s *CHPriceStore) LatestBar(ctx context.Context, symbol string) (*models.IndicatorPoint, error) {
	bars, err := s.RecentBars(ctx, symbol, 1)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, nil
	}
	return &bars[0], nil
}

func (s *CHPriceStore) LatestTradingDay(ctx context.Context) (*time.Time, error) {
	q := fmt.Sprintf("SELECT max(date) FROM %s.daily_prices", s.database)
	var d time.Time
	err := s.db.QueryRowContext(ctx, q).Scan(&d)
	if err == sql.ErrNoRows || (err == nil && d.IsZero()) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest trading day: %w", err)
	}
	return &d, nil
}

func (s *CHPriceStore) BarsOnDay(ctx context.Context, day time.Time) ([]models.IndicatorPoint, error) {
	q := fmt.Sprintf(`
        SELECT %s
        FROM %s.daily_prices FINAL
        WHERE date = ?
        ORDER BY symbol ASC
    `, barColumns, s.database)
	rows, err := s.db.QueryContext(ctx, q, day)
	if err != nil {
		return nil, fmt.Errorf("bars on day: %w", err)
	}
	defer rows.Close()
	return scanBars(rows, 64)
}

func scanBars(rows *sql.Rows, hint int) ([]models.IndicatorPoint, error) {
	if hint < 1 {
		hint = 1
	}
	out := make([]models.IndicatorPoint, 0, hint)
	for rows.Next() {
		var (
			b      models.IndicatorPoint
			volume sql.NullInt64
			ret    sql.NullFloat64
			ma7    sql.NullFloat64
			ma20   sql.NullFloat64
			vol20  sql.NullFloat64
			rsi    sql.NullFloat64
		)
		if err := rows.Scan(&b.Symbol, &b.Date, &b.Open, &b.High, &b.Low, &b.Close,
			&volume, &ret, &ma7, &ma20, &vol20, &rsi); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		if volume.Valid {
			v := volume.Int64
			b.Volume = &v
		}
		b.DailyReturn = floatPtr(ret)
		b.MA7 = floatPtr(ma7)
		b.MA20 = floatPtr(ma20)
		b.Volatility20d = floatPtr(vol20)
		b.RSI14 = floatPtr(rsi)
		out = append(out, b)
	}
	return out, rows.Err()
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
