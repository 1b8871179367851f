package usecase

import (
	"context"
	"fmt"
	"time"

	"EquityPulse/internal/domain/models"
	domrepo "EquityPulse/internal/domain/repository"
	"EquityPulse/internal/service/marketdata"
	"EquityPulse/internal/services/analytics"
	applogger "EquityPulse/pkg/logger"
	"EquityPulse/pkg/util"

	"github.com/robfig/cron/v3"
)

// Ingestor pulls daily history for the configured symbols, recomputes
// every indicator over the full series, and replaces the stored series.
// Depending on the backend it writes to ClickHouse directly or publishes
// bars to Kafka for the consumer side to persist.
type Ingestor struct {
	client    *marketdata.Client
	store     domrepo.PriceStore
	publisher domrepo.BarPublisher
	metrics   domrepo.Metrics
	l         *applogger.Logger

	symbols     []string
	historyDays int
	schedule    string
	runOnStart  bool

	cron *cron.Cron
}

// IngestorOption configures Ingestor.
type IngestorOption func(*Ingestor)

// WithPublisher routes ingested bars to a Kafka publisher instead of the
// store.
func WithPublisher(p domrepo.BarPublisher) IngestorOption {
	return func(i *Ingestor) {
		i.publisher = p
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m domrepo.Metrics) IngestorOption {
	return func(i *Ingestor) {
		i.metrics = m
	}
}

// WithSchedule sets the cron expression for recurring ingestion.
func WithSchedule(expr string, runOnStart bool) IngestorOption {
	return func(i *Ingestor) {
		i.schedule = expr
		i.runOnStart = runOnStart
	}
}

// NewIngestor creates an ingestion usecase.
func NewIngestor(client *marketdata.Client, store domrepo.PriceStore, l *applogger.Logger, symbols []string, historyDays int, opts ...IngestorOption) *Ingestor {
	if historyDays <= 0 {
		historyDays = 365
	}
	ing := &Ingestor{
		client:      client,
		store:       store,
		l:           l,
		symbols:     symbols,
		historyDays: historyDays,
		schedule:    "0 22 * * 1-5",
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// Start schedules recurring ingestion and returns immediately. When
// runOnStart is set, one full run happens before scheduling.
func (i *Ingestor) Start(ctx context.Context) error {
	if i.runOnStart {
		if err := i.RunOnce(ctx); err != nil {
			i.l.Error("initial ingestion failed", applogger.Error(err))
		}
	}

	i.cron = cron.New()
	_, err := i.cron.AddFunc(i.schedule, func() {
		runCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := i.RunOnce(runCtx); err != nil {
			i.l.Error("scheduled ingestion failed", applogger.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule ingestion %q: %w", i.schedule, err)
	}
	i.cron.Start()
	i.l.Info("ingestion scheduled",
		applogger.String("schedule", i.schedule),
		applogger.Strings("symbols", i.symbols),
	)
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (i *Ingestor) Stop(ctx context.Context) error {
	if i.cron == nil {
		return nil
	}
	stopCtx := i.cron.Stop()
	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("ingestion stop: %w", ctx.Err())
	}
}

// RunOnce ingests every configured symbol. Per-symbol failures are logged
// and counted; a run only errors when every symbol fails.
func (i *Ingestor) RunOnce(ctx context.Context) error {
	start := time.Now()
	var failed int
	for _, symbol := range i.symbols {
		if err := i.IngestSymbol(ctx, symbol); err != nil {
			failed++
			i.l.Error("symbol ingestion failed",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
			if i.metrics != nil {
				i.metrics.RecordError("ingest")
			}
		}
	}
	if i.metrics != nil {
		i.metrics.RecordLatency("ingest_run", time.Since(start).Seconds())
	}
	i.l.Info("ingestion run finished",
		applogger.Int("symbols", len(i.symbols)),
		applogger.Int("failed", failed),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	if failed == len(i.symbols) && len(i.symbols) > 0 {
		return fmt.Errorf("all %d symbols failed", failed)
	}
	return nil
}

// IngestSymbol fetches one symbol's history, recomputes indicators over
// the whole series, and stores or publishes the result.
func (i *Ingestor) IngestSymbol(ctx context.Context, symbol string) error {
	symbol = util.NormalizeSymbol(symbol)

	company, raw, err := i.client.FetchHistory(ctx, symbol, i.historyDays)
	if err != nil {
		return err
	}
	raw = dropInvalidBars(raw, i.l)
	if len(raw) == 0 {
		return fmt.Errorf("no bars for %s", symbol)
	}

	bars := analytics.ComputeAll(raw)

	if err := i.store.UpsertCompany(ctx, company); err != nil {
		i.l.Warn("company upsert failed",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
	}

	backend := "clickhouse"
	if i.publisher != nil {
		backend = "kafka"
		if err := i.publisher.PublishBars(ctx, symbol, bars); err != nil {
			return fmt.Errorf("publish bars %s: %w", symbol, err)
		}
	} else {
		if err := i.store.ReplaceDailyBars(ctx, symbol, bars); err != nil {
			return err
		}
	}

	if i.metrics != nil {
		i.metrics.RecordBarsStored(backend, symbol, len(bars))
		i.metrics.RecordLastClose(symbol, bars[len(bars)-1].Close)
	}
	i.l.Info("symbol ingested",
		applogger.String("symbol", symbol),
		applogger.String("backend", backend),
		applogger.Int("bars", len(bars)),
	)
	return nil
}

// dropInvalidBars removes rows with non-positive prices or an inverted
// high/low range and collapses duplicate dates, keeping the last row seen.
func dropInvalidBars(bars []models.PricePoint, l *applogger.Logger) []models.PricePoint {
	out := bars[:0]
	byDay := make(map[string]int, len(bars))
	invalid, dupes := 0, 0
	for _, b := range bars {
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 || b.High < b.Low {
			invalid++
			continue
		}
		day := util.DayString(b.Date)
		if i, ok := byDay[day]; ok {
			out[i] = b
			dupes++
			continue
		}
		byDay[day] = len(out)
		out = append(out, b)
	}
	if (invalid > 0 || dupes > 0) && l != nil {
		l.Warn("dropped invalid bars",
			applogger.Int("invalid", invalid),
			applogger.Int("duplicate_dates", dupes),
		)
	}
	return out
}
