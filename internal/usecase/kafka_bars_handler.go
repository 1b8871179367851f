package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"EquityPulse/internal/domain/models"
	domrepo "EquityPulse/internal/domain/repository"
	"EquityPulse/internal/repository"
	pkgkafka "EquityPulse/pkg/kafka"
	"EquityPulse/pkg/util"
)

// KafkaBarsHandler consumes published daily bars and persists them. It is
// the write side of the kafka backend mode.
type KafkaBarsHandler struct {
	topic   string
	store   domrepo.PriceStore
	metrics domrepo.Metrics
}

func NewKafkaBarsHandler(topic string, store domrepo.PriceStore, metrics domrepo.Metrics) *KafkaBarsHandler {
	return &KafkaBarsHandler{topic: topic, store: store, metrics: metrics}
}

func (h *KafkaBarsHandler) Topic() string { return h.topic }

func (h *KafkaBarsHandler) Handle(ctx context.Context, b []byte) error {
	var ev repository.BarEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	date, ok := util.ParseDay(ev.Date)
	if !ok {
		h.metrics.RecordError("consumer_bad_date")
		return fmt.Errorf("bad bar date %q for %s", ev.Date, ev.Symbol)
	}

	bar := models.IndicatorPoint{
		PricePoint: models.PricePoint{
			Symbol: ev.Symbol,
			Date:   date,
			Open:   ev.Open,
			High:   ev.High,
			Low:    ev.Low,
			Close:  ev.Close,
			Volume: ev.Volume,
		},
		Indicators: models.Indicators{
			DailyReturn:   ev.DailyReturn,
			MA7:           ev.MA7,
			MA20:          ev.MA20,
			Volatility20d: ev.Volatility20d,
			RSI14:         ev.RSI14,
		},
	}

	start := time.Now()
	err := h.store.ReplaceDailyBars(ctx, ev.Symbol, []models.IndicatorPoint{bar})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordBarsStored("clickhouse", ev.Symbol, 1)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaBarsHandler)(nil)
