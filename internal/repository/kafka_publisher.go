package repository

import (
	"context"

	"EquityPulse/internal/domain/models"
	"EquityPulse/internal/domain/repository"
	pkgkafka "EquityPulse/pkg/kafka"
	"EquityPulse/pkg/util"
)

// BarEvent is the wire format for a daily bar published to Kafka.
type BarEvent struct {
	Symbol        string   `json:"symbol"`
	Date          string   `json:"date"`
	Open          float64  `json:"open"`
	High          float64  `json:"high"`
	Low           float64  `json:"low"`
	Close         float64  `json:"close"`
	Volume        *int64   `json:"volume,omitempty"`
	DailyReturn   *float64 `json:"daily_return,omitempty"`
	MA7           *float64 `json:"ma_7,omitempty"`
	MA20          *float64 `json:"ma_20,omitempty"`
	Volatility20d *float64 `json:"volatility_20d,omitempty"`
	RSI14         *float64 `json:"rsi_14,omitempty"`
}

// KafkaBarPublisher publishes indicator bars to a Kafka topic, keyed by
// symbol so a partition preserves per-symbol order.
type KafkaBarPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaBarPublisher creates a Kafka bar publisher.
func NewKafkaBarPublisher(producer *pkgkafka.Producer, topic string) repository.BarPublisher {
	return &KafkaBarPublisher{producer: producer, topic: topic}
}

func (p *KafkaBarPublisher) PublishBars(ctx context.Context, symbol string, bars []models.IndicatorPoint) error {
	if len(bars) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(bars))
	for i, b := range bars {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(symbol),
			Value: toBarEvent(symbol, b),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaBarPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func toBarEvent(symbol string, b models.IndicatorPoint) BarEvent {
	return BarEvent{
		Symbol:        symbol,
		Date:          util.DayString(b.Date),
		Open:          b.Open,
		High:          b.High,
		Low:           b.Low,
		Close:         b.Close,
		Volume:        b.Volume,
		DailyReturn:   b.DailyReturn,
		MA7:           b.MA7,
		MA20:          b.MA20,
		Volatility20d: b.Volatility20d,
		RSI14:         b.RSI14,
	}
}
