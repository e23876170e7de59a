package repository

import (
	"context"

	"SentimentOracle/internal/domain/models"
)

// PriceSource provides candle close prices for a timeframe.
type PriceSource interface {
	FetchPrices(ctx context.Context, tf Timeframe) (models.PriceSeries, error)
}

// SignalLog is the append-only in-session signal history.
type SignalLog interface {
	Append(ev models.SignalEvent) error
	ReadAll() []models.SignalEvent
}

// SignalPublisher forwards appended events to an outside consumer.
type SignalPublisher interface {
	Publish(ctx context.Context, ev models.SignalEvent) error
	Close() error
}

type Metrics interface {
	RecordCycle(status string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordSentiment(score float64, signal models.Signal)
	RecordLatency(op string, seconds float64)
}
