package repository

import (
	"context"

	"SentimentOracle/internal/domain/models"
	"SentimentOracle/internal/domain/repository"
	pkgkafka "SentimentOracle/pkg/kafka"
)

// KafkaSignalPublisher implements SignalPublisher for Kafka.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSignalPublisher creates Kafka publisher.
func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) *KafkaSignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

type signalMessage struct {
	ID     string  `json:"id"`
	Symbol string  `json:"symbol"`
	Signal string  `json:"signal"`
	Score  float64 `json:"score"`
	T      int64   `json:"t"`
}

// Publish sends ev keyed by symbol so a symbol's signals stay ordered.
func (p *KafkaSignalPublisher) Publish(ctx context.Context, ev models.SignalEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.Symbol), signalMessage{
		ID:     ev.ID,
		Symbol: ev.Symbol,
		Signal: string(ev.Signal),
		Score:  ev.Score,
		T:      ev.Time.UnixMilli(),
	})
}

func (p *KafkaSignalPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopSignalPublisher drops every event. Used when Kafka is disabled.
type NoopSignalPublisher struct{}

func (NoopSignalPublisher) Publish(context.Context, models.SignalEvent) error { return nil }
func (NoopSignalPublisher) Close() error                                      { return nil }

var (
	_ repository.SignalPublisher = (*KafkaSignalPublisher)(nil)
	_ repository.SignalPublisher = NoopSignalPublisher{}
)
