package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"SentimentOracle/internal/domain/models"
	pkgkafka "SentimentOracle/pkg/kafka"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(i int, s models.Signal) models.SignalEvent {
	return models.SignalEvent{
		ID:     fmt.Sprintf("ev-%d", i),
		Time:   time.Date(2025, 1, 1, 9, i, 0, 0, time.UTC),
		Signal: s,
		Symbol: "SOLUSDT",
	}
}

func TestMemorySignalLog_AppendReadAll(t *testing.T) {
	l := NewMemorySignalLog(0)
	require.NoError(t, l.Append(event(0, models.SignalBuy)))
	require.NoError(t, l.Append(event(1, models.SignalHold)))

	got := l.ReadAll()
	require.Len(t, got, 2)
	assert.Equal(t, "ev-0", got[0].ID)
	assert.Equal(t, "ev-1", got[1].ID)
}

func TestMemorySignalLog_ReadAllReturnsCopy(t *testing.T) {
	l := NewMemorySignalLog(0)
	require.NoError(t, l.Append(event(0, models.SignalBuy)))

	got := l.ReadAll()
	got[0].Signal = models.SignalSell

	assert.Equal(t, models.SignalBuy, l.ReadAll()[0].Signal)
}

func TestMemorySignalLog_RejectsInvalidSignal(t *testing.T) {
	l := NewMemorySignalLog(0)
	err := l.Append(event(0, ""))
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
	assert.Empty(t, l.ReadAll())
}

func TestMemorySignalLog_CapacityKeepsNewest(t *testing.T) {
	l := NewMemorySignalLog(3)
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Append(event(i, models.SignalHold)))
	}

	got := l.ReadAll()
	require.Len(t, got, 3)
	assert.Equal(t, "ev-2", got[0].ID)
	assert.Equal(t, "ev-4", got[2].ID)
}

func TestMemorySignalLog_ConcurrentReaders(t *testing.T) {
	l := NewMemorySignalLog(0)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = l.Append(event(i%60, models.SignalBuy))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = l.ReadAll()
		}
	}()
	wg.Wait()
	assert.Len(t, l.ReadAll(), 200)
}

type captureWriter struct{ msgs []kafka.Message }

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error { return nil }

func TestKafkaSignalPublisher_Publish(t *testing.T) {
	w := &captureWriter{}
	p := NewKafkaSignalPublisher(pkgkafka.NewProducerWithWriter(w, "snappy"), "sentiment.signals")

	ev := event(5, models.SignalSell)
	ev.Score = -0.41
	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "sentiment.signals", w.msgs[0].Topic)
	assert.Equal(t, "SOLUSDT", string(w.msgs[0].Key))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "Sell", got["signal"])
	assert.Equal(t, -0.41, got["score"])
	assert.Equal(t, float64(ev.Time.UnixMilli()), got["t"])
	require.NoError(t, p.Close())
}

func TestNoopSignalPublisher(t *testing.T) {
	var p NoopSignalPublisher
	assert.NoError(t, p.Publish(context.Background(), event(0, models.SignalBuy)))
	assert.NoError(t, p.Close())
}
