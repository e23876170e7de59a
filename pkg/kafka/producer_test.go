package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestProducer_PublishEncodesJSON(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, "snappy")

	err := p.Publish(context.Background(), "signals", []byte("SOLUSDT"), map[string]string{"signal": "Buy"})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "signals", w.msgs[0].Topic)
	assert.Equal(t, []byte("SOLUSDT"), w.msgs[0].Key)

	var got map[string]string
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "Buy", got["signal"])
}

func TestProducer_PublishRawValues(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, "snappy")

	require.NoError(t, p.Publish(context.Background(), "t", nil, "plain"))
	require.NoError(t, p.Publish(context.Background(), "t", nil, []byte("bytes")))
	assert.Equal(t, "plain", string(w.msgs[0].Value))
	assert.Equal(t, "bytes", string(w.msgs[1].Value))
}

func TestProducer_PublishWrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := NewProducerWithWriter(&fakeWriter{err: boom}, "snappy")

	err := p.Publish(context.Background(), "t", nil, "x")
	assert.ErrorIs(t, err, boom)
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, NewProducerWithWriter(w, "").Close())
	assert.True(t, w.closed)
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)
}
