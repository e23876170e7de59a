package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"SentimentOracle/internal/domain/models"
	drepo "SentimentOracle/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCache_Expiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), 30*time.Second))
	b, ok, err := c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	now = now.Add(31 * time.Second)
	_, ok, _ = c.GetBytes(ctx, "k")
	assert.False(t, ok)
	assert.Empty(t, c.m)
}

func TestTTLCache_ZeroTTLNeverExpires(t *testing.T) {
	now := time.Now()
	c := NewTTLCache()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), 0))
	now = now.Add(24 * time.Hour)
	_, ok, _ := c.GetBytes(ctx, "k")
	assert.True(t, ok)
}

func TestTTLCache_ReturnsCopies(t *testing.T) {
	c := NewTTLCache()
	ctx := context.Background()
	in := []byte("abc")
	require.NoError(t, c.SetBytes(ctx, "k", in, time.Minute))
	in[0] = 'x'

	out, _, _ := c.GetBytes(ctx, "k")
	assert.Equal(t, "abc", string(out))
	out[0] = 'y'
	again, _, _ := c.GetBytes(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestRedisCache_UnreachableReturnsError(t *testing.T) {
	r := NewRedisCache(RedisConfig{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
	defer r.Close()

	_, ok, err := r.GetBytes(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, ok)
}

type countingSource struct {
	calls  int
	series models.PriceSeries
	err    error
}

func (s *countingSource) FetchPrices(context.Context, drepo.Timeframe) (models.PriceSeries, error) {
	s.calls++
	return s.series, s.err
}

type brokenStore struct{}

func (brokenStore) GetBytes(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("down")
}

func (brokenStore) SetBytes(context.Context, string, []byte, time.Duration) error {
	return errors.New("down")
}

func TestPriceSource_HitsInnerOncePerKey(t *testing.T) {
	inner := &countingSource{series: models.PriceSeries{
		{OpenTime: time.UnixMilli(1700000000000).UTC(), Close: 59.75},
	}}
	p := NewPriceSource(inner, NewTTLCache(), "SOLUSDT", time.Minute, nil)
	ctx := context.Background()
	tf := drepo.DefaultTimeframe()

	first, err := p.FetchPrices(ctx, tf)
	require.NoError(t, err)
	second, err := p.FetchPrices(ctx, tf)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	require.Len(t, second, 1)
	assert.True(t, first[0].OpenTime.Equal(second[0].OpenTime))
	assert.Equal(t, first[0].Close, second[0].Close)

	other, _ := drepo.LookupTimeframe("1h")
	_, err = p.FetchPrices(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestPriceSource_ErrorsAreNotCached(t *testing.T) {
	inner := &countingSource{err: &models.PriceFetchError{Symbol: "SOLUSDT", Interval: "15m", Err: errors.New("x")}}
	p := NewPriceSource(inner, NewTTLCache(), "SOLUSDT", time.Minute, nil)

	_, err := p.FetchPrices(context.Background(), drepo.DefaultTimeframe())
	require.Error(t, err)
	_, err = p.FetchPrices(context.Background(), drepo.DefaultTimeframe())
	require.Error(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestPriceSource_BrokenStoreFallsThrough(t *testing.T) {
	inner := &countingSource{series: models.PriceSeries{{Close: 1}}}
	p := NewPriceSource(inner, brokenStore{}, "SOLUSDT", time.Minute, nil)

	series, err := p.FetchPrices(context.Background(), drepo.DefaultTimeframe())
	require.NoError(t, err)
	assert.Len(t, series, 1)
}
