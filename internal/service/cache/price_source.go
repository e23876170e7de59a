package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"SentimentOracle/internal/domain/models"
	drepo "SentimentOracle/internal/domain/repository"
	applogger "SentimentOracle/pkg/logger"
)

// PriceSource caches candle series of an inner PriceSource per
// (symbol, interval, limit). Errors are never cached and cache failures
// fall through to the inner source.
type PriceSource struct {
	inner  drepo.PriceSource
	store  BytesCache
	symbol string
	ttl    time.Duration
	logger *applogger.Logger
}

func NewPriceSource(inner drepo.PriceSource, store BytesCache, symbol string, ttl time.Duration, log *applogger.Logger) *PriceSource {
	if log == nil {
		log = applogger.Nop()
	}
	return &PriceSource{inner: inner, store: store, symbol: symbol, ttl: ttl, logger: log}
}

func (p *PriceSource) key(tf drepo.Timeframe) string {
	return fmt.Sprintf("klines:%s:%s:%d", p.symbol, tf.Interval, tf.Limit)
}

func (p *PriceSource) FetchPrices(ctx context.Context, tf drepo.Timeframe) (models.PriceSeries, error) {
	key := p.key(tf)

	if b, ok, err := p.store.GetBytes(ctx, key); err != nil {
		p.logger.Warn("price cache read failed", applogger.String("key", key), applogger.Error(err))
	} else if ok {
		var series models.PriceSeries
		if err := json.Unmarshal(b, &series); err == nil {
			return series, nil
		}
	}

	series, err := p.inner.FetchPrices(ctx, tf)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(series); err == nil {
		if err := p.store.SetBytes(ctx, key, b, p.ttl); err != nil {
			p.logger.Warn("price cache write failed", applogger.String("key", key), applogger.Error(err))
		}
	}
	return series, nil
}

var _ drepo.PriceSource = (*PriceSource)(nil)
