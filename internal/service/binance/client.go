package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"SentimentOracle/internal/domain/models"
	drepo "SentimentOracle/internal/domain/repository"
	"SentimentOracle/internal/service/ratelimit"
	xhttp "SentimentOracle/pkg/http"
	applogger "SentimentOracle/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
)

const (
	DefaultBaseURL = "https://api.binance.com"
	DefaultSymbol  = "SOLUSDT"
	klinesPath     = "/api/v3/klines"
)

// Config controls the kline client.
type Config struct {
	BaseURL   string
	Symbol    string
	Timeout   time.Duration
	RateLimit float64
	Burst     int
	Breaker   BreakerConfig
}

// BreakerConfig mirrors gobreaker settings.
type BreakerConfig struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// Client fetches candle close prices from the Binance REST API.
type Client struct {
	cfg     Config
	http    *xhttp.Client
	limiter *ratelimit.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  *applogger.Logger
}

// New creates a Binance PriceSource.
func New(cfg Config, httpClient *xhttp.Client, log *applogger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Symbol == "" {
		cfg.Symbol = DefaultSymbol
	}
	if cfg.Breaker.ConsecutiveFailures == 0 {
		cfg.Breaker.ConsecutiveFailures = 3
	}
	if httpClient == nil {
		httpClient = xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout))
	}

	st := gobreaker.Settings{
		Name:         "binance",
		MaxRequests:  cfg.Breaker.MaxRequests,
		Interval:     cfg.Breaker.Interval,
		Timeout:      cfg.Breaker.Timeout,
		IsSuccessful: breakerSuccess,
	}
	trip := cfg.Breaker.ConsecutiveFailures
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= trip
	}
	if log != nil {
		st.OnStateChange = func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				applogger.String("breaker", name),
				applogger.String("from", from.String()),
				applogger.String("to", to.String()))
		}
	}

	var lim *ratelimit.Limiter
	if cfg.RateLimit > 0 {
		lim = ratelimit.New(cfg.RateLimit, cfg.Burst)
	}

	return &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: lim,
		breaker: gobreaker.NewCircuitBreaker(st),
		logger:  log,
	}
}

// Symbol returns the traded pair this client queries.
func (c *Client) Symbol() string { return c.cfg.Symbol }

// FetchPrices returns the close prices for tf, oldest first.
// Every failure is reported as *models.PriceFetchError.
func (c *Client) FetchPrices(ctx context.Context, tf drepo.Timeframe) (models.PriceSeries, error) {
	fail := func(err error) (models.PriceSeries, error) {
		return nil, &models.PriceFetchError{Symbol: c.cfg.Symbol, Interval: tf.Interval, Err: err}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, "binance"); err != nil {
			return fail(fmt.Errorf("rate limit: %w", err))
		}
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		var raw []byte
		err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodGet,
			URL:    strings.TrimRight(c.cfg.BaseURL, "/") + klinesPath,
			QueryParams: map[string][]string{
				"symbol":   {c.cfg.Symbol},
				"interval": {tf.Interval},
				"limit":    {strconv.Itoa(tf.Limit)},
			},
		}, &raw)
		return raw, err
	})
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && c.logger != nil {
			c.logger.Warn("binance returned non-2xx",
				applogger.Int("status", se.StatusCode),
				applogger.String("interval", tf.Interval))
		}
		return fail(err)
	}

	series, err := ParseKlines(res.([]byte))
	if err != nil {
		return fail(err)
	}
	return series, nil
}

// breakerSuccess keeps request errors (4xx) from tripping the breaker. Rate
// limit and ban responses (429, 418) still count as failures.
func breakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var se *xhttp.StatusError
	if !errors.As(err, &se) {
		return false
	}
	switch se.StatusCode {
	case http.StatusTooManyRequests, http.StatusTeapot:
		return false
	}
	return se.StatusCode >= 400 && se.StatusCode < 500
}

// ParseKlines decodes the kline array payload. Only the open time (index 0,
// epoch ms) and the close (index 4, decimal string) are kept.
func ParseKlines(body []byte) (models.PriceSeries, error) {
	var rows [][]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode klines: %w", err)
	}

	out := make(models.PriceSeries, 0, len(rows))
	for i, row := range rows {
		if len(row) < 5 {
			return nil, fmt.Errorf("kline %d: expected at least 5 fields, got %d", i, len(row))
		}
		var openMs int64
		if err := json.Unmarshal(row[0], &openMs); err != nil {
			return nil, fmt.Errorf("kline %d: open time: %w", i, err)
		}
		closePx, err := parseDecimal(row[4])
		if err != nil {
			return nil, fmt.Errorf("kline %d: close: %w", i, err)
		}
		out = append(out, models.PricePoint{
			OpenTime: time.UnixMilli(openMs).UTC(),
			Close:    closePx,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].OpenTime.Before(out[j].OpenTime) })
	return out, nil
}

// parseDecimal accepts both "123.45" and 123.45.
func parseDecimal(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		s = string(raw)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

var _ drepo.PriceSource = (*Client)(nil)
