package di

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	domrepo "SentimentOracle/internal/domain/repository"
	domsvc "SentimentOracle/internal/domain/service"
	"SentimentOracle/internal/handler/api"
	"SentimentOracle/internal/handler/web"
	"SentimentOracle/internal/handler/ws"
	internalrepo "SentimentOracle/internal/repository"
	"SentimentOracle/internal/scheduler"
	"SentimentOracle/internal/service/binance"
	icache "SentimentOracle/internal/service/cache"
	"SentimentOracle/internal/service/ratelimit"
	"SentimentOracle/internal/services/overlay"
	"SentimentOracle/internal/services/sentiment"
	"SentimentOracle/internal/usecase"
	"SentimentOracle/pkg/config"
	xhttp "SentimentOracle/pkg/http"
	pkgkafka "SentimentOracle/pkg/kafka"
	applogger "SentimentOracle/pkg/logger"
	"SentimentOracle/pkg/metrics"
	"SentimentOracle/pkg/server"
	xutil "SentimentOracle/pkg/util"
)

const userAgent = "sentiment-oracle/1.0"

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config) domrepo.Metrics {
	if cfg.Metrics.Disabled {
		return metrics.Noop{}
	}
	return metrics.New(nil)
}

// ProvideHTTPClient creates the outbound HTTP client.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(
		xhttp.WithTimeout(cfg.Binance.Timeout),
		xhttp.WithUserAgent(userAgent),
	)
}

// ProvideBinanceClient creates the kline client.
func ProvideBinanceClient(cfg *config.Config, hc *xhttp.Client, l *applogger.Logger) *binance.Client {
	b := cfg.Binance
	return binance.New(binance.Config{
		BaseURL:   b.BaseURL,
		Symbol:    b.Symbol,
		Timeout:   b.Timeout,
		RateLimit: b.RateLimit,
		Burst:     b.Burst,
		Breaker: binance.BreakerConfig{
			MaxRequests:         b.Breaker.MaxRequests,
			Interval:            b.Breaker.Interval,
			Timeout:             b.Breaker.Timeout,
			ConsecutiveFailures: b.Breaker.ConsecutiveFailures,
		},
	}, hc, l)
}

// ProvideBytesCache creates the kline cache store. Redis is used when enabled
// and reachable; otherwise the in-process TTL cache.
func ProvideBytesCache(cfg *config.Config, l *applogger.Logger) (icache.BytesCache, func(), error) {
	rc := cfg.Cache.Redis
	if cfg.Cache.Disabled || !rc.Enabled {
		return icache.NewTTLCache(), func() {}, nil
	}

	redisCache := icache.NewRedisCache(icache.RedisConfig{
		Addr:        rc.Addr,
		Password:    rc.Password,
		DB:          rc.DB,
		Prefix:      rc.Prefix,
		DialTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := redisCache.Ping(ctx); err != nil {
		l.Warn("redis unavailable, using in-memory cache",
			applogger.String("addr", rc.Addr), applogger.Error(err))
		_ = redisCache.Close()
		return icache.NewTTLCache(), func() {}, nil
	}

	cleanup := func() {
		if err := redisCache.Close(); err != nil {
			l.Warn("redis close failed", applogger.Error(err))
		}
	}
	return redisCache, cleanup, nil
}

// ProvidePriceSource wraps the Binance client with the kline cache.
func ProvidePriceSource(cfg *config.Config, client *binance.Client, store icache.BytesCache, l *applogger.Logger) domrepo.PriceSource {
	if cfg.Cache.Disabled || cfg.Cache.TTL <= 0 {
		return client
	}
	return icache.NewPriceSource(client, store, client.Symbol(), cfg.Cache.TTL, l)
}

// ProvideScoreSource creates the sentiment score source.
func ProvideScoreSource(cfg *config.Config) domsvc.ScoreSource {
	s := cfg.Sentiment
	if s.Source == "random" {
		if s.Seed != 0 {
			return sentiment.NewSeededRandomSource(s.Seed)
		}
		return sentiment.NewRandomSource(rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	return sentiment.NewFixedMockSource(s.FixedScores)
}

// ProvideSentimentEvaluator creates the sentiment oracle.
func ProvideSentimentEvaluator(cfg *config.Config, src domsvc.ScoreSource) domsvc.SentimentEvaluator {
	return sentiment.NewOracle(src, sentiment.Thresholds{
		Buy:  cfg.Sentiment.BuyThreshold,
		Sell: -cfg.Sentiment.SellThreshold,
	})
}

// ProvideSignalLog creates the in-memory signal history.
func ProvideSignalLog(cfg *config.Config) domrepo.SignalLog {
	return internalrepo.NewMemorySignalLog(cfg.Dashboard.HistoryCapacity)
}

// ProvideSignalPublisher creates the Kafka signal publisher when enabled.
func ProvideSignalPublisher(cfg *config.Config) (domrepo.SignalPublisher, error) {
	k := cfg.Kafka
	if !k.Enabled {
		return internalrepo.NoopSignalPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(k.Brokers),
		pkgkafka.WithCompression(k.Compression),
		pkgkafka.WithRequiredAcks(k.RequiredAcks),
		pkgkafka.WithMaxAttempts(k.Producer.MaxAttempts),
		pkgkafka.WithBatching(k.Producer.BatchSize, k.Producer.Linger),
		pkgkafka.WithWriteTimeout(k.Producer.WriteTimeout),
		pkgkafka.WithAsync(k.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaSignalPublisher(producer, k.Topic), nil
}

// ProvideDashboardUseCase creates the dashboard use case.
func ProvideDashboardUseCase(
	cfg *config.Config,
	prices domrepo.PriceSource,
	evaluator domsvc.SentimentEvaluator,
	history domrepo.SignalLog,
	publisher domrepo.SignalPublisher,
	m domrepo.Metrics,
	l *applogger.Logger,
) (*usecase.DashboardUseCase, error) {
	loc, err := xutil.LoadLocation(cfg.Dashboard.Timezone)
	if err != nil {
		return nil, fmt.Errorf("dashboard timezone: %w", err)
	}
	policy, err := overlay.ParsePolicy(cfg.Dashboard.MarkerPolicy)
	if err != nil {
		return nil, fmt.Errorf("dashboard marker policy: %w", err)
	}
	return usecase.NewDashboardUseCase(prices, evaluator, history, publisher, m, l, usecase.DashboardConfig{
		Symbol:       cfg.Binance.Symbol,
		Policy:       policy,
		Location:     loc,
		CycleTimeout: cfg.Refresh.CycleTimeout,
	}), nil
}

// ProvideHub creates the websocket hub.
func ProvideHub(l *applogger.Logger) *ws.Hub {
	return ws.NewHub(l)
}

// ProvideRefresher creates the cron refresher for the default range.
func ProvideRefresher(cfg *config.Config, uc *usecase.DashboardUseCase, l *applogger.Logger) (*scheduler.Refresher, error) {
	tf := domrepo.NormalizeTimeframe(cfg.Dashboard.DefaultRange)
	r := scheduler.NewRefresher(context.Background(), uc, tf, l)
	if err := r.Register(cfg.Refresh.Cron); err != nil {
		return nil, fmt.Errorf("refresh schedule: %w", err)
	}
	return r, nil
}

// ProvideHTTPServer creates the Echo server with the page, API and websocket routes.
func ProvideHTTPServer(cfg *config.Config, uc *usecase.DashboardUseCase, hub *ws.Hub, l *applogger.Logger) (*xhttp.Server, error) {
	page, err := web.NewPageHandler()
	if err != nil {
		return nil, fmt.Errorf("page handler: %w", err)
	}
	limiter := ratelimit.New(cfg.Server.RefreshRate, cfg.Server.RefreshBurst)
	dash := api.NewDashboardHandler(l, uc, limiter, cfg.Dashboard.DefaultRange)

	return xhttp.NewServer(
		[]xhttp.Handler{page, dash, hub},
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithMetrics(!cfg.Metrics.Disabled),
		xhttp.WithLogger(l),
	), nil
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	uc *usecase.DashboardUseCase,
	hub *ws.Hub,
	refresher *scheduler.Refresher,
	httpServer *xhttp.Server,
	publisher domrepo.SignalPublisher,
) *server.App {
	return server.New(cfg, l, uc, hub, refresher, httpServer, publisher)
}
